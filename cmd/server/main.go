package main

import (
	"github.com/seabattle-vn/slbattle/internal/app/server"
	"github.com/seabattle-vn/slbattle/pkg/logging"
	"go.uber.org/zap"
)

func main() {
	logging.Fatal("Game server exited: ", zap.Error(
		server.NewServer().Start(),
	))
}
