package server

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/gorilla/websocket"
	"github.com/seabattle-vn/slbattle/internal/aws/notification"
	"github.com/seabattle-vn/slbattle/internal/aws/storage"
	"github.com/seabattle-vn/slbattle/internal/battle"
	"github.com/seabattle-vn/slbattle/pkg/logging"
	"go.uber.org/zap"
)

type server struct {
	address  string
	upgrader websocket.Upgrader

	config   Config
	manager  *battle.Manager
	hub      *hub
	notifier *notification.Client

	cognitoPublicKeys map[string]*rsa.PublicKey
}

func NewServer() *server {
	cfg := NewConfig()
	srv := &server{
		address: "0.0.0.0:" + cfg.Port,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins
			},
		},
		config:            cfg,
		hub:               newHub(),
		cognitoPublicKeys: make(map[string]*rsa.PublicKey),
	}

	srv.manager = battle.NewManager(srv.newStore(), battle.Config{
		MaxRetries:     cfg.MaxRetries,
		RoomTTL:        cfg.RoomTTL,
		SessionTTL:     cfg.SessionTTL,
		ArchiveTimeout: cfg.ArchiveTimeout,
	})
	if cfg.CognitoUserPoolId != "" {
		srv.loadCognitoPublicKeys()
	}
	return srv
}

func (s *server) newStore() battle.Store {
	if s.config.Storage != "dynamodb" {
		logging.Info("using in-memory store")
		return battle.NewMemoryStore()
	}

	awsCfg, err := config.LoadDefaultConfig(
		context.Background(),
		config.WithRegion(s.config.AwsRegion),
	)
	if err != nil {
		logging.Fatal("unable to load SDK config", zap.Error(err))
	}
	if s.config.MatchEndedTopicArn != "" {
		s.notifier = notification.NewClient(
			sns.NewFromConfig(awsCfg),
			notification.Config{MatchEndedTopicArn: s.config.MatchEndedTopicArn},
		)
	}
	return storage.NewClient(
		dynamodb.NewFromConfig(awsCfg),
		storage.Config{
			RoomsTableName:        aws.String(s.config.RoomsTableName),
			SessionsTableName:     aws.String(s.config.SessionsTableName),
			MatchRecordsTableName: aws.String(s.config.MatchRecordsTableName),
			UserRatingsTableName:  aws.String(s.config.UserRatingsTableName),
		},
	)
}

// Start method    starts the game server
func (s *server) Start() error {
	http.HandleFunc("/play", func(w http.ResponseWriter, r *http.Request) {
		playerId, err := s.auth(r)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(err.Error()))
			return
		}

		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			logging.Error("failed to upgrade connection", zap.Error(err))
			return
		}
		defer conn.Close()

		c := &client{conn: conn, playerId: playerId}
		s.handlePlayerConnect(c)

		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				s.handlePlayerDisconnect(c)
				logging.Info("connection closed",
					zap.String("remote_address", conn.RemoteAddr().String()),
					zap.Error(err),
				)
				break
			}

			p := payload{}
			if err := json.Unmarshal(message, &p); err != nil {
				c.writeJson(event{Type: evtError, Data: errorEvent{
					Code:    "MALFORMED_PAYLOAD",
					Message: "your input was invalid: malformed payload",
				}})
				continue
			}
			s.handleMessage(c, p)
		}
	})
	logging.Info("websocket server started", zap.String("port", s.config.Port))
	return http.ListenAndServe(s.address, nil)
}
