package server

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	IdleTimeout time.Duration

	AwsRegion         string
	CognitoUserPoolId string

	Storage               string
	RoomsTableName        string
	SessionsTableName     string
	MatchRecordsTableName string
	UserRatingsTableName  string
	MatchEndedTopicArn    string

	RoomTTL        time.Duration
	SessionTTL     time.Duration
	ArchiveTimeout time.Duration
	MaxRetries     int
}

func NewConfig() Config {
	var config Config

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs/server")
	viper.AddConfigPath(".")

	viper.SetDefault("Server.Port", "8080")
	viper.SetDefault("Server.IdleTimeout", "5m")
	viper.SetDefault("Storage.Backend", "memory")
	viper.SetDefault("Storage.RoomsTable", "Rooms")
	viper.SetDefault("Storage.SessionsTable", "Sessions")
	viper.SetDefault("Storage.MatchRecordsTable", "MatchRecords")
	viper.SetDefault("Storage.UserRatingsTable", "UserRatings")
	viper.SetDefault("Game.RoomTTL", "1h")
	viper.SetDefault("Game.SessionTTL", "2h")
	viper.SetDefault("Game.ArchiveTimeout", "5s")
	viper.SetDefault("Game.MaxRetries", 3)

	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			panic(fmt.Errorf("fatal error config file: %s", err))
		}
	}

	config.Port = viper.GetString("Server.Port")
	config.IdleTimeout = viper.GetDuration("Server.IdleTimeout")
	config.AwsRegion = viper.GetString("AWS_REGION")
	config.CognitoUserPoolId = viper.GetString("COGNITO_USER_POOL_ID")
	config.Storage = viper.GetString("Storage.Backend")
	config.RoomsTableName = viper.GetString("Storage.RoomsTable")
	config.SessionsTableName = viper.GetString("Storage.SessionsTable")
	config.MatchRecordsTableName = viper.GetString("Storage.MatchRecordsTable")
	config.UserRatingsTableName = viper.GetString("Storage.UserRatingsTable")
	config.MatchEndedTopicArn = viper.GetString("MATCH_ENDED_TOPIC_ARN")
	config.RoomTTL = viper.GetDuration("Game.RoomTTL")
	config.SessionTTL = viper.GetDuration("Game.SessionTTL")
	config.ArchiveTimeout = viper.GetDuration("Game.ArchiveTimeout")
	config.MaxRetries = viper.GetInt("Game.MaxRetries")

	return config
}
