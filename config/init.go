package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/relaypoint/mailguard/internal/logger"
	"github.com/relaypoint/mailguard/internal/tracing"
)

type Config struct {
	AppConfig      *AppConfig
	Logger         *logger.Config
	Tracing        *tracing.JaegerConfig
	DatabaseConfig *DatabaseConfig
	RedisConfig    *RedisConfig
	DNSConfig      *DNSConfig
	MonitorConfig  *MonitorConfig
	EventsConfig   *EventsConfig
}

func InitConfig() (*Config, error) {
	config := &Config{
		AppConfig:      &AppConfig{},
		Logger:         &logger.Config{},
		Tracing:        &tracing.JaegerConfig{},
		DatabaseConfig: &DatabaseConfig{},
		RedisConfig:    &RedisConfig{},
		DNSConfig:      &DNSConfig{},
		MonitorConfig:  &MonitorConfig{},
		EventsConfig:   &EventsConfig{},
	}

	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	err = env.Parse(config)
	if err != nil {
		log.Fatalf("Error loading mailguard config: %v", err)
	}

	return config, nil
}
