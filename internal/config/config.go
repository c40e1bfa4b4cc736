// Package config loads service configuration from environment variables.
package config

import (
	"os"
	"strconv"
)

// ChatConfig holds all configuration for the chat backend
type ChatConfig struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	WebSocket  WebSocketConfig
	Gateway    GatewayConfig
	Attachment AttachmentConfig
}

// LoadChatConfig loads the full configuration for the chat backend
func LoadChatConfig() *ChatConfig {
	return &ChatConfig{
		Server:     loadServerConfig(),
		Database:   loadDatabaseConfig(),
		Redis:      loadRedisConfig(),
		JWT:        loadJWTConfig(),
		WebSocket:  loadWebSocketConfig(),
		Gateway:    loadGatewayConfig(),
		Attachment: loadAttachmentConfig(),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}
