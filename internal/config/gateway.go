package config

import "time"

type WebSocketConfig struct {
	PingInterval   time.Duration
	WriteWait      time.Duration
	PongWait       time.Duration
	MaxMessageSize int64
	SendBufferSize int
}

type GatewayConfig struct {
	// ConversationPageLimit is the page size for the membership fetch at
	// connect time.
	ConversationPageLimit int
	// PresenceTTL bounds how long the redis presence mirror considers a
	// user online without a refresh.
	PresenceTTL time.Duration
}

type AttachmentConfig struct {
	Dir          string
	MaxSizeBytes int64
}

func loadWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		PingInterval:   54 * time.Second,
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		MaxMessageSize: 64 * 1024,
		SendBufferSize: getEnvInt("WS_SEND_BUFFER", 256),
	}
}

func loadGatewayConfig() GatewayConfig {
	return GatewayConfig{
		ConversationPageLimit: getEnvInt("GATEWAY_CONVERSATION_PAGE_LIMIT", 100),
		PresenceTTL:           time.Duration(getEnvInt("GATEWAY_PRESENCE_TTL_HOURS", 24)) * time.Hour,
	}
}

func loadAttachmentConfig() AttachmentConfig {
	return AttachmentConfig{
		Dir:          getEnv("ATTACHMENT_DIR", "data/attachments"),
		MaxSizeBytes: int64(getEnvInt("ATTACHMENT_MAX_SIZE_MB", 25)) * 1024 * 1024,
	}
}
