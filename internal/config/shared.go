package config

import "time"

// --- Shared Configs ---

type ServerConfig struct {
	Port     string
	LogLevel string // debug, info, warn, error
	LogFile  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Host string
	Port string
}

type JWTConfig struct {
	Secret   string
	Duration time.Duration
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:     getEnv("CHAT_SERVER_PORT", "8080"),
		LogLevel: getEnv("CHAT_LOG_LEVEL", "info"),
		LogFile:  getEnv("CHAT_LOG_FILE", "logs/chatd.log"),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "chat_user"),
		Password: getEnv("DB_PASSWORD", "chat_pass"),
		Name:     getEnv("DB_NAME", "chat_db"),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Host: getEnv("REDIS_HOST", "localhost"),
		Port: getEnv("REDIS_PORT", "6379"),
	}
}

func loadJWTConfig() JWTConfig {
	return JWTConfig{
		Secret:   getEnv("JWT_SECRET", "dev-secret-key"),
		Duration: time.Duration(getEnvInt("JWT_DURATION_HOURS", 24)) * time.Hour,
	}
}
