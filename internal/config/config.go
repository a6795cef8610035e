package config

import (
	"flag"
	"os"
)

// Config содержит конфигурацию приложения.
type Config struct {
	RunAddress      string
	DatabaseURI     string
	UploadDir       string
	SendGridAPIKey  string
	SlackWebhookURL string
	AdminEmail      string
	FromEmail       string
	ClientOrigin    string
}

// Load загружает конфигурацию из флагов командной строки и переменных окружения.
// Приоритет: переменные окружения > флаги > значения по умолчанию.
// Отсутствие SENDGRID_API_KEY или SLACK_WEBHOOK_URL не является ошибкой:
// соответствующий канал уведомлений просто отключается.
func Load() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "адрес и порт запуска сервиса")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "строка подключения к PostgreSQL")
	flag.StringVar(&cfg.UploadDir, "u", "uploads", "директория для загруженных файлов")
	flag.Parse()

	if envRunAddr := os.Getenv("RUN_ADDRESS"); envRunAddr != "" {
		cfg.RunAddress = envRunAddr
	}
	if envDBURI := os.Getenv("DATABASE_URI"); envDBURI != "" {
		cfg.DatabaseURI = envDBURI
	}
	if envUploadDir := os.Getenv("UPLOAD_DIR"); envUploadDir != "" {
		cfg.UploadDir = envUploadDir
	}

	// Учётные данные каналов уведомлений задаются только окружением
	cfg.SendGridAPIKey = os.Getenv("SENDGRID_API_KEY")
	cfg.SlackWebhookURL = os.Getenv("SLACK_WEBHOOK_URL")

	cfg.AdminEmail = getenvDefault("ADMIN_EMAIL", "admin@n8n-georgia.com")
	cfg.FromEmail = getenvDefault("FROM_EMAIL", "info@n8n-georgia.com")
	cfg.ClientOrigin = getenvDefault("CLIENT_ORIGIN", "*")

	return cfg
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
