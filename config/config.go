package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config хранит все настройки приложения.
type Config struct {
	TelegramBotToken string

	// Леджеры: sheets | postgres | memory
	LedgerBackend         string
	SpreadsheetID         string
	GoogleCredentialsFile string
	DatabaseDSN           string

	// Фото: drive | local
	BlobBackend       string
	DriveRootFolderID string
	UploadsDir        string

	PlaceDefault string

	// HTTP-панель владельца
	ServerPort        string
	JwtSecret         string
	AdminUsername     string
	AdminPasswordHash string
}

// NewConfig читает .env (если есть) и переменные окружения.
func NewConfig() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Загружен .env")
	}

	return &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),

		LedgerBackend:         getEnv("LEDGER_BACKEND", "sheets"),
		SpreadsheetID:         os.Getenv("SPREADSHEET_ID"),
		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
		DatabaseDSN:           os.Getenv("DATABASE_DSN"),

		BlobBackend:       getEnv("BLOB_BACKEND", "drive"),
		DriveRootFolderID: os.Getenv("DRIVE_ROOT_FOLDER_ID"),
		UploadsDir:        getEnv("UPLOADS_DIR", "./uploads/selfies"),

		PlaceDefault: getEnv("PLACE_DEFAULT", "Казан Шаверма"),

		ServerPort:        getEnv("SERVER_PORT", "6066"),
		JwtSecret:         getEnv("JWT_SECRET", "change-me-in-production"),
		AdminUsername:     getEnv("ADMIN_USERNAME", "owner"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
