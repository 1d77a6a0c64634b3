package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/dishflow/shiftbot/config"
	"github.com/dishflow/shiftbot/db"
	"github.com/dishflow/shiftbot/internal/auth"
	"github.com/dishflow/shiftbot/internal/blob"
	"github.com/dishflow/shiftbot/internal/bot"
	"github.com/dishflow/shiftbot/internal/events"
	"github.com/dishflow/shiftbot/internal/ledger"
	"github.com/dishflow/shiftbot/internal/pkg/clock"
	"github.com/dishflow/shiftbot/internal/routes"
	"github.com/dishflow/shiftbot/internal/shift"
	"github.com/dishflow/shiftbot/internal/telegram"
)

const storageTimeout = 15 * time.Second

func main() {
	cfg := config.NewConfig()
	if cfg.TelegramBotToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN не задан")
	}

	ctx := context.Background()

	var (
		codes       ledger.CodeLedger
		shiftLedger ledger.ShiftLedger
		database    *sql.DB
	)
	switch cfg.LedgerBackend {
	case "sheets":
		client, err := ledger.NewSheetsClient(ctx, cfg.GoogleCredentialsFile, cfg.SpreadsheetID)
		if err != nil {
			log.Fatalf("Ошибка подключения к Google Sheets: %v", err)
		}
		codes = ledger.NewSheetsCodeLedger(client, cfg.PlaceDefault)
		shiftLedger = ledger.NewSheetsShiftLedger(client)
	case "postgres":
		database = db.InitDB(cfg.DatabaseDSN)
		defer database.Close()
		codes = ledger.NewPostgresCodeLedger(database, cfg.PlaceDefault)
		shiftLedger = ledger.NewPostgresShiftLedger(database)
	case "memory":
		log.Println("⚠️ Леджер в памяти: данные пропадут при рестарте")
		codes = ledger.NewMemoryCodeLedger()
		shiftLedger = ledger.NewMemoryShiftLedger()
	default:
		log.Fatalf("Неизвестный LEDGER_BACKEND: %s", cfg.LedgerBackend)
	}

	var photos blob.Store
	var err error
	switch cfg.BlobBackend {
	case "drive":
		photos, err = blob.NewDriveStore(ctx, cfg.GoogleCredentialsFile, cfg.DriveRootFolderID)
		if err != nil {
			log.Fatalf("Ошибка подключения к Google Drive: %v", err)
		}
	case "local":
		photos, err = blob.NewLocalStore(cfg.UploadsDir, "/uploads")
		if err != nil {
			log.Fatalf("Ошибка локального хранилища фото: %v", err)
		}
	default:
		log.Fatalf("Неизвестный BLOB_BACKEND: %s", cfg.BlobBackend)
	}

	redisClient := config.NewRedisClient()
	defer redisClient.Close()

	var roleCache auth.Cache
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️ Redis недоступен, кэш ролей выключен: %v", err)
	} else {
		roleCache = auth.NewRedisRoleCache(redisClient, 24*time.Hour)
	}

	engine := auth.NewEngine(codes, roleCache, storageTimeout)
	registry := shift.NewRegistry()
	machine := shift.NewMachine(registry, shiftLedger, photos, clock.System(), storageTimeout)
	hub := events.NewHub()

	tg := telegram.NewClient(cfg.TelegramBotToken)
	router := bot.NewRouter(engine, machine, shiftLedger, tg, tg, hub)
	go bot.NewPoller(tg, router).Run(ctx)

	httpRouter := routes.Setup(cfg, shiftLedger, registry, hub)
	serverAddress := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("🚀 Server starting on %s", serverAddress)
	log.Fatal(http.ListenAndServe(serverAddress, httpRouter))
}
