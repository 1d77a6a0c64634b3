package db

import (
	"database/sql"
	"log"
	"os"

	_ "github.com/lib/pq"
)

// InitDB открывает Postgres и создаёт таблицы леджеров.
func InitDB(dsn string) *sql.DB {
	database, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("Ошибка при открытии базы данных: %v", err)
	}

	if err = database.Ping(); err != nil {
		log.Fatalf("Ошибка при подключении к базе данных: %v", err)
	}

	createTables(database)
	log.Println("База данных успешно инициализирована")
	return database
}

func createTables(database *sql.DB) {
	schema, err := os.ReadFile("db/schema.sql")
	if err != nil {
		log.Fatalf("Не удалось прочитать файл схемы БД: %v", err)
	}

	if _, err = database.Exec(string(schema)); err != nil {
		log.Fatalf("Не удалось создать таблицы: %v", err)
	}
}
