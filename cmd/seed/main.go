package main

import (
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/yourusername/mls-exam-api/internal/domain/entity"
)

// Утилита первичного заполнения банка вопросов: применяет миграции и
// загружает CSV-файл (те же колонки, что и у /api/questions/import).
func main() {
	var (
		dsn            = flag.String("dsn", "host=localhost port=5432 user=postgres dbname=exam_db sslmode=disable", "PostgreSQL connection string")
		bankFile       = flag.String("file", "", "path to question bank CSV (optional)")
		migrationsPath = flag.String("migrations", "file://migrations", "migrations source URL")
	)
	flag.Parse()

	db, err := sql.Open("postgres", *dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatal(err)
	}

	m, err := migrate.NewWithDatabaseInstance(*migrationsPath, "postgres", driver)
	if err != nil {
		log.Fatal(err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatalf("Failed to apply migrations: %v", err)
	}
	fmt.Println("Migrations applied.")

	if *bankFile == "" {
		return
	}

	count, err := loadBank(db, *bankFile)
	if err != nil {
		log.Fatalf("Failed to load question bank: %v", err)
	}
	fmt.Printf("Loaded %d questions from %s\n", count, *bankFile)
}

// loadBank читает CSV и вставляет вопросы в одной транзакции
func loadBank(db *sql.DB, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return 0, fmt.Errorf("parse CSV: %w", err)
	}
	if len(records) < 2 {
		return 0, fmt.Errorf("no data rows in %s", path)
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO questions (category, difficulty, stem, options, correct_index, explanation, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for i, row := range records[1:] { // Первая строка — заголовок
		if len(row) < 8 {
			return 0, fmt.Errorf("row %d: expected at least 8 columns, got %d", i+2, len(row))
		}

		category, err := entity.ParseCategory(strings.TrimSpace(row[0]))
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", i+2, err)
		}
		difficulty, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil || difficulty < entity.MinDifficulty || difficulty > entity.MaxDifficulty {
			return 0, fmt.Errorf("row %d: invalid difficulty %q", i+2, row[1])
		}
		correctIndex, err := strconv.Atoi(strings.TrimSpace(row[7]))
		if err != nil || correctIndex < 0 || correctIndex >= entity.QuestionOptionCount {
			return 0, fmt.Errorf("row %d: invalid correct_index %q", i+2, row[7])
		}

		options, err := entity.StringArray(row[3:7]).Value()
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", i+2, err)
		}

		explanation := ""
		if len(row) > 8 {
			explanation = strings.TrimSpace(row[8])
		}

		if _, err := stmt.Exec(string(category), difficulty, strings.TrimSpace(row[2]), options, correctIndex, explanation); err != nil {
			return 0, fmt.Errorf("row %d: %w", i+2, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}
