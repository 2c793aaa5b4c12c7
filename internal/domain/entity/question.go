package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Границы сложности и число вариантов ответа
const (
	MinDifficulty = 1
	MaxDifficulty = 5

	// QuestionOptionCount — каждый вопрос имеет ровно 4 варианта ответа
	QuestionOptionCount = 4
)

// StringArray - пользовательский тип для работы с JSONB
type StringArray []string

// Scan реализует интерфейс sql.Scanner для StringArray
// Используется GORM для чтения JSONB данных из базы
func (o *StringArray) Scan(value interface{}) error {
	// Обработка NULL значений из базы данных
	if value == nil {
		*o = StringArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для StringArray
// Используется GORM для записи StringArray в JSONB в базе
func (o StringArray) Value() (driver.Value, error) {
	if len(o) == 0 {
		return []byte("[]"), nil // Возвращаем пустой JSON массив вместо null
	}
	return json.Marshal(o)
}

// Question представляет вопрос банка экзамена.
// Запись неизменяемая: движок сессий читает вопросы, но никогда не мутирует.
type Question struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Category     Category    `gorm:"size:30;not null;index:idx_questions_category_difficulty" json:"category"`
	Difficulty   int         `gorm:"not null;index:idx_questions_category_difficulty" json:"difficulty"`
	Stem         string      `gorm:"size:1000;not null" json:"stem"`
	Options      StringArray `gorm:"type:jsonb;not null" json:"options"`
	CorrectIndex int         `gorm:"not null" json:"-"` // Скрыто от клиента
	Explanation  string      `gorm:"type:text" json:"explanation,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// IsCorrect проверяет, является ли выбранный вариант правильным
func (q *Question) IsCorrect(selectedIndex int) bool {
	return selectedIndex == q.CorrectIndex
}

// IsValidOption проверяет, является ли выбранный вариант допустимым
func (q *Question) IsValidOption(selectedIndex int) bool {
	return selectedIndex >= 0 && selectedIndex < len(q.Options)
}

// Validate проверяет инварианты вопроса перед записью в банк
func (q *Question) Validate() error {
	if !q.Category.IsValid() {
		return fmt.Errorf("unknown category %q", q.Category)
	}
	if q.Difficulty < MinDifficulty || q.Difficulty > MaxDifficulty {
		return fmt.Errorf("difficulty %d out of range [%d,%d]", q.Difficulty, MinDifficulty, MaxDifficulty)
	}
	if q.Stem == "" {
		return errors.New("stem is empty")
	}
	if len(q.Options) != QuestionOptionCount {
		return fmt.Errorf("question must have exactly %d options, got %d", QuestionOptionCount, len(q.Options))
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= QuestionOptionCount {
		return fmt.Errorf("correct index %d out of range [0,%d)", q.CorrectIndex, QuestionOptionCount)
	}
	return nil
}
