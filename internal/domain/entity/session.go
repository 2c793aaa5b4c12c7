package entity

import (
	"math"
	"time"
)

// Константы статусов сессии экзамена
const (
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
)

// StartingDifficulty — сложность первого вопроса каждой сессии (medium)
const StartingDifficulty = 3

// ExamSession представляет одну попытку сдачи 100-вопросного экзамена.
// Инварианты: 1 <= CurrentDifficulty <= 5; 0 <= ItemIndex <= 100;
// ItemIndex == 100 тогда и только тогда, когда Status == completed.
type ExamSession struct {
	ID                string        `gorm:"primaryKey;size:36" json:"id"`
	StartedAt         time.Time     `gorm:"not null" json:"started_at"`
	Status            string        `gorm:"size:20;not null;default:'active';index" json:"status"`
	CurrentDifficulty int           `gorm:"not null" json:"current_difficulty"`
	ItemIndex         int           `gorm:"not null" json:"item_index"`
	Blueprint         CategoryArray `gorm:"type:jsonb;not null" json:"blueprint"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (ExamSession) TableName() string {
	return "exam_sessions"
}

// IsActive проверяет, активна ли сессия
func (s *ExamSession) IsActive() bool {
	return s.Status == SessionStatusActive
}

// IsCompleted проверяет, завершена ли сессия
func (s *ExamSession) IsCompleted() bool {
	return s.Status == SessionStatusCompleted
}

// ProgressPercent возвращает прогресс сессии в процентах (0..100)
func (s *ExamSession) ProgressPercent() int {
	return int(math.Round(float64(s.ItemIndex) / float64(TotalExamItems) * 100))
}

// CurrentCategory возвращает категорию текущего слота blueprint.
// Вызывающий обязан проверить ItemIndex < TotalExamItems.
func (s *ExamSession) CurrentCategory() Category {
	return s.Blueprint[s.ItemIndex]
}
