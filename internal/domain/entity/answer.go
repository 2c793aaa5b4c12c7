package entity

import "time"

// ExamAnswer представляет один принятый ответ в рамках сессии.
// Записывается в той же транзакции, что и продвижение сессии, поэтому
// ровно одна запись на слот (уникальный индекс session_id + item_index).
type ExamAnswer struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	SessionID     string    `gorm:"size:36;not null;uniqueIndex:idx_exam_answers_session_item" json:"session_id"`
	ItemIndex     int       `gorm:"not null;uniqueIndex:idx_exam_answers_session_item" json:"item_index"`
	QuestionID    uint      `gorm:"not null" json:"question_id"`
	Category      Category  `gorm:"size:30;not null" json:"category"`
	Difficulty    int       `gorm:"not null" json:"difficulty"`
	SelectedIndex int       `gorm:"not null" json:"selected_index"`
	Correct       bool      `gorm:"not null" json:"correct"`
	AnsweredAt    time.Time `gorm:"not null" json:"answered_at"`
}

// TableName определяет имя таблицы для GORM
func (ExamAnswer) TableName() string {
	return "exam_answers"
}
