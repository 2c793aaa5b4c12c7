package dto

import (
	"time"

	"github.com/yourusername/mls-exam-api/internal/domain/entity"
	"github.com/yourusername/mls-exam-api/internal/service"
)

// StartSessionResponse представляет ответ на создание сессии
type StartSessionResponse struct {
	SessionID string               `json:"sessionId"`
	Blueprint entity.CategoryArray `json:"blueprint"`
}

// NextQuestionResponse представляет вопрос текущего слота в формате для клиента.
// Правильный вариант и объяснение намеренно отсутствуют.
type NextQuestionResponse struct {
	QuestionID uint            `json:"questionId"`
	ItemIndex  int             `json:"itemIndex"`
	TotalItems int             `json:"totalItems"`
	Category   entity.Category `json:"category"`
	Difficulty int             `json:"difficulty"`
	Stem       string          `json:"stem"`
	Options    []string        `json:"options"`
}

// AnswerResponse представляет результат принятого ответа
type AnswerResponse struct {
	Correct       bool   `json:"correct"`
	CorrectIndex  int    `json:"correctIndex"`
	Explanation   string `json:"explanation,omitempty"`
	NewDifficulty int    `json:"newDifficulty"`
	ItemIndex     int    `json:"itemIndex"`
	Completed     bool   `json:"completed"`
}

// SessionStatusResponse представляет текущее состояние сессии
type SessionStatusResponse struct {
	ID                string    `json:"id"`
	StartedAt         time.Time `json:"startedAt"`
	Status            string    `json:"status"`
	CurrentDifficulty int       `json:"currentDifficulty"`
	ItemIndex         int       `json:"itemIndex"`
	Progress          int       `json:"progress"`
}

// NewStartSessionResponse создает DTO для новой сессии
func NewStartSessionResponse(session *entity.ExamSession) *StartSessionResponse {
	return &StartSessionResponse{
		SessionID: session.ID,
		Blueprint: session.Blueprint,
	}
}

// NewNextQuestionResponse создает DTO для вопроса слота itemNumber (1-based)
func NewNextQuestionResponse(question *entity.Question, itemNumber int) *NextQuestionResponse {
	return &NextQuestionResponse{
		QuestionID: question.ID,
		ItemIndex:  itemNumber,
		TotalItems: entity.TotalExamItems,
		Category:   question.Category,
		Difficulty: question.Difficulty,
		Stem:       question.Stem,
		Options:    question.Options,
	}
}

// NewAnswerResponse создает DTO для результата ответа
func NewAnswerResponse(result *service.AnswerResult) *AnswerResponse {
	return &AnswerResponse{
		Correct:       result.Correct,
		CorrectIndex:  result.CorrectIndex,
		Explanation:   result.Explanation,
		NewDifficulty: result.NewDifficulty,
		ItemIndex:     result.ItemIndex,
		Completed:     result.Completed,
	}
}

// NewSessionStatusResponse создает DTO для статуса сессии
func NewSessionStatusResponse(session *entity.ExamSession) *SessionStatusResponse {
	return &SessionStatusResponse{
		ID:                session.ID,
		StartedAt:         session.StartedAt,
		Status:            session.Status,
		CurrentDifficulty: session.CurrentDifficulty,
		ItemIndex:         session.ItemIndex,
		Progress:          session.ProgressPercent(),
	}
}
