package repository

import (
	"github.com/yourusername/mls-exam-api/internal/domain/entity"
)

// SessionRepository определяет методы для работы с сессиями экзамена
type SessionRepository interface {
	Create(session *entity.ExamSession) error
	GetByID(id string) (*entity.ExamSession, error)

	// ApplyAnswer атомарно применяет один принятый ответ: условное обновление
	// (current_difficulty, item_index, status) с проверкой ожидаемого
	// item_index и статуса active, плюс запись ExamAnswer — всё в одной
	// транзакции. Если состояние сессии ушло вперёд (проигранная гонка или
	// уже завершённая сессия), возвращает ErrStaleSessionState.
	ApplyAnswer(sessionID string, expectedItemIndex int, newDifficulty int, newStatus string, answer *entity.ExamAnswer) error

	// ListAnsweredQuestionIDs возвращает ID всех вопросов, на которые в
	// сессии уже принят ответ (для исключения повторов при выборе)
	ListAnsweredQuestionIDs(sessionID string) ([]uint, error)
}
