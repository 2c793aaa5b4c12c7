package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/yourusername/mls-exam-api/internal/domain/entity"
	"github.com/yourusername/mls-exam-api/internal/domain/repository"
	apperrors "github.com/yourusername/mls-exam-api/internal/pkg/errors"
)

// SessionRepo реализует repository.SessionRepository
type SessionRepo struct {
	db *gorm.DB
}

// NewSessionRepo создает новый репозиторий сессий экзамена
func NewSessionRepo(db *gorm.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create создает новую сессию
func (r *SessionRepo) Create(session *entity.ExamSession) error {
	return r.db.Create(session).Error
}

// GetByID возвращает сессию по ID
func (r *SessionRepo) GetByID(id string) (*entity.ExamSession, error) {
	var session entity.ExamSession
	err := r.db.First(&session, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// ApplyAnswer атомарно применяет один принятый ответ.
// Условное обновление закрывает гонку двух конкурентных submit: из двух
// запросов, прочитавших item_index = N, строку обновит ровно один; второй
// не затронет ни одной строки и получит ErrStaleSessionState.
func (r *SessionRepo) ApplyAnswer(sessionID string, expectedItemIndex int, newDifficulty int, newStatus string, answer *entity.ExamAnswer) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entity.ExamSession{}).
			Where("id = ? AND item_index = ? AND status = ?", sessionID, expectedItemIndex, entity.SessionStatusActive).
			Updates(map[string]interface{}{
				"current_difficulty": newDifficulty,
				"item_index":         expectedItemIndex + 1,
				"status":             newStatus,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return repository.ErrStaleSessionState
		}

		if err := tx.Create(answer).Error; err != nil {
			// Дубликат (session_id, item_index) — слот уже записан
			// конкурентным запросом, прошедшим условное обновление раньше
			if isUniqueViolation(err) {
				return repository.ErrStaleSessionState
			}
			return err
		}
		return nil
	})
}

// isUniqueViolation проверяет Postgres unique violation (23505) для pgconn и lib/pq драйверов
func isUniqueViolation(err error) bool {
	// pgx/v5 driver (pgconn.PgError)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// lib/pq driver
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return false
}

// ListAnsweredQuestionIDs возвращает ID всех вопросов, на которые в сессии
// уже принят ответ
func (r *SessionRepo) ListAnsweredQuestionIDs(sessionID string) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&entity.ExamAnswer{}).
		Where("session_id = ?", sessionID).
		Pluck("question_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
