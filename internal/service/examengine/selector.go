package examengine

import (
	"errors"
	"fmt"
	"log"

	"github.com/yourusername/mls-exam-api/internal/domain/entity"
	apperrors "github.com/yourusername/mls-exam-api/internal/pkg/errors"
)

// ItemSelector выбирает следующий вопрос сессии: категория берётся из
// blueprint по текущему слоту, сложность — из диапазона вокруг текущей
// оценки. Диапазон никогда не расширяется и категория не подменяется:
// отсутствие подходящего вопроса — ошибка полноты банка.
type ItemSelector struct {
	deps *Dependencies
}

// NewItemSelector создаёт новый селектор вопросов
func NewItemSelector(deps *Dependencies) *ItemSelector {
	return &ItemSelector{deps: deps}
}

// SelectItem возвращает один вопрос для слота itemIndex (0-based).
// excludeIDs — вопросы, уже отвеченные в этой сессии.
func (s *ItemSelector) SelectItem(blueprint entity.CategoryArray, itemIndex int, currentDifficulty int, excludeIDs []uint) (*entity.Question, error) {
	if itemIndex < 0 || itemIndex >= len(blueprint) {
		return nil, fmt.Errorf("item index %d out of blueprint range [0,%d)", itemIndex, len(blueprint))
	}

	category := blueprint[itemIndex]
	minDifficulty, maxDifficulty := s.deps.Config.Band(currentDifficulty)

	question, err := s.deps.QuestionRepo.GetRandomByCategoryAndBand(category, minDifficulty, maxDifficulty, excludeIDs)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[ItemSelector] No questions for category=%s band=[%d,%d] (excluded %d)",
				category, minDifficulty, maxDifficulty, len(excludeIDs))
			return nil, fmt.Errorf("category %s, difficulty [%d,%d]: %w",
				category, minDifficulty, maxDifficulty, apperrors.ErrNoQuestionAvailable)
		}
		return nil, fmt.Errorf("failed to select question: %w", err)
	}

	return question, nil
}
