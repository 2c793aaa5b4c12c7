package repository

import (
	"github.com/yourusername/mls-exam-api/internal/domain/entity"
)

// CoverageRow — количество вопросов банка для пары (категория, сложность)
type CoverageRow struct {
	Category   entity.Category
	Difficulty int
	Count      int64
}

// QuestionRepository определяет методы для работы с банком вопросов.
// Движок сессий использует банк только на чтение.
type QuestionRepository interface {
	CreateBatch(questions []entity.Question) error
	GetByID(id uint) (*entity.Question, error)

	// GetRandomByCategoryAndBand возвращает один случайный вопрос категории
	// со сложностью в диапазоне [minDifficulty, maxDifficulty], исключая
	// уже отвеченные в текущей сессии. Возвращает ErrNotFound, если
	// подходящих вопросов нет.
	GetRandomByCategoryAndBand(category entity.Category, minDifficulty, maxDifficulty int, excludeIDs []uint) (*entity.Question, error)

	// GetCoverage возвращает количество вопросов по каждой паре
	// (категория, сложность) для контроля полноты банка
	GetCoverage() ([]CoverageRow, error)
}
