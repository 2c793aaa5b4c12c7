package examengine

import (
	"github.com/yourusername/mls-exam-api/internal/domain/entity"
	"github.com/yourusername/mls-exam-api/internal/domain/repository"
)

// Config содержит настройки адаптивного движка экзамена
type Config struct {
	// MinDifficulty — минимальный уровень сложности
	MinDifficulty int

	// MaxDifficulty — максимальный уровень сложности
	MaxDifficulty int

	// StartingDifficulty — сложность первого вопроса каждой сессии
	StartingDifficulty int

	// BandRadius — полуширина диапазона допустимых сложностей вокруг
	// текущей оценки (band = [d-BandRadius, d+BandRadius] с клампом)
	BandRadius int

	// TotalItems — фиксированная длина экзамена
	TotalItems int
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		MinDifficulty:      entity.MinDifficulty,
		MaxDifficulty:      entity.MaxDifficulty,
		StartingDifficulty: entity.StartingDifficulty,
		BandRadius:         1,
		TotalItems:         entity.TotalExamItems,
	}
}

// NextDifficulty — чистая функция адаптации сложности: +1 за правильный
// ответ, -1 за неправильный, с клампом на границах [MinDifficulty, MaxDifficulty].
// Одномерное случайное блуждание, а не настоящая IRT-оценка способности;
// движок обязан сохранять это поведение в точности.
func (c *Config) NextDifficulty(current int, correct bool) int {
	if correct && current < c.MaxDifficulty {
		return current + 1
	}
	if !correct && current > c.MinDifficulty {
		return current - 1
	}
	return current
}

// Band возвращает допустимый диапазон сложностей вокруг текущей оценки
func (c *Config) Band(current int) (minDifficulty, maxDifficulty int) {
	minDifficulty = current - c.BandRadius
	if minDifficulty < c.MinDifficulty {
		minDifficulty = c.MinDifficulty
	}
	maxDifficulty = current + c.BandRadius
	if maxDifficulty > c.MaxDifficulty {
		maxDifficulty = c.MaxDifficulty
	}
	return minDifficulty, maxDifficulty
}

// Dependencies содержит зависимости движка экзамена
type Dependencies struct {
	QuestionRepo repository.QuestionRepository
	Config       *Config
}
