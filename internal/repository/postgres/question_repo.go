package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/mls-exam-api/internal/domain/entity"
	"github.com/yourusername/mls-exam-api/internal/domain/repository"
	apperrors "github.com/yourusername/mls-exam-api/internal/pkg/errors"
)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий банка вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// CreateBatch создает пакет вопросов
func (r *QuestionRepo) CreateBatch(questions []entity.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		// Устанавливаем кодировку UTF-8 внутри транзакции
		if err := tx.Exec("SET CLIENT_ENCODING TO 'UTF8'").Error; err != nil {
			return err
		}
		return tx.Create(&questions).Error
	})
}

// GetByID возвращает вопрос по ID
func (r *QuestionRepo) GetByID(id uint) (*entity.Question, error) {
	var question entity.Question
	err := r.db.First(&question, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &question, nil
}

// GetRandomByCategoryAndBand возвращает один случайный вопрос категории
// со сложностью в диапазоне [minDifficulty, maxDifficulty].
// Равномерность выбора обеспечивается ORDER BY RANDOM() на стороне БД.
func (r *QuestionRepo) GetRandomByCategoryAndBand(category entity.Category, minDifficulty, maxDifficulty int, excludeIDs []uint) (*entity.Question, error) {
	var question entity.Question

	query := r.db.Where("category = ? AND difficulty BETWEEN ? AND ?", category, minDifficulty, maxDifficulty)

	// Исключаем уже отвеченные в текущей сессии вопросы
	if len(excludeIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeIDs)
	}

	err := query.Order("RANDOM()").First(&question).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// GetCoverage возвращает количество вопросов по каждой паре (категория, сложность)
func (r *QuestionRepo) GetCoverage() ([]repository.CoverageRow, error) {
	var rows []repository.CoverageRow
	err := r.db.Model(&entity.Question{}).
		Select("category, difficulty, COUNT(*) AS count").
		Group("category, difficulty").
		Order("category, difficulty").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
