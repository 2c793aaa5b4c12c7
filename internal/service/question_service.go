package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/yourusername/mls-exam-api/internal/domain/entity"
	"github.com/yourusername/mls-exam-api/internal/domain/repository"
	apperrors "github.com/yourusername/mls-exam-api/internal/pkg/errors"
	"github.com/yourusername/mls-exam-api/internal/service/examengine"
)

const (
	// coverageCacheKey — кешированный отчёт о покрытии банка вопросов
	coverageCacheKey = "questions:coverage"
	coverageCacheTTL = 1 * time.Minute

	// questionImportColumns: category, difficulty, stem, 4 варианта, correct_index, explanation
	questionImportColumns = 9
)

// CoverageGap — пара (категория, сложность), для которой банк не может
// обслужить ни один слот: в диапазоне вокруг этой сложности нет вопросов
type CoverageGap struct {
	Category   entity.Category `json:"category"`
	Difficulty int             `json:"difficulty"`
}

// CoverageReport — покрытие банка вопросов по категориям и сложностям
type CoverageReport struct {
	Total      int64                             `json:"total"`
	ByCategory map[entity.Category]map[int]int64 `json:"by_category"`
	Gaps       []CoverageGap                     `json:"gaps"`
}

// QuestionService предоставляет операции над банком вопросов: пакетный
// импорт из CSV/XLSX и отчёт о покрытии
type QuestionService struct {
	questionRepo repository.QuestionRepository
	cacheRepo    repository.CacheRepository
	config       *examengine.Config
}

// NewQuestionService создает новый сервис банка вопросов
func NewQuestionService(
	questionRepo repository.QuestionRepository,
	cacheRepo repository.CacheRepository,
	config *examengine.Config,
) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		cacheRepo:    cacheRepo,
		config:       config,
	}
}

// ImportCSV загружает вопросы из CSV. Ожидаемые колонки:
// category,difficulty,stem,option_a,option_b,option_c,option_d,correct_index,explanation
// Первая строка — заголовок. Возвращает количество импортированных вопросов.
func (s *QuestionService) ImportCSV(r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Длину строк проверяем сами, с номером строки в ошибке

	records, err := reader.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("failed to parse CSV: %w", err)
	}

	return s.importRows(records)
}

// ImportXLSX загружает вопросы из первого листа XLSX-файла.
// Формат колонок тот же, что и у ImportCSV.
func (s *QuestionService) ImportXLSX(r io.Reader) (int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return 0, fmt.Errorf("failed to open XLSX: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return 0, fmt.Errorf("XLSX has no sheets: %w", apperrors.ErrValidation)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return 0, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	return s.importRows(rows)
}

// Coverage возвращает покрытие банка по (категория, сложность) и список
// «дыр» — сложностей, при которых селектор не найдёт вопрос категории
// даже с учётом диапазона ±1
func (s *QuestionService) Coverage() (*CoverageReport, error) {
	var cached CoverageReport
	if err := s.cacheRepo.GetJSON(coverageCacheKey, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		log.Printf("[QuestionService] Coverage cache read failed: %v", err)
	}

	rows, err := s.questionRepo.GetCoverage()
	if err != nil {
		return nil, fmt.Errorf("failed to load coverage: %w", err)
	}

	report := &CoverageReport{
		ByCategory: make(map[entity.Category]map[int]int64, len(entity.AllCategories)),
	}
	for _, category := range entity.AllCategories {
		counts := make(map[int]int64, s.config.MaxDifficulty)
		for d := s.config.MinDifficulty; d <= s.config.MaxDifficulty; d++ {
			counts[d] = 0
		}
		report.ByCategory[category] = counts
	}
	for _, row := range rows {
		if counts, ok := report.ByCategory[row.Category]; ok {
			counts[row.Difficulty] = row.Count
			report.Total += row.Count
		}
	}

	// Дыра: в окне [d-1, d+1] (с клампом) у категории нет ни одного вопроса
	for _, category := range entity.AllCategories {
		counts := report.ByCategory[category]
		for d := s.config.MinDifficulty; d <= s.config.MaxDifficulty; d++ {
			minD, maxD := s.config.Band(d)
			var inBand int64
			for b := minD; b <= maxD; b++ {
				inBand += counts[b]
			}
			if inBand == 0 {
				report.Gaps = append(report.Gaps, CoverageGap{Category: category, Difficulty: d})
			}
		}
	}

	if err := s.cacheRepo.SetJSON(coverageCacheKey, report, coverageCacheTTL); err != nil {
		log.Printf("[QuestionService] Failed to cache coverage: %v", err)
	}

	return report, nil
}

// importRows валидирует и сохраняет строки импорта единым пакетом.
// Любая некорректная строка отклоняет весь импорт.
func (s *QuestionService) importRows(rows [][]string) (int, error) {
	if len(rows) < 2 {
		return 0, fmt.Errorf("import file has no data rows: %w", apperrors.ErrValidation)
	}

	// Первая строка — заголовок
	questions := make([]entity.Question, 0, len(rows)-1)
	for i, row := range rows[1:] {
		question, err := parseQuestionRow(row)
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", i+2, err)
		}
		questions = append(questions, question)
	}

	if err := s.questionRepo.CreateBatch(questions); err != nil {
		return 0, fmt.Errorf("failed to save imported questions: %w", err)
	}

	if err := s.cacheRepo.Delete(coverageCacheKey); err != nil {
		log.Printf("[QuestionService] Failed to invalidate coverage cache: %v", err)
	}

	log.Printf("[QuestionService] Imported %d questions", len(questions))
	return len(questions), nil
}

// parseQuestionRow разбирает одну строку импорта в вопрос банка
func parseQuestionRow(row []string) (entity.Question, error) {
	if len(row) < questionImportColumns-1 {
		// explanation может отсутствовать, остальные колонки обязательны
		return entity.Question{}, fmt.Errorf("expected at least %d columns, got %d: %w",
			questionImportColumns-1, len(row), apperrors.ErrValidation)
	}

	category, err := entity.ParseCategory(strings.TrimSpace(row[0]))
	if err != nil {
		return entity.Question{}, fmt.Errorf("%v: %w", err, apperrors.ErrValidation)
	}

	difficulty, err := strconv.Atoi(strings.TrimSpace(row[1]))
	if err != nil {
		return entity.Question{}, fmt.Errorf("invalid difficulty %q: %w", row[1], apperrors.ErrValidation)
	}

	correctIndex, err := strconv.Atoi(strings.TrimSpace(row[7]))
	if err != nil {
		return entity.Question{}, fmt.Errorf("invalid correct_index %q: %w", row[7], apperrors.ErrValidation)
	}

	explanation := ""
	if len(row) >= questionImportColumns {
		explanation = strings.TrimSpace(row[8])
	}

	question := entity.Question{
		Category:     category,
		Difficulty:   difficulty,
		Stem:         strings.TrimSpace(row[2]),
		Options:      entity.StringArray{row[3], row[4], row[5], row[6]},
		CorrectIndex: correctIndex,
		Explanation:  explanation,
	}

	if err := question.Validate(); err != nil {
		return entity.Question{}, fmt.Errorf("%v: %w", err, apperrors.ErrValidation)
	}

	return question, nil
}
