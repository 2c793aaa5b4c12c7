package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yourusername/mls-exam-api/internal/pkg/errors"
	"github.com/yourusername/mls-exam-api/internal/service"
)

// QuestionHandler обрабатывает запросы управления банком вопросов
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler создает новый обработчик банка вопросов
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// Import загружает пакет вопросов из CSV или XLSX файла (multipart поле "file")
// POST /api/questions/import
func (h *QuestionHandler) Import(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	defer file.Close()

	var imported int
	switch ext := strings.ToLower(filepath.Ext(header.Filename)); ext {
	case ".csv":
		imported, err = h.questionService.ImportCSV(file)
	case ".xlsx":
		imported, err = h.questionService.ImportXLSX(file)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported file format %q, expected .csv or .xlsx", ext)})
		return
	}

	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("[QuestionHandler] Import failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import questions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"imported": imported})
}

// Coverage возвращает покрытие банка вопросов по категориям и сложностям
// GET /api/questions/coverage
func (h *QuestionHandler) Coverage(c *gin.Context) {
	report, err := h.questionService.Coverage()
	if err != nil {
		log.Printf("[QuestionHandler] Coverage failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load coverage"})
		return
	}

	c.JSON(http.StatusOK, report)
}
