package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/mls-exam-api/internal/handler/dto"
	apperrors "github.com/yourusername/mls-exam-api/internal/pkg/errors"
	"github.com/yourusername/mls-exam-api/internal/service"
)

// SessionHandler обрабатывает запросы жизненного цикла сессии экзамена
type SessionHandler struct {
	sessionService *service.SessionService
}

// NewSessionHandler создает новый обработчик сессий
func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// StartSession создает новую сессию экзамена
// POST /api/session/start
func (h *SessionHandler) StartSession(c *gin.Context) {
	session, err := h.sessionService.StartSession()
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewStartSessionResponse(session))
}

// GetNextQuestion возвращает вопрос текущего слота сессии
// GET /api/session/:id/question
func (h *SessionHandler) GetNextQuestion(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(string) // Получаем из контекста

	question, itemNumber, err := h.sessionService.GetNextQuestion(sessionID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewNextQuestionResponse(question, itemNumber))
}

// SubmitAnswerRequest представляет запрос на отправку ответа
type SubmitAnswerRequest struct {
	QuestionID    uint `json:"questionId" binding:"required"`
	SelectedIndex *int `json:"selectedIndex" binding:"required,min=0,max=3"`
}

// SubmitAnswer принимает ответ на вопрос и продвигает сессию
// POST /api/session/:id/answer
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(string) // Получаем из контекста

	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.sessionService.SubmitAnswer(sessionID, req.QuestionID, *req.SelectedIndex)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAnswerResponse(result))
}

// GetStatus возвращает текущее состояние сессии
// GET /api/session/:id/status
func (h *SessionHandler) GetStatus(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(string) // Получаем из контекста

	session, err := h.sessionService.GetStatus(sessionID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionStatusResponse(session))
}

// handleSessionError преобразует доменные ошибки в HTTP-статусы
func (h *SessionHandler) handleSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	case errors.Is(err, apperrors.ErrQuestionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
	case errors.Is(err, apperrors.ErrSessionCompleted):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session completed"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Concurrent answer submission, retry with fresh state"})
	case errors.Is(err, apperrors.ErrNoQuestionAvailable):
		// Неполнота банка вопросов — серверная проблема, диапазон не расширяем
		log.Printf("[SessionHandler] Content availability failure: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No questions available"})
	default:
		log.Printf("[SessionHandler] Internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
