package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/mls-exam-api/internal/domain/entity"
	"github.com/yourusername/mls-exam-api/internal/domain/repository"
	apperrors "github.com/yourusername/mls-exam-api/internal/pkg/errors"
	"github.com/yourusername/mls-exam-api/internal/service/examengine"
)

const (
	// sessionCacheTTL — время жизни кешированного снимка сессии.
	// Кеш обслуживает только read-only запросы и сбрасывается при каждом
	// принятом ответе.
	sessionCacheTTL = 5 * time.Minute

	// answersTotalKey — счётчик всех принятых ответов (операционная метрика)
	answersTotalKey = "stats:answers:total"
)

// AnswerResult — результат одного принятого ответа
type AnswerResult struct {
	Correct       bool
	CorrectIndex  int
	Explanation   string
	NewDifficulty int
	ItemIndex     int
	Completed     bool
}

// SessionService управляет жизненным циклом сессий экзамена: создание,
// выдача следующего вопроса, приём ответов и запрос статуса. Каждая сессия —
// независимая единица состояния; глобальных блокировок нет, атомарность
// перехода обеспечивает условное обновление в SessionRepository.
type SessionService struct {
	sessionRepo  repository.SessionRepository
	questionRepo repository.QuestionRepository
	cacheRepo    repository.CacheRepository
	blueprints   *examengine.BlueprintGenerator
	selector     *examengine.ItemSelector
	config       *examengine.Config
}

// NewSessionService создает новый сервис сессий экзамена
func NewSessionService(
	sessionRepo repository.SessionRepository,
	questionRepo repository.QuestionRepository,
	cacheRepo repository.CacheRepository,
	blueprints *examengine.BlueprintGenerator,
	selector *examengine.ItemSelector,
	config *examengine.Config,
) *SessionService {
	return &SessionService{
		sessionRepo:  sessionRepo,
		questionRepo: questionRepo,
		cacheRepo:    cacheRepo,
		blueprints:   blueprints,
		selector:     selector,
		config:       config,
	}
}

// StartSession создает новую сессию: генерирует blueprint, фиксирует
// стартовую сложность и сохраняет начальное состояние
func (s *SessionService) StartSession() (*entity.ExamSession, error) {
	session := &entity.ExamSession{
		ID:                uuid.NewString(),
		StartedAt:         time.Now().UTC(),
		Status:            entity.SessionStatusActive,
		CurrentDifficulty: s.config.StartingDifficulty,
		ItemIndex:         0,
		Blueprint:         s.blueprints.Generate(),
	}

	if err := s.sessionRepo.Create(session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.cacheSession(session)

	log.Printf("[SessionService] Started session %s (difficulty=%d)", session.ID, session.CurrentDifficulty)
	return session, nil
}

// GetNextQuestion выбирает вопрос для текущего слота сессии.
// Состояние сессии не мутируется; повторный вызов для того же слота может
// вернуть другой вопрос той же категории и диапазона сложности.
// Возвращает вопрос и 1-based номер слота.
func (s *SessionService) GetNextQuestion(sessionID string) (*entity.Question, int, error) {
	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, 0, err
	}

	if !session.IsActive() || session.ItemIndex >= s.config.TotalItems {
		return nil, 0, apperrors.ErrSessionCompleted
	}

	answeredIDs, err := s.sessionRepo.ListAnsweredQuestionIDs(sessionID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list answered questions: %w", err)
	}

	question, err := s.selector.SelectItem(session.Blueprint, session.ItemIndex, session.CurrentDifficulty, answeredIDs)
	if err != nil {
		return nil, 0, err
	}

	return question, session.ItemIndex + 1, nil
}

// SubmitAnswer принимает ответ на вопрос: вычисляет корректность, новую
// сложность и продвигает сессию ровно на один слот. Переход применяется
// одним атомарным обновлением; при item_index == TotalItems сессия
// становится completed. Идентификатор вопроса не сверяется с последним
// выданным слотом — достаточно существования вопроса в банке.
func (s *SessionService) SubmitAnswer(sessionID string, questionID uint, selectedIndex int) (*AnswerResult, error) {
	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive() {
		return nil, apperrors.ErrSessionCompleted
	}

	question, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to load question %d: %w", questionID, err)
	}

	if !question.IsValidOption(selectedIndex) {
		return nil, fmt.Errorf("selected index %d out of range: %w", selectedIndex, apperrors.ErrValidation)
	}

	correct := question.IsCorrect(selectedIndex)
	newDifficulty := s.config.NextDifficulty(session.CurrentDifficulty, correct)
	newItemIndex := session.ItemIndex + 1
	newStatus := entity.SessionStatusActive
	if newItemIndex >= s.config.TotalItems {
		newStatus = entity.SessionStatusCompleted
	}

	answer := &entity.ExamAnswer{
		SessionID:     sessionID,
		ItemIndex:     session.ItemIndex,
		QuestionID:    question.ID,
		Category:      question.Category,
		Difficulty:    question.Difficulty,
		SelectedIndex: selectedIndex,
		Correct:       correct,
		AnsweredAt:    time.Now().UTC(),
	}

	err = s.sessionRepo.ApplyAnswer(sessionID, session.ItemIndex, newDifficulty, newStatus, answer)
	if errors.Is(err, repository.ErrStaleSessionState) {
		return nil, s.classifyStaleState(sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to apply answer: %w", err)
	}

	// Снимок в кеше устарел после продвижения
	if cerr := s.cacheRepo.Delete(sessionCacheKey(sessionID)); cerr != nil {
		log.Printf("[SessionService] Failed to invalidate cache for session %s: %v", sessionID, cerr)
	}
	if _, cerr := s.cacheRepo.Increment(answersTotalKey); cerr != nil {
		log.Printf("[SessionService] Failed to increment %s: %v", answersTotalKey, cerr)
	}

	if newStatus == entity.SessionStatusCompleted {
		log.Printf("[SessionService] Session %s completed (%d items)", sessionID, newItemIndex)
	}

	return &AnswerResult{
		Correct:       correct,
		CorrectIndex:  question.CorrectIndex,
		Explanation:   question.Explanation,
		NewDifficulty: newDifficulty,
		ItemIndex:     newItemIndex,
		Completed:     newStatus == entity.SessionStatusCompleted,
	}, nil
}

// GetStatus возвращает текущее состояние сессии (read-only, через кеш)
func (s *SessionService) GetStatus(sessionID string) (*entity.ExamSession, error) {
	var cached entity.ExamSession
	if err := s.cacheRepo.GetJSON(sessionCacheKey(sessionID), &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		// Ошибка Redis не фатальна — читаем из БД
		log.Printf("[SessionService] Cache read failed for session %s: %v", sessionID, err)
	}

	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	s.cacheSession(session)
	return session, nil
}

// getSession загружает сессию, преобразуя ErrNotFound репозитория в
// доменную ошибку ErrSessionNotFound
func (s *SessionService) getSession(sessionID string) (*entity.ExamSession, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	return session, nil
}

// classifyStaleState перечитывает сессию после неудавшегося условного
// обновления и различает исчезнувшую сессию, уже завершённую сессию и
// проигранную гонку конкурентных submit
func (s *SessionService) classifyStaleState(sessionID string) error {
	session, err := s.sessionRepo.GetByID(sessionID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to reload session %s: %w", sessionID, err)
	}
	if session.IsCompleted() {
		return apperrors.ErrSessionCompleted
	}
	return apperrors.ErrConflict
}

// cacheSession сохраняет снимок сессии в кеше (best-effort)
func (s *SessionService) cacheSession(session *entity.ExamSession) {
	if err := s.cacheRepo.SetJSON(sessionCacheKey(session.ID), session, sessionCacheTTL); err != nil {
		log.Printf("[SessionService] Failed to cache session %s: %v", session.ID, err)
	}
}

func sessionCacheKey(sessionID string) string {
	return "session:" + sessionID
}
