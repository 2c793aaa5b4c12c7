package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/mls-exam-api/internal/domain/entity"
	"github.com/yourusername/mls-exam-api/internal/domain/repository"
	apperrors "github.com/yourusername/mls-exam-api/internal/pkg/errors"
	"github.com/yourusername/mls-exam-api/internal/service/examengine"
)

// --- Моки репозиториев ---

type MockSessionRepo struct {
	mock.Mock
}

func (m *MockSessionRepo) Create(session *entity.ExamSession) error {
	args := m.Called(session)
	return args.Error(0)
}

func (m *MockSessionRepo) GetByID(id string) (*entity.ExamSession, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ExamSession), args.Error(1)
}

func (m *MockSessionRepo) ApplyAnswer(sessionID string, expectedItemIndex int, newDifficulty int, newStatus string, answer *entity.ExamAnswer) error {
	args := m.Called(sessionID, expectedItemIndex, newDifficulty, newStatus, answer)
	return args.Error(0)
}

func (m *MockSessionRepo) ListAnsweredQuestionIDs(sessionID string) ([]uint, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

type MockQuestionRepo struct {
	mock.Mock
}

func (m *MockQuestionRepo) CreateBatch(questions []entity.Question) error {
	args := m.Called(questions)
	return args.Error(0)
}

func (m *MockQuestionRepo) GetByID(id uint) (*entity.Question, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) GetRandomByCategoryAndBand(category entity.Category, minDifficulty, maxDifficulty int, excludeIDs []uint) (*entity.Question, error) {
	args := m.Called(category, minDifficulty, maxDifficulty, excludeIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) GetCoverage() ([]repository.CoverageRow, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.CoverageRow), args.Error(1)
}

type MockCacheRepo struct {
	mock.Mock
}

func (m *MockCacheRepo) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockCacheRepo) Increment(key string) (int64, error) {
	args := m.Called(key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCacheRepo) SetJSON(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepo) GetJSON(key string, dest interface{}) error {
	args := m.Called(key, dest)
	return args.Error(0)
}

// --- Вспомогательные конструкторы ---

type sessionServiceFixture struct {
	sessionRepo  *MockSessionRepo
	questionRepo *MockQuestionRepo
	cacheRepo    *MockCacheRepo
	service      *SessionService
}

func newSessionServiceFixture() *sessionServiceFixture {
	sessionRepo := new(MockSessionRepo)
	questionRepo := new(MockQuestionRepo)
	cacheRepo := new(MockCacheRepo)

	config := examengine.DefaultConfig()
	blueprints := examengine.NewBlueprintGenerator(nil)
	selector := examengine.NewItemSelector(&examengine.Dependencies{
		QuestionRepo: questionRepo,
		Config:       config,
	})

	return &sessionServiceFixture{
		sessionRepo:  sessionRepo,
		questionRepo: questionRepo,
		cacheRepo:    cacheRepo,
		service:      NewSessionService(sessionRepo, questionRepo, cacheRepo, blueprints, selector, config),
	}
}

func activeSession(id string, itemIndex, difficulty int) *entity.ExamSession {
	blueprint := make(entity.CategoryArray, 0, entity.TotalExamItems)
	for _, category := range entity.AllCategories {
		for i := 0; i < entity.CategoryQuota[category]; i++ {
			blueprint = append(blueprint, category)
		}
	}
	return &entity.ExamSession{
		ID:                id,
		StartedAt:         time.Now().UTC(),
		Status:            entity.SessionStatusActive,
		CurrentDifficulty: difficulty,
		ItemIndex:         itemIndex,
		Blueprint:         blueprint,
	}
}

func bankQuestion(id uint, category entity.Category, difficulty, correctIndex int) *entity.Question {
	q := &entity.Question{
		Category:     category,
		Difficulty:   difficulty,
		Stem:         "Stem",
		Options:      entity.StringArray{"A", "B", "C", "D"},
		CorrectIndex: correctIndex,
	}
	q.ID = id
	return q
}

// --- StartSession ---

// TestStartSession — новая сессия стартует со сложности 3, слота 0 и полного blueprint
func TestStartSession(t *testing.T) {
	f := newSessionServiceFixture()

	f.sessionRepo.On("Create", mock.AnythingOfType("*entity.ExamSession")).Return(nil)
	f.cacheRepo.On("SetJSON", mock.AnythingOfType("string"), mock.Anything, sessionCacheTTL).Return(nil)

	session, err := f.service.StartSession()

	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, entity.SessionStatusActive, session.Status)
	assert.Equal(t, entity.StartingDifficulty, session.CurrentDifficulty)
	assert.Equal(t, 0, session.ItemIndex)
	require.Len(t, session.Blueprint, entity.TotalExamItems)

	counts := session.Blueprint.Counts()
	for category, quota := range entity.CategoryQuota {
		assert.Equal(t, quota, counts[category], "category=%s", category)
	}

	f.sessionRepo.AssertExpectations(t)
}

// TestStartSession_CreateError — ошибка БД не маскируется
func TestStartSession_CreateError(t *testing.T) {
	f := newSessionServiceFixture()

	f.sessionRepo.On("Create", mock.AnythingOfType("*entity.ExamSession")).Return(assert.AnError)

	session, err := f.service.StartSession()

	assert.Nil(t, session)
	assert.Error(t, err)
}

// --- GetNextQuestion ---

// TestGetNextQuestion — вопрос выбирается по категории слота и диапазону сложности
func TestGetNextQuestion(t *testing.T) {
	f := newSessionServiceFixture()

	session := activeSession("s1", 5, 4)
	expectedCategory := session.Blueprint[5]
	question := bankQuestion(42, expectedCategory, 4, 0)

	f.sessionRepo.On("GetByID", "s1").Return(session, nil)
	f.sessionRepo.On("ListAnsweredQuestionIDs", "s1").Return([]uint{1, 2}, nil)
	f.questionRepo.On("GetRandomByCategoryAndBand", expectedCategory, 3, 5, []uint{1, 2}).
		Return(question, nil)

	got, itemNumber, err := f.service.GetNextQuestion("s1")

	require.NoError(t, err)
	assert.Equal(t, question, got)
	assert.Equal(t, 6, itemNumber)
	f.questionRepo.AssertExpectations(t)
}

// TestGetNextQuestion_SessionNotFound — неизвестная сессия
func TestGetNextQuestion_SessionNotFound(t *testing.T) {
	f := newSessionServiceFixture()

	f.sessionRepo.On("GetByID", "missing").Return(nil, apperrors.ErrNotFound)

	_, _, err := f.service.GetNextQuestion("missing")

	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

// TestGetNextQuestion_Completed — завершённая сессия вопросов не выдаёт
func TestGetNextQuestion_Completed(t *testing.T) {
	f := newSessionServiceFixture()

	session := activeSession("s1", entity.TotalExamItems, 5)
	session.Status = entity.SessionStatusCompleted

	f.sessionRepo.On("GetByID", "s1").Return(session, nil)

	_, _, err := f.service.GetNextQuestion("s1")

	assert.ErrorIs(t, err, apperrors.ErrSessionCompleted)
	f.sessionRepo.AssertNotCalled(t, "ListAnsweredQuestionIDs")
}

// TestGetNextQuestion_NoQuestionAvailable — дыра в банке это ошибка, не подмена категории
func TestGetNextQuestion_NoQuestionAvailable(t *testing.T) {
	f := newSessionServiceFixture()

	session := activeSession("s1", 0, 3)

	f.sessionRepo.On("GetByID", "s1").Return(session, nil)
	f.sessionRepo.On("ListAnsweredQuestionIDs", "s1").Return([]uint{}, nil)
	f.questionRepo.On("GetRandomByCategoryAndBand", session.Blueprint[0], 2, 4, []uint{}).
		Return(nil, apperrors.ErrNotFound)

	_, _, err := f.service.GetNextQuestion("s1")

	assert.ErrorIs(t, err, apperrors.ErrNoQuestionAvailable)
}

// --- SubmitAnswer ---

// TestSubmitAnswer_CorrectRaisesDifficulty — правильный ответ поднимает сложность на 1
func TestSubmitAnswer_CorrectRaisesDifficulty(t *testing.T) {
	f := newSessionServiceFixture()

	session := activeSession("s1", 10, 3)
	question := bankQuestion(42, session.Blueprint[10], 3, 1)

	f.sessionRepo.On("GetByID", "s1").Return(session, nil)
	f.questionRepo.On("GetByID", uint(42)).Return(question, nil)
	f.sessionRepo.On("ApplyAnswer", "s1", 10, 4, entity.SessionStatusActive,
		mock.AnythingOfType("*entity.ExamAnswer")).Return(nil)
	f.cacheRepo.On("Delete", "session:s1").Return(nil)
	f.cacheRepo.On("Increment", answersTotalKey).Return(int64(1), nil)

	result, err := f.service.SubmitAnswer("s1", 42, 1)

	require.NoError(t, err)
	assert.True(t, result.Correct)
	assert.Equal(t, 1, result.CorrectIndex)
	assert.Equal(t, 4, result.NewDifficulty)
	assert.Equal(t, 11, result.ItemIndex)
	assert.False(t, result.Completed)
	f.sessionRepo.AssertExpectations(t)
}

// TestSubmitAnswer_IncorrectLowersDifficulty — неправильный ответ опускает сложность на 1
func TestSubmitAnswer_IncorrectLowersDifficulty(t *testing.T) {
	f := newSessionServiceFixture()

	session := activeSession("s1", 10, 3)
	question := bankQuestion(42, session.Blueprint[10], 3, 1)

	f.sessionRepo.On("GetByID", "s1").Return(session, nil)
	f.questionRepo.On("GetByID", uint(42)).Return(question, nil)
	f.sessionRepo.On("ApplyAnswer", "s1", 10, 2, entity.SessionStatusActive,
		mock.AnythingOfType("*entity.ExamAnswer")).Return(nil)
	f.cacheRepo.On("Delete", "session:s1").Return(nil)
	f.cacheRepo.On("Increment", answersTotalKey).Return(int64(1), nil)

	result, err := f.service.SubmitAnswer("s1", 42, 3)

	require.NoError(t, err)
	assert.False(t, result.Correct)
	assert.Equal(t, 2, result.NewDifficulty)
}

// TestSubmitAnswer_DifficultyClamps — кламп на границах шкалы
func TestSubmitAnswer_DifficultyClamps(t *testing.T) {
	tests := []struct {
		name          string
		difficulty    int
		correctIndex  int
		selectedIndex int
		expected      int
	}{
		{"Правильный ответ на максимуме", 5, 0, 0, 5},
		{"Неправильный ответ на минимуме", 1, 0, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSessionServiceFixture()

			session := activeSession("s1", 10, tt.difficulty)
			question := bankQuestion(42, session.Blueprint[10], tt.difficulty, tt.correctIndex)

			f.sessionRepo.On("GetByID", "s1").Return(session, nil)
			f.questionRepo.On("GetByID", uint(42)).Return(question, nil)
			f.sessionRepo.On("ApplyAnswer", "s1", 10, tt.expected, entity.SessionStatusActive,
				mock.AnythingOfType("*entity.ExamAnswer")).Return(nil)
			f.cacheRepo.On("Delete", "session:s1").Return(nil)
			f.cacheRepo.On("Increment", answersTotalKey).Return(int64(1), nil)

			result, err := f.service.SubmitAnswer("s1", 42, tt.selectedIndex)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, result.NewDifficulty)
		})
	}
}

// TestSubmitAnswer_LastItemCompletesSession — сотый ответ переводит сессию в completed
func TestSubmitAnswer_LastItemCompletesSession(t *testing.T) {
	f := newSessionServiceFixture()

	session := activeSession("s1", entity.TotalExamItems-1, 4)
	question := bankQuestion(42, session.Blueprint[entity.TotalExamItems-1], 4, 0)

	f.sessionRepo.On("GetByID", "s1").Return(session, nil)
	f.questionRepo.On("GetByID", uint(42)).Return(question, nil)
	f.sessionRepo.On("ApplyAnswer", "s1", entity.TotalExamItems-1, 5, entity.SessionStatusCompleted,
		mock.AnythingOfType("*entity.ExamAnswer")).Return(nil)
	f.cacheRepo.On("Delete", "session:s1").Return(nil)
	f.cacheRepo.On("Increment", answersTotalKey).Return(int64(100), nil)

	result, err := f.service.SubmitAnswer("s1", 42, 0)

	require.NoError(t, err)
	assert.True(t, result.Completed)
	assert.Equal(t, entity.TotalExamItems, result.ItemIndex)
	f.sessionRepo.AssertExpectations(t)
}

// TestSubmitAnswer_CompletedSession — ответы в завершённую сессию не принимаются
func TestSubmitAnswer_CompletedSession(t *testing.T) {
	f := newSessionServiceFixture()

	session := activeSession("s1", entity.TotalExamItems, 5)
	session.Status = entity.SessionStatusCompleted

	f.sessionRepo.On("GetByID", "s1").Return(session, nil)

	_, err := f.service.SubmitAnswer("s1", 42, 0)

	assert.ErrorIs(t, err, apperrors.ErrSessionCompleted)
	f.sessionRepo.AssertNotCalled(t, "ApplyAnswer")
}

// TestSubmitAnswer_QuestionNotFound — неизвестный вопрос
func TestSubmitAnswer_QuestionNotFound(t *testing.T) {
	f := newSessionServiceFixture()

	session := activeSession("s1", 10, 3)

	f.sessionRepo.On("GetByID", "s1").Return(session, nil)
	f.questionRepo.On("GetByID", uint(999)).Return(nil, apperrors.ErrNotFound)

	_, err := f.service.SubmitAnswer("s1", 999, 0)

	assert.ErrorIs(t, err, apperrors.ErrQuestionNotFound)
}

// TestSubmitAnswer_InvalidSelectedIndex — индекс варианта вне диапазона
func TestSubmitAnswer_InvalidSelectedIndex(t *testing.T) {
	f := newSessionServiceFixture()

	session := activeSession("s1", 10, 3)
	question := bankQuestion(42, session.Blueprint[10], 3, 0)

	f.sessionRepo.On("GetByID", "s1").Return(session, nil)
	f.questionRepo.On("GetByID", uint(42)).Return(question, nil)

	_, err := f.service.SubmitAnswer("s1", 42, 4)

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	f.sessionRepo.AssertNotCalled(t, "ApplyAnswer")
}

// TestSubmitAnswer_StaleState — проигранная гонка классифицируется перечитыванием
func TestSubmitAnswer_StaleState(t *testing.T) {
	tests := []struct {
		name        string
		reload      *entity.ExamSession
		reloadErr   error
		expectedErr error
	}{
		{
			"Сессия исчезла",
			nil, apperrors.ErrNotFound, apperrors.ErrSessionNotFound,
		},
		{
			"Сессия уже завершена",
			&entity.ExamSession{ID: "s1", Status: entity.SessionStatusCompleted, ItemIndex: entity.TotalExamItems},
			nil, apperrors.ErrSessionCompleted,
		},
		{
			"Конкурентный submit продвинул слот",
			&entity.ExamSession{ID: "s1", Status: entity.SessionStatusActive, ItemIndex: 11},
			nil, apperrors.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSessionServiceFixture()

			session := activeSession("s1", 10, 3)
			question := bankQuestion(42, session.Blueprint[10], 3, 0)

			f.sessionRepo.On("GetByID", "s1").Return(session, nil).Once()
			f.questionRepo.On("GetByID", uint(42)).Return(question, nil)
			f.sessionRepo.On("ApplyAnswer", "s1", 10, 4, entity.SessionStatusActive,
				mock.AnythingOfType("*entity.ExamAnswer")).Return(repository.ErrStaleSessionState)
			f.sessionRepo.On("GetByID", "s1").Return(tt.reload, tt.reloadErr).Once()

			_, err := f.service.SubmitAnswer("s1", 42, 0)

			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

// --- GetStatus ---

// TestGetStatus_CacheMiss — промах кеша читает БД и кеширует снимок
func TestGetStatus_CacheMiss(t *testing.T) {
	f := newSessionServiceFixture()

	session := activeSession("s1", 37, 4)

	f.cacheRepo.On("GetJSON", "session:s1", mock.Anything).Return(apperrors.ErrNotFound)
	f.sessionRepo.On("GetByID", "s1").Return(session, nil)
	f.cacheRepo.On("SetJSON", "session:s1", session, sessionCacheTTL).Return(nil)

	got, err := f.service.GetStatus("s1")

	require.NoError(t, err)
	assert.Equal(t, 37, got.ItemIndex)
	assert.Equal(t, 37, got.ProgressPercent())
	f.cacheRepo.AssertExpectations(t)
}

// TestGetStatus_NotFound — промах кеша и отсутствие в БД
func TestGetStatus_NotFound(t *testing.T) {
	f := newSessionServiceFixture()

	f.cacheRepo.On("GetJSON", "session:missing", mock.Anything).Return(apperrors.ErrNotFound)
	f.sessionRepo.On("GetByID", "missing").Return(nil, apperrors.ErrNotFound)

	_, err := f.service.GetStatus("missing")

	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}
