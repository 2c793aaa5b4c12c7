package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется на уровне репозиториев, когда запись не найдена.
	// Сервисный слой преобразует её в доменные ошибки ниже.
	ErrNotFound = errors.New("record not found")

	// ErrSessionNotFound используется, когда сессия экзамена не существует.
	ErrSessionNotFound = errors.New("session not found")

	// ErrQuestionNotFound используется, когда указанный вопрос не существует.
	ErrQuestionNotFound = errors.New("question not found")

	// ErrSessionCompleted используется при обращении к уже завершённой сессии.
	ErrSessionCompleted = errors.New("session completed")

	// ErrNoQuestionAvailable используется, когда в банке нет вопроса для
	// требуемой категории и диапазона сложности. Диапазон не расширяется.
	ErrNoQuestionAvailable = errors.New("no question available")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется, когда конкурентная отправка ответа проиграла
	// гонку за один и тот же item_index.
	ErrConflict = errors.New("resource state conflict")
)
