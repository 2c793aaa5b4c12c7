package repository

import "errors"

var (
	// ErrStaleSessionState означает, что условное обновление сессии не
	// затронуло ни одной строки: ожидаемый item_index уже продвинут другим
	// запросом либо сессия не в статусе active. Сервисный слой перечитывает
	// сессию и классифицирует причину.
	ErrStaleSessionState = errors.New("session state is stale")
)
