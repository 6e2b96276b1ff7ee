package auth

import (
	"context"

	"dashboard/internal/models"
)

// contextKey - приватный тип ключа, чтобы не конфликтовать с другими пакетами
type contextKey struct{}

var sessionKey = contextKey{}

// WithSession кладет сессию в context запроса
func WithSession(ctx context.Context, session *models.Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// SessionFrom извлекает сессию из context.
// Возвращает (nil, false) если запрос не аутентифицирован.
func SessionFrom(ctx context.Context) (*models.Session, bool) {
	session, ok := ctx.Value(sessionKey).(*models.Session)
	return session, ok && session != nil
}
