package models

import "time"

// Роли пользователей дашборда
const (
	RoleAdmin    = "ADMIN"    // полный доступ ко всем операциям
	RoleOperator = "OPERATOR" // управление позициями/стратегиями и аварийные действия
	RoleViewer   = "VIEWER"   // только просмотр
)

// Session представляет аутентифицированную сессию пользователя.
// Создается при логине, неизменяема до истечения срока или логаута.
type Session struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"` // ADMIN, OPERATOR, VIEWER
	ExpiresAt time.Time `json:"expires_at"`

	// Метаданные текущего запроса для журнала аудита.
	// Заполняются middleware, в подписанный токен не попадают.
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// Expired возвращает true если срок действия сессии истек
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// ValidRole проверяет что роль входит в список известных
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleOperator, RoleViewer:
		return true
	}
	return false
}
