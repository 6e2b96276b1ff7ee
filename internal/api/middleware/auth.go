package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"dashboard/internal/auth"
)

// Session - middleware аутентификации запросов
//
// Назначение:
// Проверяет подписанный токен сессии, извлекает из него пользователя
// и роль и кладет сессию в context запроса. Токен самодостаточный
// (HMAC-SHA256), обращений к БД при проверке нет.
//
// Источники токена, в порядке приоритета:
// - заголовок Authorization: Bearer <token>
// - cookie dashboard_session (для browser клиентов)
//
// При отсутствии или невалидности токена возвращается 401 в общем
// конверте API.
func Session(signer *auth.TokenSigner) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				if cookie, err := r.Cookie("dashboard_session"); err == nil {
					token = cookie.Value
				}
			}
			if token == "" {
				unauthorized(w, "authentication required")
				return
			}

			session, err := signer.Verify(token)
			if err != nil {
				unauthorized(w, "invalid or expired session")
				return
			}

			// Метаданные запроса для журнала аудита
			session.IP = requestIP(r)
			session.UserAgent = r.UserAgent()

			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), session)))
		})
	}
}

// bearerToken извлекает токен из заголовка Authorization
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// requestIP извлекает IP клиента с учетом прокси
func requestIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// unauthorized пишет 401 в общем конверте API
func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// InternalAuth - basic auth для служебных endpoints
//
// Назначение:
// Закрывает внутренние endpoints (прием алертов от оркестратора,
// /debug/pprof) от внешнего доступа. Использует HTTP Basic Auth
// с constant-time сравнением.
//
// Пустые username и password отключают endpoints полностью:
// служебные маршруты без настроенных учетных данных недоступны.
func InternalAuth(username, password string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if username == "" || password == "" {
				http.Error(w, "internal endpoints disabled", http.StatusForbidden)
				return
			}

			user, pass, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", `Basic realm="internal"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1
			passMatch := subtle.ConstantTimeCompare([]byte(pass), []byte(password)) == 1
			if !userMatch || !passMatch {
				w.Header().Set("WWW-Authenticate", `Basic realm="internal"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
