package handlers

import (
	"net"
	"net/http"
	"strings"

	"dashboard/internal/service"
)

// AuthHandler отвечает за вход и выход операторов
//
// Endpoints:
// - POST /api/v1/auth/login - вход по логину и паролю
// - POST /api/v1/auth/logout - выход (запись в журнал аудита)
// - GET /api/v1/auth/me - текущая сессия
//
// Назначение:
// Выдает подписанный токен сессии по статическим учетным записям,
// пишет входы и выходы в журнал аудита с IP и User-Agent клиента.
// Токены самодостаточны, серверного хранилища сессий нет.
type AuthHandler struct {
	authService service.AuthServiceInterface
}

// NewAuthHandler создает новый AuthHandler с внедрением зависимости
func NewAuthHandler(authService service.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// LoginRequest представляет запрос входа
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login выполняет вход оператора
//
// POST /api/v1/auth/login
//
// HTTP коды:
// - 200 OK: успешный вход, в data токен и сессия
// - 400 Bad Request: некорректное тело запроса
// - 401 Unauthorized: неверные учетные данные или превышен лимит попыток
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.authService.Login(r.Context(), req.Username, req.Password, clientIP(r), r.UserAgent())
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, result, "logged in")
}

// Logout выполняет выход оператора
//
// POST /api/v1/auth/logout
//
// Токен самодостаточный и продолжает действовать до истечения TTL,
// поэтому выход фиксируется только в журнале аудита.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	if err := h.authService.Logout(r.Context(), session, clientIP(r), r.UserAgent()); err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, nil, "logged out")
}

// Me возвращает текущую сессию
//
// GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	respondSuccess(w, http.StatusOK, session, "")
}

// clientIP извлекает IP клиента из запроса.
// X-Forwarded-For учитывается первым, так как сервис работает за прокси.
func clientIP(r *http.Request) string {
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
