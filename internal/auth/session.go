package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"dashboard/internal/models"
)

// Ошибки работы с сессионными токенами
var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrTokenExpired = errors.New("session token expired")
	ErrEmptySecret  = errors.New("session secret cannot be empty")
)

// TokenSigner выпускает и верифицирует сессионные токены.
//
// Формат токена: base64url(payload JSON) + "." + base64url(HMAC-SHA256).
// Токен самодостаточен: сервер не хранит состояние сессий,
// логаут на клиенте сводится к удалению токена.
type TokenSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenSigner создает signer с заданным секретом и временем жизни сессии
func NewTokenSigner(secret string, ttl time.Duration) (*TokenSigner, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &TokenSigner{secret: []byte(secret), ttl: ttl}, nil
}

// Issue выпускает подписанный токен для пользователя
func (ts *TokenSigner) Issue(userID, username, role string, now time.Time) (string, *models.Session, error) {
	if !models.ValidRole(role) {
		return "", nil, ErrInvalidToken
	}

	session := &models.Session{
		UserID:    userID,
		Username:  username,
		Role:      role,
		ExpiresAt: now.Add(ts.ttl),
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return "", nil, err
	}

	encoded := base64.RawURLEncoding.EncodeToString(payload)
	token := encoded + "." + ts.sign(encoded)

	return token, session, nil
}

// Verify проверяет подпись и срок действия токена, возвращает сессию
func (ts *TokenSigner) Verify(token string) (*models.Session, error) {
	encoded, sig, found := strings.Cut(token, ".")
	if !found || encoded == "" || sig == "" {
		return nil, ErrInvalidToken
	}

	// Constant-time сравнение подписи
	expected := ts.sign(encoded)
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return nil, ErrInvalidToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidToken
	}

	var session models.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, ErrInvalidToken
	}

	if !models.ValidRole(session.Role) {
		return nil, ErrInvalidToken
	}

	if session.Expired() {
		return nil, ErrTokenExpired
	}

	return &session, nil
}

// sign вычисляет HMAC-SHA256 подпись в base64url
func (ts *TokenSigner) sign(encoded string) string {
	mac := hmac.New(sha256.New, ts.secret)
	mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
