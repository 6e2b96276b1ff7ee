package service

import (
	"context"
	"time"

	"dashboard/internal/auth"
	"dashboard/internal/config"
	"dashboard/internal/models"
	"dashboard/pkg/crypto"
	"dashboard/pkg/ratelimit"
	"dashboard/pkg/utils"
)

// LoginResult представляет успешный логин
type LoginResult struct {
	Token   string          `json:"token"`
	Session *models.Session `json:"session"`
}

// staticAccount - учетная запись из конфигурации
type staticAccount struct {
	username     string
	passwordHash string
	role         string
}

// AuthService аутентифицирует статические учетные записи и выпускает
// подписанные сессионные токены.
//
// Логин ограничен token bucket'ом: защита от перебора паролей.
// Ответ при неверном логине и неверном пароле одинаковый, чтобы не
// раскрывать существование учетки.
type AuthService struct {
	signer    *auth.TokenSigner
	accounts  []staticAccount
	limiter   *ratelimit.RateLimiter
	auditRepo AuditRepositoryInterface
	logger    *utils.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(signer *auth.TokenSigner, sec config.SecurityConfig, auditRepo AuditRepositoryInterface, logger *utils.Logger) *AuthService {
	accounts := make([]staticAccount, 0, 3)
	accounts = append(accounts, staticAccount{sec.AdminUsername, sec.AdminPasswordHash, models.RoleAdmin})
	if sec.OperatorPasswordHash != "" {
		accounts = append(accounts, staticAccount{sec.OperatorUsername, sec.OperatorPasswordHash, models.RoleOperator})
	}
	if sec.ViewerPasswordHash != "" {
		accounts = append(accounts, staticAccount{sec.ViewerUsername, sec.ViewerPasswordHash, models.RoleViewer})
	}

	return &AuthService{
		signer:    signer,
		accounts:  accounts,
		limiter:   ratelimit.NewRateLimiter(sec.LoginRatePerSec, sec.LoginBurst),
		auditRepo: auditRepo,
		logger:    logger.WithComponent("auth"),
	}
}

// Login проверяет учетные данные и выпускает сессионный токен
func (s *AuthService) Login(ctx context.Context, username, password, ip, userAgent string) (*LoginResult, error) {
	if !s.limiter.Allow() {
		s.logger.Warn("login rate limited", utils.String("ip", ip))
		return nil, ErrInvalidCredentials
	}

	account, ok := s.findAccount(username)
	if !ok || !crypto.CheckPasswordMatch(password, account.passwordHash) {
		s.logger.Warn("login failed",
			utils.String("username", username),
			utils.String("ip", ip),
		)
		return nil, ErrInvalidCredentials
	}

	token, session, err := s.signer.Issue(account.username, account.username, account.role, time.Now())
	if err != nil {
		return nil, err
	}
	session.IP = ip
	session.UserAgent = userAgent

	s.logger.Info("login",
		utils.UserID(session.UserID),
		utils.Role(session.Role),
		utils.String("ip", ip),
	)
	recordAudit(s.auditRepo, s.logger, session, "login", models.AuditResourceAuth, nil)

	return &LoginResult{Token: token, Session: session}, nil
}

// Logout фиксирует выход пользователя.
//
// Токены самодостаточные и не хранятся на сервере, немедленный отзыв
// вне скоупа: запись аудита фиксирует сам факт выхода.
func (s *AuthService) Logout(ctx context.Context, session *models.Session, ip, userAgent string) error {
	session.IP = ip
	session.UserAgent = userAgent
	recordAudit(s.auditRepo, s.logger, session, "logout", models.AuditResourceAuth, nil)
	return nil
}

// findAccount ищет учетную запись по имени
func (s *AuthService) findAccount(username string) (staticAccount, bool) {
	for _, account := range s.accounts {
		if account.username == username {
			return account, true
		}
	}
	return staticAccount{}, false
}
