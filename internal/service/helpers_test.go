package service

import (
	"time"

	"dashboard/internal/models"
	"dashboard/pkg/utils"
)

// testLogger возвращает тихий логгер для тестов
func testLogger() *utils.Logger {
	return utils.InitLogger(utils.LogConfig{Level: "fatal", Format: "json", Output: "stderr"})
}

func adminSession() *models.Session {
	return &models.Session{
		UserID:    "admin",
		Username:  "admin",
		Role:      models.RoleAdmin,
		ExpiresAt: time.Now().Add(time.Hour),
		IP:        "10.0.0.1",
		UserAgent: "test-agent",
	}
}

func operatorSession() *models.Session {
	s := adminSession()
	s.UserID = "operator"
	s.Username = "operator"
	s.Role = models.RoleOperator
	return s
}

func viewerSession() *models.Session {
	s := adminSession()
	s.UserID = "viewer"
	s.Username = "viewer"
	s.Role = models.RoleViewer
	return s
}
