package service

import (
	"context"
	"fmt"

	"dashboard/internal/auth"
	"dashboard/internal/models"
	"dashboard/pkg/crypto"
	"dashboard/pkg/utils"
)

// AlertOverview объединяет правила, каналы и последние алерты
type AlertOverview struct {
	Rules    []*models.AlertRule           `json:"rules"`
	Channels []*models.NotificationChannel `json:"channels"`
	Recent   []*models.Alert               `json:"recent"`
}

// RuleUpdateRequest представляет запрос изменения правила алертов
type RuleUpdateRequest struct {
	ID            string   `json:"-"`
	Name          *string  `json:"name,omitempty"`
	Enabled       *bool    `json:"enabled,omitempty"`
	Threshold     *float64 `json:"threshold,omitempty"`
	ThresholdUnit *string  `json:"threshold_unit,omitempty"`
	Severity      *string  `json:"severity,omitempty"`
}

// ChannelUpdateRequest представляет запрос изменения канала уведомлений.
// Config принимается открытым текстом и шифруется перед сохранением.
type ChannelUpdateRequest struct {
	ID      string  `json:"-"`
	Enabled *bool   `json:"enabled,omitempty"`
	Config  *string `json:"config,omitempty"`
}

// AlertService управляет правилами алертов, каналами уведомлений
// и сработавшими алертами.
//
// Секреты каналов (webhook URL, SMTP credentials) хранятся в БД
// зашифрованными AES-256-GCM; расшифровка выполняется только в
// момент отправки тестового уведомления.
type AlertService struct {
	alertRepo     AlertRepositoryInterface
	auditRepo     AuditRepositoryInterface
	orch          OrchestratorInterface
	broadcaster   BroadcasterInterface
	encryptionKey []byte
	logger        *utils.Logger
}

// NewAlertService создает новый экземпляр AlertService.
func NewAlertService(
	alertRepo AlertRepositoryInterface,
	auditRepo AuditRepositoryInterface,
	orch OrchestratorInterface,
	broadcaster BroadcasterInterface,
	encryptionKey []byte,
	logger *utils.Logger,
) *AlertService {
	return &AlertService{
		alertRepo:     alertRepo,
		auditRepo:     auditRepo,
		orch:          orch,
		broadcaster:   broadcaster,
		encryptionKey: encryptionKey,
		logger:        logger.WithComponent("alerts"),
	}
}

// Overview возвращает правила, каналы и последние алерты.
// Секреты каналов наружу не отдаются.
func (s *AlertService) Overview(ctx context.Context) (*AlertOverview, error) {
	rules, err := s.alertRepo.GetRules()
	if err != nil {
		return nil, err
	}

	channels, err := s.alertRepo.GetChannels()
	if err != nil {
		return nil, err
	}
	for _, ch := range channels {
		ch.Config = ""
	}

	recent, err := s.alertRepo.GetRecentAlerts(20)
	if err != nil {
		return nil, err
	}

	return &AlertOverview{Rules: rules, Channels: channels, Recent: recent}, nil
}

// Ingest принимает сработавший алерт от оркестратора, сохраняет его
// и рассылает подключенным клиентам
func (s *AlertService) Ingest(ctx context.Context, alert *models.Alert) error {
	if alert.RuleID == "" || alert.Message == "" {
		return fmt.Errorf("%w: alert requires rule_id and message", ErrValidation)
	}
	if alert.Severity == "" {
		alert.Severity = models.AlertSeverityInfo
	}

	if err := s.alertRepo.CreateAlert(alert); err != nil {
		return err
	}

	s.logger.Info("alert ingested",
		utils.String("rule_id", alert.RuleID),
		utils.String("severity", alert.Severity),
	)
	go s.broadcaster.BroadcastAlert(alert)
	return nil
}

// Acknowledge подтверждает алерт
func (s *AlertService) Acknowledge(ctx context.Context, session *models.Session, alertID string) error {
	if alertID == "" {
		return fmt.Errorf("%w: alert id is required", ErrValidation)
	}

	if err := s.alertRepo.AcknowledgeAlert(alertID, session.UserID); err != nil {
		return err
	}

	recordAudit(s.auditRepo, s.logger, session, "alert_acknowledge", models.AuditResourceAlerts, map[string]interface{}{
		"alert_id": alertID,
	})
	return nil
}

// TestChannel отправляет тестовое уведомление через канал
func (s *AlertService) TestChannel(ctx context.Context, session *models.Session, channelID string) error {
	if channelID == "" {
		return fmt.Errorf("%w: channel id is required", ErrValidation)
	}

	channel, err := s.alertRepo.GetChannel(channelID)
	if err != nil {
		return err
	}

	config := ""
	if channel.Config != "" {
		config, err = crypto.Decrypt(channel.Config, s.encryptionKey)
		if err != nil {
			return fmt.Errorf("decrypt channel config: %w", err)
		}
	}

	if err := s.orch.SendTestNotification(ctx, channel.Type, config); err != nil {
		return sanitizeOrchestratorError(err)
	}

	recordAudit(s.auditRepo, s.logger, session, "alert_channel_test", models.AuditResourceAlerts, map[string]interface{}{
		"channel_id":   channelID,
		"channel_type": channel.Type,
	})
	return nil
}

// UpdateRule изменяет правило алертов. Только для администраторов.
func (s *AlertService) UpdateRule(ctx context.Context, session *models.Session, req *RuleUpdateRequest) (*models.AlertRule, error) {
	if !auth.CanEditConfig(session.Role) {
		return nil, ErrForbidden
	}

	rule, err := s.alertRepo.GetRule(req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		rule.Name = *req.Name
	}
	if req.Enabled != nil {
		rule.Enabled = *req.Enabled
	}
	if req.Threshold != nil {
		if *req.Threshold <= 0 {
			return nil, fmt.Errorf("%w: threshold must be positive", ErrValidation)
		}
		rule.Threshold = *req.Threshold
	}
	if req.ThresholdUnit != nil {
		rule.ThresholdUnit = *req.ThresholdUnit
	}
	if req.Severity != nil {
		switch *req.Severity {
		case models.AlertSeverityInfo, models.AlertSeverityWarning, models.AlertSeverityCritical:
			rule.Severity = *req.Severity
		default:
			return nil, fmt.Errorf("%w: unknown severity %q", ErrValidation, *req.Severity)
		}
	}

	if err := s.alertRepo.UpdateRule(rule); err != nil {
		return nil, err
	}

	recordAudit(s.auditRepo, s.logger, session, "alert_rule_update", models.AuditResourceAlerts, map[string]interface{}{
		"rule_id": rule.ID,
	})
	return rule, nil
}

// UpdateChannel изменяет канал уведомлений. Только для администраторов.
func (s *AlertService) UpdateChannel(ctx context.Context, session *models.Session, req *ChannelUpdateRequest) (*models.NotificationChannel, error) {
	if !auth.CanEditConfig(session.Role) {
		return nil, ErrForbidden
	}

	channel, err := s.alertRepo.GetChannel(req.ID)
	if err != nil {
		return nil, err
	}

	if req.Enabled != nil {
		channel.Enabled = *req.Enabled
	}
	if req.Config != nil {
		encrypted, err := crypto.Encrypt(*req.Config, s.encryptionKey)
		if err != nil {
			return nil, fmt.Errorf("encrypt channel config: %w", err)
		}
		channel.Config = encrypted
	}

	if err := s.alertRepo.UpdateChannel(channel); err != nil {
		return nil, err
	}

	recordAudit(s.auditRepo, s.logger, session, "alert_channel_update", models.AuditResourceAlerts, map[string]interface{}{
		"channel_id": channel.ID,
	})

	channel.Config = ""
	return channel, nil
}
