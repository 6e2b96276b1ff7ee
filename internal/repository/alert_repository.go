package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"dashboard/internal/models"
)

// Ошибки репозитория алертов
var (
	ErrAlertRuleNotFound = errors.New("alert rule not found")
	ErrChannelNotFound   = errors.New("notification channel not found")
	ErrAlertNotFound     = errors.New("alert not found")
)

// AlertRepository - работа с таблицами alert_rules и notification_channels
//
// Схема:
//
//	CREATE TABLE alert_rules (
//	    id             TEXT PRIMARY KEY,
//	    name           TEXT NOT NULL,
//	    type           TEXT NOT NULL,
//	    enabled        BOOLEAN NOT NULL DEFAULT TRUE,
//	    threshold      DOUBLE PRECISION NOT NULL,
//	    threshold_unit TEXT NOT NULL,
//	    severity       TEXT NOT NULL,
//	    updated_at     TIMESTAMPTZ NOT NULL
//	);
//	CREATE TABLE notification_channels (
//	    id         TEXT PRIMARY KEY,
//	    type       TEXT NOT NULL,
//	    enabled    BOOLEAN NOT NULL DEFAULT TRUE,
//	    config     TEXT NOT NULL DEFAULT '',  -- AES-256-GCM, base64
//	    updated_at TIMESTAMPTZ NOT NULL
//	);
//	CREATE TABLE alerts (
//	    id              UUID PRIMARY KEY,
//	    rule_id         TEXT NOT NULL,
//	    severity        TEXT NOT NULL,
//	    message         TEXT NOT NULL,
//	    acknowledged    BOOLEAN NOT NULL DEFAULT FALSE,
//	    acknowledged_by TEXT NOT NULL DEFAULT '',
//	    created_at      TIMESTAMPTZ NOT NULL,
//	    acknowledged_at TIMESTAMPTZ
//	);
type AlertRepository struct {
	db *sql.DB
}

// NewAlertRepository создает новый экземпляр репозитория
func NewAlertRepository(db *sql.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// ============ Правила ============

// GetRules возвращает все правила алертов
func (r *AlertRepository) GetRules() ([]*models.AlertRule, error) {
	query := `
		SELECT id, name, type, enabled, threshold, threshold_unit, severity, updated_at
		FROM alert_rules
		ORDER BY name`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := make([]*models.AlertRule, 0)
	for rows.Next() {
		rule := &models.AlertRule{}
		err := rows.Scan(
			&rule.ID,
			&rule.Name,
			&rule.Type,
			&rule.Enabled,
			&rule.Threshold,
			&rule.ThresholdUnit,
			&rule.Severity,
			&rule.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

// GetRule возвращает правило по id
func (r *AlertRepository) GetRule(id string) (*models.AlertRule, error) {
	query := `
		SELECT id, name, type, enabled, threshold, threshold_unit, severity, updated_at
		FROM alert_rules
		WHERE id = $1`

	rule := &models.AlertRule{}
	err := r.db.QueryRow(query, id).Scan(
		&rule.ID,
		&rule.Name,
		&rule.Type,
		&rule.Enabled,
		&rule.Threshold,
		&rule.ThresholdUnit,
		&rule.Severity,
		&rule.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAlertRuleNotFound
		}
		return nil, err
	}

	return rule, nil
}

// UpdateRule обновляет правило
func (r *AlertRepository) UpdateRule(rule *models.AlertRule) error {
	rule.UpdatedAt = time.Now()

	query := `
		UPDATE alert_rules
		SET name = $1, enabled = $2, threshold = $3, threshold_unit = $4, severity = $5, updated_at = $6
		WHERE id = $7`

	result, err := r.db.Exec(query,
		rule.Name,
		rule.Enabled,
		rule.Threshold,
		rule.ThresholdUnit,
		rule.Severity,
		rule.UpdatedAt,
		rule.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrAlertRuleNotFound
	}

	return nil
}

// ============ Каналы ============

// GetChannels возвращает все каналы уведомлений
func (r *AlertRepository) GetChannels() ([]*models.NotificationChannel, error) {
	query := `
		SELECT id, type, enabled, config, updated_at
		FROM notification_channels
		ORDER BY type`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	channels := make([]*models.NotificationChannel, 0)
	for rows.Next() {
		channel := &models.NotificationChannel{}
		err := rows.Scan(
			&channel.ID,
			&channel.Type,
			&channel.Enabled,
			&channel.Config,
			&channel.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		channels = append(channels, channel)
	}

	return channels, rows.Err()
}

// GetChannel возвращает канал по id
func (r *AlertRepository) GetChannel(id string) (*models.NotificationChannel, error) {
	query := `
		SELECT id, type, enabled, config, updated_at
		FROM notification_channels
		WHERE id = $1`

	channel := &models.NotificationChannel{}
	err := r.db.QueryRow(query, id).Scan(
		&channel.ID,
		&channel.Type,
		&channel.Enabled,
		&channel.Config,
		&channel.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChannelNotFound
		}
		return nil, err
	}

	return channel, nil
}

// UpdateChannel обновляет канал
func (r *AlertRepository) UpdateChannel(channel *models.NotificationChannel) error {
	channel.UpdatedAt = time.Now()

	query := `
		UPDATE notification_channels
		SET enabled = $1, config = $2, updated_at = $3
		WHERE id = $4`

	result, err := r.db.Exec(query,
		channel.Enabled,
		channel.Config,
		channel.UpdatedAt,
		channel.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrChannelNotFound
	}

	return nil
}

// ============ Сработавшие алерты ============

// CreateAlert сохраняет сработавший алерт
func (r *AlertRepository) CreateAlert(alert *models.Alert) error {
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO alerts (id, rule_id, severity, message, acknowledged, acknowledged_by, created_at)
		VALUES ($1, $2, $3, $4, FALSE, '', $5)`

	_, err := r.db.Exec(query,
		alert.ID,
		alert.RuleID,
		alert.Severity,
		alert.Message,
		alert.CreatedAt,
	)
	return err
}

// GetRecentAlerts возвращает последние алерты, новые первыми
func (r *AlertRepository) GetRecentAlerts(limit int) ([]*models.Alert, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, rule_id, severity, message, acknowledged, acknowledged_by, created_at, acknowledged_at
		FROM alerts
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alerts := make([]*models.Alert, 0)
	for rows.Next() {
		alert := &models.Alert{}
		err := rows.Scan(
			&alert.ID,
			&alert.RuleID,
			&alert.Severity,
			&alert.Message,
			&alert.Acknowledged,
			&alert.AcknowledgedBy,
			&alert.CreatedAt,
			&alert.AcknowledgedAt,
		)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}

	return alerts, rows.Err()
}

// AcknowledgeAlert помечает алерт подтвержденным. Повторное
// подтверждение идемпотентно.
func (r *AlertRepository) AcknowledgeAlert(id, acknowledgedBy string) error {
	query := `
		UPDATE alerts
		SET acknowledged = TRUE, acknowledged_by = $1, acknowledged_at = $2
		WHERE id = $3 AND acknowledged = FALSE`

	result, err := r.db.Exec(query, acknowledgedBy, time.Now(), id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		var exists bool
		err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM alerts WHERE id = $1)`, id).Scan(&exists)
		if err != nil {
			return err
		}
		if !exists {
			return ErrAlertNotFound
		}
		// Уже подтвержден
	}

	return nil
}
