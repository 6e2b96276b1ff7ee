package repository

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"dashboard/internal/models"
)

// ============================================================
// AlertRepository Tests
// ============================================================

func TestAlertRepositoryGetRules(t *testing.T) {
	now := time.Now()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "name", "type", "enabled", "threshold", "threshold_unit", "severity", "updated_at"}).
		AddRow("drawdown", "Max drawdown", "drawdown_pct", true, 10.0, "percent", models.AlertSeverityCritical, now).
		AddRow("exposure", "Total exposure", "exposure_usd", false, 5000.0, "usd", models.AlertSeverityWarning, now)
	mock.ExpectQuery(`SELECT .+ FROM alert_rules ORDER BY name`).
		WillReturnRows(rows)

	repo := NewAlertRepository(db)
	rules, err := repo.GetRules()
	if err != nil {
		t.Fatalf("GetRules failed: %v", err)
	}

	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}
	if rules[0].ID != "drawdown" || rules[0].Threshold != 10.0 {
		t.Errorf("unexpected rule: %+v", rules[0])
	}
}

func TestAlertRepositoryGetRuleNotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM alert_rules WHERE id = \$1`).
		WillReturnError(sql.ErrNoRows)

	repo := NewAlertRepository(db)
	if _, err := repo.GetRule("missing"); !errors.Is(err, ErrAlertRuleNotFound) {
		t.Errorf("expected ErrAlertRuleNotFound, got %v", err)
	}
}

func TestAlertRepositoryUpdateRule(t *testing.T) {
	tests := []struct {
		name         string
		rowsAffected int64
		wantErr      error
	}{
		{name: "success", rowsAffected: 1, wantErr: nil},
		{name: "not found", rowsAffected: 0, wantErr: ErrAlertRuleNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("failed to create mock: %v", err)
			}
			defer db.Close()

			mock.ExpectExec(`UPDATE alert_rules`).
				WithArgs("Max drawdown", true, 15.0, "percent", models.AlertSeverityCritical, sqlmock.AnyArg(), "drawdown").
				WillReturnResult(sqlmock.NewResult(0, tt.rowsAffected))

			repo := NewAlertRepository(db)
			rule := &models.AlertRule{
				ID:            "drawdown",
				Name:          "Max drawdown",
				Enabled:       true,
				Threshold:     15.0,
				ThresholdUnit: "percent",
				Severity:      models.AlertSeverityCritical,
			}

			err = repo.UpdateRule(rule)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if rule.UpdatedAt.IsZero() {
				t.Error("UpdateRule should stamp updated_at")
			}
		})
	}
}

func TestAlertRepositoryGetChannels(t *testing.T) {
	now := time.Now()

	db, mock, _ := sqlmock.New()
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "type", "enabled", "config", "updated_at"}).
		AddRow("c1", models.ChannelTypeSlack, true, "ZW5jcnlwdGVk", now)
	mock.ExpectQuery(`SELECT .+ FROM notification_channels ORDER BY type`).
		WillReturnRows(rows)

	repo := NewAlertRepository(db)
	channels, err := repo.GetChannels()
	if err != nil {
		t.Fatalf("GetChannels failed: %v", err)
	}

	if len(channels) != 1 {
		t.Fatalf("expected 1 channel, got %d", len(channels))
	}
	if channels[0].Type != models.ChannelTypeSlack {
		t.Errorf("unexpected channel type: %s", channels[0].Type)
	}
}

func TestAlertRepositoryUpdateChannel(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	mock.ExpectExec(`UPDATE notification_channels`).
		WithArgs(false, "bmV3LXNlY3JldA", sqlmock.AnyArg(), "c1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewAlertRepository(db)
	channel := &models.NotificationChannel{
		ID:      "c1",
		Type:    models.ChannelTypeDiscord,
		Enabled: false,
		Config:  "bmV3LXNlY3JldA",
	}

	if err := repo.UpdateChannel(channel); err != nil {
		t.Fatalf("UpdateChannel failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAlertRepositoryCreateAlert(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	mock.ExpectExec(`INSERT INTO alerts`).
		WithArgs(sqlmock.AnyArg(), "drawdown", models.AlertSeverityCritical, "drawdown 12% exceeds 10%", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewAlertRepository(db)
	alert := &models.Alert{
		RuleID:   "drawdown",
		Severity: models.AlertSeverityCritical,
		Message:  "drawdown 12% exceeds 10%",
	}

	if err := repo.CreateAlert(alert); err != nil {
		t.Fatalf("CreateAlert failed: %v", err)
	}
	if alert.ID == "" {
		t.Error("CreateAlert should fill in generated id")
	}
}

func TestAlertRepositoryAcknowledgeAlert(t *testing.T) {
	tests := []struct {
		name      string
		mockSetup func(mock sqlmock.Sqlmock)
		wantErr   error
	}{
		{
			name: "acknowledges pending alert",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE alerts`).
					WithArgs("u1", sqlmock.AnyArg(), "al1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			wantErr: nil,
		},
		{
			name: "already acknowledged is idempotent",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE alerts`).
					WillReturnResult(sqlmock.NewResult(0, 0))
				rows := sqlmock.NewRows([]string{"exists"}).AddRow(true)
				mock.ExpectQuery(`SELECT EXISTS`).WillReturnRows(rows)
			},
			wantErr: nil,
		},
		{
			name: "not found",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE alerts`).
					WillReturnResult(sqlmock.NewResult(0, 0))
				rows := sqlmock.NewRows([]string{"exists"}).AddRow(false)
				mock.ExpectQuery(`SELECT EXISTS`).WillReturnRows(rows)
			},
			wantErr: ErrAlertNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("failed to create mock: %v", err)
			}
			defer db.Close()

			tt.mockSetup(mock)

			repo := NewAlertRepository(db)
			err = repo.AcknowledgeAlert("al1", "u1")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAlertRepositoryUpdateChannelNotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	mock.ExpectExec(`UPDATE notification_channels`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewAlertRepository(db)
	err := repo.UpdateChannel(&models.NotificationChannel{ID: "missing"})
	if !errors.Is(err, ErrChannelNotFound) {
		t.Errorf("expected ErrChannelNotFound, got %v", err)
	}
}
