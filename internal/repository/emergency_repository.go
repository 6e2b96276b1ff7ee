package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"dashboard/internal/models"
)

// Ошибки репозитория аварийных действий
var (
	ErrEmergencyActionNotFound = errors.New("emergency action not found")
	// ErrAlreadyFinalized - попытка повторного перевода из pending:
	// переход pending -> completed|failed допустим ровно один раз
	ErrAlreadyFinalized = errors.New("emergency action already finalized")
)

// EmergencyRepository - работа с таблицей emergency_actions
//
// Схема:
//
//	CREATE TABLE emergency_actions (
//	    id           UUID PRIMARY KEY,
//	    action_type  TEXT NOT NULL,
//	    triggered_by TEXT NOT NULL,
//	    reason       TEXT NOT NULL DEFAULT '',
//	    status       TEXT NOT NULL,
//	    result       JSONB,
//	    created_at   TIMESTAMPTZ NOT NULL,
//	    completed_at TIMESTAMPTZ
//	)
type EmergencyRepository struct {
	db *sql.DB
}

// NewEmergencyRepository создает новый экземпляр репозитория
func NewEmergencyRepository(db *sql.DB) *EmergencyRepository {
	return &EmergencyRepository{db: db}
}

// CreatePending создает запись аварийного действия со статусом pending.
// Вызывается ДО обращения к оркестратору: если insert не удался,
// действие не должно отправляться вообще.
func (r *EmergencyRepository) CreatePending(actionType, triggeredBy, reason string) (*models.EmergencyAction, error) {
	action := &models.EmergencyAction{
		ID:          uuid.New().String(),
		ActionType:  actionType,
		TriggeredBy: triggeredBy,
		Reason:      reason,
		Status:      models.EmergencyStatusPending,
		CreatedAt:   time.Now(),
	}

	query := `
		INSERT INTO emergency_actions (id, action_type, triggered_by, reason, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(query,
		action.ID,
		action.ActionType,
		action.TriggeredBy,
		action.Reason,
		action.Status,
		action.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return action, nil
}

// Finalize переводит запись из pending в completed или failed.
// WHERE status = 'pending' гарантирует exactly-once: повторный
// вызов не перезапишет уже финализированную запись.
func (r *EmergencyRepository) Finalize(id, status string, result json.RawMessage) error {
	if status != models.EmergencyStatusCompleted && status != models.EmergencyStatusFailed {
		return errors.New("finalize status must be completed or failed")
	}

	query := `
		UPDATE emergency_actions
		SET status = $1, result = $2, completed_at = $3
		WHERE id = $4 AND status = $5`

	res, err := r.db.Exec(query, status, []byte(result), time.Now(), id, models.EmergencyStatusPending)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		// Либо записи нет, либо она уже финализирована
		exists, err := r.exists(id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrEmergencyActionNotFound
		}
		return ErrAlreadyFinalized
	}

	return nil
}

// GetByID возвращает запись по id
func (r *EmergencyRepository) GetByID(id string) (*models.EmergencyAction, error) {
	query := `
		SELECT id, action_type, triggered_by, reason, status, result, created_at, completed_at
		FROM emergency_actions
		WHERE id = $1`

	action := &models.EmergencyAction{}
	var result []byte
	err := r.db.QueryRow(query, id).Scan(
		&action.ID,
		&action.ActionType,
		&action.TriggeredBy,
		&action.Reason,
		&action.Status,
		&result,
		&action.CreatedAt,
		&action.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEmergencyActionNotFound
		}
		return nil, err
	}

	action.Result = json.RawMessage(result)
	return action, nil
}

// GetRecent возвращает последние записи, новые первыми
func (r *EmergencyRepository) GetRecent(limit int) ([]*models.EmergencyAction, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, action_type, triggered_by, reason, status, result, created_at, completed_at
		FROM emergency_actions
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	actions := make([]*models.EmergencyAction, 0)
	for rows.Next() {
		action := &models.EmergencyAction{}
		var result []byte
		err := rows.Scan(
			&action.ID,
			&action.ActionType,
			&action.TriggeredBy,
			&action.Reason,
			&action.Status,
			&result,
			&action.CreatedAt,
			&action.CompletedAt,
		)
		if err != nil {
			return nil, err
		}
		action.Result = json.RawMessage(result)
		actions = append(actions, action)
	}

	return actions, rows.Err()
}

// exists проверяет наличие записи
func (r *EmergencyRepository) exists(id string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM emergency_actions WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}
