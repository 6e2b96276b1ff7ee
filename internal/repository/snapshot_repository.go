package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"dashboard/internal/models"
)

// Ошибки репозитория снапшотов конфигурации
var (
	ErrSnapshotNotFound = errors.New("config snapshot not found")
)

// SnapshotRepository - работа с таблицей config_snapshots
//
// Снапшоты immutable: только INSERT и чтение. При создании нового
// активного снапшота предыдущий активный того же типа деактивируется
// в той же транзакции. Удаление - внешняя retention policy.
//
// Схема:
//
//	CREATE TABLE config_snapshots (
//	    id          UUID PRIMARY KEY,
//	    config_type TEXT NOT NULL,
//	    config_data JSONB NOT NULL,
//	    created_by  TEXT NOT NULL,
//	    is_active   BOOLEAN NOT NULL DEFAULT TRUE,
//	    created_at  TIMESTAMPTZ NOT NULL
//	)
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository создает новый экземпляр репозитория
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Create сохраняет новый активный снапшот, деактивируя предыдущий
// активный снапшот того же configType
func (r *SnapshotRepository) Create(configType string, configData json.RawMessage, createdBy string) (*models.ConfigSnapshot, error) {
	snapshot := &models.ConfigSnapshot{
		ID:         uuid.New().String(),
		ConfigType: configType,
		ConfigData: configData,
		CreatedBy:  createdBy,
		IsActive:   true,
		CreatedAt:  time.Now(),
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`UPDATE config_snapshots SET is_active = FALSE WHERE config_type = $1 AND is_active = TRUE`,
		configType,
	)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(
		`INSERT INTO config_snapshots (id, config_type, config_data, created_by, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		snapshot.ID,
		snapshot.ConfigType,
		[]byte(snapshot.ConfigData),
		snapshot.CreatedBy,
		snapshot.IsActive,
		snapshot.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return snapshot, nil
}

// GetActive возвращает активный снапшот указанного типа
func (r *SnapshotRepository) GetActive(configType string) (*models.ConfigSnapshot, error) {
	query := `
		SELECT id, config_type, config_data, created_by, is_active, created_at
		FROM config_snapshots
		WHERE config_type = $1 AND is_active = TRUE`

	return r.scanOne(r.db.QueryRow(query, configType))
}

// GetHistory возвращает историю снапшотов типа, новые первыми
func (r *SnapshotRepository) GetHistory(configType string, limit int) ([]*models.ConfigSnapshot, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, config_type, config_data, created_by, is_active, created_at
		FROM config_snapshots
		WHERE config_type = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(query, configType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := make([]*models.ConfigSnapshot, 0)
	for rows.Next() {
		snapshot := &models.ConfigSnapshot{}
		var data []byte
		err := rows.Scan(
			&snapshot.ID,
			&snapshot.ConfigType,
			&data,
			&snapshot.CreatedBy,
			&snapshot.IsActive,
			&snapshot.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		snapshot.ConfigData = json.RawMessage(data)
		snapshots = append(snapshots, snapshot)
	}

	return snapshots, rows.Err()
}

// scanOne сканирует одну строку снапшота
func (r *SnapshotRepository) scanOne(row *sql.Row) (*models.ConfigSnapshot, error) {
	snapshot := &models.ConfigSnapshot{}
	var data []byte
	err := row.Scan(
		&snapshot.ID,
		&snapshot.ConfigType,
		&data,
		&snapshot.CreatedBy,
		&snapshot.IsActive,
		&snapshot.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}
	snapshot.ConfigData = json.RawMessage(data)
	return snapshot, nil
}
