package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"dashboard/internal/models"
)

// AuditRepository - работа с таблицей audit_log
//
// Журнал append-only: только INSERT и чтение, никаких UPDATE/DELETE.
//
// Схема:
//
//	CREATE TABLE audit_log (
//	    id         UUID PRIMARY KEY,
//	    user_id    TEXT NOT NULL,
//	    action     TEXT NOT NULL,
//	    resource   TEXT NOT NULL,
//	    details    JSONB,
//	    ip_address TEXT NOT NULL DEFAULT '',
//	    user_agent TEXT NOT NULL DEFAULT '',
//	    created_at TIMESTAMPTZ NOT NULL
//	)
type AuditRepository struct {
	db *sql.DB
}

// NewAuditRepository создает новый экземпляр репозитория
func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create добавляет запись в журнал аудита
func (r *AuditRepository) Create(entry *models.AuditLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO audit_log (id, user_id, action, resource, details, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(query,
		entry.ID,
		entry.UserID,
		entry.Action,
		entry.Resource,
		[]byte(entry.Details),
		entry.IPAddress,
		entry.UserAgent,
		entry.CreatedAt,
	)
	return err
}

// AuditFilter - фильтры выборки журнала
type AuditFilter struct {
	UserID   string
	Resource string
	Limit    int
}

// List возвращает записи журнала по фильтру, новые первыми
func (r *AuditRepository) List(filter AuditFilter) ([]*models.AuditLogEntry, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `
		SELECT id, user_id, action, resource, details, ip_address, user_agent, created_at
		FROM audit_log
		WHERE ($1 = '' OR user_id = $1)
		  AND ($2 = '' OR resource = $2)
		ORDER BY created_at DESC
		LIMIT $3`

	rows, err := r.db.Query(query, filter.UserID, filter.Resource, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*models.AuditLogEntry, 0)
	for rows.Next() {
		entry := &models.AuditLogEntry{}
		var details []byte
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Action,
			&entry.Resource,
			&details,
			&entry.IPAddress,
			&entry.UserAgent,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		entry.Details = json.RawMessage(details)
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Count возвращает количество записей в журнале
func (r *AuditRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM audit_log`).Scan(&count)
	return count, err
}
