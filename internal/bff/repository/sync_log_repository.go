package repository

import (
	"context"
	"time"

	"schoolbff/internal/bff/model"

	"github.com/google/uuid"
)

// SyncLogRepository stores the audit trail of batch sync runs.
type SyncLogRepository interface {
	// CreateSyncLog appends one record
	CreateSyncLog(ctx context.Context, log *model.SyncLog) error
	// FindSyncLogs returns one page of a tenant's records, newest first, and the total count
	FindSyncLogs(ctx context.Context, req model.GetSyncLogsReq) ([]*model.SyncLog, int64, error)
	// EnsureSyncLogIndexes creates indexes for the tenant queries
	EnsureSyncLogIndexes(ctx context.Context) error
}

// SyncLogEntry is a helper struct for creating sync log records
type SyncLogEntry struct {
	TenantID       string
	AcademicYearID string
	Mode           string
	TargetCount    int
	Result         model.BatchResult
	RequestID      string
}

// ToSyncLog converts SyncLogEntry to SyncLog with a fresh id and timestamp
func (e *SyncLogEntry) ToSyncLog() *model.SyncLog {
	return &model.SyncLog{
		ID:             uuid.NewString(),
		TenantID:       e.TenantID,
		AcademicYearID: e.AcademicYearID,
		Mode:           e.Mode,
		TargetCount:    e.TargetCount,
		Created:        e.Result.Created,
		Updated:        e.Result.Updated,
		ErrorCount:     len(e.Result.Errors),
		Errors:         e.Result.Errors,
		RequestID:      e.RequestID,
		CreatedAt:      time.Now().UTC(),
	}
}

// NoopSyncLogRepository is used when no database is configured. Nothing is
// stored and every query answers with an empty page.
type NoopSyncLogRepository struct{}

func (NoopSyncLogRepository) CreateSyncLog(context.Context, *model.SyncLog) error { return nil }

func (NoopSyncLogRepository) FindSyncLogs(context.Context, model.GetSyncLogsReq) ([]*model.SyncLog, int64, error) {
	return []*model.SyncLog{}, 0, nil
}

func (NoopSyncLogRepository) EnsureSyncLogIndexes(context.Context) error { return nil }
