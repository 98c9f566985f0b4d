package service

import (
	"context"
	"time"

	"schoolbff/internal/bff/repository"
)

const syncLogWriteTimeout = 5 * time.Second

// recordSyncLog stores the audit record asynchronously (fire-and-forget).
func (s *Service) recordSyncLog(entry repository.SyncLogEntry) {
	if s.SyncLogRepo == nil {
		return
	}
	log := entry.ToSyncLog()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), syncLogWriteTimeout)
		defer cancel()
		if err := s.SyncLogRepo.CreateSyncLog(ctx, log); err != nil {
			s.logger.Warn("failed to record sync log", "error", err, "request_id", log.RequestID)
		}
	}()
}
