package service

import (
	"context"
	"log/slog"

	"schoolbff/internal/bff/client"
	"schoolbff/internal/bff/model"
	"schoolbff/internal/bff/repository"
	"schoolbff/internal/bff/util"
)

// CriteriaService serves the promotion criteria routes for one resolved caller.
type CriteriaService interface {
	Submit(ctx context.Context, creds model.Credentials, body []byte) (*SubmitResult, error)
	List(ctx context.Context, creds model.Credentials, req model.ListCriteriaReq) (*client.Response, error)
	Get(ctx context.Context, creds model.Credentials, id string) (*client.Response, error)
	Update(ctx context.Context, creds model.Credentials, id string, body []byte) (*client.Response, error)
	Delete(ctx context.Context, creds model.Credentials, id string) (*client.Response, error)
	GetSyncLogs(ctx context.Context, req model.GetSyncLogsReq) (*model.GetSyncLogsResp, error)
}

// SubmitResult is either a batch summary or, for a single criterion, the
// upstream's own answer.
type SubmitResult struct {
	Mode     string
	Batch    *model.BatchResult
	Upstream *client.Response
}

type Service struct {
	Upstream     Upstream
	Orchestrator *Orchestrator
	SyncLogRepo  repository.SyncLogRepository
	logger       *slog.Logger
}

func NewService(upstream Upstream, orchestrator *Orchestrator, syncLogRepo repository.SyncLogRepository) *Service {
	if syncLogRepo == nil {
		syncLogRepo = repository.NoopSyncLogRepository{}
	}
	return &Service{
		Upstream:     upstream,
		Orchestrator: orchestrator,
		SyncLogRepo:  syncLogRepo,
		logger:       util.GetLogger(),
	}
}
