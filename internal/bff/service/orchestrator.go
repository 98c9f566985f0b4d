package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"schoolbff/internal/bff/batch"
	"schoolbff/internal/bff/metrics"
	"schoolbff/internal/bff/model"
	"schoolbff/internal/bff/util"

	"github.com/tidwall/gjson"
)

var errDuplicateKey = errors.New("academic_year_id and grade_id repeat a later item in the batch")

// Target is one criterion to upsert.
type Target struct {
	Key     model.CriterionKey
	Payload []byte
}

// Orchestrator upserts many criteria with bounded concurrency. Every target
// yields exactly one outcome; a failing target never stops the others.
type Orchestrator struct {
	chunkSize int
	metrics   metrics.BatchMetrics
	logger    *slog.Logger
}

func NewOrchestrator(chunkSize int, m metrics.BatchMetrics) *Orchestrator {
	if chunkSize <= 0 {
		chunkSize = batch.DefaultChunkSize
	}
	if m == nil {
		m = metrics.Noop{}
	}
	return &Orchestrator{chunkSize: chunkSize, metrics: m, logger: util.GetLogger()}
}

func (o *Orchestrator) ChunkSize() int { return o.chunkSize }

// planned is a target with its key normalized. err is set when the target
// fails before reaching the upstream.
type planned struct {
	Target
	err error
}

type lookedUp struct {
	planned
	id string
}

// plan trims and validates every key. When a key repeats, only its last
// occurrence is written; the earlier ones fail with errDuplicateKey, so two
// writes for one key never race within a chunk.
func plan(targets []Target) []planned {
	out := make([]planned, len(targets))
	last := make(map[model.CriterionKey]int, len(targets))
	for i, t := range targets {
		out[i] = planned{Target: t}
		if err := out[i].Key.Validate(); err != nil {
			out[i].err = err
			continue
		}
		last[out[i].Key] = i
	}
	for i := range out {
		if out[i].err == nil && last[out[i].Key] != i {
			out[i].err = errDuplicateKey
		}
	}
	return out
}

// Sync processes targets chunk by chunk. Within a chunk every lookup runs
// concurrently, then every write; the next chunk starts after all writes of
// the current one have settled.
func (o *Orchestrator) Sync(ctx context.Context, store CriterionStore, targets []Target) model.BatchResult {
	result := model.BatchResult{Errors: []model.ItemError{}}

	for chunk := range slices.Chunk(plan(targets), o.chunkSize) {
		lookups := batch.Map(ctx, chunk, len(chunk), func(ctx context.Context, p planned) (string, error) {
			if p.err != nil {
				return "", p.err
			}
			return store.Lookup(ctx, p.Key)
		})

		found := make([]lookedUp, len(chunk))
		for i, p := range chunk {
			found[i] = lookedUp{planned: planned{Target: p.Target, err: lookups[i].Err}, id: lookups[i].Value}
		}

		writes := batch.Map(ctx, found, len(found), func(ctx context.Context, l lookedUp) (string, error) {
			if l.err != nil {
				return "", l.err
			}
			if l.id != "" {
				return model.OutcomeUpdated, store.Update(ctx, l.id, l.Payload)
			}
			return model.OutcomeCreated, store.Insert(ctx, l.Payload)
		})

		for i, w := range writes {
			o.record(&result, chunk[i].Target, w)
		}
	}
	return result
}

func (o *Orchestrator) record(result *model.BatchResult, t Target, w batch.Outcome[string]) {
	if w.Err == nil {
		switch w.Value {
		case model.OutcomeUpdated:
			result.Updated++
		default:
			result.Created++
		}
		o.metrics.IncBatchItem(w.Value)
		return
	}

	item := itemError(t.Key.GradeID, w.Err)
	result.Errors = append(result.Errors, item)
	o.metrics.IncBatchItem(model.OutcomeError)
	o.logger.Warn("batch item failed",
		"academic_year_id", t.Key.AcademicYearID,
		"grade_id", t.Key.GradeID,
		"status", item.Status,
		"error", w.Err,
	)
}

func itemError(gradeID string, err error) model.ItemError {
	item := model.ItemError{Status: http.StatusInternalServerError, Message: "Internal server error"}
	if gradeID != "" {
		item.GradeID = &gradeID
	}

	var upErr *model.UpstreamError
	var invalid *model.ErrorResponse
	switch {
	case errors.As(err, &upErr):
		item.Status = upErr.Status
		item.Message = upstreamMessage(upErr.Body)
	case errors.Is(err, model.ErrUpstreamTimeout):
		item.Status = http.StatusGatewayTimeout
		item.Message = "Upstream timeout"
	case errors.Is(err, model.ErrUpstreamUnavailable):
		item.Status = http.StatusBadGateway
		item.Message = "Upstream unavailable"
	case errors.As(err, &invalid):
		item.Status = http.StatusBadRequest
		item.Message = invalid.Message
	case errors.Is(err, errDuplicateKey):
		item.Status = http.StatusConflict
		item.Message = errDuplicateKey.Error()
	}
	return item
}

// upstreamMessage picks a human readable message out of an upstream error body.
func upstreamMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	for _, path := range []string{"message", "detail", "error"} {
		if v := gjson.GetBytes(body, path); v.Type == gjson.String {
			return v.String()
		}
	}
	return ""
}
