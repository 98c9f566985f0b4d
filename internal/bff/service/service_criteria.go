package service

import (
	"context"
	"encoding/json"
	"net/http"

	"schoolbff/internal/bff/batch"
	"schoolbff/internal/bff/client"
	"schoolbff/internal/bff/model"
	"schoolbff/internal/bff/repository"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var (
	errBodyNotJSON = &model.ErrorResponse{Code: "bad_request", Message: "Request body must be a JSON object or array"}
	errYearMissing = &model.ErrorResponse{Code: "bad_request", Message: "academic_year_id is required"}
)

// Submit picks the mode from the body shape: an array is an explicit batch,
// an object with both ids a single upsert, and an object with only
// academic_year_id a template applied to every active grade.
func (s *Service) Submit(ctx context.Context, creds model.Credentials, body []byte) (*SubmitResult, error) {
	if !gjson.ValidBytes(body) {
		return nil, errBodyNotJSON
	}
	root := gjson.ParseBytes(body)

	switch {
	case root.IsArray():
		return s.syncExplicit(ctx, creds, root)
	case root.IsObject():
		key := keyOf(root)
		switch {
		case key.AcademicYearID == "":
			return nil, errYearMissing
		case key.GradeID == "":
			return s.syncAllGrades(ctx, creds, key.AcademicYearID, body)
		default:
			return s.upsertOne(ctx, creds, key, body)
		}
	}
	return nil, errBodyNotJSON
}

func keyOf(record gjson.Result) model.CriterionKey {
	return model.CriterionKey{
		AcademicYearID: record.Get(model.FieldAcademicYearID).String(),
		GradeID:        record.Get(model.FieldGradeID).String(),
	}
}

// upsertOne keeps (academic_year_id, grade_id) unique by updating the
// existing record when there is one. Errors are returned to the caller as is.
func (s *Service) upsertOne(ctx context.Context, creds model.Credentials, key model.CriterionKey, body []byte) (*SubmitResult, error) {
	id, err := s.Upstream.FindCriterionID(ctx, creds, key)
	if err != nil {
		return nil, err
	}

	var resp *client.Response
	if id != "" {
		resp, err = s.Upstream.UpdateCriterion(ctx, creds, id, body)
	} else {
		resp, err = s.Upstream.CreateCriterion(ctx, creds, body)
	}
	if err != nil {
		return nil, err
	}
	return &SubmitResult{Mode: model.SyncModeSingle, Upstream: resp}, nil
}

func (s *Service) syncExplicit(ctx context.Context, creds model.Credentials, items gjson.Result) (*SubmitResult, error) {
	elems := items.Array()
	targets := make([]Target, 0, len(elems))
	for _, e := range elems {
		t := Target{Payload: []byte(e.Raw)}
		if e.IsObject() {
			t.Key = keyOf(e)
		}
		targets = append(targets, t)
	}

	result := s.Orchestrator.Sync(ctx, newUpstreamStore(s.Upstream, creds), targets)
	s.recordSyncLog(repository.SyncLogEntry{
		TenantID:       creds.TenantID,
		AcademicYearID: commonYear(targets),
		Mode:           model.SyncModeExplicit,
		TargetCount:    len(targets),
		Result:         result,
		RequestID:      creds.RequestID,
	})
	return &SubmitResult{Mode: model.SyncModeExplicit, Batch: &result}, nil
}

// syncAllGrades applies template to every active grade. Failing to list the
// grades fails the whole request.
func (s *Service) syncAllGrades(ctx context.Context, creds model.Credentials, academicYearID string, template []byte) (*SubmitResult, error) {
	grades, err := s.Upstream.ListActiveGrades(ctx, creds)
	if err != nil {
		return nil, err
	}

	base, err := sjson.DeleteBytes(template, model.FieldID)
	if err != nil {
		return nil, errBodyNotJSON
	}

	targets := make([]Target, 0, len(grades))
	for _, gradeID := range grades {
		payload, err := sjson.SetBytes(base, model.FieldGradeID, gradeID)
		if err == nil {
			payload, err = sjson.SetBytes(payload, model.FieldAcademicYearID, academicYearID)
		}
		if err != nil {
			return nil, err
		}
		targets = append(targets, Target{
			Key:     model.CriterionKey{AcademicYearID: academicYearID, GradeID: gradeID},
			Payload: payload,
		})
	}

	result := s.Orchestrator.Sync(ctx, newUpstreamStore(s.Upstream, creds), targets)
	s.logger.Info("applied criteria to all grades",
		"academic_year_id", academicYearID,
		"grades", len(grades),
		"created", result.Created,
		"updated", result.Updated,
		"errors", len(result.Errors),
		"request_id", creds.RequestID,
	)
	s.recordSyncLog(repository.SyncLogEntry{
		TenantID:       creds.TenantID,
		AcademicYearID: academicYearID,
		Mode:           model.SyncModeAllGrades,
		TargetCount:    len(targets),
		Result:         result,
		RequestID:      creds.RequestID,
	})
	return &SubmitResult{Mode: model.SyncModeAllGrades, Batch: &result}, nil
}

// commonYear is the academic year shared by every target, or "".
func commonYear(targets []Target) string {
	if len(targets) == 0 {
		return ""
	}
	year := targets[0].Key.AcademicYearID
	for _, t := range targets[1:] {
		if t.Key.AcademicYearID != year {
			return ""
		}
	}
	return year
}

// List passes the query through, except for a query by academic year alone,
// which is answered by querying every active grade of that year.
func (s *Service) List(ctx context.Context, creds model.Credentials, req model.ListCriteriaReq) (*client.Response, error) {
	if !req.FansOut() {
		return s.Upstream.ListCriteria(ctx, creds, req.Query())
	}

	grades, err := s.Upstream.ListActiveGrades(ctx, creds)
	if err != nil {
		return nil, err
	}

	perGrade := batch.Map(ctx, grades, s.Orchestrator.ChunkSize(), func(ctx context.Context, gradeID string) ([]json.RawMessage, error) {
		q := model.ListCriteriaReq{AcademicYearID: req.AcademicYearID, GradeID: gradeID}
		return s.Upstream.FindCriteria(ctx, creds, q.Query())
	})

	records := []json.RawMessage{}
	for i, o := range perGrade {
		if o.Err != nil {
			s.logger.Warn("skipping grade in criteria listing",
				"grade_id", grades[i], "error", o.Err, "request_id", creds.RequestID)
			continue
		}
		records = append(records, o.Value...)
	}

	body, err := json.Marshal(records)
	if err != nil {
		return nil, err
	}
	return &client.Response{
		Status: http.StatusOK,
		Header: http.Header{"Content-Type": {"application/json"}},
		Body:   body,
	}, nil
}

func (s *Service) Get(ctx context.Context, creds model.Credentials, id string) (*client.Response, error) {
	return s.Upstream.GetCriterion(ctx, creds, id)
}

func (s *Service) Update(ctx context.Context, creds model.Credentials, id string, body []byte) (*client.Response, error) {
	return s.Upstream.UpdateCriterion(ctx, creds, id, body)
}

func (s *Service) Delete(ctx context.Context, creds model.Credentials, id string) (*client.Response, error) {
	return s.Upstream.DeleteCriterion(ctx, creds, id)
}

func (s *Service) GetSyncLogs(ctx context.Context, req model.GetSyncLogsReq) (*model.GetSyncLogsResp, error) {
	logs, total, err := s.SyncLogRepo.FindSyncLogs(ctx, req)
	if err != nil {
		return nil, err
	}
	return &model.GetSyncLogsResp{
		Data:       logs,
		Page:       req.Page,
		Size:       req.Size,
		TotalCount: total,
	}, nil
}
