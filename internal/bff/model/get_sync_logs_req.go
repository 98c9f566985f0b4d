package model

import (
	"strings"
	"time"
)

// GetSyncLogsReq queries the batch sync audit log of the caller's tenant.
type GetSyncLogsReq struct {
	// Set from the resolved credentials, never from the query string.
	TenantID string

	AcademicYearID string `query:"academic_year_id" validate:"omitempty,max=64"`
	Mode           string `query:"mode" validate:"omitempty,oneof=explicit all_grades"`

	StartTime *time.Time `query:"start_time"`
	EndTime   *time.Time `query:"end_time"`

	Page int `query:"page" validate:"omitempty,min=1"`
	Size int `query:"size" validate:"omitempty,min=1,max=500"`
}

func (r *GetSyncLogsReq) Validate() error {
	r.AcademicYearID = strings.TrimSpace(r.AcademicYearID)
	r.Mode = strings.ToLower(strings.TrimSpace(r.Mode))

	if r.Page <= 0 {
		r.Page = 1
	}
	if r.Size <= 0 {
		r.Size = 50
	}
	if r.Size > 500 {
		r.Size = 500
	}

	if err := GetValidator().Struct(r); err != nil {
		return FormatValidationError(err)
	}

	if r.StartTime != nil && r.EndTime != nil && r.EndTime.Before(*r.StartTime) {
		return &ErrorResponse{Code: "bad_request", Message: "end_time must not be before start_time"}
	}
	return nil
}

// GetSyncLogsResp is one page of sync logs.
type GetSyncLogsResp struct {
	Data       []*SyncLog `json:"data"`
	Page       int        `json:"page"`
	Size       int        `json:"size"`
	TotalCount int64      `json:"total_count"`
}
