package model

import "time"

// SyncLog is an audit record of one batch sync run (append-only).
type SyncLog struct {
	ID             string      `bson:"_id,omitempty" json:"id"`
	TenantID       string      `bson:"tenant_id" json:"tenant_id"`
	AcademicYearID string      `bson:"academic_year_id,omitempty" json:"academic_year_id,omitempty"`
	Mode           string      `bson:"mode" json:"mode"` // explicit, all_grades
	TargetCount    int         `bson:"target_count" json:"target_count"`
	Created        int         `bson:"created" json:"created"`
	Updated        int         `bson:"updated" json:"updated"`
	ErrorCount     int         `bson:"error_count" json:"error_count"`
	Errors         []ItemError `bson:"errors,omitempty" json:"errors,omitempty"`
	RequestID      string      `bson:"request_id,omitempty" json:"request_id,omitempty"`
	CreatedAt      time.Time   `bson:"created_at" json:"created_at"`
}
