package model

// Batch submission modes
const (
	SyncModeSingle    = "single"
	SyncModeExplicit  = "explicit"
	SyncModeAllGrades = "all_grades"
)

// Item outcomes
const (
	OutcomeCreated = "created"
	OutcomeUpdated = "updated"
	OutcomeError   = "error"
)

// Criterion payload field names shared with the upstream service.
const (
	FieldAcademicYearID = "academic_year_id"
	FieldGradeID        = "grade_id"
	FieldID             = "id"
)

// Outbound and tracing headers
const (
	HeaderTenantID = "X-Tenant-ID"
)
