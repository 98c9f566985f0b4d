package model

import "strings"

// CriterionKey is the composite business key of a promotion criterion.
type CriterionKey struct {
	AcademicYearID string `json:"academic_year_id" validate:"required,max=64"`
	GradeID        string `json:"grade_id" validate:"required,max=64"`
}

func (k *CriterionKey) Validate() error {
	k.AcademicYearID = strings.TrimSpace(k.AcademicYearID)
	k.GradeID = strings.TrimSpace(k.GradeID)

	if err := GetValidator().Struct(k); err != nil {
		return FormatValidationError(err)
	}
	return nil
}
