package model

import (
	"net/url"
	"strings"
)

// ListCriteriaReq is the query of GET /academics/promotions/criteria.
type ListCriteriaReq struct {
	AcademicYearID string `query:"academic_year_id" validate:"omitempty,max=64"`
	GradeID        string `query:"grade_id" validate:"omitempty,max=64"`
}

func (r *ListCriteriaReq) Validate() error {
	r.AcademicYearID = strings.TrimSpace(r.AcademicYearID)
	r.GradeID = strings.TrimSpace(r.GradeID)

	if err := GetValidator().Struct(r); err != nil {
		return FormatValidationError(err)
	}
	return nil
}

// FansOut reports whether the listing has to be assembled per grade.
func (r *ListCriteriaReq) FansOut() bool {
	return r.AcademicYearID != "" && r.GradeID == ""
}

// Query renders the request as upstream query parameters.
func (r *ListCriteriaReq) Query() url.Values {
	q := url.Values{}
	if r.AcademicYearID != "" {
		q.Set(FieldAcademicYearID, r.AcademicYearID)
	}
	if r.GradeID != "" {
		q.Set(FieldGradeID, r.GradeID)
	}
	return q
}
