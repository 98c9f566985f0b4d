package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"schoolbff/internal/bff/model"

	"github.com/tidwall/gjson"
)

const (
	pathTenantByDomain = "/tenants/by-domain"
	pathGrades         = "/academics/grades"
	pathCriteria       = "/academics/promotions/criteria"
)

func criterionPath(id string) string {
	return pathCriteria + "/" + url.PathEscape(id)
}

// LookupTenantByDomain asks the upstream which tenant owns domain and returns
// the first record's id, or "" when there is none. No tenant header is sent.
func (c *Client) LookupTenantByDomain(ctx context.Context, creds model.Credentials, domain string) (string, error) {
	resp, err := c.Do(ctx, creds, Call{
		Method:        http.MethodGet,
		Path:          pathTenantByDomain,
		Query:         url.Values{"domain": {domain}},
		Timeout:       c.budgets.Read,
		WithoutTenant: true,
	})
	if err != nil {
		return "", err
	}
	return FirstID(resp.Body), nil
}

// ListActiveGrades returns the ids of the tenant's active grades in upstream order.
func (c *Client) ListActiveGrades(ctx context.Context, creds model.Credentials) ([]string, error) {
	resp, err := c.Do(ctx, creds, Call{
		Method:  http.MethodGet,
		Path:    pathGrades,
		Query:   url.Values{"is_active": {"true"}},
		Timeout: c.budgets.Heavy,
	})
	if err != nil {
		return nil, err
	}

	records := Records(resp.Body)
	ids := make([]string, 0, len(records))
	for _, r := range records {
		if id := RecordID(r); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ListCriteria forwards a criteria query and returns the raw upstream answer.
func (c *Client) ListCriteria(ctx context.Context, creds model.Credentials, query url.Values) (*Response, error) {
	return c.Do(ctx, creds, Call{
		Method:  http.MethodGet,
		Path:    pathCriteria,
		Query:   query,
		Timeout: c.budgets.Heavy,
	})
}

// FindCriteria runs a criteria query and returns the matching records.
func (c *Client) FindCriteria(ctx context.Context, creds model.Credentials, query url.Values) ([]json.RawMessage, error) {
	resp, err := c.ListCriteria(ctx, creds, query)
	if err != nil {
		return nil, err
	}
	return rawRecords(Records(resp.Body)), nil
}

// FindCriterionID returns the id of the criterion stored under key, or "".
func (c *Client) FindCriterionID(ctx context.Context, creds model.Credentials, key model.CriterionKey) (string, error) {
	resp, err := c.ListCriteria(ctx, creds, url.Values{
		model.FieldAcademicYearID: {key.AcademicYearID},
		model.FieldGradeID:        {key.GradeID},
	})
	if err != nil {
		return "", err
	}
	for _, r := range Records(resp.Body) {
		if matches(r, model.FieldAcademicYearID, key.AcademicYearID) && matches(r, model.FieldGradeID, key.GradeID) {
			return RecordID(r), nil
		}
	}
	return "", nil
}

// matches is false only when the record states a different value for field.
func matches(record gjson.Result, field, want string) bool {
	v := record.Get(field)
	return !v.Exists() || v.String() == want
}

func (c *Client) GetCriterion(ctx context.Context, creds model.Credentials, id string) (*Response, error) {
	return c.Do(ctx, creds, Call{
		Method:  http.MethodGet,
		Path:    criterionPath(id),
		Timeout: c.budgets.Read,
	})
}

func (c *Client) CreateCriterion(ctx context.Context, creds model.Credentials, payload []byte) (*Response, error) {
	return c.Do(ctx, creds, Call{
		Method:  http.MethodPost,
		Path:    pathCriteria,
		Body:    payload,
		Timeout: c.budgets.Heavy,
	})
}

func (c *Client) UpdateCriterion(ctx context.Context, creds model.Credentials, id string, payload []byte) (*Response, error) {
	return c.Do(ctx, creds, Call{
		Method:  http.MethodPut,
		Path:    criterionPath(id),
		Body:    payload,
		Timeout: c.budgets.Update,
	})
}

func (c *Client) DeleteCriterion(ctx context.Context, creds model.Credentials, id string) (*Response, error) {
	return c.Do(ctx, creds, Call{
		Method:  http.MethodDelete,
		Path:    criterionPath(id),
		Timeout: c.budgets.Read,
	})
}
