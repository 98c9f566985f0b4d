package service

import (
	"context"
	"encoding/json"
	"net/url"

	"schoolbff/internal/bff/client"
	"schoolbff/internal/bff/model"
)

// Upstream is the part of the school service the gateway talks to.
// *client.Client implements it.
type Upstream interface {
	LookupTenantByDomain(ctx context.Context, creds model.Credentials, domain string) (string, error)
	ListActiveGrades(ctx context.Context, creds model.Credentials) ([]string, error)
	ListCriteria(ctx context.Context, creds model.Credentials, query url.Values) (*client.Response, error)
	FindCriteria(ctx context.Context, creds model.Credentials, query url.Values) ([]json.RawMessage, error)
	FindCriterionID(ctx context.Context, creds model.Credentials, key model.CriterionKey) (string, error)
	GetCriterion(ctx context.Context, creds model.Credentials, id string) (*client.Response, error)
	CreateCriterion(ctx context.Context, creds model.Credentials, payload []byte) (*client.Response, error)
	UpdateCriterion(ctx context.Context, creds model.Credentials, id string, payload []byte) (*client.Response, error)
	DeleteCriterion(ctx context.Context, creds model.Credentials, id string) (*client.Response, error)
}

// CriterionStore is what the orchestrator needs to upsert one criterion.
type CriterionStore interface {
	// Lookup returns the id stored under key, or "" when there is none.
	Lookup(ctx context.Context, key model.CriterionKey) (string, error)
	Insert(ctx context.Context, payload []byte) error
	Update(ctx context.Context, id string, payload []byte) error
}

// upstreamStore binds an Upstream to one caller's credentials.
type upstreamStore struct {
	upstream Upstream
	creds    model.Credentials
}

func newUpstreamStore(upstream Upstream, creds model.Credentials) upstreamStore {
	return upstreamStore{upstream: upstream, creds: creds}
}

func (s upstreamStore) Lookup(ctx context.Context, key model.CriterionKey) (string, error) {
	return s.upstream.FindCriterionID(ctx, s.creds, key)
}

func (s upstreamStore) Insert(ctx context.Context, payload []byte) error {
	_, err := s.upstream.CreateCriterion(ctx, s.creds, payload)
	return err
}

func (s upstreamStore) Update(ctx context.Context, id string, payload []byte) error {
	_, err := s.upstream.UpdateCriterion(ctx, s.creds, id, payload)
	return err
}
