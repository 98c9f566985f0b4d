package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"

	"schoolbff/internal/bff/client"
	"schoolbff/internal/bff/model"

	"github.com/tidwall/gjson"
)

const tenantUUID = "3f2b8c1e-9d4a-4c1b-8e2f-1a2b3c4d5e6f"

var testCreds = model.Credentials{TenantID: tenantUUID, AccessToken: "tok", RequestID: "req-1"}

// fakeUpstream is an in-memory school service keyed by (year, grade).
type fakeUpstream struct {
	mu       sync.Mutex
	records  map[model.CriterionKey]string // key -> id
	payloads map[string][]byte             // id -> last payload
	nextID   int

	grades    []string
	gradesErr error
	// per grade failures injected into lookups, writes and listings
	lookupErr map[string]error
	writeErr  map[string]error
	panicOn   map[string]bool
	listErr   map[string]error

	inFlight, peak atomic.Int32
	inserts        atomic.Int32
	updates        atomic.Int32
	// number of completed inserts seen by each lookup, in call order
	lookupSaw []int32
}

func newFakeUpstream(grades ...string) *fakeUpstream {
	return &fakeUpstream{
		records:  map[model.CriterionKey]string{},
		payloads: map[string][]byte{},
		grades:    grades,
		lookupErr: map[string]error{},
		writeErr:  map[string]error{},
		panicOn:   map[string]bool{},
		listErr:   map[string]error{},
	}
}

func (f *fakeUpstream) enter() func() {
	n := f.inFlight.Add(1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	return func() { f.inFlight.Add(-1) }
}

func (f *fakeUpstream) LookupTenantByDomain(context.Context, model.Credentials, string) (string, error) {
	return tenantUUID, nil
}

func (f *fakeUpstream) ListActiveGrades(context.Context, model.Credentials) ([]string, error) {
	return f.grades, f.gradesErr
}

func (f *fakeUpstream) ListCriteria(ctx context.Context, creds model.Credentials, query url.Values) (*client.Response, error) {
	records, err := f.FindCriteria(ctx, creds, query)
	if err != nil {
		return nil, err
	}
	body, _ := json.Marshal(records)
	return &client.Response{Status: http.StatusOK, Header: http.Header{}, Body: body}, nil
}

func (f *fakeUpstream) FindCriteria(_ context.Context, _ model.Credentials, query url.Values) ([]json.RawMessage, error) {
	grade := query.Get(model.FieldGradeID)
	if err := f.listErr[grade]; err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []json.RawMessage
	for key, id := range f.records {
		if key.AcademicYearID == query.Get(model.FieldAcademicYearID) && (grade == "" || key.GradeID == grade) {
			out = append(out, f.payloads[id])
		}
	}
	return out, nil
}

func (f *fakeUpstream) FindCriterionID(_ context.Context, _ model.Credentials, key model.CriterionKey) (string, error) {
	defer f.enter()()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookupSaw = append(f.lookupSaw, f.inserts.Load())
	if err := f.lookupErr[key.GradeID]; err != nil {
		return "", err
	}
	return f.records[key], nil
}

func (f *fakeUpstream) GetCriterion(_ context.Context, _ model.Credentials, id string) (*client.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.payloads[id]
	if !ok {
		return nil, &model.UpstreamError{Status: http.StatusNotFound, Body: []byte(`{"message":"not found"}`)}
	}
	return &client.Response{Status: http.StatusOK, Header: http.Header{}, Body: body}, nil
}

func (f *fakeUpstream) failure(payload []byte) error {
	grade := gjson.GetBytes(payload, model.FieldGradeID).String()
	if f.panicOn[grade] {
		panic("upstream exploded for " + grade)
	}
	return f.writeErr[grade]
}

func (f *fakeUpstream) CreateCriterion(_ context.Context, _ model.Credentials, payload []byte) (*client.Response, error) {
	defer f.enter()()
	if err := f.failure(payload); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("c-%d", f.nextID)
	key := keyOf(gjson.ParseBytes(payload))
	f.records[key] = id
	stored, _ := json.Marshal(map[string]any{"id": id, "academic_year_id": key.AcademicYearID, "grade_id": key.GradeID})
	f.payloads[id] = stored
	f.inserts.Add(1)
	return &client.Response{Status: http.StatusCreated, Header: http.Header{}, Body: stored}, nil
}

func (f *fakeUpstream) UpdateCriterion(_ context.Context, _ model.Credentials, id string, payload []byte) (*client.Response, error) {
	defer f.enter()()
	if err := f.failure(payload); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads[id] = payload
	f.updates.Add(1)
	return &client.Response{Status: http.StatusOK, Header: http.Header{}, Body: payload}, nil
}

func (f *fakeUpstream) DeleteCriterion(_ context.Context, _ model.Credentials, id string) (*client.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.payloads, id)
	return &client.Response{Status: http.StatusNoContent, Header: http.Header{}}, nil
}

func gradeIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("g-%02d", i+1)
	}
	return ids
}

func targetsFor(year string, grades []string) []Target {
	targets := make([]Target, len(grades))
	for i, g := range grades {
		payload, _ := json.Marshal(map[string]string{"academic_year_id": year, "grade_id": g})
		targets[i] = Target{Key: model.CriterionKey{AcademicYearID: year, GradeID: g}, Payload: payload}
	}
	return targets
}
