package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"schoolbff/internal/bff/client"
	"schoolbff/internal/bff/handler"
	"schoolbff/internal/bff/model"
	"schoolbff/internal/bff/service"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
)

const tenantUUID = "3f2b8c1e-9d4a-4c1b-8e2f-1a2b3c4d5e6f"

var testCreds = model.Credentials{TenantID: tenantUUID, AccessToken: "tok", RequestID: "req-1"}

type MockCriteriaService struct {
	mock.Mock
}

func (m *MockCriteriaService) Submit(ctx context.Context, creds model.Credentials, body []byte) (*service.SubmitResult, error) {
	args := m.Called(ctx, creds, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SubmitResult), args.Error(1)
}

func (m *MockCriteriaService) List(ctx context.Context, creds model.Credentials, req model.ListCriteriaReq) (*client.Response, error) {
	args := m.Called(ctx, creds, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Response), args.Error(1)
}

func (m *MockCriteriaService) Get(ctx context.Context, creds model.Credentials, id string) (*client.Response, error) {
	args := m.Called(ctx, creds, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Response), args.Error(1)
}

func (m *MockCriteriaService) Update(ctx context.Context, creds model.Credentials, id string, body []byte) (*client.Response, error) {
	args := m.Called(ctx, creds, id, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Response), args.Error(1)
}

func (m *MockCriteriaService) Delete(ctx context.Context, creds model.Credentials, id string) (*client.Response, error) {
	args := m.Called(ctx, creds, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Response), args.Error(1)
}

func (m *MockCriteriaService) GetSyncLogs(ctx context.Context, req model.GetSyncLogsReq) (*model.GetSyncLogsResp, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GetSyncLogsResp), args.Error(1)
}

type MockNormalizer struct {
	mock.Mock
}

func (m *MockNormalizer) NormalizeCredentials(ctx context.Context, creds model.Credentials) (model.Credentials, error) {
	args := m.Called(ctx, creds)
	return args.Get(0).(model.Credentials), args.Error(1)
}

// withCredentials stands in for AuthMiddleware.
func withCredentials(creds model.Credentials) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(handler.ContextKeyCredentials, creds)
			return next(c)
		}
	}
}

func SetupServer(svc service.CriteriaService) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = handler.HTTPErrorHandler
	e.Use(handler.RequestIDMiddleware)

	h := handler.NewCriteriaHandler(svc)
	g := e.Group("/academics", withCredentials(testCreds))
	g.GET("/promotions/criteria/sync-logs", h.GetSyncLogs)
	g.GET("/promotions/criteria", h.GetCriteria)
	g.POST("/promotions/criteria", h.PostCriteria)
	g.GET("/promotions/criteria/:id", h.GetCriterion)
	g.PUT("/promotions/criteria/:id", h.PutCriterion)
	g.DELETE("/promotions/criteria/:id", h.DeleteCriterion)
	return e
}

func PerformRequest(e *echo.Echo, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func jsonResponse(status int, body string) *client.Response {
	return &client.Response{
		Status: status,
		Header: http.Header{"Content-Type": {"application/json"}},
		Body:   []byte(body),
	}
}
