package handler

import (
	"io"
	"net/http"
	"strings"

	"schoolbff/internal/bff/client"
	"schoolbff/internal/bff/model"
	"schoolbff/internal/bff/service"

	"github.com/labstack/echo/v4"
)

type CriteriaHandler struct {
	Service service.CriteriaService
}

func NewCriteriaHandler(s service.CriteriaService) *CriteriaHandler {
	return &CriteriaHandler{Service: s}
}

func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// writeUpstream relays an upstream answer unchanged.
func writeUpstream(c echo.Context, resp *client.Response) error {
	if len(resp.Body) == 0 {
		return c.NoContent(resp.Status)
	}
	return c.Blob(resp.Status, resp.ContentType(), resp.Body)
}

func readBody(c echo.Context) ([]byte, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, &model.ErrorResponse{Code: "bad_request", Message: "Invalid body"}
	}
	return body, nil
}

func criterionID(c echo.Context) (string, error) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return "", &model.ErrorResponse{Code: "bad_request", Message: "Criterion id required"}
	}
	return id, nil
}

// PostCriteria handles POST /academics/promotions/criteria
func (h *CriteriaHandler) PostCriteria(c echo.Context) error {
	creds, err := credentials(c)
	if err != nil {
		return writeError(c, err)
	}

	body, err := readBody(c)
	if err != nil {
		return writeError(c, err)
	}

	res, err := h.Service.Submit(c.Request().Context(), creds, body)
	if err != nil {
		return writeError(c, err)
	}

	if res.Batch != nil {
		return c.JSON(http.StatusOK, res.Batch)
	}
	return writeUpstream(c, res.Upstream)
}

// GetCriteria handles GET /academics/promotions/criteria
func (h *CriteriaHandler) GetCriteria(c echo.Context) error {
	creds, err := credentials(c)
	if err != nil {
		return writeError(c, err)
	}

	var req model.ListCriteriaReq
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Code: "bad_request", Message: "Invalid parameters", RequestID: requestID(c),
		})
	}

	if err := req.Validate(); err != nil {
		return writeError(c, err)
	}

	resp, err := h.Service.List(c.Request().Context(), creds, req)
	if err != nil {
		return writeError(c, err)
	}
	return writeUpstream(c, resp)
}

// GetCriterion handles GET /academics/promotions/criteria/:id
func (h *CriteriaHandler) GetCriterion(c echo.Context) error {
	creds, err := credentials(c)
	if err != nil {
		return writeError(c, err)
	}
	id, err := criterionID(c)
	if err != nil {
		return writeError(c, err)
	}

	resp, err := h.Service.Get(c.Request().Context(), creds, id)
	if err != nil {
		return writeError(c, err)
	}
	return writeUpstream(c, resp)
}

// PutCriterion handles PUT /academics/promotions/criteria/:id
func (h *CriteriaHandler) PutCriterion(c echo.Context) error {
	creds, err := credentials(c)
	if err != nil {
		return writeError(c, err)
	}
	id, err := criterionID(c)
	if err != nil {
		return writeError(c, err)
	}
	body, err := readBody(c)
	if err != nil {
		return writeError(c, err)
	}

	resp, err := h.Service.Update(c.Request().Context(), creds, id, body)
	if err != nil {
		return writeError(c, err)
	}
	return writeUpstream(c, resp)
}

// DeleteCriterion handles DELETE /academics/promotions/criteria/:id
func (h *CriteriaHandler) DeleteCriterion(c echo.Context) error {
	creds, err := credentials(c)
	if err != nil {
		return writeError(c, err)
	}
	id, err := criterionID(c)
	if err != nil {
		return writeError(c, err)
	}

	resp, err := h.Service.Delete(c.Request().Context(), creds, id)
	if err != nil {
		return writeError(c, err)
	}
	return writeUpstream(c, resp)
}

// GetSyncLogs handles GET /academics/promotions/criteria/sync-logs
func (h *CriteriaHandler) GetSyncLogs(c echo.Context) error {
	creds, err := credentials(c)
	if err != nil {
		return writeError(c, err)
	}

	var req model.GetSyncLogsReq
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Code: "bad_request", Message: "Invalid parameters", RequestID: requestID(c),
		})
	}
	req.TenantID = creds.TenantID

	if err := req.Validate(); err != nil {
		return writeError(c, err)
	}

	result, err := h.Service.GetSyncLogs(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
