// Package handler exposes the attribution metrics computation over HTTP.
package handler

import (
	"net/http"
	"time"

	"salesops_backend/internal/attribution/domain"
	"salesops_backend/internal/attribution/service"
	"salesops_backend/internal/attribution/transport"
	"salesops_backend/internal/http/response"
	"salesops_backend/platform/apperr"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler serves the metrics endpoints.
type Handler struct {
	svc      *service.Service
	defaults domain.SessionLinkingPolicy
}

// New creates a new attribution handler. The defaults policy fills in any
// linking parameters a request leaves unset.
func New(svc *service.Service, defaults domain.SessionLinkingPolicy) *Handler {
	return &Handler{svc: svc, defaults: defaults}
}

// RegisterRoutes mounts the metrics routes on the provided group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/performance", h.getPerformance)
}

// getPerformance computes setter, rep, and pair metrics for an account and
// date range under the requested session-linking policy.
func (h *Handler) getPerformance(c *gin.Context) {
	var query transport.MetricsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err.Error())
		return
	}

	accountID, err := uuid.Parse(query.AccountID)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid account id", nil)
		return
	}

	from, err := parseRangeBound(query.From)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid from date", nil)
		return
	}
	to, err := parseRangeBound(query.To)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid to date", nil)
		return
	}
	if to.Before(from) {
		response.Error(c, http.StatusBadRequest, "date range is inverted", nil)
		return
	}

	report, err := h.svc.ComputeMetrics(c.Request.Context(), service.MetricsRequest{
		AccountID: accountID,
		From:      from,
		To:        to,
		Policy:    query.Policy(h.defaults),
		Filters:   query.Filters(),
	})
	if err != nil {
		response.FromError(c, err, apperr.KindInternal)
		return
	}

	response.OK(c, transport.FromReport(report, from, to))
}

// parseRangeBound accepts RFC 3339 instants or bare dates.
func parseRangeBound(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
