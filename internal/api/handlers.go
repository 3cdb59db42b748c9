/**
 * @description
 * This file contains the HTTP handlers for the aggregator's API endpoints.
 * Handlers parse and validate incoming requests, call the finance
 * aggregation service, and write the response. All failure paths go through
 * the boundary error translator in errors.go.
 *
 * @dependencies
 * - github.com/go-chi/chi/v5: URL parameter extraction.
 * - github.com/goccy/go-json: Request decoding.
 * - internal/app, internal/apperr, internal/domain.
 */
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/financeplanner/aggregator-service/internal/apperr"
	"github.com/financeplanner/aggregator-service/internal/domain"
)

// Finance is the aggregation service consumed by the handlers.
type Finance interface {
	ListPay(ctx context.Context, userID string, payID *int) ([]domain.PayInformation, error)
	ListIncome(ctx context.Context, userID string, incomeID *int) ([]domain.IncomeInformation, error)
	SavePay(ctx context.Context, request domain.PayInformationRequest, userID string, payID, incomeID *int) (*domain.IncomeInformation, error)
	DeletePay(ctx context.Context, userID string, payID, incomeID int) (bool, error)
}

// Handler holds the aggregation service the handlers use.
type Handler struct {
	service     Finance
	logger      *slog.Logger
	development bool
}

// NewHandler creates a new Handler.
func NewHandler(service Finance, logger *slog.Logger, development bool) *Handler {
	return &Handler{service: service, logger: logger, development: development}
}

func (h *Handler) handleGetPay(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var payID *int
	if raw := chi.URLParam(r, "payID"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, r, apperr.BadRequest("payId must be an integer"))
			return
		}
		payID = &id
	}

	records, err := h.service.ListPay(r.Context(), userID, payID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, records)
}

func (h *Handler) handleGetIncome(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var incomeID *int
	if raw := chi.URLParam(r, "incomeID"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, r, apperr.BadRequest("incomeId must be an integer"))
			return
		}
		incomeID = &id
	}

	records, err := h.service.ListIncome(r.Context(), userID, incomeID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, records)
}

func (h *Handler) handleSavePay(w http.ResponseWriter, r *http.Request) {
	request, ok := h.decodePayRequest(w, r)
	if !ok {
		return
	}

	income, err := h.service.SavePay(r.Context(), request, "", nil, nil)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, income)
}

func (h *Handler) handleUpdatePay(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	payID, err := strconv.Atoi(chi.URLParam(r, "payID"))
	if err != nil {
		h.writeError(w, r, apperr.BadRequest("payId must be an integer"))
		return
	}
	incomeID, err := strconv.Atoi(chi.URLParam(r, "incomeID"))
	if err != nil {
		h.writeError(w, r, apperr.BadRequest("incomeId must be an integer"))
		return
	}

	request, ok := h.decodePayRequest(w, r)
	if !ok {
		return
	}

	income, err := h.service.SavePay(r.Context(), request, userID, &payID, &incomeID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, income)
}

func (h *Handler) handleDeletePay(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	payID, err := strconv.Atoi(chi.URLParam(r, "payID"))
	if err != nil {
		h.writeError(w, r, apperr.BadRequest("payId must be an integer"))
		return
	}
	incomeID, err := strconv.Atoi(chi.URLParam(r, "incomeID"))
	if err != nil {
		h.writeError(w, r, apperr.BadRequest("incomeId must be an integer"))
		return
	}

	deleted, err := h.service.DeletePay(r.Context(), userID, payID, incomeID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, deleted)
}

// decodePayRequest decodes and validates the pay request body. Validation
// failures are written as BadRequest before the service layer is reached.
func (h *Handler) decodePayRequest(w http.ResponseWriter, r *http.Request) (domain.PayInformationRequest, bool) {
	var request domain.PayInformationRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, r, apperr.BadRequest("invalid request body").Wrap(err))
		return request, false
	}
	if request.EmployeeName == "" {
		h.writeError(w, r, apperr.BadRequest("employeeName is required"))
		return request, false
	}
	if request.BiWeeklyHoursAndRate.HourlyRate <= 0 {
		h.writeError(w, r, apperr.BadRequest("hourlyRate must be greater than zero"))
		return request, false
	}
	if request.BiWeeklyHoursAndRate.Week1TotalHours < 0 || request.BiWeeklyHoursAndRate.Week2TotalHours < 0 {
		h.writeError(w, r, apperr.BadRequest("weekly hours must not be negative"))
		return request, false
	}
	return request, true
}
