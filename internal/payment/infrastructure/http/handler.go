package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/payment-status-service/internal/payment/application"
	"github.com/dmehra2102/payment-status-service/internal/payment/domain"
	"github.com/dmehra2102/payment-status-service/pkg/tracing"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("payment-http"),
	}
}

type recordCheckReq struct {
	Completed *bool             `json:"completed"`
	Headers   map[string]string `json:"headers"`
}

type checkResp struct {
	CheckID       string    `json:"check_id"`
	TransactionID string    `json:"transaction_id"`
	Completed     bool      `json:"completed"`
	Status        string    `json:"status"`
	CheckedAt     time.Time `json:"checked_at"`
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)
	r.Get("/payments/completed", h.isCompleted)
	r.Post("/payments/{transactionID}/checks", h.recordCheck)
	r.Get("/payments/{transactionID}/checks/latest", h.latestCheck)

	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) isCompleted(w http.ResponseWriter, r *http.Request) {
	_, span := h.tracer.Start(r.Context(), "IsCompleted")
	defer span.End()

	raw := r.URL.Query().Get("completed")
	completed, err := strconv.ParseBool(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "completed must be a boolean")
		return
	}

	result := h.service.IsCompleted(completed)
	span.SetAttributes(attribute.Bool("payment.completed", result))
	writeJSON(w, http.StatusOK, map[string]bool{"completed": result})
}

func (h *Handler) recordCheck(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RecordCheck")
	defer span.End()

	var req recordCheckReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Completed == nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	traceparent := r.Header.Get(tracing.TraceparentHeader)
	if traceparent == "" {
		traceparent = tracing.Traceparent(ctx)
	}

	c, err := h.service.RecordCheck(ctx, chi.URLParam(r, "transactionID"), *req.Completed, req.Headers, traceparent)
	if err != nil {
		if errors.Is(err, application.ErrMissingTransactionID) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		span.RecordError(err)
		h.log.Error("record check failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusAccepted, toResp(c))
}

func (h *Handler) latestCheck(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "LatestCheck")
	defer span.End()

	c, err := h.service.LatestCheck(ctx, chi.URLParam(r, "transactionID"))
	switch {
	case errors.Is(err, application.ErrCheckNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, application.ErrMissingTransactionID):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		span.RecordError(err)
		h.log.Error("latest check failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		writeJSON(w, http.StatusOK, toResp(c))
	}
}

func toResp(c domain.Check) checkResp {
	return checkResp{
		CheckID:       c.ID,
		TransactionID: c.TransactionID,
		Completed:     c.Completed,
		Status:        string(c.Status),
		CheckedAt:     c.CheckedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
