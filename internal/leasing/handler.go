package leasing

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Get("/{id}/payments", h.payments)
	r.Post("/{id}/payments/{paymentID}/pay", h.recordPayment)
	r.Post("/{id}/payments/{paymentID}/revert", h.revertPayment)
}

type leaseRequest struct {
	AssetID         int64   `json:"asset_id" validate:"required,gt=0"`
	LessorPartnerID int64   `json:"lessor_partner_id" validate:"required,gt=0"`
	CurrencyID      int64   `json:"currency_id" validate:"required,gt=0"`
	TotalObligation float64 `json:"total_obligation" validate:"required,gt=0"`
	AnnualRatePct   float64 `json:"annual_rate_pct" validate:"gte=0"`
	PaymentAmount   float64 `json:"payment_amount" validate:"required,gt=0"`
	Frequency       string  `json:"frequency" validate:"required,oneof=MONTHLY QUARTERLY ANNUAL"`
	StartDate       string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate         string  `json:"end_date" validate:"required,datetime=2006-01-02"`
}

func (h *Handler) decodeLease(w http.ResponseWriter, r *http.Request) (LeaseInput, bool) {
	var req leaseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return LeaseInput{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return LeaseInput{}, false
	}
	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)
	return LeaseInput{
		AssetID:         req.AssetID,
		LessorPartnerID: req.LessorPartnerID,
		CurrencyID:      req.CurrencyID,
		TotalObligation: req.TotalObligation,
		AnnualRatePct:   req.AnnualRatePct,
		PaymentAmount:   req.PaymentAmount,
		Frequency:       Frequency(req.Frequency),
		StartDate:       start,
		EndDate:         end,
	}, true
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	leases, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("list leases", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": leases})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeLease(w, r)
	if !ok {
		return
	}
	lease, err := h.service.Create(r.Context(), in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, lease)
}

func leaseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := leaseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid lease ID")
		return
	}
	lease, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, lease)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := leaseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid lease ID")
		return
	}
	in, ok := h.decodeLease(w, r)
	if !ok {
		return
	}
	lease, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, lease)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := leaseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid lease ID")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) payments(w http.ResponseWriter, r *http.Request) {
	id, err := leaseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid lease ID")
		return
	}
	payments, err := h.service.Payments(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": payments})
}

type recordPaymentRequest struct {
	PaidAt string `json:"paid_at" validate:"omitempty,datetime=2006-01-02"`
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := leaseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid lease ID")
		return
	}
	paymentID, err := strconv.ParseInt(chi.URLParam(r, "paymentID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payment ID")
		return
	}
	var req recordPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	var paidAt time.Time
	if req.PaidAt != "" {
		paidAt, _ = time.Parse("2006-01-02", req.PaidAt)
	}
	p, err := h.service.RecordPayment(r.Context(), id, paymentID, paidAt)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) revertPayment(w http.ResponseWriter, r *http.Request) {
	id, err := leaseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid lease ID")
		return
	}
	paymentID, err := strconv.ParseInt(chi.URLParam(r, "paymentID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payment ID")
		return
	}
	p, err := h.service.RevertPayment(r.Context(), id, paymentID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}
