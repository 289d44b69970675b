package debts

import (
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
	r.Delete("/{id}", h.delete)
	r.Get("/{id}/remaining", h.remaining)
	r.Get("/payments", h.listPayments)
	r.Post("/payments", h.allocate)
	r.Get("/payments/{paymentID}", h.showPayment)
	r.Delete("/payments/{paymentID}", h.deletePayment)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ListDebtsRequest{Type: DebtType(q.Get("type"))}
	req.PartnerID, _ = strconv.ParseInt(q.Get("partner_id"), 10, 64)
	req.Limit, _ = strconv.Atoi(q.Get("limit"))
	req.Offset, _ = strconv.Atoi(q.Get("offset"))

	debts, err := h.service.ListDebts(r.Context(), req)
	if err != nil {
		h.logger.Error("list debts", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": debts})
}

type createDebtRequest struct {
	Number      string  `json:"number" validate:"required"`
	PartnerID   int64   `json:"partner_id" validate:"required,gt=0"`
	Type        string  `json:"type" validate:"required,oneof=PAYABLE RECEIVABLE"`
	CurrencyID  int64   `json:"currency_id" validate:"required,gt=0"`
	TotalAmount float64 `json:"total_amount" validate:"required,gt=0"`
	IssuedAt    string  `json:"issued_at" validate:"omitempty,datetime=2006-01-02"`
	Description string  `json:"description"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createDebtRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	in := CreateDebtInput{
		Number:      req.Number,
		PartnerID:   req.PartnerID,
		Type:        DebtType(req.Type),
		CurrencyID:  req.CurrencyID,
		TotalAmount: req.TotalAmount,
		Description: req.Description,
	}
	if req.IssuedAt != "" {
		in.IssuedAt, _ = time.Parse("2006-01-02", req.IssuedAt)
	}
	debt, err := h.service.CreateDebt(r.Context(), in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, debt)
}

func debtID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := debtID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid debt ID")
		return
	}
	debt, err := h.service.GetDebt(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, debt)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := debtID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid debt ID")
		return
	}
	if err := h.service.DeleteDebt(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) remaining(w http.ResponseWriter, r *http.Request) {
	id, err := debtID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid debt ID")
		return
	}
	exclude, _ := strconv.ParseInt(r.URL.Query().Get("exclude_payment_id"), 10, 64)
	remaining, err := h.service.Remaining(r.Context(), id, exclude)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"debt_id": id, "remaining": remaining})
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	partnerID, _ := strconv.ParseInt(q.Get("partner_id"), 10, 64)
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	payments, err := h.service.ListPayments(r.Context(), partnerID, limit, offset)
	if err != nil {
		h.logger.Error("list debt payments", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": payments})
}

type allocationLineRequest struct {
	DebtID int64   `json:"debt_id" validate:"required,gt=0"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

type allocateRequest struct {
	PartnerID    int64                   `json:"partner_id" validate:"required,gt=0"`
	Type         string                  `json:"type" validate:"required,oneof=PAYABLE RECEIVABLE"`
	CurrencyID   int64                   `json:"currency_id" validate:"required,gt=0"`
	ExchangeRate float64                 `json:"exchange_rate" validate:"required,gt=0"`
	PaymentDate  string                  `json:"payment_date" validate:"required,datetime=2006-01-02"`
	Lines        []allocationLineRequest `json:"lines" validate:"required,min=1,dive"`
}

func (h *Handler) allocate(w http.ResponseWriter, r *http.Request) {
	var req allocateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	date, _ := time.Parse("2006-01-02", req.PaymentDate)

	in := AllocateInput{
		PartnerID:    req.PartnerID,
		Type:         DebtType(req.Type),
		CurrencyID:   req.CurrencyID,
		ExchangeRate: req.ExchangeRate,
		PaymentDate:  date,
	}
	for _, line := range req.Lines {
		in.Lines = append(in.Lines, AllocationLine{DebtID: line.DebtID, Amount: line.Amount})
	}
	payment, err := h.service.Allocate(r.Context(), in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, payment)
}

func (h *Handler) showPayment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "paymentID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payment ID")
		return
	}
	payment, err := h.service.GetPayment(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payment)
}

func (h *Handler) deletePayment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "paymentID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payment ID")
		return
	}
	if err := h.service.DeletePayment(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
