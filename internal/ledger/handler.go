package ledger

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

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
	r.Post("/", h.post)
	r.Get("/{id}", h.show)
}

type postRequest struct {
	Date            string  `json:"date" validate:"required,datetime=2006-01-02"`
	Type            string  `json:"type"`
	Description     string  `json:"description" validate:"required"`
	DebitAccountID  int64   `json:"debit_account_id" validate:"required,gt=0"`
	CreditAccountID int64   `json:"credit_account_id" validate:"required,gt=0"`
	Amount          float64 `json:"amount" validate:"required,gt=0"`
	CurrencyID      int64   `json:"currency_id" validate:"required,gt=0"`
	ExchangeRate    float64 `json:"exchange_rate" validate:"required,gt=0"`
}

func (h *Handler) post(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	date, _ := time.Parse("2006-01-02", req.Date)

	journalType := TypeGeneral
	if req.Type != "" {
		journalType = JournalType(req.Type)
	}

	journal, err := h.service.Post(r.Context(), PostingInput{
		Date:            date,
		Type:            journalType,
		Description:     req.Description,
		SourceModule:    "ledger",
		SourceID:        uuid.New(),
		DebitAccountID:  req.DebitAccountID,
		CreditAccountID: req.CreditAccountID,
		Amount:          req.Amount,
		CurrencyID:      req.CurrencyID,
		ExchangeRate:    req.ExchangeRate,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, journal)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	journals, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("list journals", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": journals})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid journal ID")
		return
	}
	journal, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, journal)
}
