package fixedassets

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
	logger    *slog.Logger
	service   *Service
	processor *Processor
	validate  *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, processor *Processor) *Handler {
	return &Handler{logger: logger, service: service, processor: processor, validate: validator.New()}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
	r.Post("/{id}/dispose", h.dispose)
	r.Post("/{id}/transfer", h.transfer)
	r.Get("/{id}/transfers", h.transfers)
	r.Get("/{id}/schedule", h.schedule)
	r.Post("/{id}/schedule", h.createSchedule)
	r.Post("/{id}/maintenance", h.addMaintenance)
	r.Get("/{id}/maintenance", h.maintenance)
	r.Post("/depreciation/run", h.runDepreciation)
	r.Post("/depreciation/process", h.processSelected)
}

func assetID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ListAssetsRequest{}
	req.BranchID, _ = strconv.ParseInt(q.Get("branch_id"), 10, 64)
	req.CategoryID, _ = strconv.ParseInt(q.Get("category_id"), 10, 64)
	req.Limit, _ = strconv.Atoi(q.Get("limit"))
	req.Offset, _ = strconv.Atoi(q.Get("offset"))
	if v := q.Get("disposed"); v != "" {
		disposed := v == "true" || v == "1"
		req.Disposed = &disposed
	}

	assets, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list assets", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": assets})
}

type createAssetRequest struct {
	Code           string  `json:"code" validate:"required"`
	Name           string  `json:"name" validate:"required"`
	CategoryID     int64   `json:"category_id" validate:"required,gt=0"`
	BranchID       int64   `json:"branch_id" validate:"required,gt=0"`
	CurrencyID     int64   `json:"currency_id" validate:"required,gt=0"`
	Classification string  `json:"classification" validate:"required,oneof=DEPRECIABLE AMORTIZABLE NONE"`
	CostBasis      float64 `json:"cost_basis" validate:"required,gt=0"`
	AcquiredAt     string  `json:"acquired_at" validate:"required,datetime=2006-01-02"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createAssetRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	acquiredAt, _ := time.Parse("2006-01-02", req.AcquiredAt)

	asset, err := h.service.Create(r.Context(), CreateAssetInput{
		Code:           req.Code,
		Name:           req.Name,
		CategoryID:     req.CategoryID,
		BranchID:       req.BranchID,
		CurrencyID:     req.CurrencyID,
		Classification: Classification(req.Classification),
		CostBasis:      req.CostBasis,
		AcquiredAt:     acquiredAt,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, asset)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := assetID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid asset ID")
		return
	}
	asset, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, asset)
}

type disposeRequest struct {
	DisposedAt string `json:"disposed_at" validate:"omitempty,datetime=2006-01-02"`
	Reason     string `json:"reason"`
}

func (h *Handler) dispose(w http.ResponseWriter, r *http.Request) {
	id, err := assetID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid asset ID")
		return
	}
	var req disposeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	in := DisposeInput{AssetID: id, Reason: req.Reason}
	if req.DisposedAt != "" {
		in.DisposedAt, _ = time.Parse("2006-01-02", req.DisposedAt)
	}
	if err := h.service.Dispose(r.Context(), in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type transferRequest struct {
	ToBranchID    int64  `json:"to_branch_id" validate:"required,gt=0"`
	TransferredAt string `json:"transferred_at" validate:"omitempty,datetime=2006-01-02"`
	Note          string `json:"note"`
}

func (h *Handler) transfer(w http.ResponseWriter, r *http.Request) {
	id, err := assetID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid asset ID")
		return
	}
	var req transferRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	in := TransferInput{AssetID: id, ToBranchID: req.ToBranchID, Note: req.Note}
	if req.TransferredAt != "" {
		in.TransferredAt, _ = time.Parse("2006-01-02", req.TransferredAt)
	}
	rec, err := h.service.Transfer(r.Context(), in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rec)
}

func (h *Handler) transfers(w http.ResponseWriter, r *http.Request) {
	id, err := assetID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid asset ID")
		return
	}
	records, err := h.service.Transfers(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": records})
}

func (h *Handler) schedule(w http.ResponseWriter, r *http.Request) {
	id, err := assetID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid asset ID")
		return
	}
	entries, err := h.service.Schedule(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": entries})
}

type scheduleEntryRequest struct {
	DueDate string  `json:"due_date" validate:"required,datetime=2006-01-02"`
	Amount  float64 `json:"amount" validate:"required,gt=0"`
}

type createScheduleRequest struct {
	Entries []scheduleEntryRequest `json:"entries" validate:"required,min=1,dive"`
}

func (h *Handler) createSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := assetID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid asset ID")
		return
	}
	var req createScheduleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	entries := make([]ScheduleEntryInput, 0, len(req.Entries))
	for _, e := range req.Entries {
		due, _ := time.Parse("2006-01-02", e.DueDate)
		entries = append(entries, ScheduleEntryInput{DueDate: due, Amount: e.Amount})
	}
	if err := h.service.CreateSchedule(r.Context(), id, entries); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

type maintenanceRequest struct {
	PerformedAt string  `json:"performed_at" validate:"omitempty,datetime=2006-01-02"`
	Cost        float64 `json:"cost" validate:"gte=0"`
	Description string  `json:"description" validate:"required"`
}

func (h *Handler) addMaintenance(w http.ResponseWriter, r *http.Request) {
	id, err := assetID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid asset ID")
		return
	}
	var req maintenanceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	in := MaintenanceInput{AssetID: id, Cost: req.Cost, Description: req.Description}
	if req.PerformedAt != "" {
		in.PerformedAt, _ = time.Parse("2006-01-02", req.PerformedAt)
	}
	rec, err := h.service.AddMaintenance(r.Context(), in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rec)
}

func (h *Handler) maintenance(w http.ResponseWriter, r *http.Request) {
	id, err := assetID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid asset ID")
		return
	}
	records, err := h.service.Maintenance(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": records})
}

type runDepreciationRequest struct {
	AsOf string `json:"as_of" validate:"omitempty,datetime=2006-01-02"`
}

func (h *Handler) runDepreciation(w http.ResponseWriter, r *http.Request) {
	// an empty body means "run everything due as of now"
	var req runDepreciationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	asOf := time.Now()
	if req.AsOf != "" {
		asOf, _ = time.Parse("2006-01-02", req.AsOf)
	}
	result, err := h.processor.ProcessDue(r.Context(), asOf)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

type processSelectedRequest struct {
	EntryIDs []int64 `json:"entry_ids" validate:"required,min=1"`
}

func (h *Handler) processSelected(w http.ResponseWriter, r *http.Request) {
	var req processSelectedRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	result, err := h.processor.ProcessSelected(r.Context(), req.EntryIDs)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}
