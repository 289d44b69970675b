package currencies

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-erp/meridian-erp/internal/masterdata/shared"
	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Put("/{id}/rates/{companyID}", h.setRate)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters := shared.FiltersFromQuery(r)
	items, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list currencies", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid currency ID")
		return
	}
	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var c Currency
	if err := httpx.DecodeJSON(r, &c); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	created, err := h.service.Create(r.Context(), c)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid currency ID")
		return
	}
	var c Currency
	if err := httpx.DecodeJSON(r, &c); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.service.Update(r.Context(), id, c); err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": true})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid currency ID")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *Handler) setRate(w http.ResponseWriter, r *http.Request) {
	currencyID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid currency ID")
		return
	}
	companyID, err := strconv.ParseInt(chi.URLParam(r, "companyID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid company ID")
		return
	}
	var body struct {
		Rate float64 `json:"rate"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	rate, err := h.service.SetCompanyRate(r.Context(), CompanyRate{
		CurrencyID: currencyID,
		CompanyID:  companyID,
		Rate:       body.Rate,
	})
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rate)
}
