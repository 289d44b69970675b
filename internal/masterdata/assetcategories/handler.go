package assetcategories

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
	r.Get("/{id}/accounts/{companyID}", h.accounts)
	r.Put("/{id}/accounts/{companyID}", h.configureAccounts)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	items, total, err := h.service.List(r.Context(), shared.FiltersFromQuery(r))
	if err != nil {
		h.logger.Error("list asset categories", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid category ID")
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
	var c Category
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
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid category ID")
		return
	}
	var c Category
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
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid category ID")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *Handler) accounts(w http.ResponseWriter, r *http.Request) {
	categoryID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid category ID")
		return
	}
	companyID, err := strconv.ParseInt(chi.URLParam(r, "companyID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid company ID")
		return
	}
	a, err := h.service.Accounts(r.Context(), categoryID, companyID)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, a)
}

func (h *Handler) configureAccounts(w http.ResponseWriter, r *http.Request) {
	categoryID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid category ID")
		return
	}
	companyID, err := strconv.ParseInt(chi.URLParam(r, "companyID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid company ID")
		return
	}
	var a CategoryAccounts
	if err := httpx.DecodeJSON(r, &a); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	a.CategoryID = categoryID
	a.CompanyID = companyID
	saved, err := h.service.ConfigureAccounts(r.Context(), a)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, saved)
}
