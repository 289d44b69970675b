package taxes

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
	r.Get("/jurisdictions", h.listJurisdictions)
	r.Post("/jurisdictions", h.createJurisdiction)
	r.Delete("/jurisdictions/{id}", h.deleteJurisdiction)

	r.Get("/components", h.listComponents)
	r.Post("/components", h.createComponent)
	r.Put("/components/{id}", h.updateComponent)
	r.Delete("/components/{id}", h.deleteComponent)

	r.Get("/categories", h.listCategories)
	r.Post("/categories", h.createCategory)
	r.Delete("/categories/{id}", h.deleteCategory)
}

func (h *Handler) listJurisdictions(w http.ResponseWriter, r *http.Request) {
	items, total, err := h.service.ListJurisdictions(r.Context(), shared.FiltersFromQuery(r))
	if err != nil {
		h.logger.Error("list tax jurisdictions", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
}

func (h *Handler) createJurisdiction(w http.ResponseWriter, r *http.Request) {
	var j Jurisdiction
	if err := httpx.DecodeJSON(r, &j); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	created, err := h.service.CreateJurisdiction(r.Context(), j)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) deleteJurisdiction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid jurisdiction ID")
		return
	}
	if err := h.service.DeleteJurisdiction(r.Context(), id); err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *Handler) listComponents(w http.ResponseWriter, r *http.Request) {
	var jurisdictionID int64
	if raw := r.URL.Query().Get("jurisdiction_id"); raw != "" {
		jurisdictionID, _ = strconv.ParseInt(raw, 10, 64)
	}
	items, err := h.service.ListComponents(r.Context(), jurisdictionID)
	if err != nil {
		h.logger.Error("list tax components", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) createComponent(w http.ResponseWriter, r *http.Request) {
	var c Component
	if err := httpx.DecodeJSON(r, &c); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	created, err := h.service.CreateComponent(r.Context(), c)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) updateComponent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid component ID")
		return
	}
	var c Component
	if err := httpx.DecodeJSON(r, &c); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.service.UpdateComponent(r.Context(), id, c); err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": true})
}

func (h *Handler) deleteComponent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid component ID")
		return
	}
	if err := h.service.DeleteComponent(r.Context(), id); err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("list tax categories", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var c TaxCategory
	if err := httpx.DecodeJSON(r, &c); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	created, err := h.service.CreateCategory(r.Context(), c)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid category ID")
		return
	}
	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}
