package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-erp/meridian-erp/internal/debts"
	"github.com/meridian-erp/meridian-erp/internal/fixedassets"
	"github.com/meridian-erp/meridian-erp/internal/leasing"
	"github.com/meridian-erp/meridian-erp/internal/ledger"
	"github.com/meridian-erp/meridian-erp/internal/masterdata/assetcategories"
	"github.com/meridian-erp/meridian-erp/internal/masterdata/branches"
	"github.com/meridian-erp/meridian-erp/internal/masterdata/companies"
	"github.com/meridian-erp/meridian-erp/internal/masterdata/currencies"
	"github.com/meridian-erp/meridian-erp/internal/masterdata/partners"
	"github.com/meridian-erp/meridian-erp/internal/masterdata/taxes"
	"github.com/meridian-erp/meridian-erp/jobs"
)

// RouterParams bundles every mounted handler.
type RouterParams struct {
	Config *Config
	Logger *slog.Logger

	Currencies      *currencies.Handler
	Companies       *companies.Handler
	Branches        *branches.Handler
	Partners        *partners.Handler
	AssetCategories *assetcategories.Handler
	Taxes           *taxes.Handler

	Ledger      *ledger.Handler
	FixedAssets *fixedassets.Handler
	Leasing     *leasing.Handler
	Debts       *debts.Handler

	Jobs *jobs.Handler
}

// NewRouter assembles the HTTP surface.
func NewRouter(p RouterParams) chi.Router {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{Logger: p.Logger, Config: p.Config}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/masterdata", func(r chi.Router) {
		r.Route("/currencies", p.Currencies.Routes)
		r.Route("/companies", p.Companies.Routes)
		r.Route("/branches", p.Branches.Routes)
		r.Route("/partners", p.Partners.Routes)
		r.Route("/asset-categories", p.AssetCategories.Routes)
		r.Route("/taxes", p.Taxes.Routes)
	})

	r.Route("/journals", p.Ledger.Routes)
	r.Route("/assets", p.FixedAssets.Routes)
	r.Route("/leases", p.Leasing.Routes)
	r.Route("/debts", p.Debts.Routes)

	if p.Jobs != nil {
		r.Route("/jobs", p.Jobs.MountRoutes)
	}

	return r
}
