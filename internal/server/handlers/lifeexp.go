package handlers

import (
	"net/http"

	"github.com/agentstation/datastory/internal/server/filter"
	"github.com/agentstation/datastory/internal/server/response"
	"github.com/agentstation/datastory/pkg/datasets"
	"github.com/agentstation/datastory/pkg/figures"
	"github.com/agentstation/datastory/pkg/lifeexp"
)

// DefaultBins is the histogram bin count of the analytics page.
const DefaultBins = 30

// CorrelationView is the correlation endpoint payload.
type CorrelationView struct {
	Indicator    string                `json:"indicator"`
	Correlations []lifeexp.Correlation `json:"correlations"`
	Figure       *figures.Figure       `json:"figure"`
}

// HandleLifeOptions handles GET /api/v1/who/options.
// @Summary WHO dashboard options
// @Tags who
// @Produce json
// @Success 200 {object} response.Response{data=lifeexp.Options}
// @Router /api/v1/who/options [get].
func (h *Handlers) HandleLifeOptions(w http.ResponseWriter, r *http.Request) {
	h.cached(w, r, func(snap *datasets.Snapshot) (any, error) {
		return lifeexp.OptionsFor(snap.Life), nil
	})
}

// HandleLifeOverview handles GET /api/v1/who/overview.
// @Summary Indicator choropleth
// @Tags who
// @Produce json
// @Param indicator query string false "Numeric column"
// @Param year query int false "Year; 1999 or empty averages all years"
// @Success 200 {object} response.Response{data=figures.Figure}
// @Router /api/v1/who/overview [get].
func (h *Handlers) HandleLifeOverview(w http.ResponseWriter, r *http.Request) {
	q, err := filter.ParseLife(r)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	h.cached(w, r, func(snap *datasets.Snapshot) (any, error) {
		return lifeexp.Overview(snap.Life, q.Indicator, q.Year), nil
	})
}

// HandleLifeProfile handles GET /api/v1/who/profile.
// @Summary Country profile
// @Tags who
// @Produce json
// @Param country query string false "Country; World for the global average"
// @Param year query int false "Year; 1999 or empty averages all years"
// @Success 200 {object} response.Response{data=lifeexp.Profile}
// @Router /api/v1/who/profile [get].
func (h *Handlers) HandleLifeProfile(w http.ResponseWriter, r *http.Request) {
	q, err := filter.ParseLife(r)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	h.cached(w, r, func(snap *datasets.Snapshot) (any, error) {
		return lifeexp.BuildProfile(snap.Life, q.Country, q.Year), nil
	})
}

// HandleLifeCorrelations handles GET /api/v1/who/correlations.
// @Summary Indicator correlations
// @Tags who
// @Produce json
// @Param indicator query string false "Numeric column"
// @Success 200 {object} response.Response{data=CorrelationView}
// @Failure 400 {object} response.Response{error=response.Error}
// @Router /api/v1/who/correlations [get].
func (h *Handlers) HandleLifeCorrelations(w http.ResponseWriter, r *http.Request) {
	q, err := filter.ParseLife(r)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	h.cached(w, r, func(snap *datasets.Snapshot) (any, error) {
		corrs, err := lifeexp.Correlations(snap.Life, q.Indicator)
		if err != nil {
			return nil, err
		}
		return &CorrelationView{
			Indicator:    q.Indicator,
			Correlations: corrs,
			Figure:       lifeexp.CorrelationFigure(snap.Life, q.Indicator),
		}, nil
	})
}

// HandleLifeTable handles GET /api/v1/who/table.
// @Summary WHO data table
// @Tags who
// @Produce json
// @Param country query string false "Country; World for every country"
// @Param year query int false "Year; 1999 or empty for every year"
// @Param sort query string false "Column to sort by"
// @Param order query string false "asc or desc"
// @Param search query string false "Case-insensitive text filter"
// @Param page query int false "1-based page"
// @Param page_size query int false "Rows per page"
// @Success 200 {object} response.Response{data=lifeexp.TablePage}
// @Failure 400 {object} response.Response{error=response.Error}
// @Router /api/v1/who/table [get].
func (h *Handlers) HandleLifeTable(w http.ResponseWriter, r *http.Request) {
	q, err := filter.ParseTable(r)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	h.cached(w, r, func(snap *datasets.Snapshot) (any, error) {
		return lifeexp.Table(snap.Life, q)
	})
}

// HandleLifeAnalytics handles GET /api/v1/who/analytics.
// @Summary Life expectancy analytics
// @Tags who
// @Produce json
// @Param bins query int false "Histogram bins"
// @Success 200 {object} response.Response{data=lifeexp.Analytics}
// @Router /api/v1/who/analytics [get].
func (h *Handlers) HandleLifeAnalytics(w http.ResponseWriter, r *http.Request) {
	bins, err := filter.ParseBins(r, DefaultBins)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	h.cached(w, r, func(snap *datasets.Snapshot) (any, error) {
		return lifeexp.BuildAnalytics(snap.Life, bins), nil
	})
}
