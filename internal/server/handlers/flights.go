package handlers

import (
	"net/http"

	"github.com/agentstation/datastory/internal/server/filter"
	"github.com/agentstation/datastory/internal/server/response"
	"github.com/agentstation/datastory/pkg/datasets"
	"github.com/agentstation/datastory/pkg/flights"
)

// HandleFlightOptions handles GET /api/v1/flights/options.
// @Summary Flight filter options
// @Description Airlines and the date range of the flights dataset
// @Tags flights
// @Produce json
// @Success 200 {object} response.Response{data=flights.Options}
// @Router /api/v1/flights/options [get].
func (h *Handlers) HandleFlightOptions(w http.ResponseWriter, r *http.Request) {
	h.cached(w, r, func(snap *datasets.Snapshot) (any, error) {
		return flights.OptionsFor(snap.Flights), nil
	})
}

// HandleFlightDashboard handles GET /api/v1/flights/dashboard.
// @Summary Flight delay dashboard
// @Description KPIs and figures for the filtered flights
// @Tags flights
// @Produce json
// @Param airline query string false "Airline name"
// @Param start_date query string false "ISO 8601 start date"
// @Param end_date query string false "ISO 8601 end date"
// @Param granularity query string false "W or M"
// @Success 200 {object} response.Response{data=flights.Dashboard}
// @Failure 400 {object} response.Response{error=response.Error}
// @Router /api/v1/flights/dashboard [get].
func (h *Handlers) HandleFlightDashboard(w http.ResponseWriter, r *http.Request) {
	f, err := filter.ParseFlights(r)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	h.cached(w, r, func(snap *datasets.Snapshot) (any, error) {
		return flights.Build(snap.Flights, f), nil
	})
}
