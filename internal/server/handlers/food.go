package handlers

import (
	"net/http"

	"github.com/agentstation/datastory/internal/server/filter"
	"github.com/agentstation/datastory/internal/server/response"
	"github.com/agentstation/datastory/pkg/datasets"
	"github.com/agentstation/datastory/pkg/food"
)

// HandleFoodOptions handles GET /api/v1/food/options.
// @Summary FAO filter options
// @Tags food
// @Produce json
// @Success 200 {object} response.Response{data=food.Options}
// @Router /api/v1/food/options [get].
func (h *Handlers) HandleFoodOptions(w http.ResponseWriter, r *http.Request) {
	h.cached(w, r, func(snap *datasets.Snapshot) (any, error) {
		return food.OptionsFor(snap.Food), nil
	})
}

// HandleFoodSummary handles GET /api/v1/food/summary.
// @Summary FAO food balance summary
// @Tags food
// @Produce json
// @Param element query string false "Food or Feed"
// @Param item query string false "Item name"
// @Param top query int false "Number of areas"
// @Success 200 {object} response.Response{data=food.Summary}
// @Router /api/v1/food/summary [get].
func (h *Handlers) HandleFoodSummary(w http.ResponseWriter, r *http.Request) {
	f, err := filter.ParseFood(r)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	h.cached(w, r, func(snap *datasets.Snapshot) (any, error) {
		return food.Summarize(snap.Food, f), nil
	})
}
