package handlers

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/agentstation/datastory/internal/server/filter"
	"github.com/agentstation/datastory/internal/server/response"
	"github.com/agentstation/datastory/pkg/constants"
	"github.com/agentstation/datastory/pkg/datasets"
	"github.com/agentstation/datastory/pkg/errors"
	"github.com/agentstation/datastory/pkg/story"
)

// HandleStory handles GET /api/v1/story.
// @Summary Data story
// @Description Narrative over the current numbers
// @Tags story
// @Produce json
// @Param airline query string false "Airline name"
// @Param indicator query string false "WHO indicator"
// @Param year query int false "WHO year; empty selects the latest"
// @Param element query string false "FAO element"
// @Success 200 {object} response.Response{data=story.Story}
// @Failure 502 {object} response.Response{error=response.Error}
// @Router /api/v1/story [get].
func (h *Handlers) HandleStory(w http.ResponseWriter, r *http.Request) {
	req, err := filter.ParseStory(r)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	h.cached(w, r, func(snap *datasets.Snapshot) (any, error) {
		ctx, cancel := context.WithTimeout(r.Context(), constants.NarrativeTimeout)
		defer cancel()

		s, err := story.Tell(ctx, h.narrator, story.Collect(snap, req))
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.NewTimeoutError("story", constants.NarrativeTimeout.String(), err.Error())
		}
		return s, err
	})
}
