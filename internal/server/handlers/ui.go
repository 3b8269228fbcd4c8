package handlers

import (
	_ "embed"
	"net/http"

	"github.com/agentstation/datastory/internal/server/response"
)

//go:embed ui/index.html
var indexHTML []byte

// HandleUI serves the single-page dashboard at the root path.
func (h *Handlers) HandleUI(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		response.NotFound(w, "page not found", r.URL.Path)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(indexHTML)
}
