package api

import (
	"net/http"
)

// SnapshotHandler serves the live snapshot.
type SnapshotHandler struct {
	deps Dependencies
}

// NewSnapshotHandler creates a new snapshot handler.
func NewSnapshotHandler(deps Dependencies) *SnapshotHandler {
	return &SnapshotHandler{deps: deps}
}

// HandleSnapshot handles GET /snapshot requests.
func (h *SnapshotHandler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	s, ok := loadSnapshot(w, r, h.deps)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, NewSnapshotView(s))
}
