package handler

import (
	"net/http"

	"github.com/itchan-dev/filesmanager/shared/api"
	"github.com/itchan-dev/filesmanager/shared/utils"
)

// Health is a liveness probe endpoint.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// Status reports whether redis and the database answer.
// Returns 503 if either of them is down.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	status := h.app.Status(r.Context())
	code := http.StatusOK
	if !status.Redis || !status.DB {
		code = http.StatusServiceUnavailable
	}
	utils.WriteJSON(w, code, api.StatusResponse{Redis: status.Redis, DB: status.DB})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.app.Stats(r.Context())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.StatsResponse{Users: stats.Users, Files: stats.Files})
}
