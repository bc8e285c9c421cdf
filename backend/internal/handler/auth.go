package handler

import (
	"net/http"
	"strings"

	"github.com/itchan-dev/filesmanager/shared/api"
	"github.com/itchan-dev/filesmanager/shared/errors"
	mw "github.com/itchan-dev/filesmanager/shared/middleware"
	"github.com/itchan-dev/filesmanager/shared/utils"
)

const basicPrefix = "Basic "

// Connect exchanges Basic credentials for a session token.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	if len(header) < len(basicPrefix) || !strings.EqualFold(header[:len(basicPrefix)], basicPrefix) {
		utils.WriteErrorAndStatusCode(w, errors.ErrUnauthorized)
		return
	}

	token, err := h.auth.Login(r.Context(), header[len(basicPrefix):])
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.ConnectResponse{Token: token})
}

func (h *Handler) Disconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), mw.GetToken(r)); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
