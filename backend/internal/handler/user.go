package handler

import (
	"net/http"

	"github.com/itchan-dev/filesmanager/shared/api"
	"github.com/itchan-dev/filesmanager/shared/domain"
	"github.com/itchan-dev/filesmanager/shared/errors"
	mw "github.com/itchan-dev/filesmanager/shared/middleware"
	"github.com/itchan-dev/filesmanager/shared/utils"
)

func userResponse(u domain.User) api.UserResponse {
	return api.UserResponse{Id: u.Id.Hex(), Email: u.Email}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var body api.RegisterRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	user, err := h.auth.Register(r.Context(), body.Email, body.Password)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, userResponse(user))
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userId := mw.GetUserIdFromContext(r)
	if userId == nil {
		utils.WriteErrorAndStatusCode(w, errors.ErrUnauthorized)
		return
	}

	user, err := h.auth.Me(r.Context(), *userId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, userResponse(user))
}
