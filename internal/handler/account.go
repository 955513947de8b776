package handler

import (
	"net/http"

	"github.com/chorushq/chorus/internal/ctxkeys"
	"github.com/chorushq/chorus/internal/service"
	"github.com/chorushq/chorus/internal/validation"
)

type accountHandler struct {
	accountService *service.AccountService
}

func NewAccountHandler(accountService *service.AccountService) *accountHandler {
	return &accountHandler{accountService: accountService}
}

type updateProfileRequest struct {
	Nickname        *string `json:"nickname"`
	CurrentPassword *string `json:"current_password"`
	NewPassword     *string `json:"new_password"`
	AvatarURL       *string `json:"avatar_url"`
}

func (h *accountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	account := ctxkeys.Account(r.Context())

	var req updateProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Nickname != nil {
		err := validation.ValidateNickname(*req.Nickname)
		if err != nil {
			writeValidationError(w, err)
			return
		}
	}
	if req.NewPassword != nil && *req.NewPassword != "" {
		err := validation.ValidatePassword(*req.NewPassword)
		if err != nil {
			writeValidationError(w, err)
			return
		}
	}

	result, err := h.accountService.UpdateProfile(account.ID, service.ProfileUpdate{
		Nickname:        req.Nickname,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		AvatarURL:       req.AvatarURL,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *accountHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	account := ctxkeys.Account(r.Context())

	err := h.accountService.Withdraw(account.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, messageResponse{Message: "account deleted"})
}
