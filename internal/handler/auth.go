package handler

import (
	"net/http"
	"strings"

	"github.com/chorushq/chorus/internal/service"
	"github.com/chorushq/chorus/internal/validation"
)

type authHandler struct {
	accountService *service.AccountService
}

func NewAuthHandler(accountService *service.AccountService) *authHandler {
	return &authHandler{accountService: accountService}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

func (h *authHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err := validation.ValidateEmail(strings.TrimSpace(req.Email))
	if err != nil {
		writeValidationError(w, err)
		return
	}
	err = validation.ValidatePassword(req.Password)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	err = validation.ValidateNickname(req.Nickname)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	result, err := h.accountService.Register(req.Email, req.Password, req.Nickname)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, result)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Email == "" || req.Password == "" {
		WriteError(w, service.ErrInvalidCredentials)
		return
	}

	result, err := h.accountService.Login(req.Email, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

type availabilityResponse struct {
	Nickname  string `json:"nickname"`
	Available bool   `json:"available"`
}

func (h *authHandler) NicknameAvailable(w http.ResponseWriter, r *http.Request) {
	nickname := r.PathValue("nickname")

	err := validation.ValidateNickname(nickname)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	available, err := h.accountService.CheckNicknameAvailable(nickname)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, availabilityResponse{Nickname: nickname, Available: available})
}
