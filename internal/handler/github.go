package handler

import (
	"net/http"

	"github.com/chorushq/chorus/internal/ctxkeys"
	"github.com/chorushq/chorus/internal/service"
	"github.com/chorushq/chorus/internal/validation"
)

type githubHandler struct {
	githubService *service.GithubService
}

func NewGithubHandler(githubService *service.GithubService) *githubHandler {
	return &githubHandler{githubService: githubService}
}

func (h *githubHandler) Status(w http.ResponseWriter, r *http.Request) {
	account := ctxkeys.Account(r.Context())

	status, err := h.githubService.Status(account.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, status)
}

type linkGithubRequest struct {
	Login string `json:"login"`
}

func (h *githubHandler) Link(w http.ResponseWriter, r *http.Request) {
	account := ctxkeys.Account(r.Context())

	var req linkGithubRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err := validation.ValidateGithubLogin(req.Login)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	err = h.githubService.Link(account.ID, req.Login)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, messageResponse{Message: "github account linked"})
}

func (h *githubHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	account := ctxkeys.Account(r.Context())

	err := h.githubService.Unlink(account.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, messageResponse{Message: "github account unlinked"})
}
