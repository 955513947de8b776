package model

import (
	"time"
)

type Account struct {
	ID           string  `db:"id"`
	Email        string  `db:"email"`
	Nickname     string  `db:"nickname"`
	PasswordHash *string `db:"password_hash"` // Nullable for accounts created via Google sign-in
	AvatarURL    *string `db:"avatar_url"`

	GoogleAccessToken  *string    `db:"google_access_token"`
	GoogleRefreshToken *string    `db:"google_refresh_token"`
	GoogleTokenExpiry  *time.Time `db:"google_token_expiry"`

	GithubLogin    *string    `db:"github_login"`
	GithubID       *int64     `db:"github_id"`
	GithubLinkedAt *time.Time `db:"github_linked_at"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (a *Account) HasPassword() bool {
	return a.PasswordHash != nil && *a.PasswordHash != ""
}

func (a *Account) GoogleConnected() bool {
	return a.GoogleAccessToken != nil && *a.GoogleAccessToken != ""
}

// AccountView is the public shape of an account. It never carries the
// credential hash or raw provider tokens.
type AccountView struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Nickname        string    `json:"nickname"`
	AvatarURL       string    `json:"avatar_url,omitempty"`
	GoogleConnected bool      `json:"google_connected"`
	GithubLogin     string    `json:"github_login,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func (a *Account) View() AccountView {
	view := AccountView{
		ID:              a.ID,
		Email:           a.Email,
		Nickname:        a.Nickname,
		GoogleConnected: a.GoogleConnected(),
		CreatedAt:       a.CreatedAt,
	}
	if a.AvatarURL != nil {
		view.AvatarURL = *a.AvatarURL
	}
	if a.GithubLogin != nil {
		view.GithubLogin = *a.GithubLogin
	}
	return view
}
