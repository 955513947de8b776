package repository

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/chorushq/chorus/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrDuplicateEmail       = errors.New("email already exists")
	ErrDuplicateNickname    = errors.New("nickname already exists")
	ErrDuplicateGithubLogin = errors.New("github login already exists")
)

type AccountRepository interface {
	Create(account *model.Account) error
	ByID(id string) (*model.Account, error)
	ByEmail(email string) (*model.Account, error)
	ByNickname(nickname string) (*model.Account, error)
	ByGithubLogin(login string) (*model.Account, error)
	Update(account *model.Account) error
	Delete(id string) error
}

type accountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(account *model.Account) error {
	query := `INSERT INTO accounts (
		id, email, nickname, password_hash, avatar_url,
		google_access_token, google_refresh_token, google_token_expiry,
		github_login, github_id, github_linked_at,
		created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.Exec(query,
		account.ID, account.Email, account.Nickname, account.PasswordHash, account.AvatarURL,
		account.GoogleAccessToken, account.GoogleRefreshToken, account.GoogleTokenExpiry,
		account.GithubLogin, account.GithubID, account.GithubLinkedAt,
		account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		return mapUniqueViolation(err)
	}

	return nil
}

func (r *accountRepository) ByID(id string) (*model.Account, error) {
	return r.get(`SELECT * FROM accounts WHERE id = $1`, id)
}

func (r *accountRepository) ByEmail(email string) (*model.Account, error) {
	return r.get(`SELECT * FROM accounts WHERE email = $1`, email)
}

func (r *accountRepository) ByNickname(nickname string) (*model.Account, error) {
	return r.get(`SELECT * FROM accounts WHERE nickname = $1`, nickname)
}

func (r *accountRepository) ByGithubLogin(login string) (*model.Account, error) {
	return r.get(`SELECT * FROM accounts WHERE github_login = $1`, login)
}

func (r *accountRepository) get(query string, arg any) (*model.Account, error) {
	account := &model.Account{}

	err := r.db.Get(account, query, arg)
	if err == sql.ErrNoRows {
		return nil, ErrAccountNotFound
	}

	return account, err
}

func (r *accountRepository) Update(account *model.Account) error {
	query := `UPDATE accounts SET
		email = $1, nickname = $2, password_hash = $3, avatar_url = $4,
		google_access_token = $5, google_refresh_token = $6, google_token_expiry = $7,
		github_login = $8, github_id = $9, github_linked_at = $10,
		updated_at = $11
	WHERE id = $12`

	_, err := r.db.Exec(query,
		account.Email, account.Nickname, account.PasswordHash, account.AvatarURL,
		account.GoogleAccessToken, account.GoogleRefreshToken, account.GoogleTokenExpiry,
		account.GithubLogin, account.GithubID, account.GithubLinkedAt,
		account.UpdatedAt, account.ID,
	)
	if err != nil {
		return mapUniqueViolation(err)
	}

	return nil
}

func (r *accountRepository) Delete(id string) error {
	query := `DELETE FROM accounts WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrAccountNotFound
	}

	return nil
}

// mapUniqueViolation translates driver unique-constraint errors into the
// per-column sentinel errors. The database index is the authoritative
// backstop for the check-then-act window between an availability lookup and
// the write, so both paths must surface the same conflict.
// Works for both SQLite and PostgreSQL error strings.
func mapUniqueViolation(err error) error {
	errStr := err.Error()
	if !strings.Contains(errStr, "UNIQUE constraint failed") && !strings.Contains(errStr, "duplicate key value") {
		return err
	}

	switch {
	case strings.Contains(errStr, "email"):
		return ErrDuplicateEmail
	case strings.Contains(errStr, "nickname"):
		return ErrDuplicateNickname
	case strings.Contains(errStr, "github_login"):
		return ErrDuplicateGithubLogin
	}

	return err
}
