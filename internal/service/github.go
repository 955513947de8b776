package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chorushq/chorus/internal/repository"
)

var ErrGithubLoginTaken = errors.New("github login already linked to another account")

// GithubLinkStatus reports the secondary link of an account. All fields are
// zero when nothing is linked.
type GithubLinkStatus struct {
	Connected bool       `json:"connected"`
	Login     string     `json:"login,omitempty"`
	LinkedAt  *time.Time `json:"linked_at,omitempty"`
}

// GithubService owns the token-free GitHub handle link. Unlike Google
// sign-in there is no OAuth dance: linking is a uniqueness-guarded field set
// on the account.
type GithubService struct {
	accountRepository repository.AccountRepository
}

func NewGithubService(accountRepository repository.AccountRepository) *GithubService {
	return &GithubService{accountRepository: accountRepository}
}

func (s *GithubService) Status(accountID string) (*GithubLinkStatus, error) {
	account, err := s.accountRepository.ByID(accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, fmt.Errorf("account missing: %w", ErrAccountNotFound)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	status := &GithubLinkStatus{}
	if account.GithubLogin != nil && *account.GithubLogin != "" {
		status.Connected = true
		status.Login = *account.GithubLogin
		status.LinkedAt = account.GithubLinkedAt
	}

	return status, nil
}

// Link associates the GitHub login with the account. A login already held by
// another account is a conflict; re-linking the same login to the same
// account refreshes the link timestamp.
func (s *GithubService) Link(accountID, login string) error {
	account, err := s.accountRepository.ByID(accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return fmt.Errorf("account missing: %w", ErrAccountNotFound)
		}
		return fmt.Errorf("failed to get account: %w", err)
	}

	holder, err := s.accountRepository.ByGithubLogin(login)
	if err == nil && holder.ID != account.ID {
		return fmt.Errorf("login in use: %w", ErrGithubLoginTaken)
	}
	if err != nil && !errors.Is(err, repository.ErrAccountNotFound) {
		return fmt.Errorf("failed to check github login: %w", err)
	}

	now := time.Now()
	account.GithubLogin = &login
	account.GithubLinkedAt = &now
	account.UpdatedAt = now

	err = s.accountRepository.Update(account)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateGithubLogin) {
			return fmt.Errorf("login in use: %w", ErrGithubLoginTaken)
		}
		return fmt.Errorf("failed to link github login: %w", err)
	}

	slog.Info("github login linked", "account_id", account.ID, "login", login)
	return nil
}

// Unlink clears the GitHub link. Unlinking an account with nothing linked
// succeeds and is safely repeatable.
func (s *GithubService) Unlink(accountID string) error {
	account, err := s.accountRepository.ByID(accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return fmt.Errorf("account missing: %w", ErrAccountNotFound)
		}
		return fmt.Errorf("failed to get account: %w", err)
	}

	if account.GithubLogin == nil && account.GithubID == nil && account.GithubLinkedAt == nil {
		return nil
	}

	account.GithubLogin = nil
	account.GithubID = nil
	account.GithubLinkedAt = nil
	account.UpdatedAt = time.Now()

	err = s.accountRepository.Update(account)
	if err != nil {
		return fmt.Errorf("failed to unlink github login: %w", err)
	}

	slog.Info("github login unlinked", "account_id", account.ID)
	return nil
}
