package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chorushq/chorus/internal/model"
	"github.com/chorushq/chorus/internal/repository"
	"github.com/google/uuid"
)

var (
	ErrEmailTaken              = errors.New("email already in use")
	ErrNicknameTaken           = errors.New("nickname already in use")
	ErrInvalidCredentials      = errors.New("invalid email or password")
	ErrAccountNotFound         = errors.New("account not found")
	ErrCurrentPasswordRequired = errors.New("current password is required to change password")
	ErrInvalidCurrentPassword  = errors.New("current password is incorrect")
)

// AuthResult is the outcome of every operation that mints a session token.
type AuthResult struct {
	Token   string            `json:"token"`
	Account model.AccountView `json:"account"`
}

// AccountService owns local credential-based identity: registration, login,
// nickname availability, profile mutation and withdrawal. It enforces the
// global uniqueness of email and nickname across all accounts regardless of
// how they were created.
type AccountService struct {
	accountRepository repository.AccountRepository
	hasher            *PasswordHasher
	issuer            *TokenIssuer
	membershipService *MembershipService
	emailService      *EmailService
}

func NewAccountService(
	accountRepository repository.AccountRepository,
	hasher *PasswordHasher,
	issuer *TokenIssuer,
	membershipService *MembershipService,
	emailService *EmailService,
) *AccountService {
	return &AccountService{
		accountRepository: accountRepository,
		hasher:            hasher,
		issuer:            issuer,
		membershipService: membershipService,
		emailService:      emailService,
	}
}

// Register creates a local account. Uniqueness checks run before the hash is
// derived so conflicts short-circuit the expensive bcrypt work. The
// repository's unique indexes backstop the narrow race between check and
// write; a late unique violation maps to the same conflict error as the
// pre-check.
func (s *AccountService) Register(email, password, nickname string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	nickname = strings.TrimSpace(nickname)

	_, err := s.accountRepository.ByEmail(email)
	if err == nil {
		return nil, fmt.Errorf("email in use: %w", ErrEmailTaken)
	}
	if !errors.Is(err, repository.ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	_, err = s.accountRepository.ByNickname(nickname)
	if err == nil {
		return nil, fmt.Errorf("nickname in use: %w", ErrNicknameTaken)
	}
	if !errors.Is(err, repository.ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to check nickname: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	account := &model.Account{
		ID:           uuid.New().String(),
		Email:        email,
		Nickname:     nickname,
		PasswordHash: &hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.accountRepository.Create(account)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, fmt.Errorf("email in use: %w", ErrEmailTaken)
		case errors.Is(err, repository.ErrDuplicateNickname):
			return nil, fmt.Errorf("nickname in use: %w", ErrNicknameTaken)
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	err = s.membershipService.EnrollDefault(account.ID)
	if err != nil {
		slog.Warn("failed to enroll account in default channel", "error", err, "account_id", account.ID)
		// Don't fail registration
	}

	err = s.emailService.SendWelcomeEmail(account.Email, account.Nickname)
	if err != nil {
		slog.Warn("failed to send welcome email", "error", err, "account_id", account.ID)
	}

	token, err := s.issuer.Issue(account.ID, account.Nickname)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("account registered", "account_id", account.ID, "email", account.Email)
	return &AuthResult{Token: token, Account: account.View()}, nil
}

// Login authenticates a local account. Unknown email and wrong password are
// deliberately indistinguishable to prevent account enumeration. Accounts
// created via Google sign-in carry no credential hash and can never log in
// locally.
func (s *AccountService) Login(email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	account, err := s.accountRepository.ByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if !account.HasPassword() {
		return nil, fmt.Errorf("invalid credentials: %w", ErrInvalidCredentials)
	}

	if !s.hasher.Compare(password, *account.PasswordHash) {
		return nil, fmt.Errorf("invalid credentials: %w", ErrInvalidCredentials)
	}

	token, err := s.issuer.Issue(account.ID, account.Nickname)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("account logged in", "account_id", account.ID, "email", account.Email)
	return &AuthResult{Token: token, Account: account.View()}, nil
}

// CheckNicknameAvailable reports whether no account currently holds the
// nickname. A concurrent registration may still claim it before the caller
// writes; the unique index resolves that race at write time.
func (s *AccountService) CheckNicknameAvailable(nickname string) (bool, error) {
	nickname = strings.TrimSpace(nickname)

	_, err := s.accountRepository.ByNickname(nickname)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return true, nil
		}
		return false, fmt.Errorf("failed to check nickname: %w", err)
	}

	return false, nil
}

// ProfileUpdate carries the optional profile mutations. Nil fields are left
// untouched; an explicit empty AvatarURL clears the avatar.
type ProfileUpdate struct {
	Nickname        *string
	CurrentPassword *string
	NewPassword     *string
	AvatarURL       *string
}

// UpdateProfile applies the requested changes and re-issues a session token
// since the embedded nickname may have changed. Checks run nickname first,
// then password; only the first failure is surfaced.
func (s *AccountService) UpdateProfile(accountID string, update ProfileUpdate) (*AuthResult, error) {
	account, err := s.accountRepository.ByID(accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, fmt.Errorf("account missing: %w", ErrAccountNotFound)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if update.Nickname != nil {
		nickname := strings.TrimSpace(*update.Nickname)
		if nickname != account.Nickname {
			_, err = s.accountRepository.ByNickname(nickname)
			if err == nil {
				return nil, fmt.Errorf("nickname in use: %w", ErrNicknameTaken)
			}
			if !errors.Is(err, repository.ErrAccountNotFound) {
				return nil, fmt.Errorf("failed to check nickname: %w", err)
			}
			account.Nickname = nickname
		}
	}

	if update.NewPassword != nil && *update.NewPassword != "" {
		if update.CurrentPassword == nil || *update.CurrentPassword == "" {
			return nil, fmt.Errorf("missing current password: %w", ErrCurrentPasswordRequired)
		}

		current := ""
		if account.PasswordHash != nil {
			current = *account.PasswordHash
		}
		if !s.hasher.Compare(*update.CurrentPassword, current) {
			return nil, fmt.Errorf("wrong current password: %w", ErrInvalidCurrentPassword)
		}

		hash, err := s.hasher.Hash(*update.NewPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		account.PasswordHash = &hash
	}

	if update.AvatarURL != nil {
		if *update.AvatarURL == "" {
			account.AvatarURL = nil
		} else {
			account.AvatarURL = update.AvatarURL
		}
	}

	account.UpdatedAt = time.Now()

	err = s.accountRepository.Update(account)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateNickname) {
			return nil, fmt.Errorf("nickname in use: %w", ErrNicknameTaken)
		}
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	token, err := s.issuer.Issue(account.ID, account.Nickname)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("profile updated", "account_id", account.ID)
	return &AuthResult{Token: token, Account: account.View()}, nil
}

// Withdraw hard-deletes the account. Channel memberships left behind become
// orphaned references; cascading cleanup is out of scope.
func (s *AccountService) Withdraw(accountID string) error {
	_, err := s.accountRepository.ByID(accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return fmt.Errorf("account missing: %w", ErrAccountNotFound)
		}
		return fmt.Errorf("failed to get account: %w", err)
	}

	err = s.accountRepository.Delete(accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return fmt.Errorf("account missing: %w", ErrAccountNotFound)
		}
		return fmt.Errorf("failed to delete account: %w", err)
	}

	slog.Info("account withdrawn", "account_id", accountID)
	return nil
}

// ByID resolves an account for callers that already hold a verified token
// subject, such as the auth middleware.
func (s *AccountService) ByID(accountID string) (*model.Account, error) {
	account, err := s.accountRepository.ByID(accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, fmt.Errorf("account missing: %w", ErrAccountNotFound)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}
