package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/chorushq/chorus/internal/model"
	"github.com/chorushq/chorus/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var (
	ErrGoogleNotConfigured      = errors.New("google sign-in is not configured")
	ErrGoogleExchangeFailed     = errors.New("google token exchange failed")
	ErrGoogleProfileFetchFailed = errors.New("failed to fetch google profile")
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Chorus shares team calendars, so consent covers identity plus calendar
// read/write/share access.
var googleScopes = []string{
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/calendar",
	"https://www.googleapis.com/auth/calendar.events",
	"https://www.googleapis.com/auth/calendar.acls",
}

type GoogleUserInfo struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GoogleClient is the outbound collaborator for the OAuth dance. The real
// implementation wraps golang.org/x/oauth2; tests substitute a fake.
type GoogleClient interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	UserInfo(ctx context.Context, token *oauth2.Token) (*GoogleUserInfo, error)
}

type googleClient struct {
	config *oauth2.Config
}

// NewGoogleClient returns nil when no client id is configured; the service
// then reports ErrGoogleNotConfigured for every Google operation.
func NewGoogleClient(clientID, clientSecret, redirectURL string) GoogleClient {
	if clientID == "" {
		return nil
	}

	return &googleClient{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       googleScopes,
			Endpoint:     google.Endpoint,
		},
	}
}

// AuthCodeURL requests offline access and forces the consent screen so
// Google reliably reissues a refresh token even on repeat logins.
func (c *googleClient) AuthCodeURL(state string) string {
	return c.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (c *googleClient) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return c.config.Exchange(ctx, code)
}

func (c *googleClient) UserInfo(ctx context.Context, token *oauth2.Token) (*GoogleUserInfo, error) {
	client := c.config.Client(ctx, token)

	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			slog.Error("failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo endpoint returned status %d", resp.StatusCode)
	}

	userInfo := &GoogleUserInfo{}
	err = json.NewDecoder(resp.Body).Decode(userInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	return userInfo, nil
}

// GoogleService reconciles Google identities with local accounts. Email is
// the join key: an account registered locally and later signed in through
// Google with the same email is the same account.
type GoogleService struct {
	accountRepository repository.AccountRepository
	issuer            *TokenIssuer
	membershipService *MembershipService
	client            GoogleClient
}

func NewGoogleService(
	accountRepository repository.AccountRepository,
	issuer *TokenIssuer,
	membershipService *MembershipService,
	client GoogleClient,
) *GoogleService {
	return &GoogleService{
		accountRepository: accountRepository,
		issuer:            issuer,
		membershipService: membershipService,
		client:            client,
	}
}

func (s *GoogleService) AuthorizationURL(state string) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("missing client credentials: %w", ErrGoogleNotConfigured)
	}
	return s.client.AuthCodeURL(state), nil
}

// CompleteAuthorization exchanges the authorization code, fetches the remote
// profile and finds or creates the matching local account. Transport and
// provider failures surface immediately; nothing is retried here.
func (s *GoogleService) CompleteAuthorization(ctx context.Context, code string) (*AuthResult, error) {
	if s.client == nil {
		return nil, fmt.Errorf("missing client credentials: %w", ErrGoogleNotConfigured)
	}

	token, err := s.client.Exchange(ctx, code)
	if err != nil {
		slog.Error("google code exchange failed", "error", err)
		return nil, fmt.Errorf("code exchange rejected: %w", ErrGoogleExchangeFailed)
	}

	info, err := s.client.UserInfo(ctx, token)
	if err != nil {
		slog.Error("google profile fetch failed", "error", err)
		return nil, fmt.Errorf("profile fetch rejected: %w", ErrGoogleProfileFetchFailed)
	}

	email := strings.TrimSpace(strings.ToLower(info.Email))

	account, err := s.accountRepository.ByEmail(email)
	if err != nil {
		if !errors.Is(err, repository.ErrAccountNotFound) {
			return nil, fmt.Errorf("failed to lookup account: %w", err)
		}

		account, err = s.createFromProfile(email, info, token)
		if err != nil {
			return nil, err
		}

		err = s.membershipService.EnrollDefault(account.ID)
		if err != nil {
			slog.Warn("failed to enroll account in default channel", "error", err, "account_id", account.ID)
			// Don't fail sign-in
		}

		slog.Info("account created via google", "account_id", account.ID, "email", account.Email)
	} else {
		err = s.refreshTokens(account, token)
		if err != nil {
			return nil, err
		}

		slog.Info("account signed in via google", "account_id", account.ID, "email", account.Email)
	}

	sessionToken, err := s.issuer.Issue(account.ID, account.Nickname)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &AuthResult{Token: sessionToken, Account: account.View()}, nil
}

// createFromProfile builds a passwordless account from the Google profile.
// The nickname comes from the display name, falling back to the local part
// of the email; a collision gets a short random suffix, checked once and
// treated as practically collision-free afterwards.
func (s *GoogleService) createFromProfile(email string, info *GoogleUserInfo, token *oauth2.Token) (*model.Account, error) {
	nickname := strings.TrimSpace(info.Name)
	if nickname == "" {
		nickname, _, _ = strings.Cut(email, "@")
	}

	_, err := s.accountRepository.ByNickname(nickname)
	if err == nil {
		nickname = nickname + "-" + randomSuffix()
	} else if !errors.Is(err, repository.ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to check nickname: %w", err)
	}

	now := time.Now()
	account := &model.Account{
		ID:                uuid.New().String(),
		Email:             email,
		Nickname:          nickname,
		GoogleAccessToken: &token.AccessToken,
		GoogleTokenExpiry: &token.Expiry,
		CreatedAt:         now,
		UpdatedAt:         now,
		// password_hash stays NULL: google accounts have no local credential
	}
	if info.Picture != "" {
		picture := info.Picture
		account.AvatarURL = &picture
	}
	if token.RefreshToken != "" {
		refresh := token.RefreshToken
		account.GoogleRefreshToken = &refresh
	}

	err = s.accountRepository.Create(account)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, fmt.Errorf("email in use: %w", ErrEmailTaken)
		}
		if errors.Is(err, repository.ErrDuplicateNickname) {
			return nil, fmt.Errorf("nickname in use: %w", ErrNicknameTaken)
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}

// refreshTokens overwrites the stored access token and expiry on every
// login. The refresh token is only replaced when Google reissues one, since
// repeat logins may omit it.
func (s *GoogleService) refreshTokens(account *model.Account, token *oauth2.Token) error {
	access := token.AccessToken
	expiry := token.Expiry
	account.GoogleAccessToken = &access
	account.GoogleTokenExpiry = &expiry
	if token.RefreshToken != "" {
		refresh := token.RefreshToken
		account.GoogleRefreshToken = &refresh
	}
	account.UpdatedAt = time.Now()

	err := s.accountRepository.Update(account)
	if err != nil {
		return fmt.Errorf("failed to store google tokens: %w", err)
	}

	return nil
}

// Connected reports whether the account has a stored Google access token.
// This is a presence check only; the token may already be expired or revoked
// at the provider.
func (s *GoogleService) Connected(accountID string) (bool, error) {
	account, err := s.accountRepository.ByID(accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get account: %w", err)
	}

	return account.GoogleConnected(), nil
}

// randomSuffix returns 4 hex characters for nickname disambiguation.
func randomSuffix() string {
	bytes := make([]byte, 2)
	_, err := rand.Read(bytes)
	if err != nil {
		panic("failed to generate random suffix: " + err.Error())
	}
	return hex.EncodeToString(bytes)
}
