package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type fakeGoogleClient struct {
	authURL  string
	token    *oauth2.Token
	userInfo *GoogleUserInfo

	exchangeErr error
	userInfoErr error
}

func (f *fakeGoogleClient) AuthCodeURL(state string) string {
	return f.authURL + "?state=" + state
}

func (f *fakeGoogleClient) Exchange(_ context.Context, _ string) (*oauth2.Token, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return f.token, nil
}

func (f *fakeGoogleClient) UserInfo(_ context.Context, _ *oauth2.Token) (*GoogleUserInfo, error) {
	if f.userInfoErr != nil {
		return nil, f.userInfoErr
	}
	return f.userInfo, nil
}

func newTestGoogleService(accounts *fakeAccountRepo, members *fakeMembershipRepo, client GoogleClient) *GoogleService {
	return NewGoogleService(accounts, newTestIssuer(), NewMembershipService(members, testDefaultChannel), client)
}

func googleToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  "ya29.test-access",
		RefreshToken: "1//test-refresh",
		Expiry:       time.Now().Add(time.Hour),
	}
}

func TestGoogleService_NotConfigured(t *testing.T) {
	t.Parallel()

	svc := newTestGoogleService(newFakeAccountRepo(), newFakeMembershipRepo(testDefaultChannel), nil)

	_, err := svc.AuthorizationURL("state")
	require.ErrorIs(t, err, ErrGoogleNotConfigured)

	_, err = svc.CompleteAuthorization(context.Background(), "code")
	require.ErrorIs(t, err, ErrGoogleNotConfigured)
}

func TestGoogleService_AuthorizationURL(t *testing.T) {
	t.Parallel()

	client := &fakeGoogleClient{authURL: "https://accounts.google.com/o/oauth2/auth"}
	svc := newTestGoogleService(newFakeAccountRepo(), newFakeMembershipRepo(testDefaultChannel), client)

	url, err := svc.AuthorizationURL("xyz")
	require.NoError(t, err)
	require.Contains(t, url, "state=xyz")
}

func TestGoogleService_CreatesAccountFromProfile(t *testing.T) {
	t.Parallel()

	accounts := newFakeAccountRepo()
	members := newFakeMembershipRepo(testDefaultChannel)
	client := &fakeGoogleClient{
		token: googleToken(),
		userInfo: &GoogleUserInfo{
			Email:   "Gina@X.Com",
			Name:    "gina",
			Picture: "https://lh3.googleusercontent.com/gina",
		},
	}
	svc := newTestGoogleService(accounts, members, client)

	result, err := svc.CompleteAuthorization(context.Background(), "code")
	require.NoError(t, err)
	require.Equal(t, "gina@x.com", result.Account.Email)
	require.Equal(t, "gina", result.Account.Nickname)
	require.True(t, result.Account.GoogleConnected)

	claims, err := newTestIssuer().Verify(result.Token)
	require.NoError(t, err)
	require.Equal(t, result.Account.ID, claims.Subject)

	stored, err := accounts.ByID(result.Account.ID)
	require.NoError(t, err)
	require.Nil(t, stored.PasswordHash)
	require.NotNil(t, stored.GoogleAccessToken)
	require.Equal(t, "ya29.test-access", *stored.GoogleAccessToken)
	require.NotNil(t, stored.GoogleRefreshToken)
	require.Equal(t, "1//test-refresh", *stored.GoogleRefreshToken)
	require.NotNil(t, stored.AvatarURL)

	require.True(t, members.enrolled(testDefaultChannel, result.Account.ID))
}

func TestGoogleService_NicknameFallsBackToEmailLocalPart(t *testing.T) {
	t.Parallel()

	client := &fakeGoogleClient{
		token:    googleToken(),
		userInfo: &GoogleUserInfo{Email: "gina@x.com"},
	}
	svc := newTestGoogleService(newFakeAccountRepo(), newFakeMembershipRepo(testDefaultChannel), client)

	result, err := svc.CompleteAuthorization(context.Background(), "code")
	require.NoError(t, err)
	require.Equal(t, "gina", result.Account.Nickname)
}

func TestGoogleService_NicknameCollisionGetsSuffix(t *testing.T) {
	t.Parallel()

	accounts := newFakeAccountRepo()
	members := newFakeMembershipRepo(testDefaultChannel)
	local := newTestAccountService(accounts, members)

	_, err := local.Register("alice@x.com", "secret1", "alice")
	require.NoError(t, err)

	client := &fakeGoogleClient{
		token:    googleToken(),
		userInfo: &GoogleUserInfo{Email: "other@x.com", Name: "alice"},
	}
	svc := newTestGoogleService(accounts, members, client)

	result, err := svc.CompleteAuthorization(context.Background(), "code")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(result.Account.Nickname, "alice-"))
	require.Len(t, result.Account.Nickname, len("alice-")+4)
}

func TestGoogleService_ReusesAccountWithSameEmail(t *testing.T) {
	t.Parallel()

	accounts := newFakeAccountRepo()
	members := newFakeMembershipRepo(testDefaultChannel)
	local := newTestAccountService(accounts, members)

	registered, err := local.Register("alice@x.com", "secret1", "alice")
	require.NoError(t, err)

	client := &fakeGoogleClient{
		token:    googleToken(),
		userInfo: &GoogleUserInfo{Email: "alice@x.com", Name: "Alice Smith"},
	}
	svc := newTestGoogleService(accounts, members, client)

	result, err := svc.CompleteAuthorization(context.Background(), "code")
	require.NoError(t, err)
	require.Equal(t, registered.Account.ID, result.Account.ID)
	require.Equal(t, "alice", result.Account.Nickname)
	require.Len(t, accounts.accounts, 1)

	// Local password survives google sign-in
	_, err = local.Login("alice@x.com", "secret1")
	require.NoError(t, err)

	connected, err := svc.Connected(result.Account.ID)
	require.NoError(t, err)
	require.True(t, connected)
}

func TestGoogleService_RefreshTokenPreservedWhenOmitted(t *testing.T) {
	t.Parallel()

	accounts := newFakeAccountRepo()
	members := newFakeMembershipRepo(testDefaultChannel)

	existing := googleAccountFixture("gina@x.com", "gina")
	require.NoError(t, accounts.Create(existing))

	// Repeat logins often omit the refresh token
	token := googleToken()
	token.AccessToken = "ya29.new-access"
	token.RefreshToken = ""
	client := &fakeGoogleClient{
		token:    token,
		userInfo: &GoogleUserInfo{Email: "gina@x.com", Name: "gina"},
	}
	svc := newTestGoogleService(accounts, members, client)

	_, err := svc.CompleteAuthorization(context.Background(), "code")
	require.NoError(t, err)

	stored, err := accounts.ByID(existing.ID)
	require.NoError(t, err)
	require.Equal(t, "ya29.new-access", *stored.GoogleAccessToken)
	require.Equal(t, "1//fixture-refresh-token", *stored.GoogleRefreshToken)
}

func TestGoogleService_ExchangeFailure(t *testing.T) {
	t.Parallel()

	client := &fakeGoogleClient{exchangeErr: errors.New("invalid_grant")}
	svc := newTestGoogleService(newFakeAccountRepo(), newFakeMembershipRepo(testDefaultChannel), client)

	_, err := svc.CompleteAuthorization(context.Background(), "bad-code")
	require.ErrorIs(t, err, ErrGoogleExchangeFailed)
}

func TestGoogleService_ProfileFetchFailure(t *testing.T) {
	t.Parallel()

	client := &fakeGoogleClient{
		token:       googleToken(),
		userInfoErr: errors.New("userinfo endpoint returned status 500"),
	}
	svc := newTestGoogleService(newFakeAccountRepo(), newFakeMembershipRepo(testDefaultChannel), client)

	_, err := svc.CompleteAuthorization(context.Background(), "code")
	require.ErrorIs(t, err, ErrGoogleProfileFetchFailed)
}

func TestGoogleService_EnrollmentFailureDoesNotFailSignIn(t *testing.T) {
	t.Parallel()

	members := newFakeMembershipRepo(testDefaultChannel)
	members.channelExistsErr = errors.New("storage down")
	client := &fakeGoogleClient{
		token:    googleToken(),
		userInfo: &GoogleUserInfo{Email: "gina@x.com", Name: "gina"},
	}
	svc := newTestGoogleService(newFakeAccountRepo(), members, client)

	result, err := svc.CompleteAuthorization(context.Background(), "code")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
}

func TestGoogleService_ConnectedUnknownAccount(t *testing.T) {
	t.Parallel()

	svc := newTestGoogleService(newFakeAccountRepo(), newFakeMembershipRepo(testDefaultChannel), nil)

	connected, err := svc.Connected("missing-id")
	require.NoError(t, err)
	require.False(t, connected)
}
