package service

import (
	"time"

	"github.com/chorushq/chorus/internal/model"
	"github.com/chorushq/chorus/internal/repository"
	"github.com/google/uuid"
)

// -------- test fakes --------

// fakeAccountRepo is a map-backed AccountRepository that enforces the same
// uniqueness rules as the real unique indexes, so the write-time race
// backstop is exercised too.
type fakeAccountRepo struct {
	accounts map[string]*model.Account

	createErr error
	updateErr error
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[string]*model.Account)}
}

func (f *fakeAccountRepo) Create(account *model.Account) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.accounts {
		if existing.Email == account.Email {
			return repository.ErrDuplicateEmail
		}
		if existing.Nickname == account.Nickname {
			return repository.ErrDuplicateNickname
		}
		if account.GithubLogin != nil && existing.GithubLogin != nil && *existing.GithubLogin == *account.GithubLogin {
			return repository.ErrDuplicateGithubLogin
		}
	}
	clone := *account
	f.accounts[account.ID] = &clone
	return nil
}

func (f *fakeAccountRepo) ByID(id string) (*model.Account, error) {
	account, ok := f.accounts[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	clone := *account
	return &clone, nil
}

func (f *fakeAccountRepo) ByEmail(email string) (*model.Account, error) {
	for _, account := range f.accounts {
		if account.Email == email {
			clone := *account
			return &clone, nil
		}
	}
	return nil, repository.ErrAccountNotFound
}

func (f *fakeAccountRepo) ByNickname(nickname string) (*model.Account, error) {
	for _, account := range f.accounts {
		if account.Nickname == nickname {
			clone := *account
			return &clone, nil
		}
	}
	return nil, repository.ErrAccountNotFound
}

func (f *fakeAccountRepo) ByGithubLogin(login string) (*model.Account, error) {
	for _, account := range f.accounts {
		if account.GithubLogin != nil && *account.GithubLogin == login {
			clone := *account
			return &clone, nil
		}
	}
	return nil, repository.ErrAccountNotFound
}

func (f *fakeAccountRepo) Update(account *model.Account) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.accounts[account.ID]; !ok {
		return repository.ErrAccountNotFound
	}
	for id, existing := range f.accounts {
		if id == account.ID {
			continue
		}
		if existing.Nickname == account.Nickname {
			return repository.ErrDuplicateNickname
		}
		if account.GithubLogin != nil && existing.GithubLogin != nil && *existing.GithubLogin == *account.GithubLogin {
			return repository.ErrDuplicateGithubLogin
		}
	}
	clone := *account
	f.accounts[account.ID] = &clone
	return nil
}

func (f *fakeAccountRepo) Delete(id string) error {
	if _, ok := f.accounts[id]; !ok {
		return repository.ErrAccountNotFound
	}
	delete(f.accounts, id)
	return nil
}

type fakeMembershipRepo struct {
	channels map[string]bool
	members  map[string]bool

	channelExistsErr error
	createErr        error
}

func newFakeMembershipRepo(channels ...string) *fakeMembershipRepo {
	repo := &fakeMembershipRepo{
		channels: make(map[string]bool),
		members:  make(map[string]bool),
	}
	for _, id := range channels {
		repo.channels[id] = true
	}
	return repo
}

func (f *fakeMembershipRepo) Create(member *model.ChannelMember) error {
	if f.createErr != nil {
		return f.createErr
	}
	if !f.channels[member.ChannelID] {
		return repository.ErrChannelNotFound
	}
	key := member.ChannelID + ":" + member.AccountID
	if f.members[key] {
		return repository.ErrDuplicateMembership
	}
	f.members[key] = true
	return nil
}

func (f *fakeMembershipRepo) Exists(channelID, accountID string) (bool, error) {
	return f.members[channelID+":"+accountID], nil
}

func (f *fakeMembershipRepo) ChannelExists(channelID string) (bool, error) {
	if f.channelExistsErr != nil {
		return false, f.channelExistsErr
	}
	return f.channels[channelID], nil
}

func (f *fakeMembershipRepo) enrolled(channelID, accountID string) bool {
	return f.members[channelID+":"+accountID]
}

// -------- helpers --------

// googleAccountFixture builds a stored passwordless account the way the
// google sign-in flow creates one.
func googleAccountFixture(email, nickname string) *model.Account {
	access := "ya29.fixture-access-token"
	refresh := "1//fixture-refresh-token"
	expiry := time.Now().Add(time.Hour)
	now := time.Now()
	return &model.Account{
		ID:                 uuid.New().String(),
		Email:              email,
		Nickname:           nickname,
		GoogleAccessToken:  &access,
		GoogleRefreshToken: &refresh,
		GoogleTokenExpiry:  &expiry,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

const testDefaultChannel = "general"

func newTestIssuer() *TokenIssuer {
	return NewTokenIssuer("test-secret", time.Hour)
}

func newTestAccountService(accounts *fakeAccountRepo, members *fakeMembershipRepo) *AccountService {
	return NewAccountService(
		accounts,
		NewPasswordHasher(),
		newTestIssuer(),
		NewMembershipService(members, testDefaultChannel),
		NewEmailService("", "noreply@chorus.test", "Chorus", true),
	)
}
