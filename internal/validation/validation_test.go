package validation

import (
	"strings"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	valid := []string{
		"alice@example.com",
		"a.b+tag@sub.example.org",
		"x@y.co",
	}
	for _, email := range valid {
		if err := ValidateEmail(email); err != nil {
			t.Errorf("ValidateEmail(%q) = %v, want nil", email, err)
		}
	}

	invalid := []string{
		"",
		"not-an-email",
		"@example.com",
		"alice@",
		"a b@example.com",
		strings.Repeat("a", 250) + "@x.com",
	}
	for _, email := range invalid {
		if err := ValidateEmail(email); err == nil {
			t.Errorf("ValidateEmail(%q) = nil, want error", email)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	valid := []string{
		"secret1",
		"a",
		strings.Repeat("x", 72),
	}
	for _, password := range valid {
		if err := ValidatePassword(password); err != nil {
			t.Errorf("ValidatePassword(%q) = %v, want nil", password, err)
		}
	}

	invalid := []string{
		"",
		strings.Repeat("x", 73),
	}
	for _, password := range invalid {
		if err := ValidatePassword(password); err == nil {
			t.Errorf("ValidatePassword(%q) = nil, want error", password)
		}
	}
}

func TestValidateNickname(t *testing.T) {
	t.Parallel()

	valid := []string{
		"alice",
		"a",
		strings.Repeat("n", 30),
		"  padded  ", // trimmed before checking
	}
	for _, nickname := range valid {
		if err := ValidateNickname(nickname); err != nil {
			t.Errorf("ValidateNickname(%q) = %v, want nil", nickname, err)
		}
	}

	invalid := []string{
		"",
		"   ",
		strings.Repeat("n", 31),
	}
	for _, nickname := range invalid {
		if err := ValidateNickname(nickname); err == nil {
			t.Errorf("ValidateNickname(%q) = nil, want error", nickname)
		}
	}
}

func TestValidateGithubLogin(t *testing.T) {
	t.Parallel()

	valid := []string{
		"a",
		"alice",
		"alice-smith",
		"a1-b2",
		"0octocat",
		strings.Repeat("a", 39),
	}
	for _, login := range valid {
		if err := ValidateGithubLogin(login); err != nil {
			t.Errorf("ValidateGithubLogin(%q) = %v, want nil", login, err)
		}
	}

	invalid := []string{
		"",
		"-alice",
		"alice-",
		"ali_ce",
		"ali ce",
		"ali.ce",
		strings.Repeat("a", 40),
	}
	for _, login := range invalid {
		if err := ValidateGithubLogin(login); err == nil {
			t.Errorf("ValidateGithubLogin(%q) = nil, want error", login)
		}
	}
}
