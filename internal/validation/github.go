package validation

import (
	"errors"
	"regexp"
)

// GitHub login rules: 1-39 characters, alphanumeric or hyphen,
// no leading or trailing hyphen.
var githubLoginRe = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,37}[a-zA-Z0-9])?$`)

// ValidateGithubLogin validates a GitHub login handle
func ValidateGithubLogin(login string) error {
	if login == "" {
		return errors.New("github login is required")
	}

	if !githubLoginRe.MatchString(login) {
		return errors.New("invalid github login format")
	}

	return nil
}
