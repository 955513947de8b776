package validation

import (
	"errors"
	"strings"
)

// ValidateNickname validates the display nickname of an account
func ValidateNickname(nickname string) error {
	trimmed := strings.TrimSpace(nickname)

	if trimmed == "" {
		return errors.New("nickname is required")
	}

	if len(trimmed) > 30 {
		return errors.New("nickname is too long (max 30 characters)")
	}

	return nil
}
