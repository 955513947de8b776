package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/chorushq/chorus/internal/model"
	"github.com/chorushq/chorus/internal/repository"
)

// MembershipService grants new accounts membership in the default channel.
// Enrollment is a best-effort side effect of account creation: callers log
// failures and never propagate them.
type MembershipService struct {
	membershipRepository repository.MembershipRepository
	defaultChannelID     string
}

func NewMembershipService(membershipRepository repository.MembershipRepository, defaultChannelID string) *MembershipService {
	return &MembershipService{
		membershipRepository: membershipRepository,
		defaultChannelID:     defaultChannelID,
	}
}

// EnrollDefault adds the account to the default channel with the "member"
// role. Enrollment is idempotent: an existing membership is left untouched.
// A missing default channel is tolerated and skipped.
func (s *MembershipService) EnrollDefault(accountID string) error {
	if s.defaultChannelID == "" {
		return nil
	}

	exists, err := s.membershipRepository.ChannelExists(s.defaultChannelID)
	if err != nil {
		return fmt.Errorf("failed to check default channel: %w", err)
	}
	if !exists {
		slog.Info("default channel does not exist, skipping enrollment", "channel_id", s.defaultChannelID)
		return nil
	}

	enrolled, err := s.membershipRepository.Exists(s.defaultChannelID, accountID)
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if enrolled {
		return nil
	}

	member := &model.ChannelMember{
		ChannelID: s.defaultChannelID,
		AccountID: accountID,
		Role:      model.RoleMember,
	}

	err = s.membershipRepository.Create(member)
	if err != nil {
		// A concurrent enrollment hitting the unique index is still a success
		if errors.Is(err, repository.ErrDuplicateMembership) {
			return nil
		}
		if errors.Is(err, repository.ErrChannelNotFound) {
			slog.Info("default channel disappeared during enrollment", "channel_id", s.defaultChannelID)
			return nil
		}
		return fmt.Errorf("failed to create membership: %w", err)
	}

	return nil
}
