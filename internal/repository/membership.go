package repository

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/chorushq/chorus/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrChannelNotFound     = errors.New("channel not found")
	ErrDuplicateMembership = errors.New("membership already exists")
)

type MembershipRepository interface {
	Create(member *model.ChannelMember) error
	Exists(channelID, accountID string) (bool, error)
	ChannelExists(channelID string) (bool, error)
}

type membershipRepository struct {
	db *sqlx.DB
}

func NewMembershipRepository(db *sqlx.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) Create(member *model.ChannelMember) error {
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	if member.CreatedAt.IsZero() {
		member.CreatedAt = time.Now()
	}

	query := `INSERT INTO channel_members (id, channel_id, account_id, role, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(query, member.ID, member.ChannelID, member.AccountID, member.Role, member.CreatedAt)
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value") {
			return ErrDuplicateMembership
		}
		if strings.Contains(errStr, "FOREIGN KEY constraint failed") || strings.Contains(errStr, "foreign key constraint") {
			return ErrChannelNotFound
		}
		return err
	}

	return nil
}

func (r *membershipRepository) Exists(channelID, accountID string) (bool, error) {
	var id string
	query := `SELECT id FROM channel_members WHERE channel_id = $1 AND account_id = $2`

	err := r.db.Get(&id, query, channelID, accountID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

func (r *membershipRepository) ChannelExists(channelID string) (bool, error) {
	var id string
	query := `SELECT id FROM channels WHERE id = $1`

	err := r.db.Get(&id, query, channelID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}
