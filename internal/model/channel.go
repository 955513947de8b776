package model

import "time"

const RoleMember = "member"

type Channel struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

type ChannelMember struct {
	ID        string    `db:"id"`
	ChannelID string    `db:"channel_id"`
	AccountID string    `db:"account_id"`
	Role      string    `db:"role"`
	CreatedAt time.Time `db:"created_at"`
}
