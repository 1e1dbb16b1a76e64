package domain

import (
	"context"
	"time"
)

type GroupMember struct {
	GroupID    string
	UserID     string
	PurchaseID string
	JoinedAt   time.Time
}

type GroupMembershipRepository interface {
	// AddMember is a no-op when the user is already in the group.
	AddMember(ctx context.Context, member *GroupMember) error
}
