package notification

import (
	"context"
	"fmt"

	"github.com/LavaJover/shvark-slot-service/internal/domain"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type Page struct {
	Notifications []*domain.Notification `json:"notifications"`
	Pagination    Pagination             `json:"pagination"`
}

// GetUserNotifications lists notifications newest first.
func (e *Engine) GetUserNotifications(ctx context.Context, userID string, filter domain.NotificationFilter) (*Page, error) {
	if filter.Page < 1 {
		filter.Page = DefaultPage
	}
	if filter.PageSize < 1 {
		filter.PageSize = DefaultPageSize
	}
	if filter.PageSize > MaxPageSize {
		filter.PageSize = MaxPageSize
	}

	items, total, err := e.repo.ListNotifications(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	if items == nil {
		items = []*domain.Notification{}
	}

	return &Page{
		Notifications: items,
		Pagination: Pagination{
			Page:       filter.Page,
			PageSize:   filter.PageSize,
			Total:      total,
			TotalPages: int((total + int64(filter.PageSize) - 1) / int64(filter.PageSize)),
		},
	}, nil
}

func (e *Engine) UnreadCount(ctx context.Context, userID string) (int64, error) {
	n, err := e.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return n, nil
}
