package notification

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/LavaJover/shvark-slot-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, f *fixture, userID string, n int) []*domain.Notification {
	t.Helper()
	var out []*domain.Notification
	for i := 0; i < n; i++ {
		created := f.engine.Create(context.Background(), CreateInput{
			UserID:             userID,
			Type:               domain.NotificationSaleCompleted,
			Title:              fmt.Sprintf("Sale %d", i),
			RelatedEntityType:  domain.EntityPurchase,
			RelatedEntityID:    fmt.Sprintf("p%d", i%2),
			SkipDuplicateCheck: true,
		})
		require.NotNil(t, created)
		out = append(out, created)
		f.clock.Advance(time.Second)
	}
	return out
}

func TestMarkAsRead_EmptyIsNoop(t *testing.T) {
	f := newFixture(t)
	seed(t, f, "seller", 2)

	assert.True(t, f.engine.MarkAsRead(context.Background(), nil, "seller"))
	assert.True(t, f.engine.MarkAsRead(context.Background(), []string{}, "seller"))
	for _, n := range f.store.NotificationsFor("seller") {
		assert.False(t, n.IsRead)
	}
}

func TestMarkAsRead_ScopedByOwner(t *testing.T) {
	f := newFixture(t)
	own := seed(t, f, "seller", 1)
	foreign := seed(t, f, "buyer", 1)
	ctx := context.Background()

	assert.True(t, f.engine.MarkAsRead(ctx, []string{own[0].ID, foreign[0].ID}, "seller"))
	assert.True(t, f.store.NotificationsFor("seller")[0].IsRead)
	assert.False(t, f.store.NotificationsFor("buyer")[0].IsRead)
}

func TestMarkAllAndEntityRead(t *testing.T) {
	f := newFixture(t)
	seed(t, f, "seller", 4)
	ctx := context.Background()

	require.True(t, f.engine.MarkEntityAsRead(ctx, "seller", domain.EntityPurchase, "p0"))
	unread, err := f.engine.UnreadCount(ctx, "seller")
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)

	require.True(t, f.engine.MarkAllAsRead(ctx, "seller"))
	unread, err = f.engine.UnreadCount(ctx, "seller")
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestDeleteVariants(t *testing.T) {
	f := newFixture(t)
	items := seed(t, f, "seller", 6)
	ctx := context.Background()

	assert.True(t, f.engine.Delete(ctx, "", "seller"))
	assert.True(t, f.engine.Delete(ctx, items[0].ID, "buyer"), "foreign delete is a successful no-op")
	assert.Len(t, f.store.NotificationsFor("seller"), 6)

	assert.True(t, f.engine.Delete(ctx, items[0].ID, "seller"))
	assert.True(t, f.engine.DeleteMany(ctx, []string{items[1].ID, items[2].ID}, "seller"))
	assert.Len(t, f.store.NotificationsFor("seller"), 3)

	require.True(t, f.engine.MarkAsRead(ctx, []string{items[3].ID}, "seller"))
	assert.True(t, f.engine.DeleteAllRead(ctx, "seller"))
	assert.Len(t, f.store.NotificationsFor("seller"), 2)

	assert.True(t, f.engine.DeleteByEntity(ctx, "seller", domain.EntityPurchase, "p0"))
	remaining := f.store.NotificationsFor("seller")
	require.Len(t, remaining, 1)
	assert.Equal(t, items[5].ID, remaining[0].ID)

	assert.True(t, f.engine.DeleteAll(ctx, "seller"))
	assert.Empty(t, f.store.NotificationsFor("seller"))
}

func TestGetUserNotifications_OrderAndPagination(t *testing.T) {
	f := newFixture(t)
	items := seed(t, f, "seller", 5)
	ctx := context.Background()

	page, err := f.engine.GetUserNotifications(ctx, "seller", domain.NotificationFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, Pagination{Page: 2, PageSize: 2, Total: 5, TotalPages: 3}, page.Pagination)
	require.Len(t, page.Notifications, 2)
	assert.Equal(t, items[2].ID, page.Notifications[0].ID)
	assert.Equal(t, items[1].ID, page.Notifications[1].ID)
}

func TestGetUserNotifications_Defaults(t *testing.T) {
	f := newFixture(t)
	seed(t, f, "seller", 3)

	page, err := f.engine.GetUserNotifications(context.Background(), "seller", domain.NotificationFilter{PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, DefaultPage, page.Pagination.Page)
	assert.Equal(t, MaxPageSize, page.Pagination.PageSize)

	page, err = f.engine.GetUserNotifications(context.Background(), "seller", domain.NotificationFilter{})
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, page.Pagination.PageSize)
	assert.Len(t, page.Notifications, 3)
}

func TestGetUserNotifications_Filters(t *testing.T) {
	f := newFixture(t)
	items := seed(t, f, "seller", 4)
	ctx := context.Background()
	require.True(t, f.engine.MarkAsRead(ctx, []string{items[0].ID}, "seller"))

	read := true
	page, err := f.engine.GetUserNotifications(ctx, "seller", domain.NotificationFilter{Read: &read})
	require.NoError(t, err)
	require.Len(t, page.Notifications, 1)
	assert.Equal(t, items[0].ID, page.Notifications[0].ID)

	entityType, entityID := domain.EntityPurchase, "p1"
	page, err = f.engine.GetUserNotifications(ctx, "seller", domain.NotificationFilter{
		RelatedEntityType: &entityType, RelatedEntityID: &entityID,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Pagination.Total)

	empty, err := f.engine.GetUserNotifications(ctx, "nobody", domain.NotificationFilter{})
	require.NoError(t, err)
	assert.NotNil(t, empty.Notifications)
	assert.Zero(t, empty.Pagination.TotalPages)
}
