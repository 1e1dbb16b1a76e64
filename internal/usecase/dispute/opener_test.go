package dispute

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/LavaJover/shvark-slot-service/internal/clock"
	"github.com/LavaJover/shvark-slot-service/internal/config"
	"github.com/LavaJover/shvark-slot-service/internal/domain"
	publisher "github.com/LavaJover/shvark-slot-service/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-slot-service/internal/testutil"
	disputedto "github.com/LavaJover/shvark-slot-service/internal/usecase/dto/dispute"
	"github.com/LavaJover/shvark-slot-service/internal/usecase/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []publisher.DisputeEvent
}

func (p *recordingPublisher) PublishDispute(_ context.Context, e publisher.DisputeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func TestOpen(t *testing.T) {
	store := testutil.NewMemStore()
	store.AddUser("buyer", "seller")
	clk := clock.NewManual(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	engine := notification.NewEngine(notification.Dependencies{Repo: store, Users: store, Clock: clk})
	pub := &recordingPublisher{}
	opener, err := NewOpener(store, engine, pub, nil, clk, config.DisputeConfig{ResolutionPeriod: 48 * time.Hour})
	require.NoError(t, err)

	purchase := &domain.Purchase{ID: "p1", UserID: "buyer", OfferID: "o1"}
	tx := &domain.Transaction{ID: "t1", BuyerID: "buyer", SellerID: "seller", PurchaseID: "p1"}

	d, err := opener.Open(context.Background(), &disputedto.OpenDisputeInput{Purchase: purchase, Transaction: tx, ReporterID: "buyer", Description: "login rejected"})
	require.NoError(t, err)
	assert.Len(t, d.ID, 15)
	assert.Equal(t, domain.DisputeOpened, d.Status)
	assert.Equal(t, domain.DisputeAccessNotWorking, d.DisputeType)
	assert.Equal(t, domain.EntityOffer, d.ReportedEntityType)
	assert.Equal(t, "o1", d.ReportedEntityID)
	assert.Equal(t, "t1", d.TransactionID)
	assert.Equal(t, clk.Now().Add(48*time.Hour), d.ResolutionDeadline)

	reporter := store.NotificationsFor("buyer")
	require.Len(t, reporter, 1)
	assert.Equal(t, domain.PriorityNormal, reporter[0].Priority)
	assert.Equal(t, d.ID, reporter[0].RelatedEntityID)

	seller := store.NotificationsFor("seller")
	require.Len(t, seller, 1)
	assert.Equal(t, domain.PriorityHigh, seller[0].Priority)
	assert.Equal(t, domain.NotificationDisputeReported, seller[0].Type)

	assert.Eventually(t, func() bool { return pub.count() == 1 }, time.Second, 5*time.Millisecond)

	listed, err := opener.ListForPurchase(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	got, err := opener.Get(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, "login rejected", got.Description)
}

func TestOpen_StoreFailure(t *testing.T) {
	store := testutil.NewMemStore()
	store.FailDisputeCreate = true
	engine := notification.NewEngine(notification.Dependencies{Repo: store, Users: store})
	opener, err := NewOpener(store, engine, nil, nil, nil, config.DisputeConfig{})
	require.NoError(t, err)

	_, err = opener.Open(context.Background(), &disputedto.OpenDisputeInput{
		Purchase:    &domain.Purchase{ID: "p1"},
		Transaction: &domain.Transaction{ID: "t1"},
		ReporterID:  "buyer",
	})
	assert.ErrorIs(t, err, testutil.ErrInjected)
	assert.Zero(t, store.NotificationCount())
}
