package purchase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/LavaJover/shvark-slot-service/internal/clock"
	"github.com/LavaJover/shvark-slot-service/internal/config"
	"github.com/LavaJover/shvark-slot-service/internal/domain"
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/logger"
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-slot-service/internal/testutil"
	"github.com/LavaJover/shvark-slot-service/internal/usecase/access"
	"github.com/LavaJover/shvark-slot-service/internal/usecase/dispute"
	"github.com/LavaJover/shvark-slot-service/internal/usecase/notification"
	"github.com/LavaJover/shvark-slot-service/internal/usecase/slot"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	mu      sync.Mutex
	calls   int
	err     error
	entered chan struct{}
	release chan struct{}
}

func (g *fakeGateway) Charge(_ context.Context, tx *domain.Transaction) (string, error) {
	g.mu.Lock()
	g.calls++
	err, entered, release := g.err, g.entered, g.release
	g.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
		<-release
	}
	if err != nil {
		return "", err
	}
	return "pay_" + tx.ID, nil
}

// hold parks every following Charge until the returned func is called.
// entered receives once per parked call.
func (g *fakeGateway) hold() (entered <-chan struct{}, release func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.entered = make(chan struct{}, 4)
	g.release = make(chan struct{})
	ch := g.release
	return g.entered, func() { close(ch) }
}

func (g *fakeGateway) setErr(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.err = err
}

func (g *fakeGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type recordingEventLogger struct {
	mu     sync.Mutex
	events []logger.SagaStepEvent
}

func (l *recordingEventLogger) LogStep(_ context.Context, e logger.SagaStepEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	return nil
}

func (l *recordingEventLogger) outcomes(step domain.SagaStep) []logger.StepOutcome {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []logger.StepOutcome
	for _, e := range l.events {
		if e.Step == string(step) {
			out = append(out, e.Outcome)
		}
	}
	return out
}

type sagaFixture struct {
	store   *testutil.MemStore
	clock   *clock.Manual
	gateway *fakeGateway
	events  *recordingEventLogger
	issuer  *access.Issuer
	uc      *DefaultPurchaseUsecase
}

const (
	buyerID    = "buyer"
	sellerID   = "seller"
	offerID    = "o1"
	purchaseID = "p1"
)

func newSagaFixture(t *testing.T, slotsAvailable *int) *sagaFixture {
	t.Helper()
	store := testutil.NewMemStore()
	store.AddUser(buyerID, sellerID)
	store.PutOffer(domain.Offer{
		ID:             offerID,
		OwnerID:        sellerID,
		GroupID:        "g1",
		Title:          "Family plan",
		SlotsTotal:     4,
		SlotsAvailable: slotsAvailable,
		PricePerSlot:   decimal.RequireFromString("20.00"),
		Status:         domain.OfferActive,
	})
	store.PutPurchase(domain.Purchase{
		ID:      purchaseID,
		UserID:  buyerID,
		OfferID: offerID,
		Status:  domain.PurchasePendingPayment,
	})

	clk := clock.NewManual(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	m := metrics.NewSlotMetrics(prometheus.NewRegistry())
	engine := notification.NewEngine(notification.Dependencies{
		Repo:    store,
		Users:   store,
		Metrics: m,
		Clock:   clk,
		Config:  config.NotificationConfig{RetryInitialInterval: time.Millisecond},
	})
	issuer := access.NewIssuer(store, clk, m, config.AccessConfig{
		BaseURL:   "https://slots.example.com",
		TokenSalt: "salt",
		TokenTTL:  24 * time.Hour,
	})
	opener, err := dispute.NewOpener(store, engine, nil, m, clk, config.DisputeConfig{})
	require.NoError(t, err)

	gateway := &fakeGateway{}
	events := &recordingEventLogger{}
	uc := NewDefaultPurchaseUsecase(Dependencies{
		Purchases:    store,
		Offers:       store,
		Transactions: store,
		Groups:       store,
		Steps:        store,
		Gateway:      gateway,
		Slots:        slot.NewAllocator(store, m),
		Tokens:       issuer,
		Notifier:     engine,
		Disputes:     opener,
		EventLogger:  events,
		Metrics:      m,
		Clock:        clk,
		Payment:      config.PaymentService{PlatformFeePercent: 10},
		TokenTTL:     24 * time.Hour,
	})
	return &sagaFixture{store: store, clock: clk, gateway: gateway, events: events, issuer: issuer, uc: uc}
}

func (f *sagaFixture) notificationsOfType(userID string, nType domain.NotificationType) []domain.Notification {
	var out []domain.Notification
	for _, n := range f.store.NotificationsFor(userID) {
		if n.Type == nType {
			out = append(out, n)
		}
	}
	return out
}

func (f *sagaFixture) unusedTokens() int {
	n := 0
	for _, tok := range f.store.TokensFor(purchaseID) {
		if !tok.Used && tok.ExpiresAt.After(f.clock.Now()) {
			n++
		}
	}
	return n
}
