// Package testutil holds an in-memory implementation of the domain
// repositories with failure injection for usecase tests.
package testutil

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/LavaJover/shvark-slot-service/internal/domain"
)

var ErrInjected = errors.New("injected failure")

type MemStore struct {
	mu sync.Mutex

	Offers        map[string]*domain.Offer
	Purchases     map[string]*domain.Purchase
	Transactions  map[string]*domain.Transaction
	txOrder       []string
	Tokens        map[string]*domain.AccessToken
	Notifications []*domain.Notification
	Disputes      map[string]*domain.Dispute
	Steps         map[string]map[domain.SagaStep]time.Time
	Members       map[string]*domain.GroupMember
	Users         map[string]bool
	leases        map[string]sagaLease

	// Failure injection. Counters are decremented on every injected failure.
	// LoseNotificationAcks stores the row and still reports an error.
	FailNotificationInserts int
	LoseNotificationAcks    int
	FailTokenCreate         bool
	FailRawTokenInsert      bool
	FailTransactionCreate   bool
	FailMarkCompleted       bool
	FailGroupAdd            bool
	FailOfferWrites         bool
	FailDisputeCreate       bool
	FailNotificationLookup  bool
	UserLookupErr           error

	UserLookups                int
	NotificationInsertAttempts int
	OfferWrites                int
}

func NewMemStore() *MemStore {
	return &MemStore{
		Offers:       map[string]*domain.Offer{},
		Purchases:    map[string]*domain.Purchase{},
		Transactions: map[string]*domain.Transaction{},
		Tokens:       map[string]*domain.AccessToken{},
		Disputes:     map[string]*domain.Dispute{},
		Steps:        map[string]map[domain.SagaStep]time.Time{},
		Members:      map[string]*domain.GroupMember{},
		Users:        map[string]bool{},
		leases:       map[string]sagaLease{},
	}
}

type sagaLease struct {
	owner string
	until time.Time
}

func IntPtr(v int) *int { return &v }

// ---- seeding / inspection helpers ----

func (s *MemStore) AddUser(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.Users[id] = true
	}
}

func (s *MemStore) PutOffer(o domain.Offer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Offers[o.ID] = &o
}

func (s *MemStore) PutPurchase(p domain.Purchase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Purchases[p.ID] = &p
}

func (s *MemStore) PutTransaction(tx domain.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Transactions[tx.ID] = &tx
	s.txOrder = append(s.txOrder, tx.ID)
}

func (s *MemStore) Offer(id string) domain.Offer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.Offers[id]
}

func (s *MemStore) Purchase(id string) domain.Purchase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.Purchases[id]
}

func (s *MemStore) TransactionsFor(purchaseID string) []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Transaction
	for _, id := range s.txOrder {
		if tx := s.Transactions[id]; tx.PurchaseID == purchaseID {
			out = append(out, *tx)
		}
	}
	return out
}

func (s *MemStore) TokensFor(purchaseID string) []domain.AccessToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.AccessToken
	for _, t := range s.Tokens {
		if t.PurchaseID == purchaseID {
			out = append(out, *t)
		}
	}
	return out
}

func (s *MemStore) NotificationsFor(userID string) []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Notification
	for _, n := range s.Notifications {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out
}

func (s *MemStore) NotificationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Notifications)
}

func (s *MemStore) DisputeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Disputes)
}

// ---- OfferRepository ----

func (s *MemStore) GetOfferByID(_ context.Context, offerID string) (*domain.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.Offers[offerID]
	if !ok {
		return nil, domain.ErrOfferNotFound
	}
	cp := *o
	if o.SlotsAvailable != nil {
		cp.SlotsAvailable = IntPtr(*o.SlotsAvailable)
	}
	return &cp, nil
}

func (s *MemStore) CompareAndSetSlots(_ context.Context, offerID string, observed *int, next int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailOfferWrites {
		return false, ErrInjected
	}
	o, ok := s.Offers[offerID]
	if !ok {
		return false, nil
	}
	switch {
	case observed == nil && o.SlotsAvailable != nil:
		return false, nil
	case observed != nil && (o.SlotsAvailable == nil || *o.SlotsAvailable != *observed):
		return false, nil
	}
	s.OfferWrites++
	o.SlotsAvailable = IntPtr(next)
	return true, nil
}

func (s *MemStore) IncrementSlots(_ context.Context, offerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailOfferWrites {
		return false, ErrInjected
	}
	o, ok := s.Offers[offerID]
	if !ok {
		return false, nil
	}
	current := o.SlotsTotal
	if o.SlotsAvailable != nil {
		current = *o.SlotsAvailable
	}
	if current+1 <= o.SlotsTotal {
		current++
	}
	s.OfferWrites++
	o.SlotsAvailable = IntPtr(current)
	return true, nil
}

// ---- PurchaseRepository ----

func (s *MemStore) GetPurchaseByID(_ context.Context, purchaseID string) (*domain.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.Purchases[purchaseID]
	if !ok {
		return nil, domain.ErrPurchaseNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemStore) UpdatePurchaseStatus(_ context.Context, purchaseID string, status domain.PurchaseStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.Purchases[purchaseID]
	if !ok {
		return domain.ErrPurchaseNotFound
	}
	p.Status = status
	return nil
}

func (s *MemStore) TransitionStatus(_ context.Context, purchaseID string, from, to domain.PurchaseStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.Purchases[purchaseID]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	return true, nil
}

func (s *MemStore) MarkPurchaseCompleted(_ context.Context, purchaseID string, completedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailMarkCompleted {
		return ErrInjected
	}
	p, ok := s.Purchases[purchaseID]
	if !ok {
		return domain.ErrPurchaseNotFound
	}
	p.Status = domain.PurchaseCompleted
	p.AccessProvided = true
	p.CompletedAt = &completedAt
	return nil
}

func (s *MemStore) ClaimSlotsDecrement(_ context.Context, purchaseID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.Purchases[purchaseID]
	if !ok || p.SlotsDecremented {
		return false, nil
	}
	p.SlotsDecremented = true
	return true, nil
}

func (s *MemStore) ReleaseSlotsDecrement(_ context.Context, purchaseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.Purchases[purchaseID]; ok {
		p.SlotsDecremented = false
	}
	return nil
}

func (s *MemStore) MarkAccessConfirmed(_ context.Context, purchaseID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.Purchases[purchaseID]
	if !ok || p.AccessConfirmed {
		return false, nil
	}
	p.AccessConfirmed = true
	p.AccessConfirmedAt = &at
	return true, nil
}

func (s *MemStore) ResetAccessConfirmation(_ context.Context, purchaseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.Purchases[purchaseID]; ok {
		p.AccessConfirmed = false
		p.AccessConfirmedAt = nil
	}
	return nil
}

func (s *MemStore) AcquireSagaLease(_ context.Context, purchaseID, owner string, now, until time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Purchases[purchaseID]; !ok {
		return false, nil
	}
	if l, held := s.leases[purchaseID]; held && l.owner != owner && !l.until.Before(now) {
		return false, nil
	}
	s.leases[purchaseID] = sagaLease{owner: owner, until: until}
	return true, nil
}

func (s *MemStore) ReleaseSagaLease(_ context.Context, purchaseID, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, held := s.leases[purchaseID]; held && l.owner == owner {
		delete(s.leases, purchaseID)
	}
	return nil
}

// LeaseHeld reports whether any lease on the purchase is recorded.
func (s *MemStore) LeaseHeld(purchaseID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, held := s.leases[purchaseID]
	return held
}

// ---- TransactionRepository ----

func (s *MemStore) CreateTransaction(_ context.Context, tx *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailTransactionCreate {
		return ErrInjected
	}
	cp := *tx
	s.Transactions[tx.ID] = &cp
	s.txOrder = append(s.txOrder, tx.ID)
	return nil
}

func (s *MemStore) GetTransactionByID(_ context.Context, transactionID string) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.Transactions[transactionID]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	cp := *tx
	return &cp, nil
}

func (s *MemStore) GetLatestTransactionByPurchaseID(_ context.Context, purchaseID string) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.txOrder) - 1; i >= 0; i-- {
		if tx := s.Transactions[s.txOrder[i]]; tx.PurchaseID == purchaseID {
			cp := *tx
			return &cp, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (s *MemStore) ClaimCharge(_ context.Context, transactionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.Transactions[transactionID]
	if !ok || tx.Status != domain.TransactionPending {
		return false, nil
	}
	tx.Status = domain.TransactionCharging
	return true, nil
}

func (s *MemStore) CompleteTransaction(_ context.Context, transactionID, paymentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.Transactions[transactionID]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	tx.Status = domain.TransactionCompleted
	tx.PaymentID = paymentID
	return nil
}

func (s *MemStore) FailTransaction(_ context.Context, transactionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.Transactions[transactionID]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	tx.Status = domain.TransactionFailed
	return nil
}

// ---- AccessTokenRepository ----

func (s *MemStore) CreateAccessToken(_ context.Context, token *domain.AccessToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailTokenCreate {
		return ErrInjected
	}
	cp := *token
	s.Tokens[token.ID] = &cp
	return nil
}

func (s *MemStore) InsertAccessTokenRaw(_ context.Context, token *domain.AccessToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailRawTokenInsert {
		return ErrInjected
	}
	cp := *token
	s.Tokens[token.ID] = &cp
	return nil
}

func (s *MemStore) GetAccessTokenByHash(_ context.Context, tokenHash string) (*domain.AccessToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.Tokens {
		if t.TokenHash == tokenHash {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrTokenNotFound
}

func (s *MemStore) ConsumeAccessToken(_ context.Context, tokenID string, usedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.Tokens[tokenID]
	if !ok || t.Used {
		return false, nil
	}
	t.Used = true
	t.UsedAt = &usedAt
	return true, nil
}

func (s *MemStore) ExpireUnusedTokens(_ context.Context, purchaseID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.Tokens {
		if t.PurchaseID == purchaseID && !t.Used && t.ExpiresAt.After(at) {
			t.ExpiresAt = at
		}
	}
	return nil
}

func (s *MemStore) DeleteExpiredTokens(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, t := range s.Tokens {
		if t.ExpiresAt.Before(before) {
			delete(s.Tokens, id)
			n++
		}
	}
	return n, nil
}

// ---- NotificationRepository ----

func (s *MemStore) CreateNotification(_ context.Context, n *domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.NotificationInsertAttempts++
	if s.FailNotificationInserts > 0 {
		s.FailNotificationInserts--
		return ErrInjected
	}
	for _, existing := range s.Notifications {
		if existing.ID == n.ID {
			return domain.ErrNotificationExists
		}
	}
	cp := *n
	s.Notifications = append(s.Notifications, &cp)
	if s.LoseNotificationAcks > 0 {
		s.LoseNotificationAcks--
		return ErrInjected
	}
	return nil
}

func (s *MemStore) FindRecentForEntity(_ context.Context, userID string, nType domain.NotificationType, entityType, entityID string, since time.Time) ([]*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailNotificationLookup {
		return nil, ErrInjected
	}
	var out []*domain.Notification
	for _, n := range s.Notifications {
		if n.UserID == userID && n.Type == nType && n.RelatedEntityType == entityType &&
			n.RelatedEntityID == entityID && !n.CreatedAt.Before(since) {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemStore) matchFilter(n *domain.Notification, userID string, f domain.NotificationFilter) bool {
	if n.UserID != userID {
		return false
	}
	if f.Type != nil && n.Type != *f.Type {
		return false
	}
	if f.Read != nil && n.IsRead != *f.Read {
		return false
	}
	if f.Priority != nil && n.Priority != *f.Priority {
		return false
	}
	if f.RelatedEntityType != nil && n.RelatedEntityType != *f.RelatedEntityType {
		return false
	}
	if f.RelatedEntityID != nil && n.RelatedEntityID != *f.RelatedEntityID {
		return false
	}
	return true
}

func (s *MemStore) ListNotifications(_ context.Context, userID string, filter domain.NotificationFilter) ([]*domain.Notification, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []*domain.Notification
	for _, n := range s.Notifications {
		if s.matchFilter(n, userID, filter) {
			cp := *n
			matched = append(matched, &cp)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := int64(len(matched))
	offset := (filter.Page - 1) * filter.PageSize
	if offset >= len(matched) {
		return []*domain.Notification{}, total, nil
	}
	end := offset + filter.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (s *MemStore) CountUnread(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, x := range s.Notifications {
		if x.UserID == userID && !x.IsRead {
			n++
		}
	}
	return n, nil
}

func (s *MemStore) updateNotifications(match func(*domain.Notification) bool, apply func(*domain.Notification)) int64 {
	var n int64
	for _, x := range s.Notifications {
		if match(x) {
			apply(x)
			n++
		}
	}
	return n
}

func (s *MemStore) removeNotifications(match func(*domain.Notification) bool) int64 {
	kept := s.Notifications[:0]
	var n int64
	for _, x := range s.Notifications {
		if match(x) {
			n++
			continue
		}
		kept = append(kept, x)
	}
	s.Notifications = kept
	return n
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func markRead(n *domain.Notification) { n.IsRead = true }

func (s *MemStore) MarkRead(_ context.Context, userID string, ids []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateNotifications(func(n *domain.Notification) bool {
		return n.UserID == userID && contains(ids, n.ID)
	}, markRead), nil
}

func (s *MemStore) MarkAllRead(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateNotifications(func(n *domain.Notification) bool {
		return n.UserID == userID && !n.IsRead
	}, markRead), nil
}

func (s *MemStore) MarkEntityRead(_ context.Context, userID, entityType, entityID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateNotifications(func(n *domain.Notification) bool {
		return n.UserID == userID && !n.IsRead && n.RelatedEntityType == entityType && n.RelatedEntityID == entityID
	}, markRead), nil
}

func (s *MemStore) DeleteNotifications(_ context.Context, userID string, ids []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeNotifications(func(n *domain.Notification) bool {
		return n.UserID == userID && contains(ids, n.ID)
	}), nil
}

func (s *MemStore) DeleteAllNotifications(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeNotifications(func(n *domain.Notification) bool {
		return n.UserID == userID
	}), nil
}

func (s *MemStore) DeleteReadNotifications(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeNotifications(func(n *domain.Notification) bool {
		return n.UserID == userID && n.IsRead
	}), nil
}

func (s *MemStore) DeleteEntityNotifications(_ context.Context, userID, entityType, entityID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeNotifications(func(n *domain.Notification) bool {
		return n.UserID == userID && n.RelatedEntityType == entityType && n.RelatedEntityID == entityID
	}), nil
}

// ---- UserDirectory ----

func (s *MemStore) UserExists(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UserLookups++
	if s.UserLookupErr != nil {
		return false, s.UserLookupErr
	}
	return s.Users[userID], nil
}

// ---- DisputeRepository ----

func (s *MemStore) CreateDispute(_ context.Context, dispute *domain.Dispute) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailDisputeCreate {
		return ErrInjected
	}
	cp := *dispute
	s.Disputes[dispute.ID] = &cp
	return nil
}

func (s *MemStore) GetDisputeByID(_ context.Context, disputeID string) (*domain.Dispute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.Disputes[disputeID]
	if !ok {
		return nil, domain.ErrDisputeNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *MemStore) GetDisputesByPurchaseID(_ context.Context, purchaseID string) ([]*domain.Dispute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Dispute
	for _, d := range s.Disputes {
		if d.PurchaseID == purchaseID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- SagaStepRepository ----

func (s *MemStore) GetCompletedSteps(_ context.Context, purchaseID string) (map[domain.SagaStep]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[domain.SagaStep]time.Time{}
	for step, at := range s.Steps[purchaseID] {
		out[step] = at
	}
	return out, nil
}

func (s *MemStore) MarkStepCompleted(_ context.Context, purchaseID string, step domain.SagaStep, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Steps[purchaseID] == nil {
		s.Steps[purchaseID] = map[domain.SagaStep]time.Time{}
	}
	if _, ok := s.Steps[purchaseID][step]; !ok {
		s.Steps[purchaseID][step] = at
	}
	return nil
}

// ---- GroupMembershipRepository ----

func (s *MemStore) AddMember(_ context.Context, member *domain.GroupMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailGroupAdd {
		return ErrInjected
	}
	key := member.GroupID + "|" + member.UserID
	if _, ok := s.Members[key]; !ok {
		cp := *member
		s.Members[key] = &cp
	}
	return nil
}
