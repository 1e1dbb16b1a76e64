package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SlotMetrics holds the counters of the purchase saga and notification engine.
// All Record* methods are safe on a nil receiver.
type SlotMetrics struct {
	// Saga outcomes
	PurchasesTotal       *prometheus.CounterVec
	PurchaseAmountTotal  *prometheus.CounterVec
	PlatformFeeTotal     *prometheus.CounterVec
	SagaStepFailures     *prometheus.CounterVec
	SagaDuration         *prometheus.HistogramVec
	AccessFallbackIssued prometheus.Counter

	// Inventory
	SlotDecrementsTotal *prometheus.CounterVec
	SlotRestoresTotal   *prometheus.CounterVec

	// Access tokens
	TokenRedemptionsTotal *prometheus.CounterVec

	// Notifications
	NotificationsTotal *prometheus.CounterVec

	// Disputes
	DisputesOpenedTotal prometheus.Counter
}

func NewSlotMetrics(reg prometheus.Registerer) *SlotMetrics {
	factory := promauto.With(reg)

	return &SlotMetrics{
		PurchasesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "slot_purchases_total",
				Help: "Purchases that left the saga, by outcome (completed, recovered, failed, pending, refunded)",
			},
			[]string{"outcome"},
		),
		PurchaseAmountTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "slot_purchase_amount_total",
				Help: "Charged amount of completed purchases",
			},
			[]string{"offer_id"},
		),
		PlatformFeeTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "slot_platform_fee_total",
				Help: "Platform fee collected on completed purchases",
			},
			[]string{"offer_id"},
		),
		SagaStepFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "slot_saga_step_failures_total",
				Help: "Failed saga steps by step and policy",
			},
			[]string{"step", "policy"},
		),
		SagaDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "slot_saga_duration_seconds",
				Help:    "Saga run time in seconds",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms, 20ms, 40ms...
			},
			[]string{"entry"},
		),
		AccessFallbackIssued: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "slot_access_fallback_issued_total",
				Help: "Access tokens issued through the fallback insert path",
			},
		),
		SlotDecrementsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "slot_decrements_total",
				Help: "Slot decrement attempts by result (ok, no_slots, conflict, error)",
			},
			[]string{"result"},
		),
		SlotRestoresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "slot_restores_total",
				Help: "Slot restore attempts by result",
			},
			[]string{"result"},
		),
		TokenRedemptionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "slot_token_redemptions_total",
				Help: "Access token redemptions by result",
			},
			[]string{"result"},
		),
		NotificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "slot_notifications_total",
				Help: "Notification create calls by priority and result (created, suppressed, failed, unknown_user)",
			},
			[]string{"priority", "result"},
		),
		DisputesOpenedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "slot_disputes_opened_total",
				Help: "Disputes opened for broken access",
			},
		),
	}
}

// RecordPurchase records the terminal outcome of a saga run
func (m *SlotMetrics) RecordPurchase(outcome string) {
	if m == nil {
		return
	}
	m.PurchasesTotal.WithLabelValues(outcome).Inc()
}

// RecordCharge records money moved for a completed purchase
func (m *SlotMetrics) RecordCharge(offerID string, amount, fee float64) {
	if m == nil {
		return
	}
	m.PurchaseAmountTotal.WithLabelValues(offerID).Add(amount)
	m.PlatformFeeTotal.WithLabelValues(offerID).Add(fee)
}

func (m *SlotMetrics) RecordStepFailure(step, policy string) {
	if m == nil {
		return
	}
	m.SagaStepFailures.WithLabelValues(step, policy).Inc()
}

func (m *SlotMetrics) ObserveSaga(entry string, seconds float64) {
	if m == nil {
		return
	}
	m.SagaDuration.WithLabelValues(entry).Observe(seconds)
}

func (m *SlotMetrics) RecordFallbackIssued() {
	if m == nil {
		return
	}
	m.AccessFallbackIssued.Inc()
}

func (m *SlotMetrics) RecordSlotDecrement(result string) {
	if m == nil {
		return
	}
	m.SlotDecrementsTotal.WithLabelValues(result).Inc()
}

func (m *SlotMetrics) RecordSlotRestore(result string) {
	if m == nil {
		return
	}
	m.SlotRestoresTotal.WithLabelValues(result).Inc()
}

func (m *SlotMetrics) RecordRedemption(result string) {
	if m == nil {
		return
	}
	m.TokenRedemptionsTotal.WithLabelValues(result).Inc()
}

func (m *SlotMetrics) RecordNotification(priority, result string) {
	if m == nil {
		return
	}
	m.NotificationsTotal.WithLabelValues(priority, result).Inc()
}

func (m *SlotMetrics) RecordDisputeOpened() {
	if m == nil {
		return
	}
	m.DisputesOpenedTotal.Inc()
}
