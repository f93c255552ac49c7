package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/procuremart/internal/domain/model"
	"github.com/polkiloo/procuremart/internal/metrics"
)

// AuditSource exposes the reads the verifier needs.
type AuditSource interface {
	// RecentlyUpdatedOrders returns up to limit orders after the cursor in
	// (UpdatedAt, ID) order.
	RecentlyUpdatedOrders(ctx context.Context, after model.OrderCursor, limit int) ([]model.Order, error)
	PaymentHistory(ctx context.Context, orderID uuid.UUID) ([]model.PaymentAuditEntry, error)
}

const (
	FindingSequence     = "sequence"
	FindingConfirmation = "confirmation_mismatch"
	FindingPhase        = "phase_mismatch"
)

// Finding is one inconsistency between an order and its payment audit log.
type Finding struct {
	OrderID uuid.UUID
	Kind    string
	Detail  string
}

type Options struct {
	Interval time.Duration
	Window   time.Duration
	Batch    int
	Workers  int
}

// AuditVerifier periodically replays the payment audit log of recently
// updated orders and reports orders whose history does not explain their
// current payment state.
type AuditVerifier struct {
	source   AuditSource
	interval time.Duration
	window   time.Duration
	batch    int
	workers  int
	metrics  *metrics.Procurement
	logger   *slog.Logger
	now      func() time.Time

	jobs   chan model.Order
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

func NewAuditVerifier(source AuditSource, opts Options, m *metrics.Procurement, logger *slog.Logger) *AuditVerifier {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Batch <= 0 {
		opts.Batch = 1
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	if opts.Window <= 0 {
		opts.Window = time.Hour
	}
	return &AuditVerifier{
		source:   source,
		interval: opts.Interval,
		window:   opts.Window,
		batch:    opts.Batch,
		workers:  opts.Workers,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Start launches the dispatcher and the worker pool. The sweep keeps running
// after ctx is done; Stop ends it.
func (v *AuditVerifier) Start(ctx context.Context) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	v.cancel = cancel
	v.jobs = make(chan model.Order, v.batch*v.workers)

	for i := 0; i < v.workers; i++ {
		v.wg.Add(1)
		go v.worker(runCtx)
	}

	v.wg.Add(1)
	go v.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (v *AuditVerifier) Stop() {
	v.mu.Lock()
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.mu.Unlock()

	v.wg.Wait()
}

func (v *AuditVerifier) dispatch(ctx context.Context) {
	defer v.wg.Done()
	defer close(v.jobs)
	ticker := time.NewTicker(v.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			v.sweep(ctx)
		}
	}
}

// sweep drains the window page by page, resuming each page after the last
// order dispatched. Orders updated after the sweep started are left for the
// next sweep.
func (v *AuditVerifier) sweep(ctx context.Context) {
	started := v.now()
	cursor := model.OrderCursor{UpdatedAt: started.Add(-v.window)}
	dispatched := 0

	var err error
	for {
		var page []model.Order
		page, err = v.source.RecentlyUpdatedOrders(ctx, cursor, v.batch)
		if err != nil {
			break
		}
		for _, order := range page {
			if order.UpdatedAt.After(started) {
				page = nil
				break
			}
			select {
			case <-ctx.Done():
				return
			case v.jobs <- order:
			}
			dispatched++
			cursor = order.Cursor()
		}
		if len(page) < v.batch {
			break
		}
	}

	v.metrics.ObserveVerify(v.now().Sub(started), err)
	if err != nil {
		v.logger.Error("list orders for audit verification failed",
			slog.Int("dispatched", dispatched), slog.String("error", err.Error()))
		return
	}
	v.logger.Debug("audit sweep dispatched", slog.Int("orders", dispatched))
}

func (v *AuditVerifier) worker(ctx context.Context) {
	defer v.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case order, ok := <-v.jobs:
			if !ok {
				return
			}
			v.report(v.Verify(ctx, order))
		}
	}
}

// Verify replays one order's audit log and returns what does not add up.
func (v *AuditVerifier) Verify(ctx context.Context, order model.Order) []Finding {
	entries, err := v.source.PaymentHistory(ctx, order.ID)
	if err != nil {
		v.logger.Error("load payment audit log failed", slog.String("order_id", order.ID.String()), slog.String("error", err.Error()))
		return nil
	}

	history := model.ReplayPaymentHistory(entries)
	var findings []Finding
	for _, anomaly := range history.Anomalies {
		findings = append(findings, Finding{OrderID: order.ID, Kind: FindingSequence, Detail: anomaly.String()})
	}

	confirmed := history.Confirmations > 0
	if confirmed != (order.PaymentConfirmedAt != nil) {
		findings = append(findings, Finding{
			OrderID: order.ID,
			Kind:    FindingConfirmation,
			Detail:  "paymentConfirmedAt disagrees with the recorded confirmations",
		})
	}
	if order.Status == model.OrderStatusAwaitingConfirmation && history.Phase != model.PaymentPhaseSubmitted {
		findings = append(findings, Finding{
			OrderID: order.ID,
			Kind:    FindingPhase,
			Detail:  "order awaits confirmation but its last payment action is " + string(history.Phase),
		})
	}
	return findings
}

func (v *AuditVerifier) report(findings []Finding) {
	for _, f := range findings {
		v.metrics.Anomaly(f.Kind)
		v.logger.Warn("payment audit anomaly",
			slog.String("order_id", f.OrderID.String()),
			slog.String("kind", f.Kind),
			slog.String("detail", f.Detail),
		)
	}
}
