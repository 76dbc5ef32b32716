package services

import (
	"context"
	"time"

	"github.com/harekrishna1602/anvesha-2.0/logging"
	"github.com/harekrishna1602/anvesha-2.0/metrics"
	"github.com/harekrishna1602/anvesha-2.0/models"
	"github.com/harekrishna1602/anvesha-2.0/session"
)

// DefaultPollInterval is how often dashboard summaries are recomputed
const DefaultPollInterval = 15 * time.Second

// DashboardSummary is the read-side snapshot shown on the dashboard
type DashboardSummary struct {
	PendingOrders       int64          `json:"pending_orders"`
	ReadyForDispatch    int64          `json:"ready_for_dispatch"`
	LowStockMaterials   int64          `json:"low_stock_materials"`
	UnreadNotifications int64          `json:"unread_notifications"`
	RecentOrders        []models.Order `json:"recent_orders"`
	GeneratedAt         time.Time      `json:"generated_at"`
}

type LowStockCounter interface {
	LowStockCount(ctx context.Context, actor session.Actor) (int64, error)
}

type UnreadCounter interface {
	UnreadCount(ctx context.Context, actor session.Actor) (int64, error)
}

type SummaryService struct {
	orders        OrderGateway
	materials     LowStockCounter
	notifications UnreadCounter
}

func NewSummaryService(orders OrderGateway, materials LowStockCounter, notifications UnreadCounter) *SummaryService {
	return &SummaryService{orders: orders, materials: materials, notifications: notifications}
}

// Summary computes the actor's dashboard snapshot
func (s *SummaryService) Summary(ctx context.Context, actor session.Actor) (*DashboardSummary, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	var (
		summary DashboardSummary
		err     error
	)
	if summary.PendingOrders, err = s.orders.CountByStatus(ctx, actor, models.OrderStatusPending); err != nil {
		return nil, err
	}
	if summary.ReadyForDispatch, err = s.orders.CountByStatus(ctx, actor, models.OrderStatusReadyForDispatch); err != nil {
		return nil, err
	}
	if summary.LowStockMaterials, err = s.materials.LowStockCount(ctx, actor); err != nil {
		return nil, err
	}
	if summary.UnreadNotifications, err = s.notifications.UnreadCount(ctx, actor); err != nil {
		return nil, err
	}
	if summary.RecentOrders, err = s.orders.RecentOrders(ctx, actor, DefaultRecentOrders); err != nil {
		return nil, err
	}
	summary.GeneratedAt = time.Now().UTC()
	return &summary, nil
}

// SummaryProvider computes a dashboard summary for an actor
type SummaryProvider interface {
	Summary(ctx context.Context, actor session.Actor) (*DashboardSummary, error)
}

// SummarySink delivers a summary to an actor's live connections
type SummarySink interface {
	Send(actorID string, payload interface{}) error
}

// SummaryPoller recomputes summaries for every signed-in actor on a fixed
// interval and pushes them to the sink. A freshly signed-in actor receives a
// snapshot immediately. Summaries may be stale by up to one interval.
type SummaryPoller struct {
	summaries SummaryProvider
	tracker   *session.Tracker
	sink      SummarySink
	interval  time.Duration
}

func NewSummaryPoller(summaries SummaryProvider, tracker *session.Tracker, sink SummarySink, interval time.Duration) *SummaryPoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &SummaryPoller{summaries: summaries, tracker: tracker, sink: sink, interval: interval}
}

// Run blocks until ctx is cancelled
func (p *SummaryPoller) Run(ctx context.Context) {
	changes, cancel := p.tracker.Subscribe(16)
	defer cancel()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			if change.SignedIn {
				p.push(ctx, change.Actor)
			}
		case <-ticker.C:
			p.PushAll(ctx)
		}
	}
}

// PushAll pushes a fresh summary to every active actor
func (p *SummaryPoller) PushAll(ctx context.Context) {
	for _, actor := range p.tracker.Active() {
		if ctx.Err() != nil {
			return
		}
		p.push(ctx, actor)
	}
}

func (p *SummaryPoller) push(ctx context.Context, actor session.Actor) {
	log := logging.FromContext(ctx)

	summary, err := p.summaries.Summary(ctx, actor)
	metrics.SummaryPushes.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		log.Warn("failed to compute dashboard summary", "user_id", actor.ID, "error", err)
		return
	}
	if err := p.sink.Send(actor.ID, summary); err != nil {
		log.Warn("failed to push dashboard summary", "user_id", actor.ID, "error", err)
	}
}
