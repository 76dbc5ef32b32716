package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harekrishna1602/anvesha-2.0/models"
	"github.com/harekrishna1602/anvesha-2.0/session"
	"github.com/harekrishna1602/anvesha-2.0/tests/testutil"
)

func TestSummaryService_Summary(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	gateway := NewGormOrderGateway(db)
	notifications := NewNotificationService(db)
	orders := NewOrderService(gateway, NewCustomerService(db), NewProductService(db), notifications, nil)
	summaries := NewSummaryService(gateway, NewRawMaterialService(db), notifications)

	customer := testutil.SeedCustomer(t, db, testActor.ID, "Acme")
	product := testutil.SeedProduct(t, db, testActor.ID, "Widget", "10")
	testutil.SeedRawMaterial(t, db, testActor.ID, "Resin", "1", "5")
	testutil.SeedRawMaterial(t, db, testActor.ID, "Steel", "100", "5")

	var placed []*models.Order
	for i := 0; i < 7; i++ {
		o, err := orders.PlaceOrder(ctx, testActor, customer.ID, nil, []LineInput{{ProductID: product.ID, Quantity: 1}})
		require.NoError(t, err)
		placed = append(placed, o)
	}
	ready := models.OrderStatusReadyForDispatch
	_, err := orders.UpdateOrder(ctx, testActor, placed[0].ID, OrderUpdate{Status: &ready})
	require.NoError(t, err)

	summary, err := summaries.Summary(ctx, testActor)
	require.NoError(t, err)

	assert.Equal(t, int64(6), summary.PendingOrders)
	assert.Equal(t, int64(1), summary.ReadyForDispatch)
	assert.Equal(t, int64(1), summary.LowStockMaterials)
	assert.Equal(t, int64(7), summary.UnreadNotifications)
	assert.Len(t, summary.RecentOrders, DefaultRecentOrders)
	assert.False(t, summary.GeneratedAt.IsZero())

	empty, err := summaries.Summary(ctx, session.Actor{ID: "auth0|nobody"})
	require.NoError(t, err)
	assert.Zero(t, empty.PendingOrders)
	assert.Empty(t, empty.RecentOrders)
}

type stubSummaries struct {
	err error
}

func (s stubSummaries) Summary(_ context.Context, actor session.Actor) (*DashboardSummary, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &DashboardSummary{PendingOrders: int64(len(actor.ID))}, nil
}

type recordingSink struct {
	mu    sync.Mutex
	sends map[string]int
	ch    chan string
}

func newRecordingSink() *recordingSink {
	return &recordingSink{sends: map[string]int{}, ch: make(chan string, 16)}
}

func (s *recordingSink) Send(actorID string, payload interface{}) error {
	s.mu.Lock()
	s.sends[actorID]++
	s.mu.Unlock()
	select {
	case s.ch <- actorID:
	default:
	}
	return nil
}

func (s *recordingSink) count(actorID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sends[actorID]
}

func TestSummaryPoller_PushAll(t *testing.T) {
	tracker := session.NewTracker()
	tracker.SignIn(session.Actor{ID: "a"})
	tracker.SignIn(session.Actor{ID: "b"})
	sink := newRecordingSink()
	poller := NewSummaryPoller(stubSummaries{}, tracker, sink, time.Hour)

	poller.PushAll(context.Background())

	assert.Equal(t, 1, sink.count("a"))
	assert.Equal(t, 1, sink.count("b"))
}

func TestSummaryPoller_SkipsFailedSummaries(t *testing.T) {
	tracker := session.NewTracker()
	tracker.SignIn(session.Actor{ID: "a"})
	sink := newRecordingSink()
	poller := NewSummaryPoller(stubSummaries{err: errors.New("db down")}, tracker, sink, time.Hour)

	poller.PushAll(context.Background())

	assert.Zero(t, sink.count("a"))
}

func TestSummaryPoller_PushesOnSignIn(t *testing.T) {
	tracker := session.NewTracker()
	sink := newRecordingSink()
	poller := NewSummaryPoller(stubSummaries{}, tracker, sink, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	// the poller subscribes asynchronously; keep signing in until it notices
	deadline := time.After(2 * time.Second)
	received := false
	for !received {
		tracker.SignIn(session.Actor{ID: "late"})
		select {
		case id := <-sink.ch:
			assert.Equal(t, "late", id)
			received = true
		case <-time.After(20 * time.Millisecond):
			tracker.SignOut(session.Actor{ID: "late"})
		case <-deadline:
			t.Fatal("no summary pushed after sign in")
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}

func TestSummaryPoller_PushesOnTick(t *testing.T) {
	tracker := session.NewTracker()
	sink := newRecordingSink()
	poller := NewSummaryPoller(stubSummaries{}, tracker, sink, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go poller.Run(ctx)
	tracker.SignIn(session.Actor{ID: "ticker"})

	deadline := time.After(2 * time.Second)
	for sink.count("ticker") < 2 {
		select {
		case <-sink.ch:
		case <-deadline:
			t.Fatalf("expected repeated pushes, got %d", sink.count("ticker"))
		}
	}
}

func TestNewSummaryPoller_DefaultInterval(t *testing.T) {
	poller := NewSummaryPoller(stubSummaries{}, session.NewTracker(), newRecordingSink(), 0)
	assert.Equal(t, DefaultPollInterval, poller.interval)
}
