package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/harekrishna1602/anvesha-2.0/models"
	"github.com/harekrishna1602/anvesha-2.0/session"
	"github.com/harekrishna1602/anvesha-2.0/tests/testutil"
)

// fakeGateway is an in-memory OrderGateway that counts writes
type fakeGateway struct {
	mu      sync.Mutex
	orders  map[uuid.UUID]*models.Order
	creates int
	failFor map[uuid.UUID]error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{orders: map[uuid.UUID]*models.Order{}, failFor: map[uuid.UUID]error{}}
}

func (g *fakeGateway) CreateOrder(_ context.Context, actor session.Actor, header models.Order, items []models.OrderItem) (*models.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.creates++
	header.ID = uuid.New()
	header.UserID = actor.ID
	header.OrderNumber = int64(len(g.orders) + 1)
	header.Items = items
	g.orders[header.ID] = &header
	out := header
	return &out, nil
}

func (g *fakeGateway) GetOrders(_ context.Context, actor session.Actor, _ OrderFilter) ([]models.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []models.Order
	for _, o := range g.orders {
		if o.UserID == actor.ID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (g *fakeGateway) GetOrder(_ context.Context, actor session.Actor, id uuid.UUID) (*models.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	o, ok := g.orders[id]
	if !ok || o.UserID != actor.ID {
		return nil, persistence("get order", gorm.ErrRecordNotFound)
	}
	out := *o
	return &out, nil
}

func (g *fakeGateway) UpdateOrder(ctx context.Context, actor session.Actor, id uuid.UUID, update OrderUpdate) (*models.Order, error) {
	g.mu.Lock()
	if err, ok := g.failFor[id]; ok {
		g.mu.Unlock()
		return nil, persistence("update order", err)
	}
	o, ok := g.orders[id]
	if !ok || o.UserID != actor.ID {
		g.mu.Unlock()
		return nil, persistence("update order", gorm.ErrRecordNotFound)
	}
	if update.Status != nil {
		o.Status = *update.Status
	}
	g.mu.Unlock()
	return g.GetOrder(ctx, actor, id)
}

func (g *fakeGateway) ReplaceOrderItems(ctx context.Context, actor session.Actor, id uuid.UUID, items []models.OrderItem) (*models.Order, error) {
	g.mu.Lock()
	o, ok := g.orders[id]
	if !ok || o.UserID != actor.ID {
		g.mu.Unlock()
		return nil, persistence("replace order items", gorm.ErrRecordNotFound)
	}
	o.Items = items
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	o.TotalAmount = total
	g.mu.Unlock()
	return g.GetOrder(ctx, actor, id)
}

func (g *fakeGateway) DeleteOrder(_ context.Context, actor session.Actor, id uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	o, ok := g.orders[id]
	if !ok || o.UserID != actor.ID {
		return persistence("delete order", gorm.ErrRecordNotFound)
	}
	delete(g.orders, id)
	return nil
}

func (g *fakeGateway) CountByStatus(_ context.Context, actor session.Actor, status models.OrderStatus) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var n int64
	for _, o := range g.orders {
		if o.UserID == actor.ID && o.Status == status {
			n++
		}
	}
	return n, nil
}

func (g *fakeGateway) RecentOrders(ctx context.Context, actor session.Actor, _ int) ([]models.Order, error) {
	return g.GetOrders(ctx, actor, OrderFilter{})
}

func (g *fakeGateway) seed(actor session.Actor, status models.OrderStatus) uuid.UUID {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := uuid.New()
	g.orders[id] = &models.Order{ID: id, UserID: actor.ID, OrderNumber: int64(len(g.orders) + 1), Status: status}
	return id
}

type fakeCustomers map[uuid.UUID]models.Customer

func (f fakeCustomers) GetCustomer(_ context.Context, _ session.Actor, id uuid.UUID) (*models.Customer, error) {
	c, ok := f[id]
	if !ok {
		return nil, persistence("get customer", gorm.ErrRecordNotFound)
	}
	return &c, nil
}

type fakePrices PriceList

func (f fakePrices) PriceList(context.Context, session.Actor, []uuid.UUID) (PriceList, error) {
	return PriceList(f), nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, actor session.Actor, kind, message string) (*models.Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
	return &models.Notification{UserID: actor.ID, Type: kind, Message: message}, nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

var testActor = session.Actor{ID: "auth0|owner"}

func TestSubmit_ValidationRejectsWithoutWriting(t *testing.T) {
	gateway := newFakeGateway()
	customer := models.Customer{ID: uuid.New(), Name: "Acme"}
	product := uuid.New()
	prices := PriceList{product: decimal.NewFromInt(10)}
	svc := NewOrderService(gateway, fakeCustomers{customer.ID: customer}, fakePrices(prices), nil, nil)

	withLine := NewOrderAggregator(prices)
	require.NoError(t, withLine.AddLine(product, 1))

	tests := []struct {
		name  string
		actor session.Actor
		draft OrderDraft
		field string
	}{
		{name: "no actor", actor: session.Actor{}, draft: OrderDraft{CustomerID: customer.ID, Lines: withLine}, field: "user"},
		{name: "no customer", actor: testActor, draft: OrderDraft{Lines: withLine}, field: "customer_id"},
		{name: "no lines", actor: testActor, draft: OrderDraft{CustomerID: customer.ID, Lines: NewOrderAggregator(prices)}, field: "items"},
		{name: "nil aggregator", actor: testActor, draft: OrderDraft{CustomerID: customer.ID}, field: "items"},
		{name: "unknown customer", actor: testActor, draft: OrderDraft{CustomerID: uuid.New(), Lines: withLine}, field: "customer_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := svc.Submit(context.Background(), tt.actor, tt.draft)
			assert.Nil(t, order)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
	assert.Equal(t, 0, gateway.creates)
}

func TestSubmit_NotifiesAndPublishes(t *testing.T) {
	gateway := newFakeGateway()
	customer := models.Customer{ID: uuid.New(), Name: "Acme"}
	product := uuid.New()
	prices := PriceList{product: decimal.NewFromInt(10)}
	notifier := &recordingNotifier{}
	events := NewRecordingPublisher()
	svc := NewOrderService(gateway, fakeCustomers{customer.ID: customer}, fakePrices(prices), notifier, events)

	order, err := svc.PlaceOrder(context.Background(), testActor, customer.ID, nil, []LineInput{{ProductID: product, Quantity: 3}})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, []string{"Order #1 placed for Acme"}, notifier.messages)

	published := events.Events()
	require.Len(t, published, 1)
	event := published[0].(OrderEvent)
	assert.Equal(t, EventOrderCreated, event.Type)
	assert.Equal(t, "30.00", event.TotalAmount)
	assert.Equal(t, []string{order.ID.String()}, events.Keys())
}

func TestSubmit_EventFailureDoesNotFailOrder(t *testing.T) {
	gateway := newFakeGateway()
	customer := models.Customer{ID: uuid.New(), Name: "Acme"}
	product := uuid.New()
	events := NewRecordingPublisher()
	events.Err = errors.New("broker down")
	svc := NewOrderService(gateway, fakeCustomers{customer.ID: customer},
		fakePrices(PriceList{product: decimal.NewFromInt(1)}), nil, events)

	order, err := svc.PlaceOrder(context.Background(), testActor, customer.ID, nil, []LineInput{{ProductID: product, Quantity: 1}})
	require.NoError(t, err)
	assert.NotNil(t, order)
	assert.Equal(t, 1, gateway.creates)
}

func TestPlaceOrder_PersistsLinesAndTotal(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	customer := testutil.SeedCustomer(t, db, testActor.ID, "Acme")
	p1 := testutil.SeedProduct(t, db, testActor.ID, "Widget", "100")
	p2 := testutil.SeedProduct(t, db, testActor.ID, "Gadget", "50")

	products := NewProductService(db)
	svc := NewOrderService(NewGormOrderGateway(db), NewCustomerService(db), products, NewNotificationService(db), nil)

	order, err := svc.PlaceOrder(ctx, testActor, customer.ID, nil, []LineInput{
		{ProductID: p1.ID, Quantity: 2},
		{ProductID: p2.ID, Quantity: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, "250", order.TotalAmount.String())
	assert.Equal(t, int64(1), order.OrderNumber)
	assert.Equal(t, "Acme", order.Customer.Name)
	require.Len(t, order.Items, 2)

	var itemCount int64
	require.NoError(t, db.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&itemCount).Error)
	assert.Equal(t, int64(2), itemCount)

	// a later price change leaves the captured unit prices alone
	_, err = products.UpdateProduct(ctx, testActor, p1.ID, ProductInput{Name: "Widget", Price: decimal.NewFromInt(999)})
	require.NoError(t, err)

	reloaded, err := svc.GetOrder(ctx, testActor, order.ID)
	require.NoError(t, err)
	for _, item := range reloaded.Items {
		if item.ProductID == p1.ID {
			assert.Equal(t, "100", item.UnitPrice.String())
		}
	}
	assert.Equal(t, "250", reloaded.TotalAmount.String())

	unread, err := NewNotificationService(db).UnreadCount(ctx, testActor)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}

func TestPlaceOrder_UnknownProductIsRejected(t *testing.T) {
	db := testutil.NewTestDB(t)
	customer := testutil.SeedCustomer(t, db, testActor.ID, "Acme")
	svc := NewOrderService(NewGormOrderGateway(db), NewCustomerService(db), NewProductService(db), nil, nil)

	_, err := svc.PlaceOrder(context.Background(), testActor, customer.ID, nil, []LineInput{{ProductID: uuid.New(), Quantity: 1}})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "product_id", verr.Field)

	var orders int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)
}

func TestUpdateOrder_NotifiesOnlyOnTransitionToCompleted(t *testing.T) {
	gateway := newFakeGateway()
	notifier := &recordingNotifier{}
	svc := NewOrderService(gateway, fakeCustomers{}, fakePrices{}, notifier, nil)
	id := gateway.seed(testActor, models.OrderStatusPending)
	completed := models.OrderStatusCompleted

	_, err := svc.UpdateOrder(context.Background(), testActor, id, OrderUpdate{Status: &completed})
	require.NoError(t, err)
	_, err = svc.UpdateOrder(context.Background(), testActor, id, OrderUpdate{Status: &completed})
	require.NoError(t, err)

	assert.Equal(t, 1, notifier.count())
}

func TestUpdateOrder_RejectsUnknownStatus(t *testing.T) {
	gateway := newFakeGateway()
	svc := NewOrderService(gateway, fakeCustomers{}, fakePrices{}, nil, nil)
	id := gateway.seed(testActor, models.OrderStatusPending)
	bogus := models.OrderStatus("Shipped")

	_, err := svc.UpdateOrder(context.Background(), testActor, id, OrderUpdate{Status: &bogus})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "status", verr.Field)
}

func TestBatchComplete_PartialFailure(t *testing.T) {
	gateway := newFakeGateway()
	svc := NewOrderService(gateway, fakeCustomers{}, fakePrices{}, nil, nil)
	ids := []uuid.UUID{
		gateway.seed(testActor, models.OrderStatusPending),
		gateway.seed(testActor, models.OrderStatusPending),
		gateway.seed(testActor, models.OrderStatusReadyForDispatch),
	}
	gateway.failFor[ids[1]] = errors.New("connection reset")

	results, err := svc.BatchComplete(context.Background(), testActor, ids)

	var partial *PartialFailureError
	require.True(t, errors.As(err, &partial), "expected partial failure, got %v", err)
	assert.Equal(t, 2, partial.Succeeded)
	require.Len(t, partial.Failures, 1)
	assert.Equal(t, ids[1], partial.Failures[0].ID)

	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, ids[i], r.OrderID)
	}
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.NotEmpty(t, results[1].Error)
	assert.True(t, results[2].Success)

	first, _ := gateway.GetOrder(context.Background(), testActor, ids[0])
	second, _ := gateway.GetOrder(context.Background(), testActor, ids[1])
	assert.Equal(t, models.OrderStatusCompleted, first.Status)
	assert.Equal(t, models.OrderStatusPending, second.Status)
}

func TestBatchUpdateStatus_Validation(t *testing.T) {
	svc := NewOrderService(newFakeGateway(), fakeCustomers{}, fakePrices{}, nil, nil)

	_, err := svc.BatchUpdateStatus(context.Background(), testActor, nil, models.OrderStatusCompleted)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "order_ids", verr.Field)

	_, err = svc.BatchUpdateStatus(context.Background(), testActor, []uuid.UUID{uuid.New()}, "Lost")
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "status", verr.Field)
}

func TestBatchComplete_AllSucceedOnDatabase(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	customer := testutil.SeedCustomer(t, db, testActor.ID, "Acme")
	product := testutil.SeedProduct(t, db, testActor.ID, "Widget", "5")
	notifications := NewNotificationService(db)
	svc := NewOrderService(NewGormOrderGateway(db), NewCustomerService(db), NewProductService(db), notifications, nil)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		order, err := svc.PlaceOrder(ctx, testActor, customer.ID, nil, []LineInput{{ProductID: product.ID, Quantity: i + 1}})
		require.NoError(t, err)
		ids = append(ids, order.ID)
	}

	results, err := svc.BatchComplete(ctx, testActor, ids)
	require.NoError(t, err)
	require.Len(t, results, 3)

	completed, err := svc.CountByStatus(ctx, testActor, models.OrderStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, int64(3), completed)

	// three placed plus three completed
	unread, err := notifications.UnreadCount(ctx, testActor)
	require.NoError(t, err)
	assert.Equal(t, int64(6), unread)
}

func TestReplaceItems_RepricesAndRewritesTotal(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	customer := testutil.SeedCustomer(t, db, testActor.ID, "Acme")
	p1 := testutil.SeedProduct(t, db, testActor.ID, "Widget", "10")
	p2 := testutil.SeedProduct(t, db, testActor.ID, "Gadget", "4")
	events := NewRecordingPublisher()
	svc := NewOrderService(NewGormOrderGateway(db), NewCustomerService(db), NewProductService(db), nil, events)

	order, err := svc.PlaceOrder(ctx, testActor, customer.ID, nil, []LineInput{{ProductID: p1.ID, Quantity: 1}})
	require.NoError(t, err)

	updated, err := svc.ReplaceItems(ctx, testActor, order.ID, []LineInput{
		{ProductID: p2.ID, Quantity: 2},
		{ProductID: p2.ID, Quantity: 1},
	})
	require.NoError(t, err)

	require.Len(t, updated.Items, 1)
	assert.Equal(t, 3, updated.Items[0].Quantity)
	assert.Equal(t, "12", updated.TotalAmount.String())
	assert.Len(t, events.Events(), 2)
}

func TestDeleteOrder_RemovesItems(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	customer := testutil.SeedCustomer(t, db, testActor.ID, "Acme")
	product := testutil.SeedProduct(t, db, testActor.ID, "Widget", "10")
	svc := NewOrderService(NewGormOrderGateway(db), NewCustomerService(db), NewProductService(db), nil, nil)

	order, err := svc.PlaceOrder(ctx, testActor, customer.ID, nil, []LineInput{{ProductID: product.ID, Quantity: 1}})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteOrder(ctx, testActor, order.ID))

	var items int64
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&items).Error)
	assert.Zero(t, items)

	err = svc.DeleteOrder(ctx, testActor, order.ID)
	assert.True(t, IsNotFound(err))
}
