package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harekrishna1602/anvesha-2.0/logging"
	"github.com/harekrishna1602/anvesha-2.0/metrics"
	"github.com/harekrishna1602/anvesha-2.0/models"
	"github.com/harekrishna1602/anvesha-2.0/session"
)

// CustomerFinder looks up a customer owned by the actor
type CustomerFinder interface {
	GetCustomer(ctx context.Context, actor session.Actor, id uuid.UUID) (*models.Customer, error)
}

// PriceLookup snapshots current product prices for the actor
type PriceLookup interface {
	PriceList(ctx context.Context, actor session.Actor, ids []uuid.UUID) (PriceList, error)
}

// LineInput is a requested product quantity
type LineInput struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// OrderDraft is an order ready for submission
type OrderDraft struct {
	CustomerID uuid.UUID
	DueDate    *time.Time
	Lines      *OrderAggregator
}

// BatchResult reports the outcome of one order in a batch update
type BatchResult struct {
	OrderID uuid.UUID     `json:"order_id"`
	Success bool          `json:"success"`
	Order   *models.Order `json:"order,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// OrderService runs the order placement and mutation workflow
type OrderService struct {
	orders    OrderGateway
	customers CustomerFinder
	prices    PriceLookup
	notifier  Notifier
	events    EventPublisher
	now       func() time.Time
}

// NewOrderService wires the order workflow. notifier and events may be nil.
func NewOrderService(orders OrderGateway, customers CustomerFinder, prices PriceLookup, notifier Notifier, events EventPublisher) *OrderService {
	if events == nil {
		events = NopPublisher{}
	}
	return &OrderService{
		orders:    orders,
		customers: customers,
		prices:    prices,
		notifier:  notifier,
		events:    events,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// NewAggregator builds an aggregator priced from the actor's current catalog
// and adds every requested line to it
func (s *OrderService) NewAggregator(ctx context.Context, actor session.Actor, lines []LineInput) (*OrderAggregator, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}

	prices, err := s.prices.PriceList(ctx, actor, ids)
	if err != nil {
		return nil, err
	}

	agg := NewOrderAggregator(prices)
	for _, l := range lines {
		if err := agg.AddLine(l.ProductID, l.Quantity); err != nil {
			return nil, err
		}
	}
	return agg, nil
}

// PlaceOrder prices the requested lines and submits the order
func (s *OrderService) PlaceOrder(ctx context.Context, actor session.Actor, customerID uuid.UUID, dueDate *time.Time, lines []LineInput) (*models.Order, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, invalid("items", "an order needs at least one line")
	}

	agg, err := s.NewAggregator(ctx, actor, lines)
	if err != nil {
		return nil, err
	}
	return s.Submit(ctx, actor, OrderDraft{CustomerID: customerID, DueDate: dueDate, Lines: agg})
}

// Submit validates the draft and writes it through the gateway. The stored
// total is always the aggregator's total at the moment of the write.
func (s *OrderService) Submit(ctx context.Context, actor session.Actor, draft OrderDraft) (*models.Order, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if draft.CustomerID == uuid.Nil {
		return nil, invalid("customer_id", "a customer must be selected")
	}
	if draft.Lines == nil || draft.Lines.Len() == 0 {
		return nil, invalid("items", "an order needs at least one line")
	}

	customer, err := s.customers.GetCustomer(ctx, actor, draft.CustomerID)
	if err != nil {
		if IsNotFound(err) {
			return nil, invalid("customer_id", "customer %s not found", draft.CustomerID)
		}
		return nil, err
	}

	header := models.Order{
		CustomerID:  customer.ID,
		OrderDate:   s.now(),
		DueDate:     draft.DueDate,
		Status:      models.OrderStatusPending,
		TotalAmount: draft.Lines.Total(),
	}
	order, err := s.orders.CreateOrder(ctx, actor, header, draft.Lines.ToInsertPayload(uuid.Nil))
	if err != nil {
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	s.notify(ctx, actor, models.NotificationOrderCreated,
		fmt.Sprintf("Order #%d placed for %s", order.OrderNumber, customer.Name))
	s.publish(ctx, EventOrderCreated, actor, order)
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, actor session.Actor, filter OrderFilter) ([]models.Order, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, invalid("status", "unknown order status %q", *filter.Status)
	}
	return s.orders.GetOrders(ctx, actor, filter)
}

func (s *OrderService) GetOrder(ctx context.Context, actor session.Actor, id uuid.UUID) (*models.Order, error) {
	return s.orders.GetOrder(ctx, actor, id)
}

func (s *OrderService) CountByStatus(ctx context.Context, actor session.Actor, status models.OrderStatus) (int64, error) {
	if !status.Valid() {
		return 0, invalid("status", "unknown order status %q", status)
	}
	return s.orders.CountByStatus(ctx, actor, status)
}

func (s *OrderService) RecentOrders(ctx context.Context, actor session.Actor, limit int) ([]models.Order, error) {
	return s.orders.RecentOrders(ctx, actor, limit)
}

// UpdateOrder changes an order's header fields
func (s *OrderService) UpdateOrder(ctx context.Context, actor session.Actor, id uuid.UUID, update OrderUpdate) (*models.Order, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if update.Status != nil && !update.Status.Valid() {
		return nil, invalid("status", "unknown order status %q", *update.Status)
	}

	var previous models.OrderStatus
	if update.Status != nil && *update.Status == models.OrderStatusCompleted {
		current, err := s.orders.GetOrder(ctx, actor, id)
		if err != nil {
			return nil, err
		}
		previous = current.Status
	}

	order, err := s.orders.UpdateOrder(ctx, actor, id, update)
	if update.Status != nil {
		metrics.OrderStatusChanges.WithLabelValues(string(*update.Status), metrics.Outcome(err)).Inc()
	}
	if err != nil {
		return nil, err
	}

	if update.Status != nil && *update.Status == models.OrderStatusCompleted && previous != models.OrderStatusCompleted {
		s.notify(ctx, actor, models.NotificationOrderCompleted,
			fmt.Sprintf("Order #%d for %s is completed", order.OrderNumber, order.Customer.Name))
	}
	s.publish(ctx, EventOrderUpdated, actor, order)
	return order, nil
}

// ReplaceItems reprices the requested lines from the current catalog and
// swaps them in for the order's existing lines
func (s *OrderService) ReplaceItems(ctx context.Context, actor session.Actor, id uuid.UUID, lines []LineInput) (*models.Order, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, invalid("items", "an order needs at least one line")
	}

	agg, err := s.NewAggregator(ctx, actor, lines)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.ReplaceOrderItems(ctx, actor, id, agg.ToInsertPayload(id))
	if err != nil {
		return nil, err
	}
	s.publish(ctx, EventOrderItemsReplaced, actor, order)
	return order, nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, actor session.Actor, id uuid.UUID) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if err := s.orders.DeleteOrder(ctx, actor, id); err != nil {
		return err
	}
	s.publish(ctx, EventOrderDeleted, actor, &models.Order{ID: id})
	return nil
}

// BatchUpdateStatus sets the status of every order independently and
// concurrently. Results follow the input order. Successful updates are kept
// when others fail, and the failures are returned as a PartialFailureError.
func (s *OrderService) BatchUpdateStatus(ctx context.Context, actor session.Actor, ids []uuid.UUID, status models.OrderStatus) ([]BatchResult, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, invalid("status", "unknown order status %q", status)
	}
	if len(ids) == 0 {
		return nil, invalid("order_ids", "select at least one order")
	}

	results := make([]BatchResult, len(ids))
	errs := make([]error, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			order, err := s.UpdateOrder(ctx, actor, id, OrderUpdate{Status: &status})
			results[i] = BatchResult{OrderID: id, Success: err == nil, Order: order}
			if err != nil {
				results[i].Error = err.Error()
				errs[i] = err
			}
		}(i, id)
	}
	wg.Wait()

	partial := &PartialFailureError{Op: "batch update status"}
	for i, err := range errs {
		if err != nil {
			partial.Failures = append(partial.Failures, OperationFailure{ID: ids[i], Op: "update", Err: err})
		} else {
			partial.Succeeded++
		}
	}
	if len(partial.Failures) > 0 {
		logging.FromContext(ctx).Warn("batch status update partially failed",
			"status", status, "failed", len(partial.Failures), "succeeded", partial.Succeeded)
		return results, partial
	}
	return results, nil
}

// BatchComplete marks every given order Completed
func (s *OrderService) BatchComplete(ctx context.Context, actor session.Actor, ids []uuid.UUID) ([]BatchResult, error) {
	return s.BatchUpdateStatus(ctx, actor, ids, models.OrderStatusCompleted)
}

// notify raises a notification without failing the calling operation
func (s *OrderService) notify(ctx context.Context, actor session.Actor, kind, message string) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.Notify(ctx, actor, kind, message); err != nil {
		logging.FromContext(ctx).Warn("failed to create notification", "type", kind, "error", err)
	}
}

// publish emits an order event without failing the calling operation
func (s *OrderService) publish(ctx context.Context, kind string, actor session.Actor, order *models.Order) {
	event := OrderEvent{
		Type:        kind,
		UserID:      actor.ID,
		OrderID:     order.ID.String(),
		OrderNumber: order.OrderNumber,
		Status:      string(order.Status),
		OccurredAt:  s.now(),
	}
	if kind != EventOrderDeleted {
		event.TotalAmount = order.TotalAmount.StringFixed(2)
	}
	if err := s.events.PublishEvent(ctx, order.ID.String(), event); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logging.FromContext(ctx).Warn("failed to publish order event", "type", kind, "order_id", order.ID, "error", err)
	}
}
