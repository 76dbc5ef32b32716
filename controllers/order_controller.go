package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/harekrishna1602/anvesha-2.0/models"
	"github.com/harekrishna1602/anvesha-2.0/services"
)

// CreateOrderRequest represents the request body for placing an order.
// Prices are always taken from the catalog, never from the client.
type CreateOrderRequest struct {
	CustomerID uuid.UUID            `json:"customer_id"`
	DueDate    *string              `json:"due_date"`
	Items      []services.LineInput `json:"items"`
}

// UpdateOrderRequest represents the request body for editing an order header
type UpdateOrderRequest struct {
	Status       *string `json:"status"`
	DueDate      *string `json:"due_date"`
	ClearDueDate bool    `json:"clear_due_date"`
}

// ReplaceItemsRequest represents the request body for rewriting an order's lines
type ReplaceItemsRequest struct {
	Items []services.LineInput `json:"items"`
}

// BatchStatusRequest represents the request body for batch status updates
type BatchStatusRequest struct {
	OrderIDs []uuid.UUID `json:"order_ids" binding:"required"`
	Status   string      `json:"status"`
}

type OrderController struct {
	Orders  *services.OrderService
	Exports *services.ExportService
}

func NewOrderController(orders *services.OrderService, exports *services.ExportService) *OrderController {
	return &OrderController{Orders: orders, Exports: exports}
}

// CreateOrder handles POST /api/v1/orders
func (oc *OrderController) CreateOrder(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailure(c, err)
		return
	}
	dueDate, err := parseOptionalDate("due_date", req.DueDate)
	if err != nil {
		respondError(c, "order", err)
		return
	}

	order, err := oc.Orders.PlaceOrder(c.Request.Context(), actor, req.CustomerID, dueDate, req.Items)
	if err != nil {
		respondError(c, "order", err)
		return
	}

	respondOK(c, http.StatusCreated, order)
}

// orderFilter reads the status and search query parameters
func orderFilter(c *gin.Context) services.OrderFilter {
	var filter services.OrderFilter
	if status := c.Query("status"); status != "" {
		s := models.OrderStatus(status)
		filter.Status = &s
	}
	filter.SearchTerm = c.Query("search")
	return filter
}

// ListOrders handles GET /api/v1/orders?status=&search=
func (oc *OrderController) ListOrders(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	orders, err := oc.Orders.ListOrders(c.Request.Context(), actor, orderFilter(c))
	if err != nil {
		respondError(c, "order", err)
		return
	}

	respondOK(c, http.StatusOK, orders)
}

// RecentOrders handles GET /api/v1/orders/recent?limit=
func (oc *OrderController) RecentOrders(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	limit := services.DefaultRecentOrders
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 100 {
			respondFailure(c, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be between 1 and 100", nil)
			return
		}
		limit = n
	}

	orders, err := oc.Orders.RecentOrders(c.Request.Context(), actor, limit)
	if err != nil {
		respondError(c, "order", err)
		return
	}

	respondOK(c, http.StatusOK, orders)
}

// CountOrders handles GET /api/v1/orders/count?status=
func (oc *OrderController) CountOrders(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	status := models.OrderStatus(c.DefaultQuery("status", string(models.OrderStatusPending)))
	count, err := oc.Orders.CountByStatus(c.Request.Context(), actor, status)
	if err != nil {
		respondError(c, "order", err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"status": status, "count": count})
}

// GetOrder handles GET /api/v1/orders/:id
func (oc *OrderController) GetOrder(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "order")
	if !ok {
		return
	}

	order, err := oc.Orders.GetOrder(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, "order", err)
		return
	}

	respondOK(c, http.StatusOK, order)
}

// UpdateOrder handles PUT /api/v1/orders/:id (header fields only)
func (oc *OrderController) UpdateOrder(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "order")
	if !ok {
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailure(c, err)
		return
	}

	update := services.OrderUpdate{ClearDueDate: req.ClearDueDate}
	if req.Status != nil {
		s := models.OrderStatus(*req.Status)
		update.Status = &s
	}
	dueDate, err := parseOptionalDate("due_date", req.DueDate)
	if err != nil {
		respondError(c, "order", err)
		return
	}
	update.DueDate = dueDate

	order, err := oc.Orders.UpdateOrder(c.Request.Context(), actor, id, update)
	if err != nil {
		respondError(c, "order", err)
		return
	}

	respondOK(c, http.StatusOK, order)
}

// ReplaceOrderItems handles PUT /api/v1/orders/:id/items
func (oc *OrderController) ReplaceOrderItems(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "order")
	if !ok {
		return
	}

	var req ReplaceItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailure(c, err)
		return
	}

	order, err := oc.Orders.ReplaceItems(c.Request.Context(), actor, id, req.Items)
	if err != nil {
		respondError(c, "order", err)
		return
	}

	respondOK(c, http.StatusOK, order)
}

// DeleteOrder handles DELETE /api/v1/orders/:id
func (oc *OrderController) DeleteOrder(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "order")
	if !ok {
		return
	}

	if err := oc.Orders.DeleteOrder(c.Request.Context(), actor, id); err != nil {
		respondError(c, "order", err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"id": id})
}

// BatchComplete handles POST /api/v1/orders/batch/complete
func (oc *OrderController) BatchComplete(c *gin.Context) {
	oc.batchStatus(c, func(req BatchStatusRequest) models.OrderStatus {
		return models.OrderStatusCompleted
	})
}

// BatchUpdateStatus handles POST /api/v1/orders/batch/status
func (oc *OrderController) BatchUpdateStatus(c *gin.Context) {
	oc.batchStatus(c, func(req BatchStatusRequest) models.OrderStatus {
		return models.OrderStatus(req.Status)
	})
}

func (oc *OrderController) batchStatus(c *gin.Context, target func(BatchStatusRequest) models.OrderStatus) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req BatchStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailure(c, err)
		return
	}

	results, err := oc.Orders.BatchUpdateStatus(c.Request.Context(), actor, req.OrderIDs, target(req))
	if err != nil {
		if results == nil {
			respondError(c, "order", err)
			return
		}
		// each order succeeds or fails on its own; report both
		c.JSON(http.StatusMultiStatus, gin.H{
			"success": false,
			"data":    results,
			"error": gin.H{
				"code":    "PARTIAL_FAILURE",
				"message": err.Error(),
			},
		})
		return
	}

	respondOK(c, http.StatusOK, results)
}

// ExportOrders handles POST /api/v1/orders/export?status=&search=
func (oc *OrderController) ExportOrders(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	export, err := oc.Exports.ExportOrders(c.Request.Context(), actor, orderFilter(c))
	if err != nil {
		respondError(c, "order export", err)
		return
	}

	respondOK(c, http.StatusCreated, export)
}
