package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harekrishna1602/anvesha-2.0/services"
)

type CustomerController struct {
	Customers *services.CustomerService
}

func NewCustomerController(customers *services.CustomerService) *CustomerController {
	return &CustomerController{Customers: customers}
}

// CreateCustomer handles POST /api/v1/customers
func (cc *CustomerController) CreateCustomer(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req services.CustomerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailure(c, err)
		return
	}

	customer, err := cc.Customers.CreateCustomer(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, "customer", err)
		return
	}

	respondOK(c, http.StatusCreated, customer)
}

// ListCustomers handles GET /api/v1/customers?search=
func (cc *CustomerController) ListCustomers(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	customers, err := cc.Customers.ListCustomers(c.Request.Context(), actor, c.Query("search"))
	if err != nil {
		respondError(c, "customer", err)
		return
	}

	respondOK(c, http.StatusOK, customers)
}

// GetCustomer handles GET /api/v1/customers/:id
func (cc *CustomerController) GetCustomer(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "customer")
	if !ok {
		return
	}

	customer, err := cc.Customers.GetCustomer(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, "customer", err)
		return
	}

	respondOK(c, http.StatusOK, customer)
}

// UpdateCustomer handles PUT /api/v1/customers/:id
func (cc *CustomerController) UpdateCustomer(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "customer")
	if !ok {
		return
	}

	var req services.CustomerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailure(c, err)
		return
	}

	customer, err := cc.Customers.UpdateCustomer(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, "customer", err)
		return
	}

	respondOK(c, http.StatusOK, customer)
}

// DeleteCustomer handles DELETE /api/v1/customers/:id
func (cc *CustomerController) DeleteCustomer(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "customer")
	if !ok {
		return
	}

	if err := cc.Customers.DeleteCustomer(c.Request.Context(), actor, id); err != nil {
		respondError(c, "customer", err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"id": id})
}
