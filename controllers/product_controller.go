package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harekrishna1602/anvesha-2.0/services"
)

type ProductController struct {
	Products *services.ProductService
}

func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{Products: products}
}

// CreateProduct handles POST /api/v1/products
func (pc *ProductController) CreateProduct(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req services.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailure(c, err)
		return
	}

	product, err := pc.Products.CreateProduct(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, "product", err)
		return
	}

	respondOK(c, http.StatusCreated, product)
}

// ListProducts handles GET /api/v1/products?search=
func (pc *ProductController) ListProducts(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	products, err := pc.Products.ListProducts(c.Request.Context(), actor, c.Query("search"))
	if err != nil {
		respondError(c, "product", err)
		return
	}

	respondOK(c, http.StatusOK, products)
}

// GetProduct handles GET /api/v1/products/:id
func (pc *ProductController) GetProduct(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "product")
	if !ok {
		return
	}

	product, err := pc.Products.GetProduct(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, "product", err)
		return
	}

	respondOK(c, http.StatusOK, product)
}

// UpdateProduct handles PUT /api/v1/products/:id
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "product")
	if !ok {
		return
	}

	var req services.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailure(c, err)
		return
	}

	product, err := pc.Products.UpdateProduct(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, "product", err)
		return
	}

	respondOK(c, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/v1/products/:id
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "product")
	if !ok {
		return
	}

	if err := pc.Products.DeleteProduct(c.Request.Context(), actor, id); err != nil {
		respondError(c, "product", err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"id": id})
}
