package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harekrishna1602/anvesha-2.0/services"
)

type RawMaterialController struct {
	Materials *services.RawMaterialService
}

func NewRawMaterialController(materials *services.RawMaterialService) *RawMaterialController {
	return &RawMaterialController{Materials: materials}
}

// CreateRawMaterial handles POST /api/v1/raw-materials
func (rc *RawMaterialController) CreateRawMaterial(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req services.RawMaterialInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailure(c, err)
		return
	}

	material, err := rc.Materials.CreateRawMaterial(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, "raw material", err)
		return
	}

	respondOK(c, http.StatusCreated, material)
}

// ListRawMaterials handles GET /api/v1/raw-materials?search=&low_stock=true
func (rc *RawMaterialController) ListRawMaterials(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	filter := services.RawMaterialFilter{
		Search:       c.Query("search"),
		LowStockOnly: c.Query("low_stock") == "true",
	}
	materials, err := rc.Materials.ListRawMaterials(c.Request.Context(), actor, filter)
	if err != nil {
		respondError(c, "raw material", err)
		return
	}

	respondOK(c, http.StatusOK, materials)
}

// LowStockCount handles GET /api/v1/raw-materials/low-stock/count
func (rc *RawMaterialController) LowStockCount(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	count, err := rc.Materials.LowStockCount(c.Request.Context(), actor)
	if err != nil {
		respondError(c, "raw material", err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"count": count})
}

// GetRawMaterial handles GET /api/v1/raw-materials/:id
func (rc *RawMaterialController) GetRawMaterial(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "raw material")
	if !ok {
		return
	}

	material, err := rc.Materials.GetRawMaterial(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, "raw material", err)
		return
	}

	respondOK(c, http.StatusOK, material)
}

// UpdateRawMaterial handles PUT /api/v1/raw-materials/:id
func (rc *RawMaterialController) UpdateRawMaterial(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "raw material")
	if !ok {
		return
	}

	var req services.RawMaterialInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailure(c, err)
		return
	}

	material, err := rc.Materials.UpdateRawMaterial(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, "raw material", err)
		return
	}

	respondOK(c, http.StatusOK, material)
}

// DeleteRawMaterial handles DELETE /api/v1/raw-materials/:id
func (rc *RawMaterialController) DeleteRawMaterial(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "raw material")
	if !ok {
		return
	}

	if err := rc.Materials.DeleteRawMaterial(c.Request.Context(), actor, id); err != nil {
		respondError(c, "raw material", err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"id": id})
}
