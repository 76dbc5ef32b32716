package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harekrishna1602/anvesha-2.0/services"
)

// AssetRequest represents the request body for creating or editing an asset
type AssetRequest struct {
	Name               string  `json:"name" binding:"required"`
	Description        *string `json:"description"`
	SerialNumber       *string `json:"serial_number"`
	PurchaseDate       *string `json:"purchase_date"`
	WarrantyExpiryDate *string `json:"warranty_expiry_date"`
}

func (r AssetRequest) input() (services.AssetInput, error) {
	purchase, err := parseOptionalDate("purchase_date", r.PurchaseDate)
	if err != nil {
		return services.AssetInput{}, err
	}
	warranty, err := parseOptionalDate("warranty_expiry_date", r.WarrantyExpiryDate)
	if err != nil {
		return services.AssetInput{}, err
	}
	return services.AssetInput{
		Name:               r.Name,
		Description:        r.Description,
		SerialNumber:       r.SerialNumber,
		PurchaseDate:       purchase,
		WarrantyExpiryDate: warranty,
	}, nil
}

type AssetController struct {
	Assets *services.AssetService
}

func NewAssetController(assets *services.AssetService) *AssetController {
	return &AssetController{Assets: assets}
}

// CreateAsset handles POST /api/v1/assets
func (ac *AssetController) CreateAsset(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req AssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailure(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		respondError(c, "asset", err)
		return
	}

	asset, err := ac.Assets.CreateAsset(c.Request.Context(), actor, in)
	if err != nil {
		respondError(c, "asset", err)
		return
	}

	respondOK(c, http.StatusCreated, asset)
}

// ListAssets handles GET /api/v1/assets?search=
func (ac *AssetController) ListAssets(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	assets, err := ac.Assets.ListAssets(c.Request.Context(), actor, c.Query("search"))
	if err != nil {
		respondError(c, "asset", err)
		return
	}

	respondOK(c, http.StatusOK, assets)
}

// GetAsset handles GET /api/v1/assets/:id
func (ac *AssetController) GetAsset(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "asset")
	if !ok {
		return
	}

	asset, err := ac.Assets.GetAsset(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, "asset", err)
		return
	}

	respondOK(c, http.StatusOK, asset)
}

// UpdateAsset handles PUT /api/v1/assets/:id
func (ac *AssetController) UpdateAsset(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "asset")
	if !ok {
		return
	}

	var req AssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailure(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		respondError(c, "asset", err)
		return
	}

	asset, err := ac.Assets.UpdateAsset(c.Request.Context(), actor, id, in)
	if err != nil {
		respondError(c, "asset", err)
		return
	}

	respondOK(c, http.StatusOK, asset)
}

// DeleteAsset handles DELETE /api/v1/assets/:id
func (ac *AssetController) DeleteAsset(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "asset")
	if !ok {
		return
	}

	if err := ac.Assets.DeleteAsset(c.Request.Context(), actor, id); err != nil {
		respondError(c, "asset", err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"id": id})
}
