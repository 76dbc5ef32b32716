package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harekrishna1602/anvesha-2.0/tests/testutil"
)

func TestCustomerEndpoints(t *testing.T) {
	env := setupTestEnv(t, testUserID)

	w := env.do(t, http.MethodPost, "/api/v1/customers", map[string]interface{}{
		"name":  "Acme",
		"email": "orders@acme.test",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := dataMap(t, decode(t, w))
	path := fmt.Sprintf("/api/v1/customers/%s", created["id"])

	tests := []struct {
		name           string
		method         string
		path           string
		body           interface{}
		expectedStatus int
		expectedError  string
	}{
		{name: "Duplicate name", method: http.MethodPost, path: "/api/v1/customers", body: map[string]interface{}{"name": "Acme"}, expectedStatus: http.StatusConflict, expectedError: "CUSTOMER_EXISTS"},
		{name: "Missing name", method: http.MethodPost, path: "/api/v1/customers", body: map[string]interface{}{"email": "x@y.test"}, expectedStatus: http.StatusBadRequest, expectedError: "VALIDATION_ERROR"},
		{name: "Invalid email", method: http.MethodPost, path: "/api/v1/customers", body: map[string]interface{}{"name": "Bad", "email": "nope"}, expectedStatus: http.StatusBadRequest, expectedError: "VALIDATION_ERROR"},
		{name: "Get", method: http.MethodGet, path: path, expectedStatus: http.StatusOK},
		{name: "Update", method: http.MethodPut, path: path, body: map[string]interface{}{"name": "Acme Ltd"}, expectedStatus: http.StatusOK},
		{name: "List with search", method: http.MethodGet, path: "/api/v1/customers?search=ltd", expectedStatus: http.StatusOK},
		{name: "Get unknown", method: http.MethodGet, path: "/api/v1/customers/" + uuid.NewString(), expectedStatus: http.StatusNotFound, expectedError: "CUSTOMER_NOT_FOUND"},
		{name: "Delete", method: http.MethodDelete, path: path, expectedStatus: http.StatusOK},
		{name: "Delete again", method: http.MethodDelete, path: path, expectedStatus: http.StatusNotFound, expectedError: "CUSTOMER_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, errorCode(t, decode(t, w)))
			}
		})
	}
}

func TestProductEndpoints(t *testing.T) {
	env := setupTestEnv(t, testUserID)

	w := env.do(t, http.MethodPost, "/api/v1/products", map[string]interface{}{"name": "Widget", "price": "12.50"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := dataMap(t, decode(t, w))
	assert.Equal(t, "12.5", created["price"])

	w = env.do(t, http.MethodPost, "/api/v1/products", map[string]interface{}{"name": "Free", "price": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := decode(t, w)
	assert.Equal(t, "price", response["error"].(map[string]interface{})["details"].(map[string]interface{})["field"])

	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/v1/products/%s", created["id"]), map[string]interface{}{"name": "Widget", "price": 15})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "15", dataMap(t, decode(t, w))["price"])

	w = env.do(t, http.MethodGet, "/api/v1/products", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataList(t, decode(t, w)), 1)
}

func TestRawMaterialEndpoints(t *testing.T) {
	env := setupTestEnv(t, testUserID)
	testutil.SeedRawMaterial(t, env.db, testUserID, "Resin", "2", "5")
	testutil.SeedRawMaterial(t, env.db, testUserID, "Steel", "50", "5")

	w := env.do(t, http.MethodPost, "/api/v1/raw-materials", map[string]interface{}{
		"name":              "Glue",
		"current_stock":     5,
		"reorder_threshold": 5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := dataMap(t, decode(t, w))
	assert.Equal(t, true, created["is_low_stock"])
	assert.Equal(t, "units", created["unit_of_measure"])

	w = env.do(t, http.MethodGet, "/api/v1/raw-materials/low-stock/count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), dataMap(t, decode(t, w))["count"])

	w = env.do(t, http.MethodGet, "/api/v1/raw-materials?low_stock=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataList(t, decode(t, w)), 2)

	w = env.do(t, http.MethodPost, "/api/v1/raw-materials", map[string]interface{}{"name": "Bad", "current_stock": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/raw-materials/%s", created["id"]), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAssetEndpoints(t *testing.T) {
	env := setupTestEnv(t, testUserID)

	tests := []struct {
		name           string
		body           map[string]interface{}
		expectedStatus int
	}{
		{name: "Valid asset", body: map[string]interface{}{"name": "Lathe", "purchase_date": "2023-01-15", "warranty_expiry_date": "2026-01-15"}, expectedStatus: http.StatusCreated},
		{name: "Warranty before purchase", body: map[string]interface{}{"name": "Press", "purchase_date": "2023-01-15", "warranty_expiry_date": "2022-01-15"}, expectedStatus: http.StatusBadRequest},
		{name: "Unparseable date", body: map[string]interface{}{"name": "Drill", "purchase_date": "15/01/2023"}, expectedStatus: http.StatusBadRequest},
		{name: "Missing name", body: map[string]interface{}{"serial_number": "SN"}, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/v1/assets", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
		})
	}

	w := env.do(t, http.MethodGet, "/api/v1/assets", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assets := dataList(t, decode(t, w))
	require.Len(t, assets, 1)
	assert.Equal(t, "Lathe", assets[0].(map[string]interface{})["name"])
}
