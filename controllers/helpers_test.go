package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/harekrishna1602/anvesha-2.0/services"
	"github.com/harekrishna1602/anvesha-2.0/session"
	"github.com/harekrishna1602/anvesha-2.0/socket"
	"github.com/harekrishna1602/anvesha-2.0/tests/testutil"
)

const testUserID = "auth0|owner123"

type testEnv struct {
	db      *gorm.DB
	router  *gin.Engine
	storage *services.MemoryStorage
	events  *services.RecordingPublisher
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// setupTestEnv wires every controller against an in-memory database. Requests
// are authenticated as userID; an empty userID leaves them unauthenticated.
func setupTestEnv(t *testing.T, userID string) *testEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	storage := services.NewMemoryStorage()
	events := services.NewRecordingPublisher()

	customers := services.NewCustomerService(db)
	products := services.NewProductService(db)
	materials := services.NewRawMaterialService(db)
	assets := services.NewAssetService(db)
	notifications := services.NewNotificationService(db)
	gateway := services.NewGormOrderGateway(db)
	orders := services.NewOrderService(gateway, customers, products, notifications, events)
	summaries := services.NewSummaryService(gateway, materials, notifications)

	oc := NewOrderController(orders, services.NewExportService(gateway, storage))
	cc := NewCustomerController(customers)
	pc := NewProductController(products)
	rc := NewRawMaterialController(materials)
	ac := NewAssetController(assets)
	mc := NewMaintenanceController(services.NewMaintenanceService(db, assets, services.NewGormChecklistStore(db)))
	nc := NewNotificationController(notifications)
	dc := NewDashboardController(summaries, socket.NewHub(), session.NewTracker())

	router := setupTestRouter()
	v1 := router.Group("/api/v1")
	if userID != "" {
		v1.Use(testutil.MockAuth(userID))
	}
	{
		v1.POST("/orders", oc.CreateOrder)
		v1.GET("/orders", oc.ListOrders)
		v1.GET("/orders/recent", oc.RecentOrders)
		v1.GET("/orders/count", oc.CountOrders)
		v1.POST("/orders/export", oc.ExportOrders)
		v1.POST("/orders/batch/complete", oc.BatchComplete)
		v1.POST("/orders/batch/status", oc.BatchUpdateStatus)
		v1.GET("/orders/:id", oc.GetOrder)
		v1.PUT("/orders/:id", oc.UpdateOrder)
		v1.PUT("/orders/:id/items", oc.ReplaceOrderItems)
		v1.DELETE("/orders/:id", oc.DeleteOrder)

		v1.POST("/customers", cc.CreateCustomer)
		v1.GET("/customers", cc.ListCustomers)
		v1.GET("/customers/:id", cc.GetCustomer)
		v1.PUT("/customers/:id", cc.UpdateCustomer)
		v1.DELETE("/customers/:id", cc.DeleteCustomer)

		v1.POST("/products", pc.CreateProduct)
		v1.GET("/products", pc.ListProducts)
		v1.GET("/products/:id", pc.GetProduct)
		v1.PUT("/products/:id", pc.UpdateProduct)
		v1.DELETE("/products/:id", pc.DeleteProduct)

		v1.POST("/raw-materials", rc.CreateRawMaterial)
		v1.GET("/raw-materials", rc.ListRawMaterials)
		v1.GET("/raw-materials/low-stock/count", rc.LowStockCount)
		v1.GET("/raw-materials/:id", rc.GetRawMaterial)
		v1.PUT("/raw-materials/:id", rc.UpdateRawMaterial)
		v1.DELETE("/raw-materials/:id", rc.DeleteRawMaterial)

		v1.POST("/assets", ac.CreateAsset)
		v1.GET("/assets", ac.ListAssets)
		v1.GET("/assets/:id", ac.GetAsset)
		v1.PUT("/assets/:id", ac.UpdateAsset)
		v1.DELETE("/assets/:id", ac.DeleteAsset)

		v1.POST("/maintenance-tasks", mc.CreateTask)
		v1.GET("/maintenance-tasks", mc.ListTasks)
		v1.GET("/maintenance-tasks/calendar", mc.Calendar)
		v1.GET("/maintenance-tasks/:id", mc.GetTask)
		v1.PUT("/maintenance-tasks/:id", mc.UpdateTask)
		v1.DELETE("/maintenance-tasks/:id", mc.DeleteTask)

		v1.GET("/notifications", nc.ListNotifications)
		v1.GET("/notifications/unread/count", nc.UnreadCount)
		v1.PUT("/notifications/:id/read", nc.MarkRead)

		v1.GET("/dashboard/summary", dc.GetSummary)
	}

	return &testEnv{db: db, router: router, storage: storage, events: events}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Response is not valid JSON: %v (%s)", err, w.Body.String())
	}
	return response
}

func errorCode(t *testing.T, response map[string]interface{}) string {
	t.Helper()
	errBody, ok := response["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("Response has no error body: %v", response)
	}
	code, _ := errBody["code"].(string)
	return code
}

func dataMap(t *testing.T, response map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := response["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("Response data is not an object: %v", response)
	}
	return data
}

func dataList(t *testing.T, response map[string]interface{}) []interface{} {
	t.Helper()
	data, ok := response["data"].([]interface{})
	if !ok {
		t.Fatalf("Response data is not a list: %v", response)
	}
	return data
}
