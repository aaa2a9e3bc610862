package httppresentation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	appInventory "github.com/vendora/marketplace/internal/application/inventory"
	appNotification "github.com/vendora/marketplace/internal/application/notification"
	appOrder "github.com/vendora/marketplace/internal/application/order"
	appProduct "github.com/vendora/marketplace/internal/application/product"
	appRating "github.com/vendora/marketplace/internal/application/rating"
	"github.com/vendora/marketplace/internal/infrastructure/id"
	"github.com/vendora/marketplace/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	orderRepo := memory.NewOrderRepository()
	inventoryRepo := memory.NewInventoryRepository()
	productRepo := memory.NewProductRepository()
	userRepo := memory.NewUserRepository()
	notificationRepo := memory.NewNotificationRepository()
	ratingRepo := memory.NewRatingRepository()
	idGen := id.NewUUIDGenerator()

	notificationSvc := appNotification.NewService(notificationRepo, idGen, nil)
	inventorySvc := appInventory.NewService(inventoryRepo, productRepo, orderRepo, notificationSvc, idGen, nil)
	orderSvc := appOrder.NewService(orderRepo, productRepo, inventorySvc, userRepo, notificationSvc,
		idGen, id.NewOrderCodeGenerator(), nil)
	productSvc := appProduct.NewService(productRepo, inventorySvc, idGen, nil)
	ratingSvc := appRating.NewService(ratingRepo, orderSvc, idGen, nil)

	handler := NewHandler(orderSvc, inventorySvc, productSvc, notificationSvc, ratingSvc, nil)

	srv := httptest.NewServer(handler.Router())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.Bytes()
}

func createProduct(t *testing.T, srv *httptest.Server, name, vendorID string, price float64, stock int) string {
	t.Helper()

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/products", map[string]any{
		"product_name":  name,
		"vendor_id":     vendorID,
		"price":         price,
		"initial_stock": stock,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	return created.ID
}

func placeOrder(t *testing.T, srv *httptest.Server, productID string, quantity int) (orderID, orderCode string) {
	t.Helper()

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/orders", map[string]any{
		"customer_id": "c-1",
		"order_items": []map[string]any{
			{"product_id": productID, "quantity": quantity},
		},
		"shipping_address": map[string]any{"street": "4 Mill Lane", "city": "Leeds", "zip_code": "LS1 4AB"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var created struct {
		ID        string `json:"id"`
		OrderCode string `json:"order_code"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	return created.ID, created.OrderCode
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	productID := createProduct(t, srv, "Walnut Desk", "v-1", 10, 40)

	orderID, orderCode := placeOrder(t, srv, productID, 3)
	assert.Regexp(t, `^EC-\d{8}$`, orderCode)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/orders/"+orderID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got struct {
		OrderStatus string  `json:"order_status"`
		TotalAmount float64 `json:"total_amount"`
	}
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "Pending", got.OrderStatus)
	assert.Equal(t, 30.0, got.TotalAmount)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/orders/"+orderID+"/dispatch", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// A second dispatch conflicts with the first.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/orders/"+orderID+"/dispatch", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = doJSON(t, http.MethodPut,
		fmt.Sprintf("%s/orders/%s/vendor-status/%s", srv.URL, orderID, "v-1"),
		map[string]any{"status": "Delivered"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "Delivered", got.OrderStatus)
}

func TestCancellationOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	productID := createProduct(t, srv, "Brass Lamp", "v-2", 25, 10)
	orderID, _ := placeOrder(t, srv, productID, 1)

	// Confirmation without a request is a state conflict.
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/orders/"+orderID+"/cancel-confirm", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/orders/"+orderID+"/cancel-request", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/orders/"+orderID+"/cancel-confirm", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got struct {
		OrderStatus string `json:"order_status"`
	}
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "Cancelled", got.OrderStatus)
}

func TestErrorMappingOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	productID := createProduct(t, srv, "Wool Rug", "v-1", 40, 2)

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/orders/o-ghost", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Short stock is rejected at placement.
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/orders", map[string]any{
		"customer_id": "c-1",
		"order_items": []map[string]any{
			{"product_id": productID, "quantity": 3},
		},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode, string(body))

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/orders", map[string]any{
		"customer_id": "",
		"order_items": []map[string]any{
			{"product_id": productID, "quantity": 1},
		},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestInventoryGuardOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	productID := createProduct(t, srv, "Oak Shelf", "v-1", 60, 20)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/inventory?product_id="+productID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var records []struct {
		ID            string `json:"id"`
		StockQuantity int    `json:"stock_quantity"`
	}
	require.NoError(t, json.Unmarshal(body, &records))
	require.Len(t, records, 1)
	assert.Equal(t, 20, records[0].StockQuantity)

	placeOrder(t, srv, productID, 1)

	// An open order blocks deletion of the product's inventory.
	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/inventory/"+records[0].ID, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/inventory/"+records[0].ID+"/delta",
		map[string]any{"delta": -25})
	assert.Equal(t, http.StatusConflict, resp.StatusCode, string(body))
}
