package httppresentation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	appInventory "github.com/vendora/marketplace/internal/application/inventory"
	appNotification "github.com/vendora/marketplace/internal/application/notification"
	appOrder "github.com/vendora/marketplace/internal/application/order"
	appProduct "github.com/vendora/marketplace/internal/application/product"
	appRating "github.com/vendora/marketplace/internal/application/rating"
	domainInventory "github.com/vendora/marketplace/internal/domain/inventory"
	domainNotification "github.com/vendora/marketplace/internal/domain/notification"
	domainOrder "github.com/vendora/marketplace/internal/domain/order"
	domainProduct "github.com/vendora/marketplace/internal/domain/product"
	domainRating "github.com/vendora/marketplace/internal/domain/rating"
	domainUser "github.com/vendora/marketplace/internal/domain/user"
	"github.com/vendora/marketplace/internal/observability"
)

const (
	componentHTTPHandler = "http_server"
	headerRequestID      = "X-Request-ID"
)

var errVendorIDRequired = errors.New("vendor_id query parameter is required")

type Handler struct {
	orders        *appOrder.Service
	inventory     *appInventory.Service
	products      *appProduct.Service
	notifications *appNotification.Service
	ratings       *appRating.Service

	log observability.Logger
	tel observability.Observability
}

func NewHandler(
	orders *appOrder.Service,
	inventory *appInventory.Service,
	products *appProduct.Service,
	notifications *appNotification.Service,
	ratings *appRating.Service,
	tel observability.Observability,
) *Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Handler{
		orders:        orders,
		inventory:     inventory,
		products:      products,
		notifications: notifications,
		ratings:       ratings,
		log:           tel.Logger().With(observability.F("component", componentHTTPHandler)),
		tel:           tel,
	}
}

func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	// Wire each route with middlewares:
	// Trace → request logger → access log → HTTP metrics → handler
	h.handle(mux, "POST /orders", h.handlePlaceOrder)
	h.handle(mux, "GET /orders", h.handleListOrders)
	h.handle(mux, "GET /orders/{id}", h.handleGetOrder)
	h.handle(mux, "PUT /orders/{id}", h.handleUpdateOrder)
	h.handle(mux, "POST /orders/{id}/dispatch", h.handleDispatch)
	h.handle(mux, "POST /orders/{id}/cancel-request", h.handleRequestCancellation)
	h.handle(mux, "POST /orders/{id}/cancel-confirm", h.handleConfirmCancellation)
	h.handle(mux, "PUT /orders/{id}/vendor-status/{vendorID}", h.handleVendorStatus)
	h.handle(mux, "GET /customers/{id}/orders", h.handleCustomerOrders)
	h.handle(mux, "GET /vendors/{id}/orders", h.handleVendorOrders)

	h.handle(mux, "POST /products", h.handleCreateProduct)
	h.handle(mux, "GET /products", h.handleListProducts)
	h.handle(mux, "GET /products/{id}", h.handleGetProduct)
	h.handle(mux, "PUT /products/{id}", h.handleUpdateProduct)
	h.handle(mux, "DELETE /products/{id}", h.handleDeleteProduct)

	h.handle(mux, "GET /inventory", h.handleListInventory)
	h.handle(mux, "GET /inventory/{id}", h.handleGetInventory)
	h.handle(mux, "PUT /inventory/{id}", h.handleSetInventory)
	h.handle(mux, "POST /inventory/{id}/delta", h.handleInventoryDelta)
	h.handle(mux, "DELETE /inventory/{id}", h.handleDeleteInventory)

	h.handle(mux, "GET /users/{id}/notifications", h.handleUserNotifications)
	h.handle(mux, "POST /notifications/{id}/read", h.handleMarkNotificationRead)
	h.handle(mux, "DELETE /notifications/{id}", h.handleDeleteNotification)

	h.handle(mux, "POST /ratings", h.handleAddRating)
	h.handle(mux, "GET /ratings", h.handleListRatings)
	h.handle(mux, "GET /ratings/{id}", h.handleGetRating)
	h.handle(mux, "PUT /ratings/{id}", h.handleUpdateRating)
	h.handle(mux, "DELETE /ratings/{id}", h.handleDeleteRating)
	h.handle(mux, "GET /vendors/{id}/ratings", h.handleVendorRatings)

	h.handle(mux, "GET /health", h.handleHealth)

	return mux
}

// handle registers a method-qualified route with the full middleware stack.
// The pattern doubles as the low-cardinality route label for metrics and
// access logs.
func (h *Handler) handle(mux *http.ServeMux, pattern string, handler http.HandlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		ctx := contextWithRoute(r.Context(), pattern)
		r = r.WithContext(ctx)

		wrapped := h.withTrace(
			RequestLoggerMiddleware(h.log, func(r *http.Request) string {
				return r.Header.Get(headerRequestID)
			})(
				h.withAccessLog(
					h.withHTTPMetrics(handler),
				),
			),
		)
		wrapped.ServeHTTP(w, r)
	})
}

// --- orders

type itemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type addressRequest struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	ZipCode string `json:"zip_code"`
}

type placeOrderRequest struct {
	CustomerID      string         `json:"customer_id"`
	Items           []itemRequest  `json:"order_items"`
	ShippingAddress addressRequest `json:"shipping_address"`
}

type orderItemResponse struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

type vendorStatusResponse struct {
	VendorID   string `json:"vendor_id"`
	VendorName string `json:"vendor_name,omitempty"`
	Status     string `json:"status"`
	Rated      bool   `json:"rated"`
}

type orderResponse struct {
	ID              string                 `json:"id"`
	OrderCode       string                 `json:"order_code"`
	CustomerID      string                 `json:"customer_id"`
	CustomerName    string                 `json:"customer_name,omitempty"`
	OrderStatus     string                 `json:"order_status"`
	Items           []orderItemResponse    `json:"order_items"`
	TotalAmount     float64                `json:"total_amount"`
	ShippingAddress addressRequest         `json:"shipping_address"`
	VendorStatus    []vendorStatusResponse `json:"vendor_status"`
	PlacedAt        time.Time              `json:"placed_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

func toOrderResponse(o *domainOrder.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.UnitPrice,
		})
	}
	vs := make([]vendorStatusResponse, 0, len(o.VendorStatus))
	for _, v := range o.VendorStatus {
		vs = append(vs, vendorStatusResponse{
			VendorID:   v.VendorID,
			VendorName: v.VendorName,
			Status:     string(v.Status),
			Rated:      v.Rated,
		})
	}
	return orderResponse{
		ID:           o.ID,
		OrderCode:    o.Code,
		CustomerID:   o.CustomerID,
		CustomerName: o.CustomerName,
		OrderStatus:  string(o.Status),
		Items:        items,
		TotalAmount:  o.TotalAmount,
		ShippingAddress: addressRequest{
			Street:  o.ShippingAddress.Street,
			City:    o.ShippingAddress.City,
			ZipCode: o.ShippingAddress.ZipCode,
		},
		VendorStatus: vs,
		PlacedAt:     o.PlacedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

func toOrderResponses(orders []*domainOrder.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}

func orderItemsInput(items []itemRequest) []appOrder.ItemInput {
	out := make([]appOrder.ItemInput, 0, len(items))
	for _, it := range items {
		out = append(out, appOrder.ItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

func (h *Handler) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ord, err := h.orders.PlaceOrder(r.Context(), appOrder.PlaceOrderInput{
		CustomerID: req.CustomerID,
		Items:      orderItemsInput(req.Items),
		ShippingAddress: appOrder.AddressInput{
			Street:  req.ShippingAddress.Street,
			City:    req.ShippingAddress.City,
			ZipCode: req.ShippingAddress.ZipCode,
		},
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(ord))
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	orders, err := h.orders.List(r.Context(), page, pageSize)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	ord, err := h.orders.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(ord))
}

type updateOrderRequest struct {
	Items           []itemRequest   `json:"order_items"`
	ShippingAddress *addressRequest `json:"shipping_address"`
}

func (h *Handler) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	var req updateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	input := appOrder.UpdateOrderInput{Items: orderItemsInput(req.Items)}
	if req.ShippingAddress != nil {
		input.ShippingAddress = &appOrder.AddressInput{
			Street:  req.ShippingAddress.Street,
			City:    req.ShippingAddress.City,
			ZipCode: req.ShippingAddress.ZipCode,
		}
	}

	ord, err := h.orders.UpdateOrder(r.Context(), r.PathValue("id"), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(ord))
}

func (h *Handler) handleDispatch(w http.ResponseWriter, r *http.Request) {
	ord, err := h.orders.Dispatch(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(ord))
}

func (h *Handler) handleRequestCancellation(w http.ResponseWriter, r *http.Request) {
	ord, err := h.orders.RequestCancellation(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(ord))
}

func (h *Handler) handleConfirmCancellation(w http.ResponseWriter, r *http.Request) {
	ord, err := h.orders.ConfirmCancellation(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(ord))
}

type vendorStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleVendorStatus(w http.ResponseWriter, r *http.Request) {
	var req vendorStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ord, err := h.orders.UpdateVendorStatus(r.Context(),
		r.PathValue("id"), r.PathValue("vendorID"), domainOrder.VendorStatus(req.Status))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(ord))
}

func (h *Handler) handleCustomerOrders(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	orders, err := h.orders.ListByCustomer(r.Context(), r.PathValue("id"), page, pageSize)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

func (h *Handler) handleVendorOrders(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	orders, err := h.orders.ListByVendor(r.Context(), r.PathValue("id"), page, pageSize)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

// --- products

type createProductRequest struct {
	Name         string  `json:"product_name"`
	Category     string  `json:"category"`
	Description  string  `json:"description"`
	VendorID     string  `json:"vendor_id"`
	Price        float64 `json:"price"`
	InitialStock int     `json:"initial_stock"`
}

type productResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"product_name"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	VendorID    string    `json:"vendor_id"`
	Price       float64   `json:"price"`
	Status      string    `json:"product_status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toProductResponse(p *domainProduct.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Description: p.Description,
		VendorID:    p.VendorID,
		Price:       p.Price,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	p, err := h.products.Create(r.Context(), appProduct.CreateInput{
		Name:         req.Name,
		Category:     req.Category,
		Description:  req.Description,
		VendorID:     req.VendorID,
		Price:        req.Price,
		InitialStock: req.InitialStock,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(p))
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	products, err := h.products.List(r.Context(), page, pageSize)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

type updateProductRequest struct {
	Name        string   `json:"product_name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Status      string   `json:"product_status"`
}

func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req updateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	p, err := h.products.Update(r.Context(), r.PathValue("id"), appProduct.UpdateInput{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Price:       req.Price,
		Status:      domainProduct.Status(req.Status),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.inventory.DeleteByProduct(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- inventory

type inventoryResponse struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id"`
	VendorID      string    `json:"vendor_id"`
	StockQuantity int       `json:"stock_quantity"`
	LowStockAlert bool      `json:"low_stock_alert"`
	LastUpdated   time.Time `json:"last_updated"`
}

func toInventoryResponse(rec *domainInventory.Record) inventoryResponse {
	return inventoryResponse{
		ID:            rec.ID,
		ProductID:     rec.ProductID,
		VendorID:      rec.VendorID,
		StockQuantity: rec.StockQuantity,
		LowStockAlert: rec.LowStockAlert,
		LastUpdated:   rec.LastUpdated,
	}
}

func (h *Handler) handleListInventory(w http.ResponseWriter, r *http.Request) {
	if productID := r.URL.Query().Get("product_id"); productID != "" {
		rec, err := h.inventory.FindByProduct(r.Context(), productID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, []inventoryResponse{toInventoryResponse(rec)})
		return
	}

	records, err := h.inventory.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]inventoryResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toInventoryResponse(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetInventory(w http.ResponseWriter, r *http.Request) {
	rec, err := h.inventory.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInventoryResponse(rec))
}

type setInventoryRequest struct {
	StockQuantity int `json:"stock_quantity"`
}

func (h *Handler) handleSetInventory(w http.ResponseWriter, r *http.Request) {
	var req setInventoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rec, err := h.inventory.SetQuantity(r.Context(), r.PathValue("id"), req.StockQuantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInventoryResponse(rec))
}

type inventoryDeltaRequest struct {
	Delta int `json:"delta"`
}

func (h *Handler) handleInventoryDelta(w http.ResponseWriter, r *http.Request) {
	var req inventoryDeltaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rec, err := h.inventory.ApplyDelta(r.Context(), r.PathValue("id"), req.Delta)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInventoryResponse(rec))
}

func (h *Handler) handleDeleteInventory(w http.ResponseWriter, r *http.Request) {
	if err := h.inventory.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- notifications

type notificationResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) handleUserNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.notifications.ListByUser(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]notificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, notificationResponse{
			ID:        n.ID,
			UserID:    n.UserID,
			Message:   n.Message,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.MarkRead(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDeleteNotification(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- ratings

type addRatingRequest struct {
	CustomerID string  `json:"customer_id"`
	VendorID   string  `json:"vendor_id"`
	OrderID    string  `json:"order_id"`
	Rating     float64 `json:"rating"`
	Comment    string  `json:"comment"`
}

type ratingResponse struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	VendorID   string    `json:"vendor_id"`
	OrderID    string    `json:"order_id"`
	Rating     float64   `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

func toRatingResponse(v *domainRating.VendorRating) ratingResponse {
	return ratingResponse{
		ID:         v.ID,
		CustomerID: v.CustomerID,
		VendorID:   v.VendorID,
		OrderID:    v.OrderID,
		Rating:     v.Rating,
		Comment:    v.Comment,
		CreatedAt:  v.CreatedAt,
	}
}

func (h *Handler) handleAddRating(w http.ResponseWriter, r *http.Request) {
	var req addRatingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	v, err := h.ratings.Add(r.Context(), appRating.AddInput{
		CustomerID: req.CustomerID,
		VendorID:   req.VendorID,
		OrderID:    req.OrderID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRatingResponse(v))
}

func (h *Handler) handleListRatings(w http.ResponseWriter, r *http.Request) {
	vendorID := r.URL.Query().Get("vendor_id")
	if vendorID == "" {
		writeError(w, http.StatusBadRequest, errVendorIDRequired)
		return
	}
	ratings, err := h.ratings.ListByVendor(r.Context(), vendorID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]ratingResponse, 0, len(ratings))
	for _, v := range ratings {
		out = append(out, toRatingResponse(v))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetRating(w http.ResponseWriter, r *http.Request) {
	v, err := h.ratings.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRatingResponse(v))
}

type updateRatingRequest struct {
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment"`
}

func (h *Handler) handleUpdateRating(w http.ResponseWriter, r *http.Request) {
	var req updateRatingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	v, err := h.ratings.Update(r.Context(), r.PathValue("id"), req.Rating, req.Comment)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRatingResponse(v))
}

func (h *Handler) handleDeleteRating(w http.ResponseWriter, r *http.Request) {
	if err := h.ratings.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleVendorRatings(w http.ResponseWriter, r *http.Request) {
	ratings, err := h.ratings.ListByVendor(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]ratingResponse, 0, len(ratings))
	for _, v := range ratings {
		out = append(out, toRatingResponse(v))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// --- helpers

func pagination(r *http.Request) (page, pageSize int) {
	q := r.URL.Query()
	page, _ = strconv.Atoi(q.Get("page"))
	pageSize, _ = strconv.Atoi(q.Get("page_size"))
	return page, pageSize
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domainOrder.ErrNotFound),
		errors.Is(err, domainInventory.ErrNotFound),
		errors.Is(err, domainProduct.ErrNotFound),
		errors.Is(err, domainNotification.ErrNotFound),
		errors.Is(err, domainRating.ErrNotFound),
		errors.Is(err, domainUser.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, domainOrder.ErrEmptyItems),
		errors.Is(err, domainOrder.ErrInvalidCustomer),
		errors.Is(err, domainOrder.ErrInvalidProduct),
		errors.Is(err, domainOrder.ErrInvalidQuantity),
		errors.Is(err, domainOrder.ErrVendorNotInOrder),
		errors.Is(err, domainOrder.ErrBadVendorStatus),
		errors.Is(err, domainInventory.ErrInvalidProduct),
		errors.Is(err, domainInventory.ErrNegativeQuantity),
		errors.Is(err, domainProduct.ErrInvalidName),
		errors.Is(err, domainProduct.ErrInvalidVendor),
		errors.Is(err, domainProduct.ErrInvalidPrice),
		errors.Is(err, domainProduct.ErrBadStatus),
		errors.Is(err, domainNotification.ErrInvalidUser),
		errors.Is(err, domainRating.ErrInvalidRating),
		errors.Is(err, domainRating.ErrInvalidVendor):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, domainOrder.ErrInvalidState),
		errors.Is(err, domainOrder.ErrConflict),
		errors.Is(err, domainInventory.ErrInsufficientStock),
		errors.Is(err, domainInventory.ErrHasOpenOrders),
		errors.Is(err, domainInventory.ErrConflict),
		errors.Is(err, domainProduct.ErrConflict):
		writeError(w, http.StatusConflict, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

type routeKey struct{}

// contextWithRoute stores the route pattern in the context so downstream
// metrics and logging use low-cardinality values.
func contextWithRoute(ctx context.Context, route string) context.Context {
	if route == "" {
		return ctx
	}
	return context.WithValue(ctx, routeKey{}, route)
}

func routeFromContext(ctx context.Context) string {
	if ctx == nil {
		return "unknown"
	}
	if route, ok := ctx.Value(routeKey{}).(string); ok && route != "" {
		return route
	}
	return "unknown"
}
