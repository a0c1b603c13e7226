package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"checkout-service/internal/domain"
	"checkout-service/internal/services"

	"github.com/gin-gonic/gin"
)

// ResponseCache stores rendered JSON bodies for hot reads.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, body []byte)
	Delete(ctx context.Context, keys ...string)
}

type Handler struct {
	orders    *services.OrderService
	inventory *services.InventoryService
	payments  *services.PaymentService
	cache     ResponseCache
}

func NewHandler(o *services.OrderService, i *services.InventoryService, p *services.PaymentService) *Handler {
	RegisterValidators()
	return &Handler{orders: o, inventory: i, payments: p}
}

func (h *Handler) SetCache(c ResponseCache) {
	h.cache = c
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.Health)

	api := r.Group("/api")
	api.GET("/orders", h.ListOrders)
	api.GET("/orders/:id", h.GetOrder)
	api.POST("/orders", h.CreateOrder)
	api.PATCH("/orders/:id/status", h.UpdateOrderStatus)

	api.GET("/products/:id", h.GetProduct)
	api.GET("/inventory", h.ListInventory)
	api.POST("/inventory", h.RecordInventory)

	api.GET("/razorpay-key", h.PaymentKey)
	api.POST("/create-payment", h.CreatePayment)
	api.POST("/verify-payment", h.VerifyPayment)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), req.toDomain())
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	key := orderCacheKey(id)
	if h.cache != nil {
		if b, hit := h.cache.Get(ctx, key); hit {
			c.Data(http.StatusOK, "application/json; charset=utf-8", b)
			return
		}
	}

	order, err := h.orders.GetOrderByID(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}

	body, err := json.Marshal(order)
	if err != nil {
		fail(c, err)
		return
	}
	if h.cache != nil {
		h.cache.Set(ctx, key, body)
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func (h *Handler) ListOrders(c *gin.Context) {
	var q listOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	filter := domain.OrderFilter{CustomerID: q.CustomerID, Limit: q.Limit, Offset: q.Offset}
	if q.Status != "" {
		st, ok := domain.ParseOrderStatus(q.Status)
		if !ok {
			fail(c, domain.FieldError("status", "oneof=pending processing shipped delivered canceled"))
			return
		}
		filter.Status = &st
	}
	var err error
	if filter.StartDate, err = dateParam("startDate", q.StartDate, false); err != nil {
		fail(c, err)
		return
	}
	if filter.EndDate, err = dateParam("endDate", q.EndDate, true); err != nil {
		fail(c, err)
		return
	}

	orders, err := h.orders.ListOrders(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := h.orders.UpdateOrderStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		fail(c, err)
		return
	}

	h.invalidateOrder(c.Request.Context(), id)
	c.JSON(http.StatusOK, order)
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	p, err := h.inventory.GetProduct(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) ListInventory(c *gin.Context) {
	var q listInventoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	filter := domain.InventoryFilter{ProductID: q.ProductID, Limit: q.Limit, Offset: q.Offset}
	if t := strings.ToLower(strings.TrimSpace(q.Type)); t != "" {
		typ := domain.InventoryTxType(t)
		filter.Type = &typ
	}
	var err error
	if filter.StartDate, err = dateParam("startDate", q.StartDate, false); err != nil {
		fail(c, err)
		return
	}
	if filter.EndDate, err = dateParam("endDate", q.EndDate, true); err != nil {
		fail(c, err)
		return
	}

	txs, err := h.inventory.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, txs)
}

func (h *Handler) RecordInventory(c *gin.Context) {
	var req inventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	t, err := h.inventory.RecordTransaction(c.Request.Context(), req.toDomain())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) PaymentKey(c *gin.Context) {
	key, err := h.payments.PublicKey()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key_id": key})
}

func (h *Handler) CreatePayment(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		body := bindErrorBody(err)
		body["success"] = false
		c.JSON(http.StatusBadRequest, body)
		return
	}

	po, err := h.payments.CreatePaymentIntent(c.Request.Context(), services.PaymentIntentRequest{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
		OrderID:  req.OrderID,
	})
	if err != nil {
		failPayment(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "order": json.RawMessage(po.Raw)})
}

func (h *Handler) VerifyPayment(c *gin.Context) {
	var req verifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		body := bindErrorBody(err)
		body["success"] = false
		c.JSON(http.StatusBadRequest, body)
		return
	}

	outcome, err := h.payments.VerifyPayment(c.Request.Context(), services.PaymentVerificationRequest{
		ProviderOrderID:   req.RazorpayOrderID,
		ProviderPaymentID: req.RazorpayPaymentID,
		Signature:         req.RazorpaySignature,
		OrderID:           req.OrderID,
	})
	if err != nil {
		failPayment(c, err)
		return
	}

	msg := "Payment has been verified"
	switch {
	case outcome.Replayed:
		msg = "Payment was already verified"
	case outcome.OrderCanceled:
		msg = "Payment has been verified but the order was canceled; it will be refunded"
	}
	if outcome.OrderAdvanced && outcome.Payment != nil && outcome.Payment.OrderID != nil {
		h.invalidateOrder(c.Request.Context(), *outcome.Payment.OrderID)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       msg,
		"orderAdvanced": outcome.OrderAdvanced,
		"orderCanceled": outcome.OrderCanceled,
	})
}

func (h *Handler) invalidateOrder(ctx context.Context, id uint64) {
	if h.cache != nil {
		h.cache.Delete(ctx, orderCacheKey(id))
	}
}

func orderCacheKey(id uint64) string {
	return "orders:" + strconv.FormatUint(id, 10)
}

func idParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return 0, false
	}
	return id, true
}

// dateParam accepts RFC 3339 timestamps or plain dates. A plain end date
// covers the whole day.
func dateParam(field, raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, domain.FieldError(field, "datetime")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
