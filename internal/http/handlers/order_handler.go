// Order HTTP handlers.
//
// This file exposes REST endpoints for orders:
//   - POST  /api/orders                (submit, Idempotency-Key aware)
//   - GET   /api/orders                (list, paginated, ETag support)
//   - GET   /api/orders/{id}           (read with items and delivery info)
//   - PATCH /api/orders/{id}/status    (lifecycle transition)
//   - GET   /api/orders/{id}/qrcode    (PNG encoding the order id)
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"

	"github.com/tbourn/sushi-order-bot/internal/domain"
	"github.com/tbourn/sushi-order-bot/internal/http/middleware"
	"github.com/tbourn/sushi-order-bot/internal/repo"
	"github.com/tbourn/sushi-order-bot/internal/services"
	"github.com/tbourn/sushi-order-bot/internal/utils"
)

//
// DTOs
//

// CreateOrderResponse acknowledges an accepted order.
type CreateOrderResponse struct {
	Success bool   `json:"success" example:"true"`
	OrderID string `json:"order_id" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
	// Total is the server-computed sum of price * quantity.
	Total decimal.Decimal `json:"total" swaggertype:"number" example:"100"`
	// Replayed is true when an Idempotency-Key matched an earlier submission.
	Replayed bool `json:"replayed" example:"false"`
}

// ListOrdersResponse wraps a page of orders and pagination information.
type ListOrdersResponse struct {
	Orders     []domain.Order `json:"orders"`
	Pagination Pagination     `json:"pagination"`
}

// UpdateOrderStatusRequest is the JSON payload for a status transition.
type UpdateOrderStatusRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required" swaggertype:"string" enums:"pending,confirmed,delivering,completed,cancelled" example:"confirmed"`
}

//
// Handlers
//

// CreateOrder godoc
// @ID          createOrder
// @Summary     Submit an order
// @Description Validates the order, stores it with a server-computed total, alerts the admin chat, and returns the order id. A repeated Idempotency-Key returns the original order with replayed=true.
// @Tags        Orders
// @Accept      json
// @Produce     json
// @Param       X-User-ID        header  string  false "Customer id when the payload has none"  example(123456789)
// @Param       Idempotency-Key  header  string  false "Makes retries safe"                      example(3c1f0a2e-order-1)
// @Param       body             body    services.OrderSubmission  true  "Order payload"
// @Success     201  {object}  handlers.CreateOrderResponse
// @Success     200  {object}  handlers.CreateOrderResponse "Replayed submission"
// @Failure     400  {object}  handlers.ErrorResponse  "Malformed JSON or validation failure"
// @Failure     429  {object}  handlers.ErrorResponse  "Rate limited"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /api/orders [post]
func (h *Handlers) CreateOrder(c *gin.Context) {
	var sub services.OrderSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if strings.TrimSpace(sub.UserID) == "" {
		sub.UserID = userID(c)
	}
	key, _ := middleware.GetIdempotencyKey(c)
	sub.IdempotencyOwner = middleware.IdempotencyOwner(c)

	conf, err := h.orders.Submit(c.Request.Context(), sub, key)
	if err != nil {
		var ve *services.ValidationError
		if errors.As(err, &ve) {
			failValidation(c, ve)
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, "could not store order")
		return
	}

	status := http.StatusCreated
	if conf.Replayed {
		status = http.StatusOK
	}
	ok(c, status, CreateOrderResponse{
		Success:  true,
		OrderID:  conf.OrderID,
		Total:    conf.Total,
		Replayed: conf.Replayed,
	})
}

// ListOrders godoc
// @ID          listOrders
// @Summary     List orders (paginated)
// @Description Returns orders newest first, optionally filtered by status and user. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Orders
// @Produce     json
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"orders:all:all:3:1700000000\")
// @Param       status         query   string  false "Filter by status"  Enums(pending,confirmed,delivering,completed,cancelled)
// @Param       user_id        query   string  false "Filter by customer id"
// @Param       page           query   int     false "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"  minimum(1) maximum(100) default(20)
// @Success     200  {object} handlers.ListOrdersResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Unknown status"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /api/orders [get]
func (h *Handlers) ListOrders(c *gin.Context) {
	ctx := c.Request.Context()
	f := repo.OrderFilter{
		UserID: strings.TrimSpace(c.Query("user_id")),
		Status: domain.OrderStatus(strings.TrimSpace(c.Query("status"))),
	}
	if f.Status != "" && !f.Status.Valid() {
		fail(c, http.StatusBadRequest, ErrCodeInvalidStatus, fmt.Sprintf("unknown status %q", f.Status))
		return
	}
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if count, maxTS, err := h.orders.Stats(ctx, f); err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.Unix()
		}
		etag := ordersETag(f, count, ts)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, total, err := h.orders.ListPage(ctx, f, page, pageSize)
	if err != nil {
		if errors.Is(err, services.ErrInvalidStatus) {
			fail(c, http.StatusBadRequest, ErrCodeInvalidStatus, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list orders")
		return
	}
	ok(c, http.StatusOK, ListOrdersResponse{Orders: items, Pagination: newPagination(page, pageSize, total)})
}

// GetOrder godoc
// @ID          getOrder
// @Summary     Get an order
// @Description Returns the order with its items (each with subtotal) and delivery info.
// @Tags        Orders
// @Produce     json
// @Param       id   path  string  true  "Order ID (UUID)"  format(uuid)
// @Success     200  {object} domain.Order
// @Failure     404  {object} handlers.ErrorResponse "Order not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /api/orders/{id} [get]
func (h *Handlers) GetOrder(c *gin.Context) {
	o, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.orderError(c, err)
		return
	}
	ok(c, http.StatusOK, o)
}

// UpdateOrderStatus godoc
// @ID          updateOrderStatus
// @Summary     Change order status
// @Description Moves an order along pending → confirmed → delivering → completed; any non-terminal order may be cancelled.
// @Tags        Orders
// @Accept      json
// @Produce     json
// @Param       id    path  string  true  "Order ID (UUID)"  format(uuid)
// @Param       body  body  handlers.UpdateOrderStatusRequest  true  "Target status"
// @Success     200  {object} domain.Order
// @Failure     400  {object} handlers.ErrorResponse "Bad request or unknown status"
// @Failure     404  {object} handlers.ErrorResponse "Order not found"
// @Failure     409  {object} handlers.ErrorResponse "Transition not allowed"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /api/orders/{id}/status [patch]
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status is required")
		return
	}
	o, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.orderError(c, err)
		return
	}
	ok(c, http.StatusOK, o)
}

// OrderQRCode godoc
// @ID          orderQRCode
// @Summary     Order QR code
// @Description PNG QR code encoding the order id, for packing slips.
// @Tags        Orders
// @Produce     png
// @Param       id    path   string  true   "Order ID (UUID)"  format(uuid)
// @Param       size  query  int     false  "Edge length in pixels"  minimum(128) maximum(1024) default(256)
// @Success     200  {file}   binary
// @Failure     404  {object} handlers.ErrorResponse "Order not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /api/orders/{id}/qrcode [get]
func (h *Handlers) OrderQRCode(c *gin.Context) {
	o, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.orderError(c, err)
		return
	}
	writeQR(c, o.ID)
}

// orderError maps order service errors to responses.
func (h *Handlers) orderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "order not found")
	case errors.Is(err, services.ErrInvalidStatus):
		fail(c, http.StatusBadRequest, ErrCodeInvalidStatus, err.Error())
	case errors.Is(err, services.ErrInvalidTransition):
		fail(c, http.StatusConflict, ErrCodeInvalidTransition, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal error")
	}
}

func ordersETag(f repo.OrderFilter, count, ts int64) string {
	status, user := string(f.Status), f.UserID
	if status == "" {
		status = "all"
	}
	if user == "" {
		user = "all"
	}
	return fmt.Sprintf(`W/"orders:%s:%s:%d:%d"`, status, user, count, ts)
}

// writeQR renders content as a PNG QR code sized by the "size" query param.
func writeQR(c *gin.Context, content string) {
	size := utils.ClampInt(utils.AtoiDefault(c.Query("size"), 256), 128, 1024)
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not render QR code")
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", png)
}
