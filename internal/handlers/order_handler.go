package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
	"github.com/chasmapasal/chasmapasal-api/internal/httpresp"
	"github.com/chasmapasal/chasmapasal-api/internal/middleware"
	"github.com/chasmapasal/chasmapasal-api/internal/models"
	ucOrder "github.com/chasmapasal/chasmapasal-api/internal/usecase/order"
)

type OrderHandler struct {
	create     *ucOrder.CreateOrder
	listByUser *ucOrder.ListUserOrders
	listAll    *ucOrder.ListAllOrders
	update     *ucOrder.UpdateOrder
	cancel     *ucOrder.CancelOrder
	delete     *ucOrder.DeleteOrder
}

func NewOrderHandler(
	create *ucOrder.CreateOrder,
	listByUser *ucOrder.ListUserOrders,
	listAll *ucOrder.ListAllOrders,
	update *ucOrder.UpdateOrder,
	cancel *ucOrder.CancelOrder,
	del *ucOrder.DeleteOrder,
) *OrderHandler {
	return &OrderHandler{
		create:     create,
		listByUser: listByUser,
		listAll:    listAll,
		update:     update,
		cancel:     cancel,
		delete:     del,
	}
}

// --------- Requests ---------

type CreateOrderRequest struct {
	UserID          uint                   `json:"userId"`
	Items           []OrderItemRequest     `json:"items" binding:"required,min=1,dive"`
	PaymentMethod   string                 `json:"paymentMethod" binding:"required"`
	TotalPrice      decimal.Decimal        `json:"totalPrice"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
}

type UpdateOrderRequest struct {
	Status          *string                 `json:"status,omitempty"`
	Items           []OrderItemRequest      `json:"items,omitempty" binding:"omitempty,dive"`
	PaymentMethod   *string                 `json:"paymentMethod,omitempty"`
	TotalPrice      *decimal.Decimal        `json:"totalPrice,omitempty"`
	ShippingAddress *models.ShippingAddress `json:"shippingAddress,omitempty"`
}

// --------- Handlers ---------

func (h *OrderHandler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	userID, ok := actingFor(c, req.UserID)
	if !ok {
		return
	}

	o, err := h.create.Execute(c.Request.Context(), ucOrder.CreateOrderInput{
		UserID:          userID,
		Items:           orderItems(req.Items),
		PaymentMethod:   req.PaymentMethod,
		TotalPrice:      req.TotalPrice,
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, o)
}

// ListByUser serves GET /order/:id where id is the buyer.
func (h *OrderHandler) ListByUser(c *gin.Context) {
	userID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	orders, err := h.listByUser.Execute(c.Request.Context(), middleware.Identity(c), userID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(orders))
}

func (h *OrderHandler) ListAll(c *gin.Context) {
	orders, err := h.listAll.Execute(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(orders))
}

func (h *OrderHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	in := ucOrder.UpdateOrderInput{
		Actor:           middleware.Identity(c),
		ID:              id,
		Status:          req.Status,
		PaymentMethod:   req.PaymentMethod,
		TotalPrice:      req.TotalPrice,
		ShippingAddress: req.ShippingAddress,
	}
	if req.Items != nil {
		in.Items = orderItems(req.Items)
	}

	o, err := h.update.Execute(c.Request.Context(), in)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, httpresp.Envelope{
		Success: true,
		Message: "Order updated successfully",
		Data:    o,
	})
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.cancel.Execute(c.Request.Context(), middleware.Identity(c), id); err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Message(c, "Order cancelled successfully.")
}

func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.delete.Execute(c.Request.Context(), id); err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Message(c, "Order deleted successfully")
}
