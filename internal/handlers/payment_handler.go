package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
	"github.com/chasmapasal/chasmapasal-api/internal/middleware"
	"github.com/chasmapasal/chasmapasal-api/internal/models"
	ucPayment "github.com/chasmapasal/chasmapasal-api/internal/usecase/payment"
)

type PaymentHandler struct {
	checkout *ucPayment.Checkout
	verify   *ucPayment.VerifyPayment
	webhook  *ucPayment.HandleWebhook
}

func NewPaymentHandler(
	checkout *ucPayment.Checkout,
	verify *ucPayment.VerifyPayment,
	webhook *ucPayment.HandleWebhook,
) *PaymentHandler {
	return &PaymentHandler{
		checkout: checkout,
		verify:   verify,
		webhook:  webhook,
	}
}

// --------- Requests ---------

type OrderItemRequest struct {
	Product         uint            `json:"product" binding:"required"`
	Quantity        int             `json:"quantity" binding:"required,min=1"`
	PriceAtPurchase decimal.Decimal `json:"priceAtPurchase"`
	NameAtPurchase  string          `json:"nameAtPurchase"`
}

type CheckoutRequest struct {
	UserID          uint                   `json:"userId"`
	Items           []OrderItemRequest     `json:"items" binding:"required,min=1,dive"`
	TotalPrice      decimal.Decimal        `json:"totalPrice"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
}

type VerifyPaymentRequest struct {
	Pidx    string `json:"pidx"`
	OrderID string `json:"orderId"`
}

type CheckoutResponse struct {
	Success    bool   `json:"success"`
	PaymentURL string `json:"payment_url"`
	Pidx       string `json:"pidx"`
	OrderID    string `json:"orderId"`
}

type VerifyPaymentResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	OrderID       string `json:"orderId"`
	TransactionID string `json:"transactionId,omitempty"`
}

// --------- Handlers ---------

func (h *PaymentHandler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}

	userID, ok := actingFor(c, req.UserID)
	if !ok {
		return
	}

	res, err := h.checkout.Execute(c.Request.Context(), ucPayment.CheckoutInput{
		UserID:          userID,
		Items:           orderItems(req.Items),
		TotalPrice:      req.TotalPrice,
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, CheckoutResponse{
		Success:    true,
		PaymentURL: res.PaymentURL,
		Pidx:       res.Pidx,
		OrderID:    res.OrderID,
	})
}

func (h *PaymentHandler) Verify(c *gin.Context) {
	var req VerifyPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	out, err := h.verify.Execute(c.Request.Context(), req.Pidx)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	if !out.Paid {
		c.JSON(http.StatusBadRequest, VerifyPaymentResponse{
			Success: false,
			Message: "Payment not completed. Status: " + out.GatewayStatus,
			OrderID: out.OrderID,
		})
		return
	}

	c.JSON(http.StatusOK, VerifyPaymentResponse{
		Success:       true,
		Message:       "Payment verified successfully",
		OrderID:       out.OrderID,
		TransactionID: out.TransactionID,
	})
}

// Webhook is where the gateway sends the browser after payment.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	target := h.webhook.Execute(c.Request.Context(), ucPayment.WebhookInput{
		Pidx:            c.Query("pidx"),
		Status:          c.Query("status"),
		TransactionID:   c.Query("transaction_id"),
		PurchaseOrderID: c.Query("purchase_order_id"),
	})
	c.Redirect(http.StatusFound, target)
}

// --------- helpers ---------

func orderItems(in []OrderItemRequest) []models.OrderItem {
	out := make([]models.OrderItem, 0, len(in))
	for _, it := range in {
		out = append(out, models.OrderItem{
			ProductID:       it.Product,
			Quantity:        it.Quantity,
			PriceAtPurchase: it.PriceAtPurchase,
			NameAtPurchase:  it.NameAtPurchase,
		})
	}
	return out
}

// actingFor resolves the user a request is made for. Only admins may act for
// someone else.
func actingFor(c *gin.Context, requested uint) (uint, bool) {
	actor := middleware.Identity(c)
	if requested == 0 || requested == actor.UserID {
		return actor.UserID, true
	}
	if !actor.IsAdmin() {
		httperr.Forbidden(c, "forbidden", "Authenticated Access Denied")
		return 0, false
	}
	return requested, true
}
