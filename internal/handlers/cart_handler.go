package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
	"github.com/chasmapasal/chasmapasal-api/internal/httpresp"
	ucCart "github.com/chasmapasal/chasmapasal-api/internal/usecase/cart"
)

type CartHandler struct {
	get    *ucCart.GetCart
	add    *ucCart.AddCartItem
	remove *ucCart.RemoveCartItem
	clear  *ucCart.ClearCart
}

func NewCartHandler(
	get *ucCart.GetCart,
	add *ucCart.AddCartItem,
	remove *ucCart.RemoveCartItem,
	clear *ucCart.ClearCart,
) *CartHandler {
	return &CartHandler{get: get, add: add, remove: remove, clear: clear}
}

type AddCartItemRequest struct {
	ProductID uint `json:"productId" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

func (h *CartHandler) Get(c *gin.Context) {
	userID, ok := uintParam(c, "userId")
	if !ok {
		return
	}

	cart, err := h.get.Execute(c.Request.Context(), userID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) AddItem(c *gin.Context) {
	userID, ok := uintParam(c, "userId")
	if !ok {
		return
	}

	var req AddCartItemRequest
	if !bindJSON(c, &req) {
		return
	}

	cart, err := h.add.Execute(c.Request.Context(), ucCart.AddCartItemInput{
		UserID:    userID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, cart)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, ok := uintParam(c, "userId")
	if !ok {
		return
	}
	itemID, ok := uintParam(c, "itemId")
	if !ok {
		return
	}

	cart, err := h.remove.Execute(c.Request.Context(), userID, itemID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) Clear(c *gin.Context) {
	userID, ok := uintParam(c, "userId")
	if !ok {
		return
	}

	if err := h.clear.Execute(c.Request.Context(), userID); err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Message(c, "Cart cleared")
}
