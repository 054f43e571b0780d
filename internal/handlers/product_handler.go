package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
	"github.com/chasmapasal/chasmapasal-api/internal/httpresp"
	ucProduct "github.com/chasmapasal/chasmapasal-api/internal/usecase/product"
)

type ProductHandler struct {
	products *ucProduct.Service
	uploads  *ucProduct.Uploader
}

func NewProductHandler(products *ucProduct.Service, uploads *ucProduct.Uploader) *ProductHandler {
	return &ProductHandler{products: products, uploads: uploads}
}

// --------- Requests ---------

// ProductForm is sent as multipart form data, or as JSON when there is no
// image.
type ProductForm struct {
	Name        *string      `form:"name" json:"name,omitempty"`
	Brand       *string      `form:"brand" json:"brand,omitempty"`
	Description *string      `form:"description" json:"description,omitempty"`
	Price       *json.Number `form:"price" json:"price,omitempty"`
	SKU         *string      `form:"sku" json:"sku,omitempty"`
	Stock       *int         `form:"stock" json:"stock,omitempty" binding:"omitempty,min=0"`
}

func (f ProductForm) fields() (ucProduct.Fields, error) {
	out := ucProduct.Fields{
		Name:        f.Name,
		Brand:       f.Brand,
		Description: f.Description,
		SKU:         f.SKU,
		Stock:       f.Stock,
	}
	if f.Price != nil && strings.TrimSpace(f.Price.String()) != "" {
		p, err := decimal.NewFromString(strings.TrimSpace(f.Price.String()))
		if err != nil {
			return out, httperr.ErrValidation("invalid_price", "Price must be a number")
		}
		out.Price = &p
	}
	return out, nil
}

// --------- Handlers ---------

func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.products.List(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(products))
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	p, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) Create(c *gin.Context) {
	fields, image, ok := h.bindProduct(c)
	if !ok {
		return
	}

	p, err := h.products.Create(c.Request.Context(), fields, image)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	fields, image, ok := h.bindProduct(c)
	if !ok {
		return
	}

	p, err := h.products.Update(c.Request.Context(), id, fields, image)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Message(c, "Product deleted successfully")
}

type UploadResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
}

// Upload stores a single multipart "file" and returns its URL.
func (h *ProductHandler) Upload(c *gin.Context) {
	data, ok := formFile(c, "file")
	if !ok {
		return
	}
	if data == nil {
		httperr.BadRequest(c, "empty_file", "No file uploaded")
		return
	}

	url, err := h.uploads.Store(c.Request.Context(), "uploads", data)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, UploadResponse{Success: true, URL: url})
}

func (h *ProductHandler) bindProduct(c *gin.Context) (ucProduct.Fields, []byte, bool) {
	var form ProductForm
	if err := c.ShouldBind(&form); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid product data")
		return ucProduct.Fields{}, nil, false
	}

	fields, err := form.fields()
	if err != nil {
		httperr.Respond(c, err)
		return ucProduct.Fields{}, nil, false
	}

	var image []byte
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		var ok bool
		if image, ok = formFile(c, "image"); !ok {
			return ucProduct.Fields{}, nil, false
		}
	}
	return fields, image, true
}
