package handlers

import (
	"io"
	"mime/multipart"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
	"github.com/chasmapasal/chasmapasal-api/internal/imaging"
	"github.com/chasmapasal/chasmapasal-api/internal/validators"
)

// bindJSON writes the 400 itself and reports whether the handler should go on.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httperr.BadRequest(c, "invalid_request", validators.Describe(err))
		return false
	}
	return true
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		httperr.BadRequest(c, "invalid_"+name, "Invalid "+name)
		return 0, false
	}
	return uint(v), true
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	v, err := uuid.Parse(c.Param(name))
	if err != nil {
		httperr.NotFound(c, "order_not_found", "Order not found.")
		return uuid.Nil, false
	}
	return v, true
}

// formFile reads an optional multipart file. A missing field gives nil.
func formFile(c *gin.Context, field string) ([]byte, bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, true
	}
	data, err := readUpload(fh)
	if err != nil {
		httperr.Respond(c, err)
		return nil, false
	}
	return data, true
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > imaging.MaxUploadBytes {
		return nil, httperr.ErrValidation("file_too_large", "File size exceeds the 5MB limit")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(io.LimitReader(f, imaging.MaxUploadBytes+1))
}
