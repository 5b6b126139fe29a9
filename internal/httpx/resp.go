package httpx

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Response represents the standard API response envelope
type Response struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Error      string      `json:"error,omitempty"`
	Code       string      `json:"code,omitempty"`
	Details    any         `json:"details,omitempty"`
}

// Pagination represents the pagination block of list responses
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPagination builds a pagination block from a total row count
func NewPagination(page, perPage int, total int64) *Pagination {
	totalPages := 0
	if perPage > 0 {
		totalPages = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return &Pagination{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// OK sends a successful response
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// OKList sends a successful list response with pagination
func OKList(c *gin.Context, items any, page, perPage int, total int64) {
	c.JSON(http.StatusOK, Response{
		Success:    true,
		Data:       items,
		Pagination: NewPagination(page, perPage, total),
	})
}

// Fail sends an error response with the given HTTP status, code, and message
func Fail(c *gin.Context, httpStatus int, code, message string) {
	c.JSON(httpStatus, Response{
		Success: false,
		Error:   message,
		Code:    code,
	})
}

// FailErr sends an error response from an AppError.
// The internal error is logged but never returned to the client.
func FailErr(c *gin.Context, err *AppError) {
	if err.Err != nil {
		log.Printf("[ERROR] %s (code=%s, internal_err=%v)", err.Message, err.Code, err.Err)
	}

	if err.HTTPStatus == http.StatusTooManyRequests {
		if d, ok := err.Details.(map[string]int); ok {
			if retryAfter, ok := d["retry_after"]; ok && retryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(retryAfter))
			}
		}
	}

	c.JSON(err.HTTPStatus, Response{
		Success: false,
		Error:   err.Message,
		Code:    err.Code,
		Details: err.Details,
	})
}
