// Package handlers implements the HTTP endpoints over the application
// services.  Handlers bind, delegate, and translate errors; no matching
// logic lives here.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/herbwise/fangmatch/pkg/errors"
	"github.com/herbwise/fangmatch/pkg/types/common"
)

// maxInputTextLen bounds the free-text payloads parse and match accept.
const maxInputTextLen = 10000

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, common.NewSuccessResponse(data))
}

// respondError maps application error codes onto HTTP statuses.  Unknown
// and internal errors are masked to avoid leaking internals.
func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = "internal server error"
	}
	c.JSON(status, common.NewErrorResponse(code.String(), message))
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest,
		common.NewErrorResponse(errors.ErrCodeBadRequest.String(), message))
}
