package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/Basel6/Private-Coach-Web-App/pkg/errors"
	"github.com/Basel6/Private-Coach-Web-App/pkg/response"
)

// requireClientIDParam parses the :clientId path segment, writing a
// validation error and returning 0 when it is missing or malformed.
func requireClientIDParam(c *gin.Context) int64 {
	raw := strings.TrimSpace(c.Param("clientId"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "clientId must be a positive integer"))
		return 0
	}
	return id
}

// requireClientIDQuery parses the clientId query parameter the same way.
func requireClientIDQuery(c *gin.Context) int64 {
	raw := strings.TrimSpace(c.Query("clientId"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "clientId must be a positive integer"))
		return 0
	}
	return id
}
