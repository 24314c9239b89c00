package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Agurato/filmbase/internal/model"
)

// abortWithError aborts the request with the status matching the class of err.
// Client errors have no body.
func abortWithError(c *gin.Context, err error) {
	logger := zerolog.Ctx(c.Request.Context())
	switch {
	case errors.Is(err, model.ErrNotFound):
		logger.Debug().Err(err).Msg("Not found")
		c.AbortWithStatus(http.StatusNotFound)
	case errors.Is(err, model.ErrConflict), errors.Is(err, model.ErrInvalid), errors.Is(err, model.ErrMalformedInput):
		logger.Debug().Err(err).Msg("Bad request")
		c.AbortWithStatus(http.StatusBadRequest)
	default:
		logger.Error().Err(err).Msg("Request failed")
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

// paramID returns the numeric ID in the path. A request with another ID is aborted with 404.
func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return 0, false
	}
	return id, true
}

// bindJSON decodes and validates the request body. A request with an invalid body is aborted with 400.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		zerolog.Ctx(c.Request.Context()).Debug().Err(err).Msg("Invalid request body")
		c.AbortWithStatus(http.StatusBadRequest)
		return false
	}
	return true
}
