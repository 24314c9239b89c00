package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Agurato/filmbase/internal/metrics"
)

const (
	RequestIDHeader    = "X-Request-ID"
	maxRequestIDLength = 128
)

// validRequestID accepts short IDs made of visible ASCII characters
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}

// requestLogger attaches a logger carrying the request ID to the request context,
// and logs the request once it is handled
func requestLogger(c *gin.Context) {
	start := time.Now()

	requestID := c.GetHeader(RequestIDHeader)
	if !validRequestID(requestID) {
		requestID = uuid.NewString()
	}
	c.Header(RequestIDHeader, requestID)

	logger := log.With().Str("requestID", requestID).Logger()
	c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))

	c.Next()

	logger.Info().
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", c.Writer.Status()).
		Dur("latency", time.Since(start)).
		Msg("Request handled")
}

// prometheusMetrics records the request count and duration by route
func prometheusMetrics(c *gin.Context) {
	start := time.Now()
	c.Next()

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	metrics.RecordAPIRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
}
