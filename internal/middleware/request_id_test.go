package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyvra-tech/shard-node-dashboard/pkg/logger"
)

func newRequestIDRouter(seen *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/ping", func(c *gin.Context) {
		*seen = logger.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})
	return router
}

func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	var seen string
	router := newRequestIDRouter(&seen)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ping", nil))

	echoed := recorder.Header().Get("X-Request-ID")
	require.NotEmpty(t, echoed)
	assert.Equal(t, echoed, seen, "request context carries the same ID as the response header")
}

func TestRequestID_HonorsIncomingHeader(t *testing.T) {
	var seen string
	router := newRequestIDRouter(&seen)

	request := httptest.NewRequest(http.MethodGet, "/ping", nil)
	request.Header.Set("X-Request-ID", "caller-supplied")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	assert.Equal(t, "caller-supplied", recorder.Header().Get("X-Request-ID"))
	assert.Equal(t, "caller-supplied", seen)
}

func TestRequestIDFromContext_AbsentIsEmpty(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/ping", nil)
	assert.Empty(t, logger.RequestIDFromContext(request.Context()))
}
