package http

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"products-api/internal/products"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	requestIDHeader = "X-Request-ID"
	apiKeyHeader    = "x-api-key"

	requestTimeKey = "request_time"
	inputKey       = "product_input"

	maxBodyBytes = 1 << 20

	msgUnauthorized  = "Unauthorized: Invalid or missing API key"
	msgInternalError = "Internal Server Error"
	msgBodyTooLarge  = "Request body too large"
	msgUnreadable    = "Request body could not be read"
)

// Clock returns the current time. Tests pin it.
type Clock func() time.Time

type PayloadValidator interface {
	Create(body []byte, now time.Time) (products.Input, error)
	Update(body []byte, now time.Time) (products.Input, error)
}

type ProductFinder interface {
	GetProduct(ctx context.Context, id string) (products.Product, error)
}

// TimestampMiddleware captures the request time once. Every later stage and
// response payload reuses it.
func TimestampMiddleware(now Clock) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(requestTimeKey, now().UTC().Truncate(time.Millisecond))
		c.Next()
	}
}

// RequestTime returns the time captured by TimestampMiddleware, or the
// current time if that stage never ran.
func RequestTime(c *gin.Context) time.Time {
	if v, ok := c.Get(requestTimeKey); ok {
		if t, ok := v.(time.Time); ok {
			return t
		}
	}
	return time.Now().UTC()
}

func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)
		c.Set(requestIDHeader, requestID)
		c.Next()
	}
}

// AccessLogMiddleware logs the request on entry and again once the rest of
// the chain has produced a response.
func AccessLogMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		logger.Info("http request started",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"timestamp", RequestTime(c),
		)

		c.Next()

		requestID, _ := c.Get(requestIDHeader)
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"request_id", requestID,
			"client_ip", c.ClientIP(),
			"timestamp", RequestTime(c),
		)
	}
}

func NewRequestCounter(reg prometheus.Registerer) (*prometheus.CounterVec, error) {
	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed.",
		},
		[]string{"method", "path", "status"},
	)
	if err := reg.Register(requests); err != nil {
		return nil, fmt.Errorf("register request counter: %w", err)
	}
	return requests, nil
}

// MetricsMiddleware counts requests by route pattern so ids do not explode
// the label set.
func MetricsMiddleware(requests *prometheus.CounterVec) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		requests.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
	}
}

// ErrorMiddleware is the terminal translation stage. It runs after the rest
// of the chain returns and turns the last recorded error into a response.
func ErrorMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		writeError(c, logger, c.Errors.Last().Err)
	}
}

// RecoveryMiddleware records a panic as an error for ErrorMiddleware.
func RecoveryMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		logger.Error("panic recovered",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"panic", fmt.Sprint(recovered),
			"stack", string(debug.Stack()),
		)
		abortWithError(c, fmt.Errorf("panic: %v", recovered))
	})
}

// AuthMiddleware requires the shared API key. It answers 401 itself rather
// than raising a domain error.
func AuthMiddleware(apiKey string) gin.HandlerFunc {
	expected := []byte(apiKey)
	return func(c *gin.Context) {
		got := c.GetHeader(apiKeyHeader)
		if got == "" || subtle.ConstantTimeCompare([]byte(got), expected) != 1 {
			c.AbortWithStatusJSON(products.KindAuthentication.Status(), errorResponse{
				Error:     msgUnauthorized,
				Timestamp: RequestTime(c),
			})
			return
		}
		c.Next()
	}
}

// RequireProduct fails with NotFound before the body is validated when the
// addressed product does not exist.
func RequireProduct(finder ProductFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := finder.GetProduct(c.Request.Context(), c.Param("id")); err != nil {
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}

func ValidateCreate(v PayloadValidator) gin.HandlerFunc {
	return validateStage(v.Create)
}

func ValidateUpdate(v PayloadValidator) gin.HandlerFunc {
	return validateStage(v.Update)
}

func validateStage(check func(body []byte, now time.Time) (products.Input, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				abortWithError(c, products.Validation(msgBodyTooLarge, nil))
				return
			}
			abortWithError(c, products.Validation(msgUnreadable, nil))
			return
		}

		in, err := check(body, RequestTime(c))
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(inputKey, in)
		c.Next()
	}
}

func validatedInput(c *gin.Context) (products.Input, bool) {
	v, ok := c.Get(inputKey)
	if !ok {
		return products.Input{}, false
	}
	in, ok := v.(products.Input)
	return in, ok
}

func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func writeError(c *gin.Context, logger *slog.Logger, err error) {
	var domainErr *products.Error
	if errors.As(err, &domainErr) {
		c.JSON(domainErr.Status(), errorResponse{
			Error:     domainErr.Message,
			Details:   domainErr.Detail,
			Timestamp: RequestTime(c),
		})
		return
	}

	logger.Error("request failed",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"error", err,
	)
	c.JSON(http.StatusInternalServerError, errorResponse{
		Error:     msgInternalError,
		Timestamp: RequestTime(c),
	})
}
