package middleware

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeyRequestID holds the request correlation id.
const ContextKeyRequestID = "request_id"

// RequestID injects an X-Request-ID header into the request and response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// Logger logs each request by route template rather than raw path, so lines
// for the same endpoint group together. The case or page the request
// addressed, the token subject and the last handler error are appended.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Print(requestLine(c, time.Since(start)))
	}
}

func requestLine(c *gin.Context, latency time.Duration) string {
	route := c.FullPath()
	if route == "" {
		route = "unmatched " + c.Request.URL.Path
	}
	requestID, _ := c.Get(ContextKeyRequestID)

	var b strings.Builder
	fmt.Fprintf(&b, "[%v] %s %s %d %s", requestID, c.Request.Method, route, c.Writer.Status(), latency)
	if id := c.Param("id"); id != "" {
		fmt.Fprintf(&b, " %s=%s", resourceOf(route), id)
	}
	if subject := GetSubject(c); subject != "" {
		fmt.Fprintf(&b, " subject=%s", subject)
	}
	if last := c.Errors.Last(); last != nil {
		fmt.Fprintf(&b, " err=%q", last.Error())
	}
	return b.String()
}

// resourceOf names the entity an :id parameter refers to on route.
func resourceOf(route string) string {
	switch {
	case strings.Contains(route, "/pages/:id"):
		return "page"
	case strings.Contains(route, "/cases/:id"):
		return "case"
	default:
		return "id"
	}
}

// Recovery recovers from panics, logs them with the request id and returns a
// 500 in the API envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		requestID, _ := c.Get(ContextKeyRequestID)
		log.Printf("[%v] panic on %s %s: %v", requestID, c.Request.Method, c.FullPath(), recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "INTERNAL_ERROR", "message": "an internal error occurred"},
		})
	})
}
