package server

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const headerIdempotencyKey = "Idempotency-Key"

type bodyCapturingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyCapturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyCapturingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// IdempotencyMiddleware replays cached responses for requests carrying
// an Idempotency-Key header. On a miss it captures the handler's
// response and stores it for the key's TTL. Failed responses are not
// cached so the client can safely retry them.
func (s *Server) IdempotencyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(headerIdempotencyKey))
		if key == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		// The fingerprint covers path and query: the same key with a
		// different query string is a different request, not a replay.
		uri := c.Request.URL.RequestURI()
		fingerprint := s.idempotencySvc.Fingerprint(c.Request.Method, uri, body)
		result, err := s.idempotencySvc.Check(c.Request.Context(), key, fingerprint)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if result.Hit {
			c.Header("Content-Type", "application/json")
			c.Header("Idempotency-Replayed", "true")
			c.Data(result.StatusCode, "application/json", result.ResponseBody)
			c.Abort()
			return
		}

		writer := &bodyCapturingWriter{ResponseWriter: c.Writer}
		c.Writer = writer
		c.Next()

		status := writer.Status()
		if len(c.Errors) > 0 || status < http.StatusOK || status >= http.StatusBadRequest {
			return
		}

		err = s.idempotencySvc.Store(
			c.Request.Context(),
			key, fingerprint,
			c.Request.Method, uri,
			status, writer.body.Bytes(),
		)
		if err != nil {
			// The operation already succeeded; a failed cache write only
			// costs a future replay.
			s.log.Warn("idempotency store failed", zap.Error(err))
		}
	}
}

func (s *Server) GetIdempotencyStats(c *gin.Context) {
	stats, err := s.idempotencySvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": idempotencyStatsResponse{
		TotalRecords:   stats.TotalRecords,
		ActiveRecords:  stats.ActiveRecords,
		ExpiredRecords: stats.ExpiredRecords,
		TTLSeconds:     int64(stats.TTL.Seconds()),
	}})
}

type idempotencyStatsResponse struct {
	TotalRecords   int64 `json:"total_records"`
	ActiveRecords  int64 `json:"active_records"`
	ExpiredRecords int64 `json:"expired_records"`
	TTLSeconds     int64 `json:"ttl_seconds"`
}
