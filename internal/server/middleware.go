package server

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/smallbiznis/quotient/pkg/tenantctx"
	"go.uber.org/zap"
)

const (
	headerOrgID       = "X-Org-ID"
	headerUserID      = "X-User-ID"
	headerPermissions = "X-Permissions"
	headerRequestID   = "X-Request-ID"
)

// RequestLogger tags every request with an id and logs the outcome.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(headerRequestID))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(headerRequestID, requestID)

		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.Last().Error()))
			log.Warn("request failed", fields...)
			return
		}
		log.Info("request completed", fields...)
	}
}

// TenantRequired resolves the caller's organization from trusted gateway
// headers and binds it into the request context. Requests without an
// organization never reach a handler.
func TenantRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, err := snowflake.ParseString(strings.TrimSpace(c.GetHeader(headerOrgID)))
		if err != nil || orgID == 0 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		var userID snowflake.ID
		if raw := strings.TrimSpace(c.GetHeader(headerUserID)); raw != "" {
			userID, err = snowflake.ParseString(raw)
			if err != nil {
				AbortWithError(c, ErrUnauthorized)
				return
			}
		}

		var permissions []string
		if raw := strings.TrimSpace(c.GetHeader(headerPermissions)); raw != "" {
			for _, p := range strings.Split(raw, ",") {
				if p = strings.TrimSpace(p); p != "" {
					permissions = append(permissions, p)
				}
			}
		}

		ctx := tenantctx.WithTenant(c.Request.Context(), tenantctx.TenantContext{
			OrgID:       orgID,
			UserID:      userID,
			Permissions: permissions,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
