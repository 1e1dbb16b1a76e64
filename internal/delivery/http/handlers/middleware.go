package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/LavaJover/shvark-slot-service/internal/auth"
	"github.com/LavaJover/shvark-slot-service/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	userIDKey         = "user_id"
	signatureHeader   = "X-Signature"
	adminTokenHeader  = "X-Admin-Token"
	maxWebhookPayload = 1 << 20
)

// Identity resolves the bearer token and stores the caller id on the context.
func Identity(resolver auth.IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			writeError(c, domain.ErrUnauthenticated)
			return
		}
		userID, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			writeError(c, domain.ErrUnauthenticated)
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func currentUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// WebhookSignature requires X-Signature to be the hex HMAC-SHA256 of the raw body.
func WebhookSignature(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookPayload))
		if err != nil {
			badRequest(c, err)
			return
		}
		if !validSignature(key, body, c.GetHeader(signatureHeader)) {
			slog.Warn("webhook rejected", "reason", "bad signature", "remote", c.ClientIP())
			writeError(c, domain.ErrInvalidSignature)
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		c.Next()
	}
}

func validSignature(key, body []byte, signature string) bool {
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil || len(got) == 0 {
		return false
	}
	return hmac.Equal(got, Sign(key, body))
}

// Sign returns the HMAC-SHA256 the webhook expects for body.
func Sign(key, body []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(body)
	return mac.Sum(nil)
}

func AdminOnly(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if subtle.ConstantTimeCompare([]byte(c.GetHeader(adminTokenHeader)), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden", "code": "forbidden"})
			return
		}
		c.Next()
	}
}

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"user_id", currentUser(c),
		)
	}
}
