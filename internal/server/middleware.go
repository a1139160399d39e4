package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alnah/go-html2pdf/internal/auth"
	"github.com/alnah/go-html2pdf/internal/logger"
)

// Header and context keys.
const (
	RequestIDHeader = "X-Request-ID"
	ClaimsKey       = "auth_claims"

	// maxRequestIDLen bounds client supplied request ids.
	maxRequestIDLen = 128
)

// Methods and request headers accepted cross-origin.
const (
	corsMethods = "GET, POST, OPTIONS"
	corsHeaders = "Content-Type, Authorization"
)

// RequestID propagates X-Request-ID or assigns a new UUID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		c.Set(logger.RequestIDKey, id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

// CORS allows cross-origin calls from origins. "*" allows any origin.
// Preflight requests are answered with 204 whether or not the origin matches.
func CORS(origins []string) gin.HandlerFunc {
	wildcard := false
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			wildcard = true
		}
		allowed[o] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		h := c.Writer.Header()

		switch {
		case wildcard:
			h.Set("Access-Control-Allow-Origin", "*")
		case origin != "":
			if _, ok := allowed[origin]; ok {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
		}
		if h.Get("Access-Control-Allow-Origin") != "" {
			h.Set("Access-Control-Allow-Methods", corsMethods)
			h.Set("Access-Control-Allow-Headers", corsHeaders)
			h.Set("Access-Control-Expose-Headers", "Content-Disposition, X-Generation-Time, "+RequestIDHeader)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// SecureHeaders sets the usual hardening headers. No Content-Security-Policy
// is sent: responses are JSON or PDF.
func SecureHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("X-DNS-Prefetch-Control", "off")
		h.Set("X-Download-Options", "noopen")
		h.Set("X-Permitted-Cross-Domain-Policies", "none")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Strict-Transport-Security", "max-age=15552000; includeSubDomains")
		h.Set("Cross-Origin-Opener-Policy", "same-origin")
		c.Next()
	}
}

// BodyLimit rejects bodies larger than maxBytes with 413. Bodies without a
// Content-Length are cut off by http.MaxBytesReader and reported by the
// handler that reads them.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			abortTooLarge(c)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func abortTooLarge(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
		"error":   "Payload Too Large",
		"message": "Request body exceeds maximum allowed size",
	})
}

// Authenticate requires a valid bearer token. A nil verifier disables the
// check.
func Authenticate(v *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.FromGin(c)

		if v == nil {
			log.Debug("development mode: skipping JWT verification")
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if header == "" {
			handleAuthError(c, auth.ErrMissingToken, "Authorization header is required")
			return
		}
		token, err := auth.BearerToken(header)
		if err != nil {
			handleAuthError(c, err, "Bearer token is required")
			return
		}

		claims, err := v.Verify(token)
		if err != nil {
			log.Warn("JWT verification failed", zap.Error(err))
			handleAuthError(c, err, "Invalid or expired token")
			return
		}

		c.Set(ClaimsKey, claims)
		log.Debug("authenticated",
			zap.String("subject", claims.Subject),
			zap.String("email", claims.Email),
		)
		c.Next()
	}
}

func handleAuthError(c *gin.Context, err error, message string) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   "Unauthorized",
		"message": message,
	})
}

// ClaimsFrom returns the claims stored by Authenticate.
func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

// isBodyTooLarge reports whether err came from http.MaxBytesReader.
func isBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large")
}
