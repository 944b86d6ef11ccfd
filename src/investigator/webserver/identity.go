package webserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const sessionKeyContext = "sessionKey"

// maxBodyBytes caps the request body; larger inputs fail validation anyway.
const maxBodyBytes = 8 << 20

// IdentityMiddleware resolves the caller identity used as the rate-limit and
// quota key. Carriers, in priority order: the X-Session-Id header, a JWT
// bearer token (claim "sid"), and the sessionId field of a JSON body. When
// enforcement is on and none are present the request stops at 401; when off,
// the client IP serves as a coarse fallback key.
func IdentityMiddleware(jwtSecret []byte, enforce bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader("X-Session-Id"))

		if key == "" && len(jwtSecret) > 0 {
			key = sessionFromBearer(c.GetHeader("Authorization"), jwtSecret)
		}

		if key == "" {
			key = sessionFromBody(c)
		}

		if key == "" {
			if enforce {
				c.JSON(http.StatusUnauthorized, gin.H{"err": "identity_required"})
				c.Abort()
				return
			}
			key = "ip:" + c.ClientIP()
		}

		c.Set(sessionKeyContext, key)
		c.Next()
	}
}

func sessionFromBearer(header string, secret []byte) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	token, err := jwt.Parse(header[7:], func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil || !token.Valid {
		return ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	sid, _ := claims["sid"].(string)
	return sid
}

// sessionFromBody peeks at the JSON body for a sessionId field and restores
// the body for the handler's own bind.
func sessionFromBody(c *gin.Context) string {
	if c.Request.Body == nil || !strings.Contains(c.ContentType(), "application/json") {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return ""
	}
	var peek struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(raw, &peek); err != nil {
		return ""
	}
	return strings.TrimSpace(peek.SessionID)
}
