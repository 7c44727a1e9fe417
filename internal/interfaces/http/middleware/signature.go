package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	"github.com/donortrack/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw request body
const SignatureHeader = "X-Signature"

// Sign returns the hex HMAC-SHA256 of body under secret
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature rejects requests whose body does not match X-Signature.
// An optional "sha256=" prefix is accepted. With an empty secret every
// request passes.
func VerifySignature(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			AbortWithError(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "Unable to read request body")
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		got, err := hex.DecodeString(strings.TrimPrefix(c.GetHeader(SignatureHeader), "sha256="))
		want, _ := hex.DecodeString(Sign(secret, body))
		if err != nil || len(got) == 0 || !hmac.Equal(got, want) {
			AbortWithError(c, http.StatusUnauthorized, dto.ErrCodeInvalidSignature, "Invalid request signature")
			return
		}
		c.Next()
	}
}
