package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"spacetravelling/cmd/internal/logger"
)

const headerRevalidateSecret = "X-Revalidate-Secret"

// RevalidateAuth 는 webhook 요청의 secret(헤더 X-Revalidate-Secret 또는 ?secret=)을
// 설정값과 비교한다. 설정된 secret 이 없으면 모든 요청을 거부한다.
func RevalidateAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "revalidation_disabled"})
			return
		}

		got := c.GetHeader(headerRevalidateSecret)
		if got == "" {
			got = c.Query("secret")
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			logger.WarnWithFields("revalidate rejected", logger.Fields{"client_ip": c.ClientIP()})
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_secret"})
			return
		}
		c.Next()
	}
}
