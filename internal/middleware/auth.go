package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Leganyst/booking-core/internal/apperror"
	"github.com/Leganyst/booking-core/internal/dto"
)

const (
	APIKeyHeader = "X-API-Key"

	acceptedKeyCtx = "accepted_api_key"
)

// Identify запоминает ключ из X-API-Key, если он есть в списке. Запрос не
// прерывает: отказ остаётся за APIKey, а лимитер видит только проверенный ключ.
func Identify(keys []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if got := c.GetHeader(APIKeyHeader); validKey(got, keys) {
			c.Set(acceptedKeyCtx, got)
		}
		c.Next()
	}
}

// AcceptedKey возвращает ключ, принятый Identify или APIKey.
func AcceptedKey(c *gin.Context) string {
	return c.GetString(acceptedKeyCtx)
}

// APIKey пропускает запросы с одним из ключей в X-API-Key.
// Пустой список ключей отключает проверку.
func APIKey(keys []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(keys) == 0 {
			c.Next()
			return
		}
		if AcceptedKey(c) != "" {
			c.Next()
			return
		}
		got := c.GetHeader(APIKeyHeader)
		if !validKey(got, keys) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				ErrorCode: string(apperror.KindUnauthorized),
				Message:   "missing or invalid API key",
			})
			return
		}
		c.Set(acceptedKeyCtx, got)
		c.Next()
	}
}

func validKey(got string, keys []string) bool {
	if got == "" {
		return false
	}
	ok := 0
	for _, k := range keys {
		ok |= subtle.ConstantTimeCompare([]byte(got), []byte(k))
	}
	return ok == 1
}
