package middleware

import (
	"net/http"
	"strings"

	"roombook/internal/dto/resp"
	"roombook/internal/service"

	"github.com/gin-gonic/gin"
)

// Authenticator verifies an access token.
type Authenticator interface {
	Authenticate(token string) (*service.OperatorInfo, error)
}

// JWTMiddleware rejects requests without a valid bearer access token with a
// 401 envelope, which is what makes the client refresh and retry.
func JWTMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenString = strings.TrimSpace(parts[1])
			}
		}

		if tokenString == "" {
			resp.Fail(c, http.StatusUnauthorized, "login required")
			return
		}

		op, err := auth.Authenticate(tokenString)
		if err != nil {
			resp.Fail(c, http.StatusUnauthorized, "token expired or invalid")
			return
		}

		ctx := service.WithOperator(c.Request.Context(), op)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
