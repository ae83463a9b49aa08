package middleware

import (
	"net/http"
	"strings"

	"github.com/varunhp06/campus-connect-sub000/internal/dto"
	"github.com/varunhp06/campus-connect-sub000/internal/service"
	"github.com/varunhp06/campus-connect-sub000/internal/token"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys for user info
const (
	CtxUserID   = "user_id"
	CtxUserRole = "user_role"
)

// AuthRequired validates the Bearer token locally and injects the actor into
// both the gin context and the request context (service-слой читает второй).
func AuthRequired(verifier *token.HSVerifier, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("missing Authorization header"))
			return
		}
		t, ok := ExtractBearerToken(authz)
		if !ok || t == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("invalid Authorization header"))
			return
		}

		claims, err := verifier.ParseAndValidateAccess(c.Request.Context(), t)
		if err != nil {
			log.Warn("token validation failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("invalid token"))
			return
		}

		c.Set(CtxUserID, claims.UserID.String())
		c.Set(CtxUserRole, claims.Role)

		ctx := service.WithUserID(c.Request.Context(), claims.UserID)
		ctx = service.WithRole(ctx, service.Role(claims.Role))
		if claims.DisplayName != "" {
			ctx = service.WithDisplayName(ctx, claims.DisplayName)
		}
		if claims.ShopID != nil {
			ctx = service.WithShopID(ctx, *claims.ShopID)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRole пускает дальше только перечисленные роли. Вешается после AuthRequired.
func RequireRole(roles ...service.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		got, ok := service.RoleFromContext(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("missing auth context"))
			return
		}
		for _, r := range roles {
			if got == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, dto.NewForbiddenError("role not allowed"))
	}
}

// ExtractBearerToken извлекает токен из заголовка Authorization, устойчиво к лишним символам
// Примеры допустимых значений:
// - "Bearer abc.def.ghi"
// - "Bearer \"abc.def.ghi\""
// - "Bearer abc.def.ghi, extra"
func ExtractBearerToken(authz string) (string, bool) {
	if authz == "" {
		return "", false
	}
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	t := strings.TrimSpace(parts[1])
	t = strings.Trim(t, " \"'")
	if i := strings.IndexRune(t, ','); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	t = strings.Trim(t, " \"'")
	if i := strings.IndexByte(t, ' '); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	t = strings.Trim(t, " \"'")
	return t, true
}
