package middleware

import (
	"context"
	"net/http"
	"strings"

	"talentflow/internal/common"
	"talentflow/internal/http/response"
	"talentflow/internal/security"
)

type contextKey string

const (
	ContextUserIDKey       contextKey = "user_id"
	ContextRolesKey        contextKey = "roles"
	ContextCapabilitiesKey contextKey = "capabilities"
)

type AuthMiddleware struct {
	jwt *security.JWTProvider
}

func NewAuthMiddleware(jwt *security.JWTProvider) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Error(w, common.NewError(common.CodeUnauthorized, "missing authorization header", nil))
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Error(w, common.NewError(common.CodeUnauthorized, "invalid authorization header", nil))
			return
		}
		claims, err := m.jwt.Parse(parts[1])
		if err != nil {
			response.Error(w, common.NewError(common.CodeUnauthorized, "invalid token", err))
			return
		}
		userID, err := common.ParseUUID(claims.UserID)
		if err != nil {
			response.Error(w, common.NewError(common.CodeUnauthorized, "invalid user id", err))
			return
		}
		capabilities := make(map[string]bool, len(claims.Capabilities))
		for _, capability := range claims.Capabilities {
			capabilities[strings.ToLower(strings.TrimSpace(capability))] = true
		}
		ctx := context.WithValue(r.Context(), ContextUserIDKey, userID)
		ctx = context.WithValue(ctx, ContextRolesKey, claims.Roles)
		ctx = context.WithValue(ctx, ContextCapabilitiesKey, capabilities)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func UserIDFromContext(ctx context.Context) (common.UUID, bool) {
	id, ok := ctx.Value(ContextUserIDKey).(common.UUID)
	return id, ok
}

func CapabilitiesFromContext(ctx context.Context) map[string]bool {
	capabilities, ok := ctx.Value(ContextCapabilitiesKey).(map[string]bool)
	if !ok {
		return map[string]bool{}
	}
	return capabilities
}
