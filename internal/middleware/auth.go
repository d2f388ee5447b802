package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/resultshub/chat-server-go/internal/model"
	"github.com/resultshub/chat-server-go/internal/repository"
	"github.com/resultshub/chat-server-go/internal/util"
)

type contextKey string

const AdminContextKey contextKey = "admin"

func GetAdmin(ctx context.Context) *model.AdminAccount {
	if admin, ok := ctx.Value(AdminContextKey).(*model.AdminAccount); ok {
		return admin
	}
	return nil
}

// AdminAuthMiddleware resolves the bearer credential to an admin identity.
// A static root token from config is accepted alongside tokens stored in the
// admin_accounts table; both are compared by SHA-256 hash.
type AdminAuthMiddleware struct {
	adminRepo     repository.AdminRepository
	rootTokenHash string
}

func NewAdminAuthMiddleware(adminRepo repository.AdminRepository, rootToken string) *AdminAuthMiddleware {
	return &AdminAuthMiddleware{
		adminRepo:     adminRepo,
		rootTokenHash: util.HashToken(rootToken),
	}
}

func (m *AdminAuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Missing authentication token",
			})
			return
		}

		tokenHash := util.HashToken(token)

		if util.ConstantTimeEqual(tokenHash, m.rootTokenHash) {
			admin := &model.AdminAccount{ID: "root", Name: "root"}
			ctx := context.WithValue(r.Context(), AdminContextKey, admin)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		admin, err := m.adminRepo.FindByTokenHash(r.Context(), tokenHash)
		if err != nil {
			log.Error().Err(err).Msg("admin auth middleware: database error")
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "Authentication failed",
			})
			return
		}

		if admin == nil {
			log.Warn().Msg("admin auth middleware: invalid token attempt")
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Invalid token",
			})
			return
		}

		ctx := context.WithValue(r.Context(), AdminContextKey, admin)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
