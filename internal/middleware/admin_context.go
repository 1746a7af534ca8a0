package middleware

import (
	"context"
	"net/http"
	"strings"

	"hr-portal/internal/platform/httpjson"
)

type ctxKey string

const adminKey ctxKey = "admin_id"

// HeaderAdminID es el header con la identidad del admin.
// La capa de transporte la confía tal cual (no hay autenticación criptográfica).
const HeaderAdminID = "X-Admin-Id"

// AdminContext copia X-Admin-Id al context.
// Si no viene, el request sigue igual; los handlers deciden si exigen admin.
func AdminContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := strings.TrimSpace(r.Header.Get(HeaderAdminID)); id != "" {
			ctx := WithAdminID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithAdminID(ctx context.Context, adminID string) context.Context {
	return context.WithValue(ctx, adminKey, strings.TrimSpace(adminID))
}

func GetAdminID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(adminKey).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// RequireAdmin devuelve el admin del request o responde 401.
func RequireAdmin(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := GetAdminID(r.Context())
	if !ok {
		httpjson.Unauthorized(w)
		return "", false
	}
	return id, true
}
