package middleware

import (
	"context"
	"net/http"
	"strings"

	"paysera-app/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type contextKey string

const (
	TokenClaimsKey contextKey = "jwtClaims"
	AppIDKey       contextKey = "appID"
)

// PlatformAuth rejects requests that do not carry a bearer token signed
// with secret (HS256). Verified claims are stored on the request context.
func PlatformAuth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenStr == "" {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
				return secret, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				logger.FromCtx(r.Context()).Warn("rejected platform token", zap.Error(err))
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			ctx := r.Context()
			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				ctx = context.WithValue(ctx, TokenClaimsKey, claims)
				if app, ok := claims["app"].(string); ok {
					ctx = context.WithValue(ctx, AppIDKey, app)
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AppIDFromContext returns the platform app the request was issued for.
func AppIDFromContext(ctx context.Context) (string, bool) {
	app, ok := ctx.Value(AppIDKey).(string)
	return app, ok
}
