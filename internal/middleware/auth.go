package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/omidrahimi/hawala_system/configs"
	"github.com/omidrahimi/hawala_system/internal/httputil"
	"github.com/omidrahimi/hawala_system/internal/ledger"
	"github.com/omidrahimi/hawala_system/internal/logger"
)

type contextKey string

const actorContextKey contextKey = "actor"

// ActorFrom extracts the actor the Authenticated middleware resolved.
func ActorFrom(ctx context.Context) (ledger.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey).(ledger.Actor)
	return actor, ok
}

// Authenticated resolves the bearer token into a ledger.Actor once, at the
// boundary. Engine operations re-validate ownership themselves; this only
// establishes who is calling.
func Authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			httputil.WriteError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httputil.WriteError(w, http.StatusUnauthorized, "invalid authorization header")
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return []byte(configs.AppConfig.JWT.SECRET), nil
		})
		if err != nil || !token.Valid {
			httputil.WriteError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			httputil.WriteError(w, http.StatusUnauthorized, "invalid token claims")
			return
		}

		sub, ok := claims["sub"].(float64)
		if !ok {
			logger.Log.Error("jwt subject missing or wrong type")
			httputil.WriteError(w, http.StatusUnauthorized, "invalid token payload")
			return
		}
		role, ok := claims["role"].(string)
		if !ok {
			httputil.WriteError(w, http.StatusUnauthorized, "invalid token payload")
			return
		}

		var actor ledger.Actor
		switch ledger.Role(role) {
		case ledger.RoleAdmin:
			actor = ledger.AdminActor(uint(sub))
		case ledger.RoleAgent:
			actor = ledger.AgentActor(uint(sub))
		default:
			httputil.WriteError(w, http.StatusUnauthorized, "unknown role")
			return
		}

		ctx := context.WithValue(r.Context(), actorContextKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
