package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"mincommerce/internal/domain"
	apperror "mincommerce/internal/errors"
	"mincommerce/internal/pkg/token"
)

// ContextKey é o tipo das chaves de contexto deste pacote.
// Usamos um tipo próprio para garantir que a chave seja única e não haja
// conflito com chaves string de outros pacotes.
type ContextKey int

const (
	SessionClaimsKey ContextKey = iota
)

// SessionClaims representa a identidade extraída do token de sessão,
// anexada ao contexto da requisição.
type SessionClaims struct {
	SubjectID string
	Email     string
	Role      domain.UserRole
}

// TokenService define o contrato de validação necessário para o middleware.
type TokenService interface {
	ValidateToken(tokenString string) (*token.SessionClaims, error)
}

// ExtractSession tenta extrair a identidade da requisição: primeiro o cookie
// de sessão, depois o header Authorization: Bearer. Token ausente, malformado
// ou expirado resulta em (zero, false) — fail-closed: a requisição segue como
// anônima, nunca como admin.
func ExtractSession(r *http.Request, tokenSvc TokenService, cookieName string) (SessionClaims, bool) {
	tokenString := ""

	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		tokenString = cookie.Value
	} else if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		tokenString = strings.TrimPrefix(authHeader, "Bearer ")
	}

	if tokenString == "" {
		return SessionClaims{}, false
	}

	claims, err := tokenSvc.ValidateToken(tokenString)
	if err != nil {
		return SessionClaims{}, false
	}

	return SessionClaims{
		SubjectID: claims.SubjectID,
		Email:     claims.Email,
		Role:      domain.UserRole(claims.Role),
	}, true
}

// NewAuthMiddleware cria o middleware de autenticação das rotas de API:
// valida a sessão e anexa as claims ao contexto. Diferente das rotas de
// página, aqui a ausência de sessão responde 401 JSON, sem redirect.
func NewAuthMiddleware(tokenSvc TokenService, cookieName string) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ExtractSession(r, tokenSvc, cookieName)
			if !ok {
				writeJSONError(w, apperror.NewUnauthorizedError("Sessão ausente ou inválida."))
				return
			}

			ctx := context.WithValue(r.Context(), SessionClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
	}
}

// GetSessionClaimsFromContext é a função utilitária para extrair as claims no handler.
func GetSessionClaimsFromContext(ctx context.Context) (SessionClaims, bool) {
	claims, ok := ctx.Value(SessionClaimsKey).(SessionClaims)
	return claims, ok
}

// PermissionMiddleware restringe a rota aos papéis informados.
// Pressupõe que o AuthMiddleware já rodou; 403 JSON quando o papel não basta.
func PermissionMiddleware(requiredRoles ...domain.UserRole) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetSessionClaimsFromContext(r.Context())
			if !ok {
				writeJSONError(w, apperror.NewUnauthorizedError("Autorização necessária. Token não processado."))
				return
			}

			for _, requiredRole := range requiredRoles {
				if claims.Role == requiredRole {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeJSONError(w, apperror.NewForbiddenError("Você não tem a permissão necessária."))
		}
	}
}

// writeJSONError padroniza o corpo de erro das rotas de API.
func writeJSONError(w http.ResponseWriter, err error) {
	status, category, message := apperror.MapToHTTPStatus(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"code":     status,
		"category": category,
		"message":  message,
	})
}
