package middleware

import (
	"context"
	"net/http"
	"strings"

	"mincommerce/internal/accesscontrol"
	"mincommerce/internal/domain"
	"mincommerce/internal/pkg/logger"
)

// AccessInterceptor é o interceptor das rotas de PÁGINA: roda antes de
// qualquer handler e transforma as decisões do resolvedor em redirects.
// Ordem das regras:
//  1. rotas /api/ passam direto (cada endpoint se protege sozinho);
//  2. redirect de chegada por papel (raiz/boas-vindas de usuário logado);
//  3. tabela geral via accesscontrol.Resolve.
//
// Extração de identidade é fail-closed: token malformado vira anônimo.
func AccessInterceptor(tokenSvc TokenService, cookieName string, log logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			if strings.HasPrefix(path, accesscontrol.APIPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			claims, isAuthenticated := ExtractSession(r, tokenSvc, cookieName)
			role := domain.RoleAnonymous
			if isAuthenticated {
				role = claims.Role
			}

			// Regra de maior prioridade: chegada por papel
			if target, ok := accesscontrol.LandingRedirect(path, role, isAuthenticated); ok {
				log.Debug("Redirect de chegada por papel.", map[string]interface{}{
					"path": path, "role": string(role), "target": target,
				})
				http.Redirect(w, r, target, http.StatusFound)
				return
			}

			decision := accesscontrol.Resolve(path, role, isAuthenticated)
			if !decision.Allowed {
				log.Debug("Acesso negado pelo resolvedor.", map[string]interface{}{
					"path":   path,
					"role":   string(role),
					"reason": string(decision.Reason),
					"target": decision.RedirectTarget,
				})
				http.Redirect(w, r, decision.RedirectTarget, http.StatusFound)
				return
			}

			// Identidade disponível para os handlers de página
			if isAuthenticated {
				ctx := context.WithValue(r.Context(), SessionClaimsKey, claims)
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(w, r)
		})
	}
}
