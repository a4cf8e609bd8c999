package accesscontrol

import (
	"net/url"
	"strings"

	"mincommerce/internal/domain"
)

// Este pacote centraliza toda a lógica de controle de acesso por rota.
// Resolve é uma função PURA: nenhum efeito colateral, nenhuma dependência.
// Quem transforma uma decisão de negação em redirect de verdade é o
// interceptor (internal/pkg/middleware).

// Reason identifica a categoria que permitiu ou negou o acesso.
type Reason string

const (
	ReasonPublic                  Reason = "public"
	ReasonAuthenticated           Reason = "authenticated"
	ReasonAdmin                   Reason = "admin"
	ReasonDashboard               Reason = "dashboard"
	ReasonUnknown                 Reason = "unknown"
	ReasonUnauthorized            Reason = "unauthorized"
	ReasonInsufficientPermissions Reason = "insufficient_permissions"
)

// Decision é o resultado da resolução de acesso para um path.
type Decision struct {
	Allowed        bool
	Reason         Reason
	RedirectTarget string // Preenchido apenas em negações
}

// Tabela estática de regras de acesso. A ordem de avaliação é fixa:
// público (match exato) > prefixo de API > prefixo admin > prefixo dashboard >
// lista de prefixos autenticados > permissão por padrão.
var (
	// Rotas públicas - acessíveis sem autenticação (match exato)
	PublicPaths = []string{"/", "/api/auth/signin", "/api/auth/callback"}

	// Rotas autenticadas - qualquer usuário logado (match por prefixo)
	AuthenticatedPaths = []string{"/profile", "/checkout", "/orders", "/cart"}
)

const (
	// Rotas de API - este nível não as restringe; cada endpoint se protege sozinho
	APIPrefix = "/api/"

	// Rotas administrativas - somente admin
	AdminPrefix = "/admin"

	// Dashboard - qualquer usuário autenticado
	DashboardPrefix = "/dashboard"

	// Destinos de redirect das negações
	SignInPath       = "/api/auth/signin"
	CallbackPath     = "/api/auth/callback"
	UnauthorizedPath = "/unauthorized"

	// Destinos do redirect de chegada por papel
	AdminLanding   = "/admin"
	CatalogLanding = "/catalog"
)

// AccessType classifica um path na categoria da tabela de regras.
// Primeira regra que casa, vence.
func AccessType(path string) Reason {
	for _, p := range PublicPaths {
		if path == p {
			return ReasonPublic
		}
	}

	// APIs se protegem a nível de endpoint
	if strings.HasPrefix(path, APIPrefix) {
		return ReasonPublic
	}

	if strings.HasPrefix(path, AdminPrefix) {
		return ReasonAdmin
	}

	if strings.HasPrefix(path, DashboardPrefix) {
		return ReasonDashboard
	}

	for _, p := range AuthenticatedPaths {
		if strings.HasPrefix(path, p) {
			return ReasonAuthenticated
		}
	}

	return ReasonUnknown
}

// RequiresAuthentication informa se o path exige sessão.
func RequiresAuthentication(path string) bool {
	switch AccessType(path) {
	case ReasonPublic:
		return false
	default:
		return true
	}
}

// Resolve mapeia (path, role, autenticado?) para uma decisão de acesso.
// Falhas de extração de token devem chegar aqui como (RoleAnonymous, false):
// o resultado degrada para negação/público, nunca para admin.
func Resolve(path string, role domain.UserRole, isAuthenticated bool) Decision {
	switch AccessType(path) {
	case ReasonPublic:
		return Decision{Allowed: true, Reason: ReasonPublic}

	case ReasonAdmin:
		if !isAuthenticated {
			return signInRedirect(path)
		}
		if role != domain.RoleAdmin {
			return Decision{
				Allowed:        false,
				Reason:         ReasonInsufficientPermissions,
				RedirectTarget: UnauthorizedPath,
			}
		}
		return Decision{Allowed: true, Reason: ReasonAdmin}

	case ReasonDashboard:
		if !isAuthenticated {
			return signInRedirect(path)
		}
		return Decision{Allowed: true, Reason: ReasonDashboard}

	case ReasonAuthenticated:
		if !isAuthenticated {
			return signInRedirect(path)
		}
		return Decision{Allowed: true, Reason: ReasonAuthenticated}

	default:
		// Rotas não especificadas são permitidas por padrão.
		// Escolha explícita de política: rotas novas não quebram o site.
		return Decision{Allowed: true, Reason: ReasonUnknown}
	}
}

// LandingRedirect implementa o redirect de chegada por papel: usuário
// autenticado batendo na raiz ou na página de boas-vindas é levado direto
// para a área dele. Esta regra roda ANTES da tabela geral.
func LandingRedirect(path string, role domain.UserRole, isAuthenticated bool) (string, bool) {
	if !isAuthenticated {
		return "", false
	}
	if path != "/" && path != "/welcome" {
		return "", false
	}
	if role == domain.RoleAdmin {
		return AdminLanding, true
	}
	return CatalogLanding, true
}

// signInRedirect monta a negação por falta de sessão, preservando o path
// original como callbackUrl para o retorno pós-login.
func signInRedirect(path string) Decision {
	return Decision{
		Allowed:        false,
		Reason:         ReasonUnauthorized,
		RedirectTarget: SignInPath + "?callbackUrl=" + url.QueryEscape(path),
	}
}
