package pages

import (
	"html/template"
	"net/http"

	"mincommerce/internal/pkg/logger"
	"mincommerce/internal/pkg/middleware"
)

// Handler serve as páginas do site. O controle de acesso NÃO mora aqui:
// o AccessInterceptor já decidiu deixar a requisição passar; cada página
// apenas renderiza com a sessão (se houver) que o interceptor anexou.
type Handler struct {
	Logger logger.Logger
	tmpl   *template.Template
}

// pageData alimenta o template de página.
type pageData struct {
	Title           string
	Heading         string
	IsAuthenticated bool
	SubjectID       string
	Role            string
}

// O site é servido pela API; as páginas são cascas mínimas que o front
// hidrata. O que importa neste nível é que elas existam como alvos reais
// das regras de acesso e dos redirects.
const pageTemplate = `<!DOCTYPE html>
<html lang="pt-BR">
<head><meta charset="utf-8"><title>{{.Title}} — min-commerce</title></head>
<body>
<h1>{{.Heading}}</h1>
{{if .IsAuthenticated}}<p>Sessão ativa: {{.SubjectID}} ({{.Role}})</p>{{else}}<p>Visitante</p>{{end}}
</body>
</html>`

// NewHandler cria o Handler de páginas.
func NewHandler(log logger.Logger) *Handler {
	return &Handler{
		Logger: log,
		tmpl:   template.Must(template.New("page").Parse(pageTemplate)),
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, title string, heading string) {
	data := pageData{Title: title, Heading: heading}

	if claims, ok := middleware.GetSessionClaimsFromContext(r.Context()); ok {
		data.IsAuthenticated = true
		data.SubjectID = claims.SubjectID
		data.Role = string(claims.Role)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.Execute(w, data); err != nil {
		h.Logger.Error("Falha ao renderizar página.", err)
	}
}

// HomeHandler serve "/". Usuário autenticado nunca chega aqui: o
// interceptor já o mandou para o destino do papel dele.
func (h *Handler) HomeHandler(w http.ResponseWriter, r *http.Request) {
	// O mux trata "/" como catch-all; caminho desconhecido é 404, não home.
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	h.render(w, r, "Início", "Bem-vindo à loja")
}

// WelcomeHandler serve "/welcome" (mesma regra de chegada da home).
func (h *Handler) WelcomeHandler(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "Boas-vindas", "Bem-vindo")
}

// CatalogHandler serve "/catalog", o destino padrão pós-login.
func (h *Handler) CatalogHandler(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "Catálogo", "Catálogo de produtos")
}

// CartHandler serve "/cart".
func (h *Handler) CartHandler(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "Carrinho", "Seu carrinho")
}

// CheckoutHandler serve "/checkout".
func (h *Handler) CheckoutHandler(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "Checkout", "Finalizar compra")
}

// OrdersHandler serve "/orders".
func (h *Handler) OrdersHandler(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "Pedidos", "Seus pedidos")
}

// ProfileHandler serve "/profile".
func (h *Handler) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "Perfil", "Seu perfil")
}

// DashboardHandler serve "/dashboard" (qualquer usuário autenticado).
func (h *Handler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "Dashboard", "Dashboard")
}

// AdminHandler serve "/admin" e subcaminhos (o interceptor garante o papel).
func (h *Handler) AdminHandler(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "Administração", "Painel administrativo")
}

// UnauthorizedHandler serve "/unauthorized", o destino das negações por papel.
func (h *Handler) UnauthorizedHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusForbidden)
	h.render(w, r, "Acesso negado", "Você não tem permissão para acessar esta página")
}
