package router

import (
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"mincommerce/internal/api/admin"
	"mincommerce/internal/api/auth"
	"mincommerce/internal/api/cart"
	"mincommerce/internal/api/order"
	"mincommerce/internal/api/pages"
	"mincommerce/internal/api/product"
	"mincommerce/internal/domain"
	"mincommerce/internal/pkg/cache"
	"mincommerce/internal/pkg/logger"
	"mincommerce/internal/pkg/middleware"
)

// Handlers agrupa todos os handlers que o roteador monta, já inicializados
// por injeção de dependências no main.
type Handlers struct {
	Product *product.Handler
	Cart    *cart.Handler
	Order   *order.Handler
	Admin   *admin.Handler
	Auth    *auth.Handler
	Pages   *pages.Handler
}

// NewRouter configura e retorna o roteador HTTP principal.
//
// A divisão de responsabilidades de acesso é em duas camadas:
//   - rotas /api/* se protegem sozinhas (AuthMiddleware -> 401 JSON,
//     PermissionMiddleware -> 403 JSON);
//   - rotas de página passam pelo AccessInterceptor, que responde com
//     redirects (sign-in com callbackUrl, /unauthorized) em vez de JSON.
func NewRouter(h Handlers, tokenSvc middleware.TokenService, cacheClient cache.Client, cookieName string, rateLimit int, ratePeriod time.Duration, log logger.Logger) http.Handler {

	// Usamos o ServeMux padrão do net/http para roteamento
	mux := http.NewServeMux()

	requireAuth := middleware.NewAuthMiddleware(tokenSvc, cookieName)
	requireAdmin := middleware.PermissionMiddleware(domain.RoleAdmin)

	// --- 1. Health check e documentação ---
	mux.HandleFunc("/ping", PingHandler)
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// --- 2. Autenticação (rotas públicas por definição) ---
	mux.HandleFunc("/api/auth/signin", h.Auth.SignInHandler)
	mux.HandleFunc("/api/auth/callback", h.Auth.CallbackHandler)
	mux.HandleFunc("/api/auth/signout", h.Auth.SignOutHandler)
	mux.HandleFunc("/api/auth/register", h.Auth.RegisterHandler)
	mux.HandleFunc("/api/auth/login", h.Auth.LoginHandler)

	// --- 3. Catálogo (leitura pública) ---
	mux.HandleFunc("/api/products", h.Product.ListProductsHandler)
	mux.HandleFunc("/api/products/", h.Product.GetProductByIDHandler)

	// --- 4. Carrinho (sempre do usuário da sessão) ---
	mux.HandleFunc("/api/cart", requireAuth(h.Cart.CollectionHandler))
	mux.HandleFunc("/api/cart/", requireAuth(h.Cart.ItemHandler))

	// --- 5. Ordens (checkout e histórico) ---
	mux.HandleFunc("/api/orders", requireAuth(h.Order.OrdersHandler))

	// --- 6. Administração ---
	mux.HandleFunc("/api/admin/stats", requireAuth(requireAdmin(h.Admin.StatsHandler)))

	// --- 7. Páginas (atrás do interceptor de acesso) ---
	pagesMux := http.NewServeMux()
	pagesMux.HandleFunc("/", h.Pages.HomeHandler)
	pagesMux.HandleFunc("/welcome", h.Pages.WelcomeHandler)
	pagesMux.HandleFunc("/catalog", h.Pages.CatalogHandler)
	pagesMux.HandleFunc("/cart", h.Pages.CartHandler)
	pagesMux.HandleFunc("/checkout", h.Pages.CheckoutHandler)
	pagesMux.HandleFunc("/orders", h.Pages.OrdersHandler)
	pagesMux.HandleFunc("/profile", h.Pages.ProfileHandler)
	pagesMux.HandleFunc("/dashboard", h.Pages.DashboardHandler)
	pagesMux.HandleFunc("/dashboard/", h.Pages.DashboardHandler)
	pagesMux.HandleFunc("/admin", h.Pages.AdminHandler)
	pagesMux.HandleFunc("/admin/", h.Pages.AdminHandler)
	pagesMux.HandleFunc("/unauthorized", h.Pages.UnauthorizedHandler)

	interceptor := middleware.AccessInterceptor(tokenSvc, cookieName, log)
	mux.Handle("/", interceptor(pagesMux))

	// --- 8. Middlewares globais ---
	limiter := middleware.RateLimiter(cacheClient, rateLimit, ratePeriod)

	return limiter(mux)
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
