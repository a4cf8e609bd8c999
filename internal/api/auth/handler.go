package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mincommerce/internal/accesscontrol"
	"mincommerce/internal/domain"
	apperror "mincommerce/internal/errors"
	"mincommerce/internal/pkg/logger"
	"mincommerce/internal/pkg/token"
)

// IdentityService define o contrato para as operações de sessão e registro.
type IdentityService interface {
	SignInWithGoogle(ctx context.Context, profile domain.GoogleProfile) (string, domain.User, error)
	Register(ctx context.Context, registration domain.UserRegistration) (domain.User, error)
	Login(ctx context.Context, email string, password string) (string, error)
}

// AssertionVerifier valida a asserção de perfil assinada pelo provedor.
type AssertionVerifier interface {
	VerifyAssertion(assertion string) (*token.ProfileClaims, error)
}

// LoginRequest representa o payload de entrada para o login local.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Handler agrupa todos os métodos de Handler de autenticação.
type Handler struct {
	Service      IdentityService
	Verifier     AssertionVerifier
	Logger       logger.Logger
	CookieName   string
	CookieMaxAge time.Duration
}

// NewHandler cria uma nova instância do Handler, injetando o Service, o
// verificador de asserções do provedor e o Logger.
func NewHandler(svc IdentityService, verifier AssertionVerifier, log logger.Logger, cookieName string, cookieMaxAge time.Duration) *Handler {
	return &Handler{
		Service:      svc,
		Verifier:     verifier,
		Logger:       log,
		CookieName:   cookieName,
		CookieMaxAge: cookieMaxAge,
	}
}

// handleServiceResponse padroniza o tratamento de erros e respostas HTTP.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)
		if data != nil {
			json.NewEncoder(w).Encode(data)
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error("Erro interno no serviço de identidade:", err)
	}

	errorResponse := map[string]interface{}{
		"code":     status,
		"category": category,
		"message":  message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse)
}

// setSessionCookie grava o token de sessão como cookie HttpOnly.
func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.CookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// safeCallbackURL aceita apenas caminhos relativos do próprio site.
// Qualquer URL absoluta ou protocol-relative cai no destino padrão.
func safeCallbackURL(raw string, fallback string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return fallback
	}
	return raw
}

// SignInHandler lida com GET /api/auth/signin.
// É a porta de entrada do fluxo: preserva o callbackUrl e aponta o cliente
// para o provedor (aqui, o callback Google-style do próprio serviço).
// @Summary Inicia o fluxo de sign-in
// @Description Redireciona para o provedor de identidade preservando o callbackUrl de retorno.
// @Tags auth
// @Param callbackUrl query string false "Caminho de retorno após autenticar"
// @Success 302 "Redirecionado ao provedor"
// @Router /api/auth/signin [get]
func (h *Handler) SignInHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	callbackURL := safeCallbackURL(r.URL.Query().Get("callbackUrl"), accesscontrol.CatalogLanding)

	target := accesscontrol.CallbackPath + "?callbackUrl=" + url.QueryEscape(callbackURL)
	http.Redirect(w, r, target, http.StatusFound)
}

// CallbackHandler lida com GET /api/auth/callback.
// O perfil (email/name/picture) chega DENTRO da asserção assinada pelo
// provedor (parâmetro `assertion`); campos soltos na query são ignorados.
// Asserção ausente, forjada ou expirada encerra em 401 — o portador é
// anônimo e nenhuma sessão é emitida. Com a asserção verificada, garante o
// usuário no banco, emite o token com o papel resolvido na hora e grava o
// cookie de sessão antes de devolver o cliente ao callbackUrl.
// @Summary Conclui o fluxo de sign-in
// @Description Verifica a asserção de perfil assinada pelo provedor e emite o cookie de sessão.
// @Tags auth
// @Param assertion query string true "Asserção de perfil assinada pelo provedor"
// @Param callbackUrl query string false "Caminho de retorno após autenticar"
// @Success 302 "Sessão emitida; redirecionado ao callbackUrl"
// @Failure 401 {object} domain.ErrorResponse "Asserção ausente ou não verificada"
// @Router /api/auth/callback [get]
func (h *Handler) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	assertion := r.URL.Query().Get("assertion")
	if assertion == "" {
		h.handleServiceResponse(w, r, nil,
			apperror.NewUnauthorizedError("Asserção do provedor ausente."), http.StatusOK)
		return
	}

	profileClaims, err := h.Verifier.VerifyAssertion(assertion)
	if err != nil {
		h.Logger.Warn("Asserção de perfil rejeitada.", map[string]interface{}{"error": err.Error()})
		h.handleServiceResponse(w, r, nil,
			apperror.NewUnauthorizedError("Asserção do provedor inválida."), http.StatusOK)
		return
	}

	profile := domain.GoogleProfile{
		Email:   profileClaims.Email,
		Name:    profileClaims.Name,
		Picture: profileClaims.Picture,
	}

	sessionToken, user, err := h.Service.SignInWithGoogle(r.Context(), profile)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.setSessionCookie(w, sessionToken)
	h.Logger.Debug("Sessão gravada no cookie.", map[string]interface{}{"user_id": user.ID})

	callbackURL := safeCallbackURL(r.URL.Query().Get("callbackUrl"), accesscontrol.CatalogLanding)
	http.Redirect(w, r, callbackURL, http.StatusFound)
}

// SignOutHandler lida com POST /api/auth/signout: invalida o cookie de sessão.
// A sincronização do carrinho acontece do lado do cliente, antes desta chamada.
// @Summary Encerra a sessão
// @Tags auth
// @Success 204 "Cookie de sessão invalidado"
// @Router /api/auth/signout [post]
func (h *Handler) SignOutHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// RegisterHandler lida com POST /api/auth/register.
// @Summary Registra um novo usuário local
// @Description Cria um novo usuário, hasheia a senha e salva no banco de dados.
// @Tags auth
// @Accept json
// @Produce json
// @Param registration body domain.UserRegistration true "Credenciais de registro (email e senha)"
// @Success 201 {object} domain.User "Usuário criado com sucesso"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 409 {object} domain.ErrorResponse "Email já cadastrado"
// @Router /api/auth/register [post]
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	var reg domain.UserRegistration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusCreated)
		return
	}

	// O objeto retornado já sai sem o hash: a struct domain.User usa `json:"-"`.
	newUser, err := h.Service.Register(r.Context(), reg)
	h.handleServiceResponse(w, r, newUser, err, http.StatusCreated)
}

// LoginHandler lida com POST /api/auth/login.
// @Summary Autentica um usuário local e emite a sessão
// @Description Recebe email/senha, verifica a validade e emite o token de sessão (cookie + corpo).
// @Tags auth
// @Accept json
// @Produce json
// @Param login body LoginRequest true "Credenciais do usuário (email e senha)"
// @Success 200 {object} map[string]string "Token de sessão emitido"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 401 {object} domain.ErrorResponse "Credenciais inválidas"
// @Router /api/auth/login [post]
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	var loginReq LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusOK)
		return
	}

	sessionToken, err := h.Service.Login(r.Context(), loginReq.Email, loginReq.Password)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.setSessionCookie(w, sessionToken)
	h.handleServiceResponse(w, r, map[string]string{"token": sessionToken}, nil, http.StatusOK)
}
