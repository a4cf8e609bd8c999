package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"mincommerce/internal/api/auth"
	"mincommerce/internal/domain"
	"mincommerce/internal/pkg/logger"
	"mincommerce/internal/pkg/token"
)

// MockIdentityService é uma implementação mock da interface auth.IdentityService
type MockIdentityService struct {
	mock.Mock
}

func (m *MockIdentityService) SignInWithGoogle(ctx context.Context, profile domain.GoogleProfile) (string, domain.User, error) {
	args := m.Called(ctx, profile)
	return args.String(0), args.Get(1).(domain.User), args.Error(2)
}

func (m *MockIdentityService) Register(ctx context.Context, registration domain.UserRegistration) (domain.User, error) {
	args := m.Called(ctx, registration)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockIdentityService) Login(ctx context.Context, email string, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

const providerSecret = "provider-secret-de-teste"

// newCallbackHandler monta o Handler com o verificador real e o serviço mockado.
func newCallbackHandler(svc *MockIdentityService) *auth.Handler {
	verifier := token.NewAssertionVerifier(providerSecret)
	log := logger.NewLogger("error")
	return auth.NewHandler(svc, verifier, log, "mc_session", time.Hour)
}

// signAssertion assina uma asserção de perfil como o provedor faria.
func signAssertion(t *testing.T, secret string, email string, expiry time.Duration) string {
	t.Helper()

	claims := token.ProfileClaims{
		Email: email,
		Name:  "Usuário de Teste",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

// sessionCookie localiza o cookie de sessão na resposta, se houver.
func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == "mc_session" {
			return c
		}
	}
	return nil
}

// TestCallback_EmailQueryAlone_DoesNotIssueSession testa que e-mail solto na
// query — sem asserção assinada — nunca vira sessão, mesmo sendo o e-mail
// do administrador. O portador é tratado como anônimo.
func TestCallback_EmailQueryAlone_DoesNotIssueSession(t *testing.T) {
	mockSvc := new(MockIdentityService)
	handler := newCallbackHandler(mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/callback?email=admin@example.com", nil)
	rec := httptest.NewRecorder()

	handler.CallbackHandler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, sessionCookie(rec.Result()))
	mockSvc.AssertNotCalled(t, "SignInWithGoogle", mock.Anything, mock.Anything)
}

// TestCallback_ForgedAssertion_Rejected testa que uma asserção assinada com
// outro segredo é rejeitada sem emissão de sessão.
func TestCallback_ForgedAssertion_Rejected(t *testing.T) {
	mockSvc := new(MockIdentityService)
	handler := newCallbackHandler(mockSvc)

	forged := signAssertion(t, "segredo-errado", "admin@example.com", time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/api/auth/callback?assertion="+url.QueryEscape(forged), nil)
	rec := httptest.NewRecorder()

	handler.CallbackHandler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, sessionCookie(rec.Result()))
	mockSvc.AssertNotCalled(t, "SignInWithGoogle", mock.Anything, mock.Anything)
}

// TestCallback_ExpiredAssertion_Rejected testa que asserções vencidas não valem.
func TestCallback_ExpiredAssertion_Rejected(t *testing.T) {
	mockSvc := new(MockIdentityService)
	handler := newCallbackHandler(mockSvc)

	expired := signAssertion(t, providerSecret, "user@example.com", -time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/api/auth/callback?assertion="+url.QueryEscape(expired), nil)
	rec := httptest.NewRecorder()

	handler.CallbackHandler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, sessionCookie(rec.Result()))
	mockSvc.AssertNotCalled(t, "SignInWithGoogle", mock.Anything, mock.Anything)
}

// TestCallback_VerifiedAssertion_IssuesSessionCookie testa o caminho feliz:
// asserção válida, perfil extraído das claims (não da query), cookie gravado
// e redirect para o destino padrão.
func TestCallback_VerifiedAssertion_IssuesSessionCookie(t *testing.T) {
	mockSvc := new(MockIdentityService)
	handler := newCallbackHandler(mockSvc)

	expectedProfile := domain.GoogleProfile{
		Email: "user@example.com",
		Name:  "Usuário de Teste",
	}
	sessionUser := domain.User{ID: "u-1", Email: "user@example.com", Name: "Usuário de Teste"}
	mockSvc.On("SignInWithGoogle", mock.Anything, expectedProfile).
		Return("token-de-sessao", sessionUser, nil).Once()

	assertion := signAssertion(t, providerSecret, "user@example.com", time.Hour)
	// Um atacante injetando email na query junto da asserção: o campo solto é ignorado.
	target := "/api/auth/callback?assertion=" + url.QueryEscape(assertion) + "&email=admin@example.com"
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()

	handler.CallbackHandler(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/catalog", rec.Header().Get("Location"))

	cookie := sessionCookie(rec.Result())
	assert.NotNil(t, cookie)
	assert.Equal(t, "token-de-sessao", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	mockSvc.AssertExpectations(t)
}

// TestCallback_VerifiedAssertion_HonorsCallbackURL testa que o retorno vai
// para o callbackUrl relativo informado.
func TestCallback_VerifiedAssertion_HonorsCallbackURL(t *testing.T) {
	mockSvc := new(MockIdentityService)
	handler := newCallbackHandler(mockSvc)

	mockSvc.On("SignInWithGoogle", mock.Anything, mock.Anything).
		Return("token-de-sessao", domain.User{ID: "u-1"}, nil).Once()

	assertion := signAssertion(t, providerSecret, "user@example.com", time.Hour)
	target := "/api/auth/callback?assertion=" + url.QueryEscape(assertion) +
		"&callbackUrl=" + url.QueryEscape("/checkout")
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()

	handler.CallbackHandler(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/checkout", rec.Header().Get("Location"))
}
