package token

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ProfileClaims são os dados de perfil afirmados pelo provedor de identidade
// no retorno do fluxo de sign-in. O perfil só é aceito dentro de uma asserção
// assinada; campos soltos (query/form) NUNCA viram perfil.
type ProfileClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// AssertionVerifier valida as asserções de perfil assinadas pelo provedor,
// com o segredo compartilhado configurado para a integração.
type AssertionVerifier struct {
	secretKey []byte
}

// NewAssertionVerifier cria o verificador com o segredo do provedor.
func NewAssertionVerifier(secretKey string) *AssertionVerifier {
	return &AssertionVerifier{secretKey: []byte(secretKey)}
}

// VerifyAssertion valida a assinatura e a validade temporal da asserção e
// retorna o perfil afirmado. Qualquer falha (assinatura, expiração, formato)
// retorna erro; o chamador trata o portador como anônimo — nunca se emite
// sessão a partir de uma asserção não verificada.
func (v *AssertionVerifier) VerifyAssertion(assertion string) (*ProfileClaims, error) {
	claims := &ProfileClaims{}

	parsed, err := jwt.ParseWithClaims(assertion, claims, func(t *jwt.Token) (interface{}, error) {
		// Verifica se o método de assinatura é o esperado (HS256)
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de assinatura inesperado: %v", t.Header["alg"])
		}
		return v.secretKey, nil
	})

	if err != nil {
		return nil, fmt.Errorf("asserção inválida: %w", err)
	}

	if !parsed.Valid {
		return nil, errors.New("asserção não é válida")
	}

	return claims, nil
}
