package domain

import (
	"context"
	"time"
)

// User representa a entidade do usuário (o "subject" da sessão).
// O ID é estável e independente do e-mail (o provedor externo pode trocar o e-mail).
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Image        string    `json:"image,omitempty"`
	PasswordHash string    `json:"-"` // Oculta o hash da senha no JSON de resposta (vazio para contas Google)
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserRole é um tipo string para representar o papel do usuário no sistema.
// O papel NÃO é persistido na entidade: ele é calculado uma única vez na
// emissão do token de sessão (ver identityservice) e fica imutável até a reemissão.
type UserRole string

// Constantes para os papéis de usuário
const (
	RoleAdmin     UserRole = "admin"
	RoleUser      UserRole = "user"
	RoleAnonymous UserRole = "" // Sem sessão
)

// UserRegistration representa o payload de entrada para o registro local (e-mail + senha).
type UserRegistration struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// GoogleProfile representa os dados mínimos entregues pelo callback do provedor Google.
type GoogleProfile struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

// UserRepository define o contrato de persistência para a entidade User.
type UserRepository interface {
	Save(ctx context.Context, user User) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	// IsAdminEmail consulta a tabela de atribuição de papéis (admin_emails).
	IsAdminEmail(ctx context.Context, email string) (bool, error)
}

// IdentityService define o contrato de emissão de sessões.
// Todas as operações devolvem o token já assinado com subject + role embutidos.
type IdentityService interface {
	SignInWithGoogle(ctx context.Context, profile GoogleProfile) (string, User, error)
	Register(ctx context.Context, registration UserRegistration) (User, error)
	Login(ctx context.Context, email string, password string) (string, error)
}
