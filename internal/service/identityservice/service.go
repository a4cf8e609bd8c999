package identityservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"mincommerce/internal/domain"
	apperror "mincommerce/internal/errors"
	"mincommerce/internal/pkg/logger"
	"mincommerce/internal/pkg/token"
)

// IdentityService é o provedor de identidade/sessão: emite o token assinado
// com subject e papel embutidos. O papel é resolvido UMA vez aqui, na
// emissão, contra a tabela admin_emails — nenhuma camada o re-deriva por
// requisição; trocar o papel de alguém exige reemitir o token (novo login).
type IdentityService struct {
	UserRepo domain.UserRepository
	TokenSvc TokenService
	Logger   logger.Logger
}

// TokenService é o contrato da camada de token (internal/pkg/token).
type TokenService interface {
	GenerateToken(subjectID string, email string, role string) (string, error)
	ValidateToken(tokenString string) (*token.SessionClaims, error)
}

// NewService cria uma nova instância do IdentityService, injetando o Repositório.
func NewService(repo domain.UserRepository, tokenSvc TokenService, log logger.Logger) *IdentityService {
	return &IdentityService{
		UserRepo: repo,
		TokenSvc: tokenSvc,
		Logger:   log,
	}
}

// SignInWithGoogle processa o callback do provedor Google: garante que o
// usuário exista (upsert por e-mail), resolve o papel e emite a sessão.
func (s *IdentityService) SignInWithGoogle(ctx context.Context, profile domain.GoogleProfile) (string, domain.User, error) {
	if profile.Email == "" {
		return "", domain.User{}, apperror.NewValidationError("O callback não trouxe e-mail.")
	}

	user, err := s.UserRepo.Save(ctx, domain.User{
		Email: profile.Email,
		Name:  profile.Name,
		Image: profile.Picture,
	})
	if err != nil {
		return "", domain.User{}, err
	}

	role, err := s.resolveRole(ctx, user.Email)
	if err != nil {
		return "", domain.User{}, err
	}

	sessionToken, err := s.TokenSvc.GenerateToken(user.ID, user.Email, string(role))
	if err != nil {
		return "", domain.User{}, apperror.NewInternalError("Falha ao gerar token de sessão.", err)
	}

	s.Logger.Info("Sessão emitida via Google.", map[string]interface{}{
		"user_id": user.ID,
		"role":    string(role),
	})

	return sessionToken, user, nil
}

// Register registra um novo usuário local no sistema.
// Ele faz o hashing da senha e lida com validações básicas.
func (s *IdentityService) Register(ctx context.Context, registration domain.UserRegistration) (domain.User, error) {
	// 1. Validação Básica
	if registration.Email == "" || registration.Password == "" {
		return domain.User{}, apperror.NewValidationError("Email e senha são obrigatórios.")
	}

	// O upsert do Save regravaria a conta existente; registro exige conta nova
	if _, err := s.UserRepo.FindByEmail(ctx, registration.Email); err == nil {
		return domain.User{}, apperror.NewConflictError(
			fmt.Sprintf("O email '%s' já está em uso.", registration.Email))
	}

	// 2. Hashing da Senha
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registration.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	// 3. Criação do Objeto User
	newUser := domain.User{
		Email:        registration.Email,
		Name:         registration.Name,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	// 4. Chamada ao Repositório para Persistência
	user, err := s.UserRepo.Save(ctx, newUser)
	if err != nil {
		return domain.User{}, err
	}

	return user, nil
}

// Login autentica um usuário local, verifica a senha e emite a sessão.
func (s *IdentityService) Login(ctx context.Context, email string, password string) (string, error) {
	// 1. Validação Básica
	if email == "" || password == "" {
		return "", apperror.NewUnauthorizedError("Email e senha são obrigatórios.")
	}

	// 2. Buscar Usuário pelo Email
	user, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		// NotFound vira Unauthorized (401) para não dar dicas a invasores
		var notFoundErr *apperror.NotFoundError
		if errors.As(err, &notFoundErr) {
			return "", apperror.NewUnauthorizedError("Credenciais inválidas.")
		}
		return "", err
	}

	// Contas criadas via Google não têm senha local
	if user.PasswordHash == "" {
		return "", apperror.NewUnauthorizedError("Credenciais inválidas.")
	}

	// 3. Comparar Senhas (Hashing)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", apperror.NewUnauthorizedError("Credenciais inválidas.")
	}

	// 4. Resolver papel e gerar a sessão
	role, err := s.resolveRole(ctx, user.Email)
	if err != nil {
		return "", err
	}

	tokenString, err := s.TokenSvc.GenerateToken(user.ID, user.Email, string(role))
	if err != nil {
		return "", apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	return tokenString, nil
}

// resolveRole calcula o papel do usuário no momento da emissão do token.
// Falha na consulta degrada para "user", nunca para "admin" (fail-closed).
func (s *IdentityService) resolveRole(ctx context.Context, email string) (domain.UserRole, error) {
	isAdmin, err := s.UserRepo.IsAdminEmail(ctx, email)
	if err != nil {
		s.Logger.Error("Falha ao consultar atribuição de papéis; assumindo papel comum.", err)
		return domain.RoleUser, nil
	}
	if isAdmin {
		return domain.RoleAdmin, nil
	}
	return domain.RoleUser, nil
}
