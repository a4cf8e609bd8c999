package userrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mincommerce/internal/domain"
	apperror "mincommerce/internal/errors"
	"mincommerce/internal/pkg/logger"
)

// UserRepository implementa a interface domain.UserRepository.
// Além da tabela users, este repositório consulta admin_emails — a tabela de
// atribuição de papéis lida APENAS na emissão do token de sessão.
type UserRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewUserRepository cria uma nova instância do UserRepository, injetando o DB.
func NewUserRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *UserRepository {
	return &UserRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Save insere ou atualiza o usuário, chaveado pelo e-mail (upsert).
// O provedor externo pode entregar o mesmo e-mail em logins sucessivos;
// o id do subject permanece estável após a primeira criação.
func (r *UserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	r.logger.Debug("Iniciando Save de usuário no repositório.", map[string]interface{}{"email": user.Email})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	const upsertSQL = `
		INSERT INTO users (id, email, name, image, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (email)
		DO UPDATE SET name = EXCLUDED.name, image = EXCLUDED.image, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`

	err := r.DB.QueryRowContext(
		ctxTimeout,
		upsertSQL,
		user.ID,
		user.Email,
		user.Name,
		user.Image,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		r.logger.Error("Falha ao gravar usuário no DB.", err)
		return domain.User{}, apperror.NewDBError("failed to upsert user (DB)", err)
	}

	r.logger.Info("Usuário salvo com sucesso no repositório.", map[string]interface{}{"user_id": user.ID, "email": user.Email})
	return user, nil
}

// FindByEmail busca um usuário pelo endereço de e-mail.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	r.logger.Debug("Iniciando FindByEmail de usuário no repositório.", map[string]interface{}{"email_attempt": email})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT id, email, name, image, password_hash, created_at, updated_at FROM users WHERE email = $1`

	row := r.DB.QueryRowContext(ctxTimeout, query, email)

	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Image,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Info("Usuário não encontrado no DB por email.", map[string]interface{}{"email": email})
			return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("Usuário com email '%s' não encontrado", email))
		}
		r.logger.Error("Falha ao buscar usuário por email no DB.", err)
		return domain.User{}, apperror.NewDBError("failed to find user by email (DB)", err)
	}

	return user, nil
}

// IsAdminEmail consulta a tabela de atribuição de papéis. O resultado só é
// usado na emissão do token: o papel fica congelado na sessão até a reemissão.
func (r *UserRepository) IsAdminEmail(ctx context.Context, email string) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `SELECT EXISTS (SELECT 1 FROM admin_emails WHERE email = $1)`

	var isAdmin bool
	if err := r.DB.QueryRowContext(ctxTimeout, query, email).Scan(&isAdmin); err != nil {
		return false, apperror.NewDBError("failed to check admin email (DB)", err)
	}
	return isAdmin, nil
}

// EnsureAdminEmail registra o e-mail na tabela de atribuição de papéis.
// Chamado na subida da aplicação com o valor de ADMIN_EMAIL; idempotente.
func (r *UserRepository) EnsureAdminEmail(ctx context.Context, email string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `INSERT INTO admin_emails (email) VALUES ($1) ON CONFLICT (email) DO NOTHING`

	if _, err := r.DB.ExecContext(ctxTimeout, query, email); err != nil {
		return apperror.NewDBError("failed to ensure admin email (DB)", err)
	}

	r.logger.Info("E-mail administrador garantido na tabela de papéis.", map[string]interface{}{"email": email})
	return nil
}
