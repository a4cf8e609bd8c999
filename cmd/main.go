package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Nossos pacotes de infraestrutura e utilitários
	"mincommerce/config"
	"mincommerce/internal/pkg/cache"
	"mincommerce/internal/pkg/database"
	"mincommerce/internal/pkg/logger"
	"mincommerce/internal/pkg/token"

	// Camadas da aplicação para Injeção de Dependências
	"mincommerce/internal/api/admin"
	"mincommerce/internal/api/auth"
	"mincommerce/internal/api/cart"
	"mincommerce/internal/api/order"
	"mincommerce/internal/api/pages"
	"mincommerce/internal/api/product"
	"mincommerce/internal/api/router"
	"mincommerce/internal/repository/cartrepo"
	"mincommerce/internal/repository/orderrepo"
	"mincommerce/internal/repository/productrepo"
	"mincommerce/internal/repository/statsrepo"
	"mincommerce/internal/repository/userrepo"
	"mincommerce/internal/service/cartservice"
	"mincommerce/internal/service/identityservice"
	"mincommerce/internal/service/orderservice"
	"mincommerce/internal/service/productservice"
	"mincommerce/internal/service/statsservice"
)

func main() {
	// 1. Configuração e Inicialização
	log.Println("⚡ Inicializando serviço min-commerce...")

	// 0. CARREGAR VARIÁVEIS DE AMBIENTE (.env)
	if err := godotenv.Load(); err != nil {
		// Sem .env seguimos em frente: as variáveis essenciais podem
		// estar no ambiente do sistema (ex: Docker).
		log.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configurações carregadas.", nil)

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	log.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis)
	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	log.Info("Conexão Redis estabelecida.", nil)

	// C. Serviço de Tokens de Sessão (JWT)
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)
	assertionVerifier := token.NewAssertionVerifier(cfg.OAuthProviderSecret)
	log.Debug("Serviço de Tokens JWT inicializado.", nil)

	// 3. INJEÇÃO DE DEPENDÊNCIAS (Montagem da Clean Architecture)
	// Ordem: Repository -> Service -> Handler

	// A. Repositórios (Camada de Acesso a Dados)
	productRepo := productrepo.NewProductRepository(db, cacheClient, cfg.DBTimeout, log)
	cartRepo := cartrepo.NewCartRepository(db, cfg.DBTimeout, log)
	orderRepo := orderrepo.NewOrderRepository(db, cfg.DBTimeout, log)
	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, log)
	statsRepo := statsrepo.NewStatsRepository(db, cfg.DBTimeout, log)
	log.Debug("Repositórios inicializados.", nil)

	// Semeia a tabela de papéis com o administrador do ambiente.
	if cfg.AdminEmail != "" {
		if err := userRepo.EnsureAdminEmail(context.Background(), cfg.AdminEmail); err != nil {
			log.Error("Falha ao semear e-mail administrador.", err)
		}
	}

	// B. Serviços (Camada de Lógica de Negócio)
	productSvc := productservice.NewService(productRepo, log)
	cartSvc := cartservice.NewService(cartRepo, productRepo, log)
	orderSvc := orderservice.NewService(orderRepo, log)
	identitySvc := identityservice.NewService(userRepo, tokenSvc, log)
	statsSvc := statsservice.NewService(statsRepo, log)
	log.Debug("Serviços inicializados.", nil)

	// C. Handlers (Camada de Apresentação)
	handlers := router.Handlers{
		Product: product.NewHandler(productSvc, log),
		Cart:    cart.NewHandler(cartSvc, log),
		Order:   order.NewHandler(orderSvc, log),
		Admin:   admin.NewHandler(statsSvc, log),
		Auth:    auth.NewHandler(identitySvc, assertionVerifier, log, cfg.SessionCookieName, cfg.TokenExpiry),
		Pages:   pages.NewHandler(log),
	}
	log.Debug("Handlers inicializados.", nil)

	// 4. Configuração e Início do Roteador/Servidor
	r := router.NewRouter(handlers, tokenSvc, cacheClient, cfg.SessionCookieName,
		cfg.RateLimitMaxRequests, cfg.RateLimitPeriod, log)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor min-commerce ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
