package handler

import (
	"wallet-ledger/internal/adapter/http/middleware"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	WalletSvc      ports.WalletService
	LedgerSvc      ports.LedgerService
	TokenSvc       ports.TokenService
	Revocation     ports.TokenRevocationStore
	RateLimiter    ports.RateLimiter // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	rules := middleware.DefaultRateLimitRules()

	rl := func(group string) gin.HandlerFunc {
		rule, ok := rules[group]
		if deps.RateLimiter == nil || !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimiter, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	client := v1.Group("/client")
	{
		client.POST("/register", rl("auth_register"), authHandler.RegisterClient)
		client.POST("/login", rl("auth_login"), authHandler.Login(domain.RoleClient))
	}
	company := v1.Group("/company")
	{
		company.POST("/register", rl("auth_register"), authHandler.RegisterCompany)
		company.POST("/login", rl("auth_login"), authHandler.Login(domain.RoleCompany))
	}

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Revocation, deps.Logger)
	v1.POST("/auth/logout", jwtAuth, authHandler.Logout)

	walletHandler := NewWalletHandler(deps.WalletSvc, deps.LedgerSvc)
	wallets := v1.Group("/wallets", jwtAuth)
	{
		wallets.POST("", rl("wallets_create"), walletHandler.Create)
		wallets.GET("", rl("wallets_read"), walletHandler.List)
		wallets.POST("/deposit", rl("wallets_deposit"), walletHandler.Deposit)
		wallets.POST("/charge", middleware.RequireRole(domain.RoleCompany), rl("wallets_charge"), walletHandler.Charge)
		wallets.GET("/:token", rl("wallets_read"), walletHandler.Get)
		wallets.GET("/:token/history", rl("wallets_read"), walletHandler.History)
		wallets.GET("/:token/reconcile", rl("wallets_read"), walletHandler.Reconcile)
	}

	return r
}
