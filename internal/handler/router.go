package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/kube-rca/userauth/internal/config"
	"github.com/kube-rca/userauth/internal/model"
	"github.com/kube-rca/userauth/internal/service"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RouterDeps struct {
	Config config.Config
	Log    *zap.Logger
	Auth   *service.AuthService
	Users  *service.UserService
	DB     pinger
	// Redis is optional; nil disables rate limiting.
	Redis redis.Scripter
}

func NewRouter(deps RouterDeps) (*gin.Engine, error) {
	if err := RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(deps.Log))
	r.Use(CORSMiddleware(deps.Config.Server.AllowedOrigins, true))
	r.Use(ErrorHandler(deps.Log, deps.Config.IsDevelopment()))

	r.GET("/", Root)
	r.GET("/health", NewHealthHandler(deps.DB).Health)
	r.GET("/openapi.json", OpenAPIDoc)

	authRequired := AuthMiddleware(deps.Auth)
	authHandler := NewAuthHandler(deps.Auth)

	auth := r.Group("/auth")
	{
		limited := auth.Group("", RateLimit(deps.Config.RateLimit, deps.Redis, deps.Log))
		limited.POST("/register", authHandler.Register)
		limited.POST("/login", authHandler.Login)
		limited.POST("/refresh", authHandler.Refresh)

		auth.POST("/logout", authRequired, authHandler.Logout)
		auth.GET("/me", authRequired, authHandler.Me)
	}

	userHandler := NewUserHandler(deps.Users)
	admins := RequireRoles(model.RoleAdmin, model.RoleSuperAdmin)
	superAdmins := RequireRoles(model.RoleSuperAdmin)

	users := r.Group("/users", authRequired)
	{
		users.GET("", admins, userHandler.List)
		users.PATCH("/me", userHandler.UpdateMe)
		users.GET("/:id", admins, userHandler.Get)
		users.PATCH("/:id/role", superAdmins, userHandler.UpdateRole)
		users.PATCH("/:id/status", admins, userHandler.UpdateStatus)
		users.DELETE("/:id", superAdmins, userHandler.Delete)
	}

	return r, nil
}
