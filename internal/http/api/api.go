package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/promptpress/promptpress/internal/config"
	"github.com/promptpress/promptpress/internal/generate"
	"github.com/promptpress/promptpress/internal/http/api/handlers"
	"github.com/promptpress/promptpress/internal/images"
	"github.com/promptpress/promptpress/internal/mail"
	"github.com/promptpress/promptpress/internal/ratelimit"
	"github.com/promptpress/promptpress/internal/security"
	"github.com/promptpress/promptpress/internal/usage"
	"gorm.io/gorm"
)

// Deps bundles the components the API surface is built from.
type Deps struct {
	DB         *gorm.DB
	JWT        config.JWTConfig
	OpenAI     config.OpenAIConfig
	Generation config.GenerationConfig
	Generator  generate.BlogGenerator
	Ledger     *usage.Ledger
	Images     *images.Storage
	Mailer     *mail.Mailer
	Limiter    *ratelimit.Manager
}

// RegisterRoutes registers the API routes, middleware, and handlers.
func RegisterRoutes(r *gin.Engine, deps Deps) {
	if r == nil || deps.DB == nil {
		return
	}

	if deps.Images != nil {
		r.Static(images.BaseURL, deps.Images.Dir())
	}

	apiGroup := r.Group("/api")

	healthHandler := handlers.NewHealthHandler(deps.DB, deps.OpenAI, deps.Mailer)
	apiGroup.GET("/health", healthHandler.Health)

	requireAuth := authMiddleware(deps.JWT)
	optionalAuth := optionalAuthMiddleware(deps.JWT)

	authHandler := handlers.NewAuthHandler(deps.DB, deps.JWT, deps.Mailer)
	apiGroup.POST("/auth/register", authHandler.Register)
	apiGroup.POST("/auth/login", authHandler.Login)
	apiGroup.GET("/auth/me", requireAuth, authHandler.Me)
	apiGroup.POST("/auth/verify-email", authHandler.VerifyEmail)
	apiGroup.POST("/auth/resend-verification", authHandler.ResendVerification)

	postHandler := handlers.NewPostHandler(deps.DB, deps.Images)
	apiGroup.GET("/posts", optionalAuth, postHandler.List)
	apiGroup.GET("/posts/:id", optionalAuth, postHandler.Get)
	apiGroup.POST("/posts", requireAuth, postHandler.Create)
	apiGroup.PUT("/posts/:id", requireAuth, postHandler.Update)
	apiGroup.PATCH("/posts/:id/publish", requireAuth, postHandler.Publish)
	apiGroup.DELETE("/posts/:id", requireAuth, postHandler.Delete)

	promptHandler := handlers.NewPromptHandler(deps.DB)
	apiGroup.GET("/prompts", requireAuth, promptHandler.List)
	apiGroup.GET("/prompts/my-prompts", requireAuth, promptHandler.List)
	apiGroup.GET("/prompts/:id", requireAuth, promptHandler.Get)
	apiGroup.POST("/prompts", requireAuth, promptHandler.Create)
	apiGroup.PUT("/prompts/:id", requireAuth, promptHandler.Update)
	apiGroup.DELETE("/prompts/:id", requireAuth, promptHandler.Delete)

	publicHandler := handlers.NewPublicHandler(deps.DB)
	apiGroup.GET("/public/users/:username/posts", publicHandler.ListPosts)
	apiGroup.GET("/public/users/:username/posts/:id", publicHandler.GetPost)

	aiBlogHandler := handlers.NewAIBlogHandler(deps.DB, deps.Generator, deps.Ledger, deps.Images, deps.Limiter, deps.OpenAI, deps.Generation)
	apiGroup.POST("/ai-blog/generate", requireAuth, aiBlogHandler.Generate)
	apiGroup.GET("/ai-blog/status", aiBlogHandler.Status)
	apiGroup.GET("/ai-blog/usage", requireAuth, aiBlogHandler.Usage)
	apiGroup.GET("/ai-blog/prompts", requireAuth, promptHandler.List)
}

// authMiddleware validates user JWTs and loads the caller identity.
func authMiddleware(jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, errAuth := claimsFromRequest(c, jwtCfg)
		if errAuth != "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errAuth})
			return
		}
		setIdentity(c, claims)
		c.Next()
	}
}

// optionalAuthMiddleware loads the caller identity when a valid token is
// present and stays silent otherwise.
func optionalAuthMiddleware(jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, errAuth := claimsFromRequest(c, jwtCfg); errAuth == "" {
			setIdentity(c, claims)
		}
		c.Next()
	}
}

func claimsFromRequest(c *gin.Context, jwtCfg config.JWTConfig) (*security.UserClaims, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, "missing authorization header"
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader {
		return nil, "invalid authorization format"
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, "empty token"
	}

	claims, errJWT := security.ParseUserToken(jwtCfg.Secret, token)
	if errJWT != nil {
		return nil, "invalid token"
	}
	return claims, ""
}

func setIdentity(c *gin.Context, claims *security.UserClaims) {
	c.Set("userID", claims.UserID)
	c.Set("username", claims.Username)
	c.Set("email", claims.Email)
}
