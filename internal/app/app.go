package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/promptpress/promptpress/internal/cleanup"
	"github.com/promptpress/promptpress/internal/config"
	"github.com/promptpress/promptpress/internal/db"
	"github.com/promptpress/promptpress/internal/generate"
	"github.com/promptpress/promptpress/internal/http/api"
	"github.com/promptpress/promptpress/internal/images"
	"github.com/promptpress/promptpress/internal/mail"
	"github.com/promptpress/promptpress/internal/openai"
	"github.com/promptpress/promptpress/internal/ratelimit"
	"github.com/promptpress/promptpress/internal/usage"

	log "github.com/sirupsen/logrus"
)

// ConfigExists reports whether a config file is present at the path.
func ConfigExists(configPath string) bool {
	info, err := os.Stat(configPath)
	return err == nil && !info.IsDir()
}

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	return db.Migrate(conn)
}

// RunServer boots the blog platform API with database-backed components.
func RunServer(ctx context.Context, cfg config.AppConfig, port int) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	jwtCfg, _ := config.LoadJWTConfig(configPath)
	if jwtCfg.Secret == "" {
		return fmt.Errorf("app: jwt secret is required (set jwt.secret or %s)", config.EnvJWTSecret)
	}

	openaiCfg, _ := config.LoadOpenAIConfig(configPath)
	genCfg, _ := config.LoadGenerationConfig(configPath)
	imageCfg, _ := config.LoadImageConfig(configPath)
	smtpCfg, _ := config.LoadSMTPConfig(configPath)
	rateCfg, _ := config.LoadRateLimitConfig(configPath)

	if !openaiCfg.Configured() {
		log.Warn("openai api key not configured, blog generation disabled")
	}

	imageStorage, errImages := images.NewStorage(imageCfg)
	if errImages != nil {
		return errImages
	}

	client := openai.NewClient(openaiCfg)
	generator := generate.NewGenerator(client, genCfg)
	ledger := usage.NewLedger(conn, genCfg)
	mailer := mail.NewMailer(smtpCfg)
	limiter := ratelimit.NewManager(rateCfg, nil, nil)

	runner := cleanup.NewRunner(conn, ledger)
	runner.Start(ctx)

	engine := gin.New()
	engine.Use(gin.Recovery())

	api.RegisterRoutes(engine, api.Deps{
		DB:         conn,
		JWT:        jwtCfg,
		OpenAI:     openaiCfg,
		Generation: genCfg,
		Generator:  generator,
		Ledger:     ledger,
		Images:     imageStorage,
		Mailer:     mailer,
		Limiter:    limiter,
	})

	addr := fmt.Sprintf(":%d", port)
	log.WithField("addr", addr).Info("starting server")
	return engine.Run(addr)
}
