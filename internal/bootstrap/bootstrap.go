package bootstrap

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/yigit/gradebook/internal/app/controllers"
	"github.com/yigit/gradebook/internal/app/grading"
	appMigrations "github.com/yigit/gradebook/internal/app/migrations"
	appRepos "github.com/yigit/gradebook/internal/app/repositories"
	appRoutes "github.com/yigit/gradebook/internal/app/routes"
	appServices "github.com/yigit/gradebook/internal/app/services"
	"github.com/yigit/gradebook/internal/config"
	"github.com/yigit/gradebook/internal/db"
	appMiddleware "github.com/yigit/gradebook/internal/middleware"
	pkgAuth "github.com/yigit/gradebook/internal/pkg/auth"
	"github.com/yigit/gradebook/internal/pkg/helpers"
	"github.com/yigit/gradebook/internal/pkg/logger"
)

// Storage is an opened transcript repository plus the resources behind it
type Storage struct {
	Repo     appRepos.TranscriptRepository
	Database *db.PostgresDB
}

// Close releases the database pool, if any
func (s *Storage) Close() {
	if s.Database != nil {
		s.Database.Close()
	}
}

// Dependencies holds all the application dependencies
type Dependencies struct {
	TranscriptService    appServices.TranscriptService
	TranscriptController *appControllers.TranscriptController
	ReportController     *appControllers.ReportController
	AuthMiddleware       *appMiddleware.AuthMiddleware
	JWTService           *pkgAuth.JWTService
	Logger               zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	SetupLogger(cfg)

	lgr := log.Logger
	lgr.Debug().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupLogger applies the logging section of cfg to the global logger
func SetupLogger(cfg *config.Config) {
	logger.Configure(logger.Config{
		Level:  logger.ParseLevel(cfg.Logging.Level),
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
		Output: os.Stderr,
	})
}

// NewCalculator builds the calculator for the configured unmapped grade policy
func NewCalculator(cfg *config.Config) (*grading.Calculator, error) {
	policy, err := grading.ParsePolicy(cfg.Grading.UnmappedGradePolicy)
	if err != nil {
		return nil, err
	}
	return grading.NewCalculator(grading.StandardScale(), policy), nil
}

// SetupStorage opens the configured transcript repository. For postgres it
// connects and applies pending migrations. allowMissing lets a CSV transcript
// that does not exist yet start empty.
func SetupStorage(ctx context.Context, cfg *config.Config, lgr zerolog.Logger, allowMissing bool) (*Storage, error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		lgr.Info().Msg("Establishing database connection...")
		database, err := db.NewPostgresDB(ctx, cfg)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to connect to database")
			return nil, err
		}
		lgr.Info().Msg("Database connection successfully established.")

		if _, err := RunMigrations(ctx, cfg, database, lgr); err != nil {
			database.Close()
			return nil, err
		}

		return &Storage{Repo: appRepos.NewPostgresTranscriptRepository(database), Database: database}, nil

	default:
		scale := grading.StandardScale()
		repo, err := appRepos.NewCSVTranscriptRepository(cfg.Storage.CSVPath, allowMissing, scale.PointsOf)
		if err != nil {
			return nil, err
		}
		return &Storage{Repo: repo}, nil
	}
}

// RunMigrations applies the SQL files in the configured migrations directory
func RunMigrations(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (int, error) {
	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return 0, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, lgr)
	applied, err := migrator.MigrateFromDirectory(ctx, migrationsDir)
	if err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return applied, fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Int("applied", applied).Msg("Database migrations successfully applied.")
	return applied, nil
}

// BuildTranscriptService creates the service over repo and loads the transcript
func BuildTranscriptService(ctx context.Context, cfg *config.Config, repo appRepos.TranscriptRepository, lgr zerolog.Logger) (appServices.TranscriptService, error) {
	calc, err := NewCalculator(cfg)
	if err != nil {
		return nil, err
	}

	svc := appServices.NewTranscriptService(
		repo,
		grading.NewAggregator(calc),
		helpers.ParseDuration(cfg.Cache.ReportTTL, 10*time.Minute),
		lgr,
	)
	if err := svc.Load(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

// NewJWTService builds the token service from the auth section
func NewJWTService(cfg *config.Config) (*pkgAuth.JWTService, error) {
	if strings.TrimSpace(cfg.Auth.Secret) == "" {
		return nil, fmt.Errorf("auth secret is required (set auth.secret or AUTH_SECRET)")
	}
	return pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.Auth.Secret,
		TokenExp:    helpers.ParseDuration(cfg.Auth.TokenExpiration, 720*time.Hour),
		TokenIssuer: cfg.Auth.Issuer,
	}), nil
}

// BuildDependencies initializes services, controllers and middleware.
func BuildDependencies(ctx context.Context, cfg *config.Config, repo appRepos.TranscriptRepository, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	var err error
	deps.JWTService, err = NewJWTService(cfg)
	if err != nil {
		return nil, err
	}

	deps.TranscriptService, err = BuildTranscriptService(ctx, cfg, repo, lgr)
	if err != nil {
		return nil, err
	}

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	deps.TranscriptController = appControllers.NewTranscriptController(deps.TranscriptService)
	deps.ReportController = appControllers.NewReportController(deps.TranscriptService)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(lgr))

	appRoutes.SetupRouter(router,
		deps.TranscriptController,
		deps.ReportController,
		deps.AuthMiddleware,
	)

	return router
}
