package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/threatflux/datahub/internal/api"
	"github.com/threatflux/datahub/internal/api/handlers"
	"github.com/threatflux/datahub/internal/api/stream"
	"github.com/threatflux/datahub/internal/auth/jwt"
	"github.com/threatflux/datahub/internal/auth/user"
	"github.com/threatflux/datahub/internal/config"
	"github.com/threatflux/datahub/internal/database"
	"github.com/threatflux/datahub/internal/datahub/admin"
	"github.com/threatflux/datahub/internal/datahub/sample"
	"github.com/threatflux/datahub/internal/health"
	"github.com/threatflux/datahub/internal/metrics"
	"github.com/threatflux/datahub/internal/middleware/auth"
	loggerPkg "github.com/threatflux/datahub/pkg/logger"
)

// Build information.
var (
	version   string = "dev"
	commit    string = "none"
	buildDate string = "unknown"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("DataHub %s (commit %s) built on %s\n", version, commit, buildDate)
		os.Exit(0)
	}

	cfg, err := initConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.Info("Starting DataHub",
		loggerPkg.String("version", version),
		loggerPkg.String("commit", commit),
		loggerPkg.String("buildDate", buildDate))

	if err := os.MkdirAll(cfg.DataHub.BackupDir, 0o755); err != nil {
		log.Fatal("Failed to create backup directory", loggerPkg.Error(err))
	}

	ctx := context.Background()

	components, err := initComponents(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to initialize components", loggerPkg.Error(err))
		return
	}

	if len(cfg.Auth.DefaultUsers) > 0 {
		log.Info("Initializing default users from config",
			loggerPkg.Int("count", len(cfg.Auth.DefaultUsers)))

		if err := initDefaultUsers(ctx, components.UserService, cfg.Auth.DefaultUsers); err != nil {
			log.Error("Failed to initialize default users", loggerPkg.Error(err))
			return
		}
	}

	registerDestinations(components.Hub, cfg.DataHub.Destinations, components.MetricsCollector, log)

	healthChecker := health.NewChecker(version, buildDate)

	server := api.NewServer(cfg.Server, log)
	setupRoutes(server, components, healthChecker, log)

	stopCh := setupSignalHandler(server, log)

	log.Info("Starting HTTP server",
		loggerPkg.String("host", cfg.Server.Host),
		loggerPkg.Int("port", cfg.Server.Port))

	if err := server.Start(); err != nil {
		log.Fatal("Failed to start server", loggerPkg.Error(err))
	}

	<-stopCh
	log.Info("Shutting down gracefully")
}

func initConfig(configPath string) (*config.Config, error) {
	loader := config.NewYAMLLoader(configPath)

	cfg := &config.Config{}
	if err := loader.Load(cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func initLogger(cfg config.LoggingConfig) (loggerPkg.Logger, error) {
	log, err := loggerPkg.NewZapLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return log, nil
}

// ComponentDependencies holds the wired-up application components.
type ComponentDependencies struct {
	Hub *admin.Hub

	UserService  user.Service
	JWTGenerator jwt.Generator
	JWTValidator jwt.Validator

	JWTMiddleware  *auth.JWTMiddleware
	RoleMiddleware *auth.RoleMiddleware

	AuthHandler *handlers.AuthHandler

	MetricsCollector metrics.Collector
}

func initComponents(ctx context.Context, cfg *config.Config, log loggerPkg.Logger) (*ComponentDependencies, error) {
	components := &ComponentDependencies{}

	backupStore := admin.NewFileBackupStore(cfg.DataHub.BackupDir)
	components.Hub = admin.New(backupStore)

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("initializing database connection: %w", err)
	}

	components.UserService, err = user.NewGormUserService(db, log)
	if err != nil {
		return nil, fmt.Errorf("initializing user service: %w", err)
	}
	components.JWTGenerator = jwt.NewJWTGenerator(cfg.Auth)
	components.JWTValidator = jwt.NewJWTValidator(cfg.Auth)

	components.JWTMiddleware = auth.NewJWTMiddleware(components.JWTValidator, components.UserService, log)
	components.RoleMiddleware = auth.NewRoleMiddleware(components.UserService, log)

	components.AuthHandler = handlers.NewAuthHandler(components.UserService, components.JWTGenerator, log, cfg.Auth.TokenExpiration)

	metricsImpl := "noop"
	if cfg.Features.Metrics {
		metricsImpl = "prometheus"
	}
	components.MetricsCollector = metrics.NewCollector(metricsImpl)

	return components, nil
}

// registerDestinations wires the destinations named in configuration into
// the Hub's registry, logging each delivery through the metrics collector.
func registerDestinations(hub *admin.Hub, destinations []config.DestinationConfig, collector metrics.Collector, log loggerPkg.Logger) {
	for _, d := range destinations {
		name := d.Name
		if _, err := hub.AddDestination(name, func(dest, obsPath string, s sample.Sample) {
			collector.RecordDestinationDelivery(dest)
			log.Info("destination delivery",
				loggerPkg.String("destination", dest),
				loggerPkg.String("observation", obsPath))
		}); err != nil {
			log.Warn("Failed to register destination", loggerPkg.String("name", name), loggerPkg.Error(err))
		}
	}
}

func setupRoutes(server *api.Server, components *ComponentDependencies, healthChecker *health.Checker, log loggerPkg.Logger) {
	dataHubHandler := handlers.NewDataHubHandler(components.Hub, components.MetricsCollector, log)
	healthHandler := handlers.NewHealthHandler(healthChecker, log)
	metricsHandler := handlers.NewMetricsHandler(components.MetricsCollector, log)
	streamHandler := stream.NewHandler(components.Hub, log)

	routerConfig := api.DefaultRouterConfig()

	api.SetupRouter(
		server.Router(),
		log,
		routerConfig,
		components.JWTMiddleware,
		components.RoleMiddleware,
		components.AuthHandler,
		dataHubHandler,
		healthHandler,
		streamHandler,
	)

	metricsHandler.RegisterHandler(server.Router())
}

func initDefaultUsers(ctx context.Context, userService user.Service, defaultUsers []config.DefaultUser) error {
	userConfigs := make([]user.DefaultUserConfig, len(defaultUsers))
	for i, u := range defaultUsers {
		userConfigs[i] = user.DefaultUserConfig{
			Username: u.Username,
			Password: u.Password,
			Email:    u.Email,
			Roles:    u.Roles,
		}
	}
	return userService.InitializeDefaultUsers(ctx, userConfigs)
}

func setupSignalHandler(server *api.Server, log loggerPkg.Logger) chan os.Signal {
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		<-stopCh
		log.Info("Received shutdown signal")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Stop(ctx); err != nil {
			log.Error("Error during server shutdown", loggerPkg.Error(err))
		}

		close(stopCh)
	}()

	return stopCh
}
