package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jinzhu/copier"
	"github.com/joho/godotenv"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"
	"github.com/tendant/devicegate/pkg/config"
	"github.com/tendant/devicegate/pkg/device"
	gateerrors "github.com/tendant/devicegate/pkg/errors"
	"github.com/tendant/devicegate/pkg/gate"
	"github.com/tendant/devicegate/pkg/token"
)

type Config struct {
	JWT        config.JWTConfig
	DeviceLock config.DeviceLockConfig
	Database   config.DatabaseConfig

	// Server
	AppConfig app.AppConfig
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
	}))
	slog.SetDefault(logger)

	loadEnvFile()

	cfg := Config{}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to read configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.JWT.Validate(); err != nil {
		slog.Error("Invalid JWT configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.DeviceLock.Validate(); err != nil {
		slog.Error("Invalid device lock configuration", "error", err)
		os.Exit(1)
	}

	leeway, _ := cfg.JWT.ParseLeeway()
	storeTimeout, _ := cfg.DeviceLock.ParseStoreTimeout()

	repoConfig := device.RepositoryConfig{DataDir: cfg.DeviceLock.DataDir}
	if isPostgres(cfg.DeviceLock.Persistence) {
		if err := cfg.Database.Validate(); err != nil {
			slog.Error("Invalid database configuration", "error", err)
			os.Exit(1)
		}
		dbConfig := cfg.Database.ToDbConfig()
		pool, err := dbutils.NewDbPool(context.Background(), dbConfig)
		if err != nil {
			slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User)
			os.Exit(1)
		}
		defer pool.Close()
		repoConfig.DB = pool
	}

	repository, err := device.NewBindingRepository(cfg.DeviceLock.Persistence, repoConfig)
	if err != nil {
		slog.Error("Failed to create binding repository", "persistence", cfg.DeviceLock.Persistence, "error", err)
		os.Exit(1)
	}
	if closer, ok := repository.(io.Closer); ok {
		defer closer.Close()
	}
	bindingService := device.NewBindingService(repository, device.WithStoreTimeout(storeTimeout))

	verifier := token.NewJWTVerifier([]byte(cfg.JWT.Secret),
		token.WithIssuer(cfg.JWT.Issuer),
		token.WithAudience(cfg.JWT.Audience),
		token.WithLeeway(leeway),
	)

	gateConfig := gate.Config{}
	if err := copier.Copy(&gateConfig, &cfg.DeviceLock); err != nil {
		slog.Error("Failed to copy device lock config", "error", err)
		os.Exit(1)
	}

	g, err := gate.New(verifier, bindingService, gateConfig)
	if err != nil {
		slog.Error("Failed to create gate", "error", err)
		os.Exit(1)
	}

	slog.Info("Device gate configured",
		"enforce_device_lock", gateConfig.EnforceDeviceLock,
		"persistence", cfg.DeviceLock.Persistence,
		"store_timeout", storeTimeout)

	server := app.DefaultApp()
	setupRoutes(server.R, g, bindingService)

	server.Run()
}

func isPostgres(persistence string) bool {
	return persistence == "postgres" || persistence == "postgresql"
}

func setupRoutes(r *chi.Mux, g *gate.Gate, bindings *device.BindingService) {
	app.RoutesHealthz(r)
	app.RoutesHealthzReady(r)

	r.Group(func(r chi.Router) {
		r.Use(g.Middleware)

		r.Get("/api/me", func(w http.ResponseWriter, r *http.Request) {
			authCtx, _ := gate.FromContext(r.Context())
			render.JSON(w, r, authCtx)
		})

		r.Route("/api/admin/accounts/{accountID}/device", func(r chi.Router) {
			r.Use(gate.RequireRole("admin"))
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				binding, err := bindings.GetBinding(r.Context(), chi.URLParam(r, "accountID"))
				if err != nil {
					renderError(w, r, err)
					return
				}
				render.JSON(w, r, binding)
			})
			r.Delete("/", func(w http.ResponseWriter, r *http.Request) {
				accountID := chi.URLParam(r, "accountID")
				if err := bindings.ResetBinding(r.Context(), accountID); err != nil {
					renderError(w, r, err)
					return
				}
				slog.Info("Device binding reset", "account_id", accountID)
				w.WriteHeader(http.StatusNoContent)
			})
		})
	})
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := gateerrors.MapErrorCodeToHTTPStatus(gateerrors.GetCode(err))
	if gateerrors.IsCode(err, gateerrors.ErrCodeAccountNotFound) {
		status = http.StatusNotFound
	}
	render.Status(r, status)
	render.JSON(w, r, gate.ErrorResponse{Error: err.Error()})
}

// loadEnvFile loads .env from the executable's directory or the working directory
func loadEnvFile() {
	execPath, err := os.Executable()
	if err != nil {
		return
	}

	envFile := filepath.Join(filepath.Dir(execPath), ".env")
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		cwd, _ := os.Getwd()
		envFile = filepath.Join(cwd, ".env")
	}

	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		slog.Debug("No .env file found (using environment variables or defaults)")
		return
	}

	slog.Info("Loading configuration from .env file", "path", envFile)
	if err := godotenv.Load(envFile); err != nil {
		slog.Warn("Failed to load .env file", "error", err)
	}
}
