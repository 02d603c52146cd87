// cmd/web/main.go
//
// Feleck – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Bootstrap console logger; Vault client when VAULT_ADDR is set.
//
//  2. Load configuration (.env → conf/global.yaml → FELECK_* env), resolving
//     any vault: references.
//
//  3. Start the daily rotating logger (tees to console in a TTY).
//
//  4. Install the CSRF key, register embedded and override form definitions,
//     and compile the configured login variant.
//
//  5. Open the attempt audit DB when a DSN is configured.
//
//  6. Build the router: request ID → logger → recoverer → security headers →
//     HTTPS redirect → request info, then /metrics and the login routes.
//
//  7. Serve until SIGINT/SIGTERM, then drain.
package main

import (
	"context"
	"encoding/base64"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Feleck-Project/feleck-client/components/login"
	"github.com/Feleck-Project/feleck-client/internal/attempt"
	"github.com/Feleck-Project/feleck-client/internal/config"
	"github.com/Feleck-Project/feleck-client/internal/database"
	"github.com/Feleck-Project/feleck-client/internal/form"
	"github.com/Feleck-Project/feleck-client/internal/logger"
	"github.com/Feleck-Project/feleck-client/internal/middleware"
	"github.com/Feleck-Project/feleck-client/internal/requestinfo"
	"github.com/Feleck-Project/feleck-client/internal/server"
	"github.com/Feleck-Project/feleck-client/internal/vault"
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	boot, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("bootstrap logger: %v", err)
	}
	if err := run(ctx, boot.Sugar()); err != nil {
		boot.Sugar().Fatalw("feleck exited", "err", err)
	}
}

func run(ctx context.Context, boot *zap.SugaredLogger) error {
	//
	// ── 1–2.  Secrets and configuration ─────────────────────────────────
	//
	var secrets config.SecretResolver
	if vault.Configured() {
		vc, err := vault.New(ctx, boot)
		if err != nil {
			return err
		}
		secrets = vc
	}
	cfg, err := config.Load(ctx, secrets)
	if err != nil {
		return err
	}

	//
	// ── 3.  Logger ──────────────────────────────────────────────────────
	//
	logOut, err := logger.New(cfg.Paths.Root, runningInTTY(), cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logOut.Sync() }()

	//
	// ── 4.  Forms ───────────────────────────────────────────────────────
	//
	if cfg.Security.CSRFKey != "" {
		key, err := base64.RawURLEncoding.DecodeString(cfg.Security.CSRFKey)
		if err != nil {
			return err
		}
		if err := form.SetSecret(key); err != nil {
			return err
		}
	}
	if err := form.RegisterDefaults(); err != nil {
		return err
	}
	if err := form.RegisterForms([]string{cfg.Paths.Root}); err != nil {
		return err
	}
	schema, err := form.Lookup(cfg.FormID(), cfg.Forms.EnableRules...)
	if err != nil {
		return err
	}
	logOut.Infow("login form ready", "form", schema.ID(), "fields", schema.Fields(), "enabled", cfg.Forms.EnableRules)

	//
	// ── 5.  Attempt audit ───────────────────────────────────────────────
	//
	var rec attempt.Recorder = attempt.Nop{}
	if cfg.Database.DSN != "" {
		db, err := database.Open(ctx, cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		store := attempt.NewStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		rec = store
		logOut.Infow("attempt audit online")
	}

	ri, err := requestinfo.NewResolver(cfg.GeoIP.Path, cfg.HTTP.TrustedProxies)
	if err != nil {
		return err
	}
	defer ri.Close()

	//
	// ── 6.  Router ──────────────────────────────────────────────────────
	//
	lc, err := login.New(schema, rec, func(v form.Values, meta any) {
		l := logOut
		if m, ok := meta.(form.SubmitMeta); ok && m.Ctx != nil {
			l = logger.FromContext(m.Ctx)
		}
		l.Infow("login submitted", "form", schema.ID(), "email", v.Email())
	})
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(logOut))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Security)
	r.Use(middleware.ForceHTTPS(cfg.HTTP.ForceHTTPS))
	r.Use(ri.Middleware)
	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/", lc.Routes())

	//
	// ── 7.  Serve ───────────────────────────────────────────────────────
	//
	return server.Run(ctx, server.New(cfg.HTTP.ListenAddr, r), logOut)
}
