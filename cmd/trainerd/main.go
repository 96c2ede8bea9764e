package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	api "github.com/mind-engage/mindengage-trainer/internal/api/http"
	auth "github.com/mind-engage/mindengage-trainer/internal/auth/middleware"
	"github.com/mind-engage/mindengage-trainer/internal/config"
	"github.com/mind-engage/mindengage-trainer/internal/db"
	"github.com/mind-engage/mindengage-trainer/internal/history"
	"github.com/mind-engage/mindengage-trainer/internal/logger"
	"github.com/mind-engage/mindengage-trainer/internal/quiz"
	"github.com/mind-engage/mindengage-trainer/internal/rbac"
	"github.com/mind-engage/mindengage-trainer/internal/session"
	"github.com/mind-engage/mindengage-trainer/internal/transfer"
)

const usage = `usage: trainerd [serve | import FILE | export FILE]

  serve          run the HTTP API (default)
  import FILE    load questions from a .json or .yaml file
  export FILE    write all active questions to a .json or .yaml file

Configuration is read from the environment (MODE, HTTP_ADDR, DB_DRIVER, DB_DSN, ...).`

func main() {
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	cfg := config.FromEnv()
	log, err := logger.New(string(cfg.Mode))
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, flag.Args()); err != nil {
		log.Error("trainerd failed", "error", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *logger.Logger, args []string) error {
	cmd := "serve"
	if len(args) > 0 {
		cmd = args[0]
	}

	driver, err := db.ParseDriver(cfg.DBDriver)
	if err != nil {
		return err
	}
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	dbh, err := db.Open(openCtx, driver, cfg.DBDSN)
	cancel()
	if err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	defer dbh.Close()

	store := quiz.NewSQLStore(dbh)
	svc := quiz.NewService(store, quiz.WithLogger(log))
	tr := transfer.New(store, svc, log)

	switch cmd {
	case "serve":
		return serve(ctx, cfg, log, dbh, svc, tr)
	case "import", "export":
		if len(args) != 2 {
			flag.Usage()
			return fmt.Errorf("%s needs a file argument", cmd)
		}
		if cmd == "import" {
			return importFile(ctx, tr, log, args[1])
		}
		return exportFile(ctx, tr, log, args[1])
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func serve(ctx context.Context, cfg config.Config, log *logger.Logger, dbh *sql.DB, svc *quiz.Service, tr *transfer.Service) error {
	reg := session.NewRegistry(func() *quiz.Selector {
		return svc.NewSelector(quiz.NewRand())
	}, cfg.SessionIdleTimeout, log)

	var authSvc *auth.AuthService
	if cfg.EnableAuth {
		authSvc = auth.NewAuthService(cfg.HMACSecret,
			auth.Account{Username: cfg.AdminUser, PassHash: cfg.AdminPassHash, Role: rbac.RoleEditor},
			auth.Account{Username: cfg.LearnerUser, PassHash: cfg.LearnerPassHash, Role: rbac.RoleLearner},
		)
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	api.Mount(r, api.Deps{
		Quiz:     svc,
		Sessions: reg,
		Transfer: tr,
		History:  history.NewRepo(dbh),
		Log:      log,
		Auth:     authSvc,
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", "addr", cfg.HTTPAddr, "mode", string(cfg.Mode), "db", cfg.DBDriver, "auth", cfg.EnableAuth)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if cfg.SessionIdleTimeout > 0 {
		g.Go(func() error {
			t := time.NewTicker(cfg.SessionIdleTimeout / 4)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-t.C:
					reg.Sweep()
				}
			}
		})
	}
	return g.Wait()
}

func importFile(ctx context.Context, tr *transfer.Service, log *logger.Logger, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	rep, err := tr.Import(ctx, f, transfer.FormatFromPath(path))
	if err != nil {
		return err
	}
	log.Info("imported", "file", path, "imported", rep.Imported, "failed", len(rep.Failures))
	if len(rep.Failures) > 0 {
		return fmt.Errorf("%d of %d records rejected", len(rep.Failures), rep.Imported+len(rep.Failures))
	}
	return nil
}

func exportFile(ctx context.Context, tr *transfer.Service, log *logger.Logger, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	n, err := tr.Export(ctx, f, transfer.FormatFromPath(path))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	log.Info("exported", "file", path, "count", n)
	return nil
}
