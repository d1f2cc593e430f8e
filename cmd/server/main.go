package main

import (
	"context"
	"database/sql"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/django/v3"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	dashboard "github.com/goliatone/go-dashboard"
)

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("dashboard"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg, err := dashboard.LoadConfigFromEnv()
	if err != nil {
		lgr.GetLogger("config").Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := openDatabase(ctx, cfg.DSN)
	if err != nil {
		lgr.GetLogger("persistence").Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := dashboard.NewRepositoryManager(db)
	repo.MustValidate()

	userProvider := dashboard.NewUserProvider(repo.Users()).
		WithLogger(lgr.GetLogger("auth:prv"))

	authenticator := dashboard.NewAuthenticator(userProvider, cfg).
		WithLogger(lgr.GetLogger("auth:authz"))

	httpAuth, err := dashboard.NewHTTPAuthenticator(authenticator, cfg)
	if err != nil {
		lgr.GetLogger("auth:http").Error("failed to build http authenticator", "error", err)
		os.Exit(1)
	}
	httpAuth.WithLogger(lgr.GetLogger("auth:http"))

	if err := seedAdminUser(ctx, repo, lgr.GetLogger("seed")); err != nil {
		lgr.GetLogger("seed").Error("failed to seed admin user", "error", err)
		os.Exit(1)
	}

	views, err := dashboard.GetViewsFS()
	if err != nil {
		lgr.GetLogger("views").Error("failed to load views", "error", err)
		os.Exit(1)
	}
	engine := django.NewFileSystem(http.FS(views), ".html")

	app := fiber.New(fiber.Config{
		Views: engine,
	})

	controller := dashboard.NewAuthController(repo, httpAuth,
		dashboard.WithControllerLogger(lgr.GetLogger("auth:ctrl")),
		dashboard.WithControllerDebug(cfg.Debug),
	)
	dashboard.RegisterAuthRoutes(app, controller)

	go func() {
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			lgr.GetLogger("server").Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	lgr.GetLogger("server").Info("serving", "addr", cfg.HTTPAddr)

	WaitExitSignal()

	if err := app.Shutdown(); err != nil {
		lgr.GetLogger("server").Error("shutdown error", "error", err)
	}
}

func openDatabase(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if err := applyMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// applyMigrations runs the embedded up migrations in lexical order.
func applyMigrations(ctx context.Context, db *bun.DB) error {
	root := "data/sql/migrations"
	migrations := dashboard.GetMigrationsFS()

	entries, err := fs.ReadDir(migrations, root)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		content, err := fs.ReadFile(migrations, root+"/"+name)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "migration failed").
				WithMetadata(map[string]any{"migration": name})
		}
	}

	return nil
}

// seedAdminUser registers a bootstrap admin account when the env vars are
// present. An existing account with the same email is left untouched.
func seedAdminUser(ctx context.Context, repo dashboard.RepositoryManager, logger interface {
	Info(msg string, args ...any)
}) error {
	email := os.Getenv("DASHBOARD_ADMIN_EMAIL")
	password := os.Getenv("DASHBOARD_ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	handler := dashboard.NewRegisterUserHandler(repo)
	err := handler.Execute(ctx, dashboard.RegisterUserMessage{
		Username:  os.Getenv("DASHBOARD_ADMIN_USERNAME"),
		Email:     email,
		Password:  password,
		Role:      string(dashboard.RoleAdmin),
		UseHashid: true,
	})
	if err != nil {
		if dashboard.IsDuplicateUserError(err) {
			logger.Info("admin user already present", "email", email)
			return nil
		}
		return err
	}

	logger.Info("admin user created", "email", email)
	return nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
