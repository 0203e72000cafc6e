package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Cachi0001/Biz-sub002/pkg/config"
	"github.com/Cachi0001/Biz-sub002/pkg/inventory"
	"github.com/Cachi0001/Biz-sub002/pkg/logger"
	"github.com/Cachi0001/Biz-sub002/pkg/pg"
	"github.com/Cachi0001/Biz-sub002/pkg/plan"
	redisconn "github.com/Cachi0001/Biz-sub002/pkg/redis"
	"github.com/Cachi0001/Biz-sub002/pkg/subscription"
	"github.com/Cachi0001/Biz-sub002/pkg/usage"
	"github.com/Cachi0001/Biz-sub002/svc/invoice"
	"github.com/Cachi0001/Biz-sub002/svc/reconcile"
	"github.com/Cachi0001/Biz-sub002/svc/revenue"
	salessvc "github.com/Cachi0001/Biz-sub002/svc/sales"
)

type appConfig struct {
	Environment string `env:"APP_ENV" envDefault:"development"`

	// Optional YAML plan catalog; the built-in catalog is used when empty.
	PlanCatalogPath string `env:"PLAN_CATALOG_PATH"`

	Schedule string        `env:"RECONCILE_SCHEDULE" envDefault:"@every 1h"`
	Lookback time.Duration `env:"RECONCILE_LOOKBACK" envDefault:"24h"`
	LockKey  string        `env:"RECONCILE_LOCK_KEY" envDefault:"reconcile:sweep"`
	LockTTL  time.Duration `env:"RECONCILE_LOCK_TTL" envDefault:"10m"`
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(logger.WithEnvironment(cfg.Environment, "reconciler"))
	logger.SetAsDefault(log)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("reconciler failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var pgCfg pg.Config
	config.MustLoad(&pgCfg)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return err
	}

	var redisCfg redisconn.Config
	config.MustLoad(&redisCfg)

	redisClient, err := redisconn.Connect(ctx, redisCfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	catalog, err := loadCatalog(ctx, cfg.PlanCatalogPath)
	if err != nil {
		return err
	}

	job := buildJob(pool, catalog, cfg, redisClient, log)

	if err := job.Start(); err != nil {
		return err
	}
	log.Info("reconciler started", "schedule", cfg.Schedule, "lookback", cfg.Lookback)

	<-ctx.Done()
	log.Info("shutting down")
	job.Stop()
	return nil
}

func loadCatalog(ctx context.Context, path string) (plan.Catalog, error) {
	src := plan.NewInMemSource(plan.Default())
	if path != "" {
		src = plan.NewFileSource(path)
	}
	return plan.LoadCatalog(ctx, src)
}

func buildJob(pool *pgxpool.Pool, catalog plan.Catalog, cfg appConfig, redisClient *goredis.Client, log *slog.Logger) *reconcile.Job {
	accounts := subscription.NewPGStore(pool)
	products := inventory.NewPGStore(pool)
	invoices := invoice.NewPGStore(pool)
	sales := salessvc.NewPGStore(pool)
	recorder := revenue.NewPGStore(pool)

	resolver := func(ctx context.Context, accountID uuid.UUID) (usage.AccountInfo, error) {
		acc, err := accounts.Get(ctx, accountID)
		if err != nil {
			return usage.AccountInfo{}, err
		}
		return usage.AccountInfo{Plan: acc.CurrentPlan(), PeriodAnchor: acc.PeriodAnchor()}, nil
	}

	ledger := usage.NewLedger(usage.NewPGStore(pool), catalog, resolver,
		usage.WithLogger(log),
		usage.WithRecounter(plan.FeatureInvoices, invoices.CountCreatedInPeriod),
		usage.WithRecounter(plan.FeatureSales, sales.CountCreatedInPeriod),
		usage.WithRecounter(plan.FeatureProducts, products.CountCreatedInPeriod),
	)

	invoiceSvc := invoice.NewService(invoices, products, ledger, recorder,
		invoice.WithLogger(log))

	lock := redisconn.NewLock(redisClient, cfg.LockKey, cfg.LockTTL)

	return reconcile.NewJob(accounts, ledger, invoiceSvc, lock,
		reconcile.WithLogger(log),
		reconcile.WithSchedule(cfg.Schedule),
		reconcile.WithLookback(cfg.Lookback),
	)
}
