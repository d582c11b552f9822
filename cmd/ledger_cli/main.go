// Command ledger_cli runs the ledger's maintenance jobs: backfills of derived rows,
// organization-wide reconciliation syncs and schema migrations.
//
//	ledger_cli [--json] <command> [flags]
//
// Backfills default to a dry run; pass --apply to write. Results and logs are
// plain text unless --json is given before the command.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/bbabel1/property-manager-sub016/internal/adapters/buildium"
	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	"github.com/bbabel1/property-manager-sub016/internal/core/services"
	portssvc "github.com/bbabel1/property-manager-sub016/internal/core/ports/services"
	"github.com/bbabel1/property-manager-sub016/internal/dto"
	"github.com/bbabel1/property-manager-sub016/internal/middleware"
	"github.com/bbabel1/property-manager-sub016/internal/platform/config"
	"github.com/bbabel1/property-manager-sub016/internal/repositories/database/pgsql"
	"github.com/bbabel1/property-manager-sub016/pkg/database"
	"github.com/spf13/pflag"
)

var errUsage = errors.New("usage")

type backfillJob func(portssvc.BackfillSvc, context.Context, string, dto.BackfillOptions) (*domain.BackfillSummary, error)

var backfillJobs = map[string]backfillJob{
	"backfill-charges":     portssvc.BackfillSvc.BackfillCharges,
	"backfill-allocations": portssvc.BackfillSvc.BackfillAllocations,
	"backfill-bank-lines":  portssvc.BackfillSvc.BackfillBankLines,
	"backfill-roles":       portssvc.BackfillSvc.BackfillAccountRoles,
}

func main() {
	global := pflag.NewFlagSet("ledger_cli", pflag.ContinueOnError)
	global.SetInterspersed(false)
	jsonOut := global.Bool("json", false, "write logs and results as JSON")
	if err := global.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	logger := newLogger(os.Stderr, *jsonOut)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = middleware.WithLogger(ctx, logger)

	out := printer{w: os.Stdout, json: *jsonOut}
	if err := run(ctx, global.Args(), out, logger); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, pflag.ErrHelp) {
			os.Exit(2)
		}
		logger.Error("Command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newLogger(w io.Writer, jsonOut bool) *slog.Logger {
	if jsonOut {
		return slog.New(slog.NewJSONHandler(w, nil))
	}
	return slog.New(slog.NewTextHandler(w, nil))
}

func usage(w io.Writer) {
	names := []string{"migrate", "sync-reconciliations"}
	for name := range backfillJobs {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "usage: ledger_cli [--json] <command> [flags]")
	fmt.Fprintln(w, "commands:")
	for _, n := range names {
		fmt.Fprintln(w, "  "+n)
	}
}

func run(ctx context.Context, args []string, out printer, logger *slog.Logger) error {
	if len(args) == 0 {
		usage(os.Stderr)
		return errUsage
	}
	command, args := args[0], args[1:]

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	switch command {
	case "migrate":
		return runMigrate(cfg, args, out)
	case "sync-reconciliations":
		return runSync(ctx, cfg, args, out, logger)
	}
	if job, ok := backfillJobs[command]; ok {
		return runBackfill(ctx, cfg, command, job, args, out, logger)
	}
	usage(os.Stderr)
	return fmt.Errorf("%w: unknown command %q", errUsage, command)
}

func runMigrate(cfg *config.Config, args []string, out printer) error {
	fs := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	path := fs.String("path", cfg.MigrationsPath, "migrations source URL")
	if err := fs.Parse(args); err != nil {
		return err
	}
	direction := database.MigrateUp
	if fs.NArg() > 0 {
		direction = database.MigrationDirection(fs.Arg(0))
	}
	if direction != database.MigrateUp && direction != database.MigrateDown {
		return fmt.Errorf("%w: migrate takes up or down, got %q", errUsage, direction)
	}

	changed, err := database.RunMigrations(cfg.DatabaseURL, *path, direction)
	if err != nil {
		return err
	}
	return out.migrate(direction, changed)
}

func runBackfill(ctx context.Context, cfg *config.Config, name string, job backfillJob, args []string, out printer, logger *slog.Logger) error {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	orgID := fs.String("org", "", "organization id (required)")
	apply := fs.Bool("apply", false, "write changes; without it the job only reports")
	limit := fs.Int("limit", 0, "maximum candidates to scan (0 uses the job default)")
	bankID := fs.String("bank-gl-account", "", "bank GL account for balancing lines (backfill-bank-lines)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *orgID == "" {
		return fmt.Errorf("%w: --org is required", errUsage)
	}
	if name == "backfill-bank-lines" && *bankID == "" {
		return fmt.Errorf("%w: --bank-gl-account is required", errUsage)
	}

	container, closeFn, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	logger.Info("Backfill starting", slog.String("job", name), slog.String("org_id", *orgID), slog.Bool("dry_run", !*apply))
	summary, err := job(container.Backfill, ctx, *orgID, dto.BackfillOptions{
		DryRun:          !*apply,
		Limit:           *limit,
		BankGLAccountID: *bankID,
	})
	if summary != nil {
		if perr := out.backfill(summary); perr != nil {
			return perr
		}
	}
	return err
}

func runSync(ctx context.Context, cfg *config.Config, args []string, out printer, logger *slog.Logger) error {
	fs := pflag.NewFlagSet("sync-reconciliations", pflag.ContinueOnError)
	orgID := fs.String("org", "", "organization id (required)")
	includeFinished := fs.Bool("include-finished", false, "also resync finished reconciliations")
	concurrency := fs.Int("concurrency", cfg.SyncConcurrency, "bank accounts synced in parallel")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *orgID == "" {
		return fmt.Errorf("%w: --org is required", errUsage)
	}

	container, closeFn, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	logger.Info("Reconciliation sync starting", slog.String("org_id", *orgID), slog.Int("concurrency", *concurrency))
	summary, err := container.Reconciliation.SyncOrganization(ctx, *orgID, dto.SyncOrganizationOptions{
		IncludeFinished: *includeFinished,
		Concurrency:     *concurrency,
	})
	if err != nil {
		return err
	}
	if err := out.sync(summary); err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d bank account(s) failed to sync", summary.Failed)
	}
	return nil
}

func connect(ctx context.Context, cfg *config.Config) (*portssvc.ServiceContainer, func(), error) {
	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database pool: %w", err)
	}
	container := services.NewServiceContainer(cfg, pgsql.NewRepositoryProvider(pool), buildium.NewClient(cfg.Buildium))
	return container, pool.Close, nil
}
