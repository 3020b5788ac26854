package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/storage/postgres"
)

const migrateTimeout = 30 * time.Second

// migrateCommand — разобранные аргументы CLI миграций схемы storefront.
type migrateCommand struct {
	direction string
	steps     int
	dsn       string
}

func parseCommand() migrateCommand {
	var cmd migrateCommand

	flag.StringVar(&cmd.direction, "direction", "up", "migration direction: up|down|status")
	flag.IntVar(&cmd.steps, "steps", 0, "number of migrations to apply/rollback (0=all for up, 1 for down)")
	flag.StringVar(&cmd.dsn, "dsn", "", "PostgreSQL DSN (fallback: STOREFRONT_POSTGRES_DSN)")
	flag.Parse()

	cmd.direction = strings.ToLower(strings.TrimSpace(cmd.direction))
	cmd.dsn = strings.TrimSpace(cmd.dsn)
	if cmd.dsn == "" {
		cmd.dsn = strings.TrimSpace(os.Getenv("STOREFRONT_POSTGRES_DSN"))
	}

	return cmd
}

func main() {
	cmd := parseCommand()
	if cmd.dsn == "" {
		fail("STOREFRONT_POSTGRES_DSN (or -dsn) is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
	defer cancel()

	store, err := postgres.Open(ctx, cmd.dsn)
	if err != nil {
		fail("open postgres store: %v", err)
	}
	defer store.Close()

	if err := cmd.execute(ctx, store); err != nil {
		fail("%v", err)
	}
}

func (c migrateCommand) execute(ctx context.Context, store *postgres.Store) error {
	switch c.direction {
	case "up":
		if err := store.MigrateUp(ctx, c.steps); err != nil {
			return fmt.Errorf("migrate up failed: %w", err)
		}
		return reportStatus(ctx, store, "migrate up ok")
	case "down":
		steps := c.steps
		if steps <= 0 {
			steps = 1
		}
		if err := store.MigrateDown(ctx, steps); err != nil {
			return fmt.Errorf("migrate down failed: %w", err)
		}
		return reportStatus(ctx, store, "migrate down ok")
	case "status":
		return reportStatus(ctx, store, "migration status")
	default:
		return fmt.Errorf("unsupported direction: %s (use up|down|status)", c.direction)
	}
}

func reportStatus(ctx context.Context, store *postgres.Store, label string) error {
	version, count, err := store.MigrationStatus(ctx)
	if err != nil {
		return fmt.Errorf("migration status failed: %w", err)
	}
	fmt.Printf("%s: version=%d applied=%d\n", label, version, count)
	return nil
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
