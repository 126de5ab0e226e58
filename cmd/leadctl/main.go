// Command leadctl performs maintenance tasks against the configured lead store.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/V4T54L/lead-intake/internal/adapter/repository"
	redisrepo "github.com/V4T54L/lead-intake/internal/adapter/repository/redis"
	"github.com/V4T54L/lead-intake/internal/adapter/repository/seed"
	"github.com/V4T54L/lead-intake/internal/domain"
	"github.com/V4T54L/lead-intake/internal/pkg/auth"
	"github.com/V4T54L/lead-intake/internal/pkg/config"
	"github.com/V4T54L/lead-intake/internal/pkg/logger"
	"github.com/V4T54L/lead-intake/internal/usecase"
)

const usage = `usage: leadctl <command> [flags]

commands:
  reset    restore the seed collection
  token    mint an admin JWT
  list     print a filtered page of leads as JSON
  events   print the most recent lead events as JSON
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if err := run(ctx, cfg, log, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		log.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, args := args[0], args[1:]
	switch cmd {
	case "reset":
		return runReset(ctx, cfg, log, args, out)
	case "token":
		return runToken(cfg, args, out)
	case "list":
		return runList(ctx, cfg, log, args, out)
	case "events":
		return runEvents(ctx, cfg, log, args, out)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func runReset(ctx context.Context, cfg *config.Config, log *slog.Logger, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	seedFile := fs.String("seed", cfg.SeedFile, "seed file to restore (embedded seed when empty)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	leads, err := seed.Load(*seedFile)
	if err != nil {
		return err
	}
	store, closeStore, err := repository.Open(ctx, cfg, nil, leads, log)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := usecase.NewLeadCollection(store, nil, nil, log).Reset(ctx, leads); err != nil {
		return err
	}
	fmt.Fprintf(out, "restored %d leads into %s store\n", len(leads), cfg.StoreDriver)
	return nil
}

func runToken(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	userID := fs.String("user", "admin", "user id claim")
	email := fs.String("email", "admin@example.com", "email claim")
	role := fs.String("role", auth.RoleAdmin, "role claim")
	ttl := fs.Duration("ttl", cfg.JWTTTL, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	token, err := auth.GenerateToken(*userID, *email, *role, cfg.JWTSecret, *ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, token)
	return nil
}

func runList(ctx context.Context, cfg *config.Config, log *slog.Logger, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	params := domain.ListParams{}
	fs.StringVar(&params.Search, "search", "", "case-insensitive name, email or country match")
	fs.StringVar(&params.Status, "status", "", "exact status filter")
	fs.IntVar(&params.Page, "page", domain.DefaultPage, "page number")
	fs.IntVar(&params.Limit, "limit", domain.DefaultLimit, "page size")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	store, closeStore, err := repository.Open(ctx, cfg, nil, seed.Default(), log)
	if err != nil {
		return err
	}
	defer closeStore()

	leads, err := store.LoadAll(ctx)
	if err != nil {
		return err
	}
	page, err := usecase.FilterLeads(leads, params)
	if err != nil {
		return err
	}
	return writeJSON(out, page)
}

func runEvents(ctx context.Context, cfg *config.Config, log *slog.Logger, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("events", flag.ContinueOnError)
	count := fs.Int64("count", 20, "number of events to print")
	stream := fs.String("stream", cfg.EventsStream, "event stream key")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := redisrepo.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	defer client.Close()

	events, err := usecase.NewEventLogUseCase(redisrepo.NewEventReader(client, *stream, log)).Recent(ctx, *count)
	if err != nil {
		return err
	}
	return writeJSON(out, events)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
