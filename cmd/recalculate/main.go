// Command recalculate runs the batch jobs once, outside the server.
//
//	recalculate -all               rebuild the whole score cache
//	recalculate -user <uuid>       recompute one user's pool
//	recalculate -learn -all        learn taste vectors, then rebuild
//	recalculate -all -dry-run      score into memory and print the bands
//	recalculate -resolve <event>   re-derive an event's match results
//	recalculate -token <uuid> -role admin   print an access token
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/gdugdh24/speeddate-backend/internal/config"
	"github.com/gdugdh24/speeddate-backend/internal/domain"
	"github.com/gdugdh24/speeddate-backend/internal/infrastructure/container"
	"github.com/gdugdh24/speeddate-backend/internal/infrastructure/logger"
	"github.com/gdugdh24/speeddate-backend/internal/usecase/auth"
)

func main() {
	var (
		all     bool
		learn   bool
		userArg string
		event   string
		tokenID string
		role    string
		dryRun  bool
	)
	flag.BoolVar(&all, "all", false, "clear the cache and recompute every active user")
	flag.BoolVar(&learn, "learn", false, "run taste learning first")
	flag.StringVar(&userArg, "user", "", "recompute a single user's pool")
	flag.StringVar(&event, "resolve", "", "re-resolve match results for an event")
	flag.StringVar(&tokenID, "token", "", "issue an access token for this user id and exit")
	flag.StringVar(&role, "role", auth.RoleMember, "role for -token")
	flag.BoolVar(&dryRun, "dry-run", false, "score into memory; leave the stored cache untouched")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	if tokenID != "" {
		id, err := uuid.Parse(tokenID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -token: %v\n", err)
			os.Exit(2)
		}
		tok, expiresAt, err := auth.NewTokenUseCase(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiryMin).Issue(id, role)
		if err != nil {
			fmt.Fprintf(os.Stderr, "issue token: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s\n# expires %s\n", tok, expiresAt.UTC().Format("2006-01-02 15:04 MST"))
		return
	}

	if !all && userArg == "" && event == "" && !learn {
		flag.Usage()
		os.Exit(2)
	}
	if all && userArg != "" {
		fmt.Fprintln(os.Stderr, "-all and -user are mutually exclusive")
		os.Exit(2)
	}
	if dryRun && (learn || event != "") {
		fmt.Fprintln(os.Stderr, "-dry-run only applies to -all and -user")
		os.Exit(2)
	}
	userID, eventID := parseID("user", userArg), parseID("resolve", event)

	log, err := logger.New(cfg.Server.Env, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := container.NewBatchContainer(ctx, cfg, log, dryRun)
	if err != nil {
		log.Fatal("Failed to initialize", "error", err)
	}
	defer func() {
		_ = app.Close()
	}()
	uc := app.UseCases

	failed := false
	if learn {
		stats, err := uc.Learner.Run(ctx)
		if err != nil {
			log.Error("Taste learning finished with errors", "error", err)
			failed = true
		}
		fmt.Printf("taste: raters=%d written=%d skipped=%d invalidated=%d\n",
			stats.Raters, stats.Written, stats.Skipped, stats.Invalidated)
	}

	switch {
	case all:
		n, err := uc.Compatibility.RecalculateAll(ctx)
		if err != nil {
			log.Error("Full recalculation finished with errors", "error", err)
			failed = true
		}
		fmt.Printf("pairs: %d\n", n)
	case userID != uuid.Nil:
		n, err := uc.Compatibility.RecalculateUser(ctx, userID)
		if err != nil {
			log.Error("Recalculation failed", "user_id", userID, "error", err)
			failed = true
		}
		fmt.Printf("pairs: %d\n", n)
	}

	if app.DryRun != nil {
		printBands(os.Stdout, app.DryRun.Scores())
	}

	if eventID != uuid.Nil {
		n, err := uc.MatchChoice.ResolveEvent(ctx, eventID)
		if err != nil {
			log.Error("Event resolution failed", "event_id", eventID, "error", err)
			failed = true
		}
		fmt.Printf("resolved pairs: %d\n", n)
	}

	if failed {
		stop()
		_ = app.Close()
		os.Exit(1)
	}
}

// printBands summarises a dry run by final-score band.
func printBands(w io.Writer, scores []domain.CompatibilityScore) {
	counts := make(map[domain.Band]int)
	for _, sc := range scores {
		counts[domain.BandFor(sc.FinalScore)]++
	}
	for _, b := range []domain.Band{
		domain.BandVeryStrong, domain.BandStrong, domain.BandModerate, domain.BandWeak, domain.BandMismatch,
	} {
		fmt.Fprintf(w, "  %-12s %d\n", b, counts[b])
	}
}

// parseID exits with usage status on a malformed id; empty yields uuid.Nil.
func parseID(name, raw string) uuid.UUID {
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -%s: %v\n", name, err)
		os.Exit(2)
	}
	return id
}
