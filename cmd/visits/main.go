package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/MarawanEldeib/portfolio-website-sub000/internal/config"
	"github.com/MarawanEldeib/portfolio-website-sub000/internal/database"
	"github.com/MarawanEldeib/portfolio-website-sub000/internal/mailer"
	"github.com/MarawanEldeib/portfolio-website-sub000/internal/services"
	"github.com/joho/godotenv"
)

const usage = "expected 'export', 'digest' or 'prune' subcommands"

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	digestCmd := flag.NewFlagSet("digest", flag.ExitOnError)
	digestDate := digestCmd.String("date", "", "day to summarize (YYYY-MM-DD, default yesterday)")
	digestSend := digestCmd.Bool("send", false, "email the digest instead of printing it")
	pruneCmd := flag.NewFlagSet("prune", flag.ExitOnError)
	pruneDays := pruneCmd.Int("days", 0, "drop days older than this many days (default visits.retention_days)")

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := database.OpenVisitStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open visit store: %v", err)
	}
	defer store.Close()

	visits := services.NewVisitService(store, cfg.Location(), cfg.Visits.RetentionDays)
	ctx := context.Background()

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		printJSON(visits.GetAll(ctx))
	case "digest":
		digestCmd.Parse(os.Args[2:])
		doDigest(ctx, cfg, visits, *digestDate, *digestSend)
	case "prune":
		pruneCmd.Parse(os.Args[2:])
		var (
			removed int
			err     error
		)
		if *pruneDays != 0 {
			removed, err = visits.PruneOlderThan(ctx, *pruneDays)
		} else {
			removed, err = visits.Prune(ctx)
		}
		if err != nil {
			log.Fatalf("Prune failed: %v", err)
		}
		log.Printf("Removed %d days", removed)
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

func doDigest(ctx context.Context, cfg *config.Config, visits *services.VisitService, date string, send bool) {
	if date == "" {
		date = visits.Yesterday()
	}

	if !send {
		digest, err := services.ComposeDigest(visits.GetAll(ctx), date, cfg.Digest.TopN)
		if errors.Is(err, services.ErrNoVisits) {
			log.Printf("No visits recorded for %s", date)
			return
		}
		if err != nil {
			log.Fatalf("Digest failed: %v", err)
		}
		printJSON(digest)
		return
	}

	m, err := mailer.New(cfg.Mail)
	if err != nil {
		log.Fatalf("Failed to create mailer: %v", err)
	}

	digestService := services.NewDigestService(visits, m, cfg.Mail.From, cfg.Digest.To, cfg.Digest.TopN)
	digest, err := digestService.SendDigest(ctx, date)
	if errors.Is(err, services.ErrNoVisits) {
		log.Printf("No visits recorded for %s", date)
		return
	}
	if err != nil {
		log.Fatalf("Send failed: %v", err)
	}
	log.Printf("Sent digest for %s (%d visits)", digest.Date, digest.TotalVisits)
}

func printJSON(v interface{}) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		log.Fatalf("Encode failed: %v", err)
	}
}
