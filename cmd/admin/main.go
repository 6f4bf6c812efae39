package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"dailyspend/internal/domain/item"
	"dailyspend/internal/domain/report"
	"dailyspend/internal/infrastructure/crypto"
	"dailyspend/internal/infrastructure/postgres"
	"dailyspend/internal/shared/config"
)

const usage = `Admin CLI - Management commands for the daily spend API

Usage:
  admin <command> [options]

Commands:
  backfill-reports   Recompute daily reports over a range of past days
  link-item          Store a provider credential for a user, encrypted

Examples:
  # Recompute the last 30 days for one user
  admin backfill-reports --user-id=1 --days=30

  # Recompute for several users
  admin backfill-reports --user-id=1,2,3 --days=7

  # Recompute for every syncable user
  admin backfill-reports --all --days=30

  # Link an item after a manual credential exchange
  admin link-item --user-id=1 --item-id=item-abc --institution="Big Bank" --token=access-xyz
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "backfill-reports":
		runBackfillReports(os.Args[2:])
	case "link-item":
		runLinkItem(os.Args[2:])
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		fmt.Print(usage)
		os.Exit(1)
	}
}

func runBackfillReports(args []string) {
	fs := flag.NewFlagSet("backfill-reports", flag.ExitOnError)

	userIDStr := fs.String("user-id", "", "User ID(s) to backfill (comma-separated for multiple)")
	allUsers := fs.Bool("all", false, "Backfill all users with an account selection")
	days := fs.Int("days", 30, "Number of past local days to recompute, including today")
	timeoutStr := fs.String("timeout", "30m", "Timeout for the operation (e.g., 5m, 1h)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *userIDStr == "" && !*allUsers {
		fmt.Println("Error: must specify --user-id or --all")
		fs.Usage()
		os.Exit(1)
	}
	if *days < 1 {
		log.Fatalf("Invalid --days value %d", *days)
	}

	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		log.Fatalf("Invalid timeout format: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to database")

	userRepo := postgres.NewUserRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)
	reportRepo := postgres.NewReportRepository(db)
	selectionRepo := postgres.NewSelectionRepository(db)
	reportService := report.NewService(userRepo, transactionRepo, reportRepo, selectionRepo)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var userIDs []int64
	if *allUsers {
		users, err := userRepo.ListWithSelection(ctx)
		if err != nil {
			log.Fatalf("Failed to list users: %v", err)
		}
		for _, u := range users {
			userIDs = append(userIDs, u.ID)
		}
		log.Printf("Found %d user(s) with an account selection", len(userIDs))
	} else {
		userIDs, err = parseUserIDs(*userIDStr)
		if err != nil {
			log.Fatalf("%v", err)
		}
	}

	if len(userIDs) == 0 {
		log.Println("No users to process")
		return
	}

	log.Printf("Backfilling %d day(s) for %d user(s)", *days, len(userIDs))
	startTime := time.Now()

	for _, userID := range userIDs {
		u, err := userRepo.GetByID(ctx, userID)
		if err != nil {
			log.Printf("User %d: failed to load, skipping: %v", userID, err)
			continue
		}
		loc := report.Location(u)
		base := time.Now().In(loc)

		recomputed := 0
		for i := 0; i < *days; i++ {
			dateKey := base.AddDate(0, 0, -i).Format("2006-01-02")
			if _, err := reportService.ComputeReport(ctx, userID, dateKey); err != nil {
				log.Printf("User %d: failed to recompute %s: %v", userID, dateKey, err)
				continue
			}
			recomputed++
		}
		log.Printf("User %d: recomputed %d of %d day(s)", userID, recomputed, *days)
	}

	log.Printf("Backfill completed in %v", time.Since(startTime))
}

func runLinkItem(args []string) {
	fs := flag.NewFlagSet("link-item", flag.ExitOnError)

	userID := fs.Int64("user-id", 0, "Owner of the item")
	itemID := fs.String("item-id", "", "Provider item ID")
	institution := fs.String("institution", "", "Institution display name")
	token := fs.String("token", "", "Provider access token, stored encrypted")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *userID <= 0 || *itemID == "" || *token == "" {
		fmt.Println("Error: --user-id, --item-id and --token are required")
		fs.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		log.Fatalf("Failed to create encryptor: %v", err)
	}

	encrypted, err := encryptor.Encrypt(*token)
	if err != nil {
		log.Fatalf("Failed to encrypt credential: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	it := &item.LinkedItem{
		ID:               *itemID,
		UserID:           *userID,
		InstitutionName:  *institution,
		AccessCredential: encrypted,
		Status:           item.StatusActive,
	}
	if err := postgres.NewItemRepository(db).Upsert(ctx, it); err != nil {
		log.Fatalf("Failed to store item: %v", err)
	}

	log.Printf("Linked item %s for user %d", it.ID, it.UserID)
}

func parseUserIDs(s string) ([]int64, error) {
	var ids []int64
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user ID %q: %w", p, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
