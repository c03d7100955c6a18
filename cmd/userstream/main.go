package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"userstream/internal/config"
	"userstream/internal/domain"
	"userstream/internal/logger"
	"userstream/internal/seed"
	"userstream/internal/store"
	"userstream/internal/stream"
)

func main() {
	configPath := flag.String("config", "", "config file path (default: search standard locations)")
	csvPath := flag.String("csv", "", "CSV seed file (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	window := flag.Int("window", 50, "batch window size")
	pageSize := flag.Int("page", 100, "page size for lazy pagination")
	older := flag.Int("older", 40, "age bound for the concurrent demo query")
	preview := flag.Int("preview", 6, "number of streamed users to print")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	var (
		cfg  *config.Config
		path string
		err  error
	)
	if *configPath != "" {
		cfg, path, err = config.LoadFromPath(*configPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if path != "" {
		log.Printf("Config loaded: %s", path)
	}
	if *csvPath != "" {
		cfg.Seed.CSVPath = *csvPath
	}
	if *dbPath != "" {
		cfg.Store.Driver = config.DriverSQLite
		cfg.Store.Path = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	accessLog := logger.NewStandardLogger(os.Stderr)
	if *verbose {
		accessLog = logger.NewVerboseLogger(os.Stderr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := seed.Ensure(ctx, cfg, accessLog); err != nil {
		log.Fatalf("Failed to seed store: %v", err)
	}

	st, err := store.New(cfg.Store, accessLog)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	if err := run(ctx, st, *window, *pageSize, *older, *preview); err != nil {
		log.Fatalf("Demo failed: %v", err)
	}
}

// run exercises each access path once against the seeded store.
func run(ctx context.Context, st *store.Store, window, pageSize, older, preview int) error {
	total, err := st.CountUsers(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("store holds %d users\n", total)

	// Streaming: first few rows, one at a time.
	cur, err := stream.Users(ctx, st)
	if err != nil {
		return err
	}
	defer cur.Close()
	for i := 0; i < preview && cur.Next(); i++ {
		u := cur.User()
		fmt.Printf("  %s  %s <%s> age %d\n", u.UserID, u.Name, u.Email, u.Age)
	}
	if err := cur.Err(); err != nil {
		return err
	}
	cur.Close()

	// Batching with the adult filter.
	batches, err := stream.Batches(ctx, st, window)
	if err != nil {
		return err
	}
	defer batches.Close()
	var adults int
	for batches.Next() {
		adults += len(stream.FilterAdults(batches.Batch()))
	}
	if err := batches.Err(); err != nil {
		return err
	}
	fmt.Printf("adults (age > %d): %d\n", domain.AdultAge, adults)

	// Lazy pagination.
	pages, err := stream.Pages(ctx, st, pageSize)
	if err != nil {
		return err
	}
	var pageCount int
	for pages.Next() {
		pageCount++
	}
	if err := pages.Err(); err != nil {
		return err
	}
	fmt.Printf("pagination: %d pages of up to %d rows\n", pageCount, pageSize)

	// Streaming aggregation.
	avg, err := stream.AverageAge(ctx, st)
	if err != nil {
		return err
	}
	fmt.Printf("average age: %.2f\n", avg)

	// Concurrent fan-out of two independent reads.
	results, err := st.FetchConcurrently(ctx,
		st.FetchAllUsers,
		func(ctx context.Context) ([]domain.User, error) {
			return st.FetchUsersOlderThan(ctx, older)
		},
	)
	if err != nil {
		return err
	}
	fmt.Printf("concurrent fetch: %d users total, %d older than %d\n",
		len(results[0]), len(results[1]), older)

	// Cached point query, twice: second call is served from memory.
	query := "SELECT user_id, name, email, age FROM user_data WHERE age > ?"
	if _, err := st.FetchCached(ctx, query, older); err != nil {
		return err
	}
	if _, err := st.FetchCached(ctx, query, older); err != nil {
		return err
	}

	return nil
}
