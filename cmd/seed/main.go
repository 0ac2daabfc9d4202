package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/clinica-platform/apps/api/internal/contactimport"
	"github.com/clinica-platform/apps/api/internal/db"
	gen "github.com/clinica-platform/apps/api/internal/gen/db"
	"github.com/clinica-platform/apps/api/internal/memstore"
)

// seed loads a contact CSV through the same importer the API uses. With
// -dry-run the rows go to an in-memory store and nothing touches Postgres.
func main() {
	_ = godotenv.Load()

	file := flag.String("file", "", "CSV file with contacts")
	origin := flag.String("origem", envOrDefault("SEED_ORIGIN", "Carga inicial"), "origin recorded on new contacts")
	dryRun := flag.Bool("dry-run", false, "parse and count without writing to the database")
	flag.Parse()

	if strings.TrimSpace(*file) == "" {
		log.Fatal("-file is required")
	}
	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("read file: %v", err)
	}

	location, err := time.LoadLocation(envOrDefault("APP_TIMEZONE", "America/Sao_Paulo"))
	if err != nil {
		log.Fatalf("load timezone: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	opts := contactimport.Options{Location: location, Logger: logger}

	var inTx contactimport.TxFunc
	if *dryRun {
		store := memstore.New()
		inTx = func(ctx context.Context, fn func(contactimport.Store) error) error {
			return store.InTx(ctx, func(tx *memstore.Tx) error { return fn(tx) })
		}
	} else {
		databaseURL := os.Getenv("DATABASE_URL")
		if databaseURL == "" {
			log.Fatal("DATABASE_URL is required")
		}
		pool, err := db.Connect(ctx, databaseURL)
		if err != nil {
			log.Fatalf("connect db: %v", err)
		}
		defer pool.Close()

		tx := db.NewTransactor(pool, gen.New(pool))
		inTx = func(ctx context.Context, fn func(contactimport.Store) error) error {
			return tx.InTx(ctx, func(q *gen.Queries) error { return fn(q) })
		}
	}

	result, err := contactimport.NewImporter(inTx, opts).Import(ctx, contactimport.Upload{
		Filename: filepath.Base(*file),
		Origin:   *origin,
		Data:     data,
	})
	if err != nil {
		log.Fatalf("import: %v", err)
	}

	s := result.Summary
	fmt.Printf("total=%d importados=%d atualizados=%d ignorados=%d erros=%d origem=%q\n",
		s.Total, s.Imported, s.Updated, s.Skipped, s.Errored, result.Origin)
	if len(result.UnknownColumns) > 0 {
		fmt.Printf("colunas desconhecidas: %s\n", strings.Join(result.UnknownColumns, ", "))
	}
	for _, line := range s.Log {
		fmt.Println(line)
	}
	if *dryRun {
		fmt.Println("dry run: nothing was written")
	}
}

func envOrDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
