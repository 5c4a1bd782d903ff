package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"litrecord/internal/config"
)

// ledgerTables are the tables the repositories in this package read and write.
var ledgerTables = []string{"cases", "documents", "pages"}

// NewDB opens the PostgreSQL pool backing the case ledger and refuses to
// return it until the ledger schema is present.
func NewDB(cfg *config.DBConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpen)
	db.SetMaxIdleConns(cfg.MaxIdle)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := CheckSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// CheckSchema reports which ledger tables are missing from the current schema.
func CheckSchema(ctx context.Context, db *sqlx.DB) error {
	var present []string
	err := db.SelectContext(ctx, &present,
		`SELECT table_name FROM information_schema.tables
		 WHERE table_schema = current_schema() AND table_name IN ($1, $2, $3)`,
		ledgerTables[0], ledgerTables[1], ledgerTables[2])
	if err != nil {
		return fmt.Errorf("checking ledger schema: %w", err)
	}

	found := make(map[string]bool, len(present))
	for _, t := range present {
		found[t] = true
	}
	var missing []string
	for _, t := range ledgerTables {
		if !found[t] {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("ledger schema incomplete, missing %s: run `litctl migrate up`",
			strings.Join(missing, ", "))
	}
	return nil
}
