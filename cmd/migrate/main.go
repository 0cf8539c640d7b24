// Command migrate applies or reverts the SQL migrations in migrations/.
// Applied versions are tracked in the schema_migrations table.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/qaforge/qaforge/internal/config"
)

const migrationsDir = "migrations"

type migration struct {
	version int
	name    string
	path    string
	down    bool
}

func main() {
	mode := flag.String("mode", "up", "migration mode: up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := sql.Open("postgres", cfg.GetDatabaseURL())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		log.Fatalf("failed to ensure schema_migrations: %v", err)
	}

	migrations, err := loadMigrations(migrationsDir)
	if err != nil {
		log.Fatalf("failed to load migrations: %v", err)
	}

	switch strings.ToLower(*mode) {
	case "up":
		if err := applyUp(db, migrations); err != nil {
			log.Fatalf("migration up failed: %v", err)
		}
		log.Println("migration up completed")
	case "down":
		if err := applyDown(db, migrations); err != nil {
			log.Fatalf("migration down failed: %v", err)
		}
		log.Println("migration down completed")
	default:
		log.Fatalf("unknown mode: %s", *mode)
	}
}

// loadMigrations reads NNN_name.up.sql / NNN_name.down.sql files sorted
// by version
func loadMigrations(dir string) ([]migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var migrations []migration
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		parts := strings.SplitN(name, "_", 2)
		if len(parts) < 2 {
			log.Printf("skipping migration without version prefix: %s", name)
			continue
		}
		version, err := strconv.Atoi(parts[0])
		if err != nil {
			log.Printf("skipping migration with invalid version: %s", name)
			continue
		}

		migrations = append(migrations, migration{
			version: version,
			name:    strings.TrimSuffix(strings.TrimSuffix(parts[1], ".sql"), ".down"),
			path:    filepath.Join(dir, name),
			down:    strings.HasSuffix(name, ".down.sql"),
		})
	}

	sort.Slice(migrations, func(i, j int) bool { return migrations[i].version < migrations[j].version })
	return migrations, nil
}

func applyUp(db *sql.DB, migrations []migration) error {
	for _, m := range migrations {
		if m.down {
			continue
		}
		applied, err := alreadyApplied(db, m.version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		log.Printf("applying %03d %s", m.version, m.name)
		if err := execFile(db, m.path); err != nil {
			return fmt.Errorf("failed applying %s: %w", m.path, err)
		}
		if _, err := db.Exec("INSERT INTO schema_migrations(version, name, applied_at) VALUES($1, $2, $3)",
			m.version, m.name, time.Now()); err != nil {
			return err
		}
	}
	return nil
}

func applyDown(db *sql.DB, migrations []migration) error {
	var downs []migration
	for _, m := range migrations {
		if m.down {
			downs = append(downs, m)
		}
	}
	sort.Slice(downs, func(i, j int) bool { return downs[i].version > downs[j].version })

	for _, m := range downs {
		applied, err := alreadyApplied(db, m.version)
		if err != nil {
			return err
		}
		if !applied {
			continue
		}

		log.Printf("reverting %03d %s", m.version, m.name)
		if err := execFile(db, m.path); err != nil {
			return fmt.Errorf("failed reverting %s: %w", m.path, err)
		}
		if _, err := db.Exec("DELETE FROM schema_migrations WHERE version = $1", m.version); err != nil {
			return err
		}
	}
	return nil
}

func alreadyApplied(db *sql.DB, version int) (bool, error) {
	var exists bool
	err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", version).Scan(&exists)
	return exists, err
}

func execFile(db *sql.DB, path string) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = db.Exec(string(contents))
	return err
}
