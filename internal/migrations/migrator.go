package migrations

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

//go:embed sql/*.sql
var embedded embed.FS

// Files is the schema shipped with the binary.
func Files() fs.FS {
	sub, err := fs.Sub(embedded, "sql")
	if err != nil {
		panic(err)
	}
	return sub
}

type Migrator struct {
	DB     *sql.DB
	FS     fs.FS
	logger *zap.Logger
}

type Migration struct {
	Version   string
	Name      string
	FilePath  string
	AppliedAt *time.Time
}

func NewMigrator(db *sql.DB, files fs.FS, logger *zap.Logger) *Migrator {
	return &Migrator{
		DB:     db,
		FS:     files,
		logger: logger,
	}
}

// CreateMigrationsTable creates the migrations tracking table
func (m *Migrator) CreateMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS migrations (
			version VARCHAR(255) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			applied_at TIMESTAMP DEFAULT NOW()
		)
	`
	if _, err := m.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	m.logger.Debug("Migrations table created/verified")
	return nil
}

// GetAppliedMigrations returns applied migrations keyed by version
func (m *Migrator) GetAppliedMigrations() (map[string]Migration, error) {
	rows, err := m.DB.Query(`SELECT version, name, applied_at FROM migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]Migration)
	for rows.Next() {
		var migration Migration
		if err := rows.Scan(&migration.Version, &migration.Name, &migration.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration: %w", err)
		}
		applied[migration.Version] = migration
	}
	return applied, rows.Err()
}

// GetPendingMigrations returns migrations that need to be applied, oldest first
func (m *Migrator) GetPendingMigrations() ([]Migration, error) {
	applied, err := m.GetAppliedMigrations()
	if err != nil {
		return nil, err
	}

	all, err := listMigrations(m.FS)
	if err != nil {
		return nil, err
	}

	var pending []Migration
	for _, migration := range all {
		if _, exists := applied[migration.Version]; !exists {
			pending = append(pending, migration)
		}
	}
	return pending, nil
}

// RunMigrations applies all pending migrations
func (m *Migrator) RunMigrations() error {
	if err := m.CreateMigrationsTable(); err != nil {
		return err
	}

	pending, err := m.GetPendingMigrations()
	if err != nil {
		return err
	}

	if len(pending) == 0 {
		m.logger.Info("No pending migrations to apply")
		return nil
	}

	m.logger.Info("Applying migrations", zap.Int("count", len(pending)))
	for _, migration := range pending {
		if err := m.applyMigration(migration); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
		}
		m.logger.Info("Applied migration", zap.String("version", migration.Version), zap.String("name", migration.Name))
	}

	m.logger.Info("All migrations applied successfully")
	return nil
}

func (m *Migrator) applyMigration(migration Migration) error {
	content, err := fs.ReadFile(m.FS, migration.FilePath)
	if err != nil {
		return fmt.Errorf("failed to read migration file: %w", err)
	}

	tx, err := m.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(string(content)); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}

	if _, err := tx.Exec(`INSERT INTO migrations (version, name) VALUES ($1, $2)`, migration.Version, migration.Name); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}
	return nil
}

// Status prints applied and pending migrations
func (m *Migrator) Status() error {
	if err := m.CreateMigrationsTable(); err != nil {
		return err
	}

	applied, err := m.GetAppliedMigrations()
	if err != nil {
		return err
	}

	pending, err := m.GetPendingMigrations()
	if err != nil {
		return err
	}

	fmt.Println("\n=== Migration Status ===")
	fmt.Printf("Applied migrations: %d\n", len(applied))
	fmt.Printf("Pending migrations: %d\n", len(pending))

	if len(applied) > 0 {
		versions := make([]string, 0, len(applied))
		for v := range applied {
			versions = append(versions, v)
		}
		sort.Strings(versions)

		fmt.Println("\nApplied:")
		for _, v := range versions {
			migration := applied[v]
			appliedAt := "unknown"
			if migration.AppliedAt != nil {
				appliedAt = migration.AppliedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Printf("  ✓ %s - %s (applied: %s)\n", migration.Version, migration.Name, appliedAt)
		}
	}

	if len(pending) > 0 {
		fmt.Println("\nPending:")
		for _, migration := range pending {
			fmt.Printf("  - %s - %s\n", migration.Version, migration.Name)
		}
	}
	return nil
}

// listMigrations reads *.sql files named like "001_initial_schema.sql", sorted by version
func listMigrations(files fs.FS) ([]Migration, error) {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read migration files: %w", err)
	}

	migrations := make([]Migration, 0, len(names))
	for _, name := range names {
		filename := path.Base(name)
		migrations = append(migrations, Migration{
			Version:  extractVersionFromFilename(filename),
			Name:     extractNameFromFilename(filename),
			FilePath: name,
		})
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

func extractVersionFromFilename(filename string) string {
	version, _, _ := strings.Cut(filename, "_")
	return version
}

func extractNameFromFilename(filename string) string {
	name := strings.TrimSuffix(filename, ".sql")
	if _, rest, ok := strings.Cut(name, "_"); ok {
		return rest
	}
	return name
}
