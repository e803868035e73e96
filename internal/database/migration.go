package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"twitterapi/pkg/logger"
)

type Migration struct {
	Name string
	Func func(ctx context.Context, tx DBTX) error
}

type MigrationService struct {
	db         *sql.DB
	logger     logger.Logger
	migrations []Migration
}

func NewMigrationService(db *sql.DB, logger logger.Logger) *MigrationService {
	return &MigrationService{
		db:     db,
		logger: logger,
		migrations: []Migration{
			{Name: "create_users_table", Func: CreateUsersTable},
			{Name: "create_tweets_table", Func: CreateTweetsTable},
			{Name: "create_audit_logs_table", Func: CreateAuditLogsTable},
		},
	}
}

func (m *MigrationService) InitMigrationTable(ctx context.Context) error {
	query := `
    CREATE TABLE IF NOT EXISTS migrations (
        name TEXT PRIMARY KEY,
        applied_at TIMESTAMP NOT NULL
    )
    `

	if _, err := m.db.ExecContext(ctx, query); err != nil {
		m.logger.Error("Failed to create migrations table", map[string]interface{}{"error": err.Error()})
		return err
	}

	return nil
}

func (m *MigrationService) IsMigrationApplied(ctx context.Context, name string) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM migrations WHERE name = $1"
	if err := m.db.QueryRowContext(ctx, query, name).Scan(&count); err != nil {
		m.logger.Error("Failed to check migration status", map[string]interface{}{"name": name, "error": err.Error()})
		return false, err
	}

	return count > 0, nil
}

// ApplyMigration runs the migration and records it in a single transaction.
func (m *MigrationService) ApplyMigration(ctx context.Context, migration Migration) error {
	applied, err := m.IsMigrationApplied(ctx, migration.Name)
	if err != nil {
		return err
	}

	if applied {
		m.logger.Debug("Migration already applied", map[string]interface{}{"name": migration.Name})
		return nil
	}

	m.logger.Info("Applying migration", map[string]interface{}{"name": migration.Name})

	err = WithTx(ctx, m.db, nil, func(ctx context.Context, tx DBTX) error {
		if err := migration.Func(ctx, tx); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "INSERT INTO migrations (name, applied_at) VALUES ($1, $2)", migration.Name, time.Now().UTC())
		return err
	})
	if err != nil {
		m.logger.Error("Migration rolled back", map[string]interface{}{"name": migration.Name, "error": err.Error()})
		return err
	}

	m.logger.Info("Migration applied", map[string]interface{}{"name": migration.Name})
	return nil
}

func (m *MigrationService) RunMigrations(ctx context.Context) error {
	m.logger.Info("Running migrations", map[string]interface{}{"count": len(m.migrations)})

	if err := m.InitMigrationTable(ctx); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	for _, migration := range m.migrations {
		if err := m.ApplyMigration(ctx, migration); err != nil {
			return fmt.Errorf("apply migration %s: %w", migration.Name, err)
		}
	}

	return nil
}

func execAll(ctx context.Context, tx DBTX, statements ...string) error {
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func CreateUsersTable(ctx context.Context, tx DBTX) error {
	return execAll(ctx, tx, `
    CREATE TABLE IF NOT EXISTS users (
        id TEXT PRIMARY KEY,
        email TEXT NOT NULL UNIQUE,
        first_name TEXT NOT NULL,
        last_name TEXT NOT NULL,
        password TEXT NOT NULL,
        country TEXT,
        birth_date DATE,
        creation_account_date DATE NOT NULL,
        created_at TIMESTAMP NOT NULL,
        updated_at TIMESTAMP NOT NULL
    )
    `)
}

func CreateTweetsTable(ctx context.Context, tx DBTX) error {
	return execAll(ctx, tx, `
    CREATE TABLE IF NOT EXISTS tweets (
        id TEXT PRIMARY KEY,
        user_id TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
        content TEXT NOT NULL CHECK (length(content) <= 280),
        created_at TIMESTAMP NOT NULL,
        updated_at TIMESTAMP
    )
    `,
		`CREATE INDEX IF NOT EXISTS tweets_user_id_idx ON tweets (user_id)`,
		`CREATE INDEX IF NOT EXISTS tweets_created_at_idx ON tweets (created_at)`,
	)
}

func CreateAuditLogsTable(ctx context.Context, tx DBTX) error {
	return execAll(ctx, tx, `
    CREATE TABLE IF NOT EXISTS audit_logs (
        id TEXT PRIMARY KEY,
        entity_type TEXT NOT NULL,
        entity_id TEXT NOT NULL,
        action TEXT NOT NULL,
        details TEXT,
        created_at TIMESTAMP NOT NULL
    )
    `,
		`CREATE INDEX IF NOT EXISTS audit_logs_entity_idx ON audit_logs (entity_type, entity_id)`,
	)
}
