package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/uptrace/bun"
)

// Schema describes one table owned by a feature package.
type Schema struct {
	Model   interface{}
	Table   string
	Indexes []Index
}

type Index struct {
	Name    string
	Columns []string // column expressions, e.g. "applied_date DESC"
	Unique  bool
}

// RunMigrations creates tables, indexes and the updated_at trigger. Every
// statement is idempotent so it can run on each new connection.
func RunMigrations(ctx context.Context, db bun.IDB, schemas ...Schema) error {
	for _, schema := range schemas {
		_, err := db.NewCreateTable().
			Model(schema.Model).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create table %s: %w", schema.Table, err)
		}

		for _, idx := range schema.Indexes {
			q := db.NewCreateIndex().
				Model(schema.Model).
				Index(idx.Name).
				IfNotExists()
			if idx.Unique {
				q = q.Unique()
			}
			for _, col := range idx.Columns {
				q = q.ColumnExpr(col)
			}
			if _, err := q.Exec(ctx); err != nil {
				return fmt.Errorf("failed to create index %s: %w", idx.Name, err)
			}
		}
	}

	_, err := db.ExecContext(ctx, `
		CREATE OR REPLACE FUNCTION update_updated_at_column()
		RETURNS TRIGGER AS $$
		BEGIN
			NEW.updated_at = CURRENT_TIMESTAMP;
			RETURN NEW;
		END;
		$$ language 'plpgsql';
	`)
	if err != nil {
		return fmt.Errorf("failed to create trigger function: %w", err)
	}

	for _, schema := range schemas {
		_, err := db.ExecContext(ctx, fmt.Sprintf(`
			DROP TRIGGER IF EXISTS update_%[1]s_updated_at ON %[1]s;
			CREATE TRIGGER update_%[1]s_updated_at
				BEFORE UPDATE ON %[1]s
				FOR EACH ROW
				EXECUTE FUNCTION update_updated_at_column();
		`, schema.Table))
		if err != nil {
			return fmt.Errorf("failed to create trigger for %s: %w", schema.Table, err)
		}
	}

	slog.InfoContext(ctx, "database migrations completed successfully")
	return nil
}
