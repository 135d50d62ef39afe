package rulesource

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kevin07696/error-mapping/internal/adapters/database"
	"github.com/kevin07696/error-mapping/internal/domain"
	"github.com/kevin07696/error-mapping/internal/domain/ports"
)

// DefaultTable is the table holding the rules
const DefaultTable = "error_mappings"

// Schema creates the rules table. Rules are applied in ascending position.
const Schema = `CREATE TABLE IF NOT EXISTS %s (
    position          INTEGER PRIMARY KEY,
    code_regex        TEXT NOT NULL,
    description_regex TEXT,
    state             TEXT,
    mapping           TEXT NOT NULL
)`

// PostgresSource reads rules from a PostgreSQL table
type PostgresSource struct {
	db    database.Querier
	table string
}

var _ ports.RuleSource = (*PostgresSource)(nil)

// NewPostgresSource creates a source over table, DefaultTable when empty
func NewPostgresSource(db database.Querier, table string) *PostgresSource {
	if table == "" {
		table = DefaultTable
	}
	return &PostgresSource{db: db, table: table}
}

// Name implements ports.RuleSource
func (s *PostgresSource) Name() string {
	return "postgres:" + s.table
}

// SchemaSQL returns Schema for this source's table
func (s *PostgresSource) SchemaSQL() string {
	return fmt.Sprintf(Schema, pgx.Identifier{s.table}.Sanitize())
}

// Load implements ports.RuleSource
func (s *PostgresSource) Load(ctx context.Context) ([]domain.Rule, error) {
	query := fmt.Sprintf(
		"SELECT code_regex, description_regex, state, mapping FROM %s ORDER BY position",
		pgx.Identifier{s.table}.Sanitize(),
	)

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeConfigIO, "failed to query error mappings", err).
			WithDetail("table", s.table)
	}
	defer rows.Close()

	var rules []domain.Rule
	for rows.Next() {
		var r domain.Rule
		if err := rows.Scan(&r.CodeRegex, &r.DescriptionRegex, &r.State, &r.Mapping); err != nil {
			return nil, domain.WrapError(domain.ErrorCodeConfigMapping, "failed to scan error mapping row", err).
				WithDetail("row", len(rules))
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrorCodeConfigIO, "failed to read error mappings", err).
			WithDetail("table", s.table)
	}

	return rules, nil
}
