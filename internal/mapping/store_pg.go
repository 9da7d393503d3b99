package mapping

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// rowQuerier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

const selectMappingsSQL = `SELECT namaste_code, namaste_display, namaste_system,
       icd11_code, icd11_display, equivalence, notes
FROM %s
ORDER BY position`

// LoadTable reads every row of a mapping table and builds a Store from it.
// table may be schema-qualified ("ayush.namaste_icd11_mappings"). Rows are
// taken in ascending position order, which stands in for the document order
// of a dataset file.
func LoadTable(ctx context.Context, q rowQuerier, table string, opts ...LoadOption) (*Store, error) {
	ident := pgx.Identifier(strings.Split(table, ".")).Sanitize()

	rows, err := q.Query(ctx, fmt.Sprintf(selectMappingsSQL, ident))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var raws []RawRecord
	for rows.Next() {
		var r RawRecord
		if err := rows.Scan(
			&r.NamasteCode, &r.NamasteDisplay, &r.NamasteSystem,
			&r.ICD11Code, &r.ICD11Display, &r.Equivalence, &r.Notes,
		); err != nil {
			return nil, fmt.Errorf("scan %s row %d: %w", table, len(raws), err)
		}
		raws = append(raws, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}

	metadata := map[string]any{
		"source": "database",
		"table":  table,
	}
	return NewStore(metadata, raws, opts...)
}
