package sqlxrepos

import (
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/campusbridge/backend/core"
)

// NewDB wraps the raw connection for the repositories.
func NewDB(db *sql.DB) *sqlx.DB {
	return sqlx.NewDb(db, "postgres")
}

// orderBy renders an ORDER BY clause from the requested ordering, keeping
// only whitelisted columns. Falls back to the provided default clause.
func orderBy(ordering []core.DBOrdering, allowed map[string]bool, fallback string) string {
	clauses := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		if allowed[ord.Field] {
			clauses = append(clauses, ord.String())
		}
	}
	if len(clauses) == 0 {
		return " ORDER BY " + fallback
	}
	return " ORDER BY " + strings.Join(clauses, ", ")
}
