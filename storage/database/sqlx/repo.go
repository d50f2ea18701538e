// Package sqlxrepos implements the repositories on PostgreSQL.
package sqlxrepos

import (
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// trapNoRowsErr maps the "no rows" error to notFound.
func trapNoRowsErr(err, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// validID reports whether id can be looked up in a UUID column.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// validIDs drops the ids that are not UUIDs.
func validIDs(ids []string) []string {
	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			kept = append(kept, id)
		}
	}
	return kept
}

// likePattern builds an ILIKE pattern matching s anywhere.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// deleteByIDs deletes the rows of table owned by schoolID with one of ids.
func deleteByIDs(db *sqlx.DB, table, schoolID string, ids []string) (string, []interface{}, error) {
	q, args, err := sqlx.In("DELETE FROM "+table+" WHERE school_id = ? AND id IN (?)", schoolID, ids)
	if err != nil {
		return "", nil, err
	}
	return db.Rebind(q), args, nil
}
