package sqlxrepos

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/brightloop/brightloop/core/rollstatement"
)

const rollStatementColumns = `id, school_id, month, year, ref_no, note, rows, created_at, updated_at`

type rollStatementRow struct {
	ID        string    `db:"id"`
	SchoolID  string    `db:"school_id"`
	Month     string    `db:"month"`
	Year      string    `db:"year"`
	RefNo     string    `db:"ref_no"`
	Note      string    `db:"note"`
	Rows      null.JSON `db:"rows"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type rollStatementRepository struct {
	db *sqlx.DB
}

var _ rollstatement.Repository = (*rollStatementRepository)(nil)

func NewRollStatementRepository(db *sqlx.DB) rollstatement.Repository {
	return &rollStatementRepository{db: db}
}

func (repo rollStatementRepository) boil(s rollstatement.Statement) (rollStatementRow, error) {
	rows := s.Rows
	if rows == nil {
		rows = []rollstatement.Row{}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return rollStatementRow{}, errors.Wrap(err, "encoding roll statement rows")
	}
	return rollStatementRow{
		ID:        s.ID,
		SchoolID:  s.SchoolID,
		Month:     s.Month,
		Year:      s.Year,
		RefNo:     s.RefNo,
		Note:      s.Note,
		Rows:      null.JSONFrom(data),
		CreatedAt: s.CreatedAt.UTC(),
		UpdatedAt: s.UpdatedAt.UTC(),
	}, nil
}

func (repo rollStatementRepository) unboil(row rollStatementRow) (rollstatement.Statement, error) {
	s := rollstatement.Statement{
		ID:       row.ID,
		SchoolID: row.SchoolID,
		Fields: rollstatement.Fields{
			Month: row.Month,
			Year:  row.Year,
			RefNo: row.RefNo,
			Note:  row.Note,
		},
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
	if err := row.Rows.Unmarshal(&s.Rows); err != nil {
		return rollstatement.Statement{}, errors.Wrap(err, "decoding roll statement rows")
	}
	return s, nil
}

func (repo rollStatementRepository) CreateStatement(ctx context.Context, s rollstatement.Statement) (rollstatement.Statement, error) {
	s.ID = uuid.NewString()
	row, err := repo.boil(s)
	if err != nil {
		return rollstatement.Statement{}, err
	}
	_, err = repo.db.NamedExecContext(ctx, `
		INSERT INTO roll_statement (`+rollStatementColumns+`)
		VALUES (:id, :school_id, :month, :year, :ref_no, :note, :rows, :created_at, :updated_at)`,
		row,
	)
	if err != nil {
		return rollstatement.Statement{}, errors.Wrap(err, "inserting roll statement")
	}
	return s, nil
}

func (repo rollStatementRepository) GetStatementByID(ctx context.Context, id string) (rollstatement.Statement, error) {
	if !validID(id) {
		return rollstatement.Statement{}, rollstatement.ErrNotFound
	}
	var row rollStatementRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+rollStatementColumns+` FROM roll_statement WHERE id = $1`, id)
	if err != nil {
		return rollstatement.Statement{}, trapNoRowsErr(err, rollstatement.ErrNotFound, "selecting roll statement")
	}
	return repo.unboil(row)
}

func (repo rollStatementRepository) FilterStatements(ctx context.Context, schoolID string, filter rollstatement.QueryFilter) ([]rollstatement.Statement, error) {
	if !validID(schoolID) {
		return []rollstatement.Statement{}, nil
	}
	q := `SELECT ` + rollStatementColumns + ` FROM roll_statement WHERE school_id = $1`
	args := []interface{}{schoolID}
	if filter.Search != "" {
		q += ` AND (month ILIKE $2 OR ref_no ILIKE $2 OR year LIKE $2)`
		args = append(args, likePattern(filter.Search))
	}
	q += " ORDER BY created_at DESC"

	var rows []rollStatementRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting roll statements")
	}
	statements := make([]rollstatement.Statement, 0, len(rows))
	for _, row := range rows {
		s, err := repo.unboil(row)
		if err != nil {
			return nil, err
		}
		statements = append(statements, s)
	}
	return statements, nil
}

func (repo rollStatementRepository) UpdateStatement(ctx context.Context, s rollstatement.Statement) (rollstatement.Statement, error) {
	if !validID(s.ID) {
		return rollstatement.Statement{}, rollstatement.ErrNotFound
	}
	row, err := repo.boil(s)
	if err != nil {
		return rollstatement.Statement{}, err
	}
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE roll_statement SET
			month = :month, year = :year, ref_no = :ref_no, note = :note, rows = :rows, updated_at = :updated_at
		WHERE id = :id`,
		row,
	)
	if err != nil {
		return rollstatement.Statement{}, errors.Wrap(err, "updating roll statement")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return rollstatement.Statement{}, rollstatement.ErrNotFound
	}
	return s, nil
}

func (repo rollStatementRepository) DeleteStatementsByID(ctx context.Context, schoolID string, ids ...string) error {
	if ids = validIDs(ids); len(ids) == 0 || !validID(schoolID) {
		return nil
	}
	q, args, err := deleteByIDs(repo.db, "roll_statement", schoolID, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, q, args...); err != nil {
		return errors.Wrap(err, "deleting roll statements")
	}
	return nil
}

func (repo rollStatementRepository) DeleteStatementsBySchool(ctx context.Context, schoolID string) error {
	if !validID(schoolID) {
		return nil
	}
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM roll_statement WHERE school_id = $1`, schoolID); err != nil {
		return errors.Wrap(err, "deleting school roll statements")
	}
	return nil
}
