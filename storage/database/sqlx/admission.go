package sqlxrepos

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/brightloop/brightloop/core/admission"
)

const admissionColumns = `id, school_id, full_name, admission_no, fields, created_at, updated_at`

// admissionRow keeps the searchable fields in columns and the whole form as JSONB.
type admissionRow struct {
	ID          string    `db:"id"`
	SchoolID    string    `db:"school_id"`
	FullName    string    `db:"full_name"`
	AdmissionNo string    `db:"admission_no"`
	Fields      null.JSON `db:"fields"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type admissionRepository struct {
	db *sqlx.DB
}

var _ admission.Repository = (*admissionRepository)(nil)

func NewAdmissionRepository(db *sqlx.DB) admission.Repository {
	return &admissionRepository{db: db}
}

func (repo admissionRepository) boil(f admission.Form) (admissionRow, error) {
	fields, err := json.Marshal(f.Fields)
	if err != nil {
		return admissionRow{}, errors.Wrap(err, "encoding admission form")
	}
	return admissionRow{
		ID:          f.ID,
		SchoolID:    f.SchoolID,
		FullName:    f.FullName,
		AdmissionNo: f.AdmissionNo,
		Fields:      null.JSONFrom(fields),
		CreatedAt:   f.CreatedAt.UTC(),
		UpdatedAt:   f.UpdatedAt.UTC(),
	}, nil
}

func (repo admissionRepository) unboil(row admissionRow) (admission.Form, error) {
	f := admission.Form{
		ID:        row.ID,
		SchoolID:  row.SchoolID,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
	if err := row.Fields.Unmarshal(&f.Fields); err != nil {
		return admission.Form{}, errors.Wrap(err, "decoding admission form")
	}
	return f, nil
}

func (repo admissionRepository) CreateForm(ctx context.Context, f admission.Form) (admission.Form, error) {
	f.ID = uuid.NewString()
	row, err := repo.boil(f)
	if err != nil {
		return admission.Form{}, err
	}
	_, err = repo.db.NamedExecContext(ctx, `
		INSERT INTO admission_form (`+admissionColumns+`)
		VALUES (:id, :school_id, :full_name, :admission_no, :fields, :created_at, :updated_at)`,
		row,
	)
	if err != nil {
		return admission.Form{}, errors.Wrap(err, "inserting admission form")
	}
	return f, nil
}

func (repo admissionRepository) GetFormByID(ctx context.Context, id string) (admission.Form, error) {
	if !validID(id) {
		return admission.Form{}, admission.ErrNotFound
	}
	var row admissionRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+admissionColumns+` FROM admission_form WHERE id = $1`, id); err != nil {
		return admission.Form{}, trapNoRowsErr(err, admission.ErrNotFound, "selecting admission form")
	}
	return repo.unboil(row)
}

func (repo admissionRepository) FilterForms(ctx context.Context, schoolID string, filter admission.QueryFilter) ([]admission.Form, error) {
	if !validID(schoolID) {
		return []admission.Form{}, nil
	}
	q := `SELECT ` + admissionColumns + ` FROM admission_form WHERE school_id = $1`
	args := []interface{}{schoolID}
	if filter.Search != "" {
		q += ` AND (full_name ILIKE $2 OR admission_no ILIKE $2)`
		args = append(args, likePattern(filter.Search))
	}
	q += " ORDER BY created_at DESC"

	var rows []admissionRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting admission forms")
	}
	forms := make([]admission.Form, 0, len(rows))
	for _, row := range rows {
		f, err := repo.unboil(row)
		if err != nil {
			return nil, err
		}
		forms = append(forms, f)
	}
	return forms, nil
}

func (repo admissionRepository) UpdateForm(ctx context.Context, f admission.Form) (admission.Form, error) {
	if !validID(f.ID) {
		return admission.Form{}, admission.ErrNotFound
	}
	row, err := repo.boil(f)
	if err != nil {
		return admission.Form{}, err
	}
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE admission_form SET
			full_name = :full_name, admission_no = :admission_no, fields = :fields, updated_at = :updated_at
		WHERE id = :id`,
		row,
	)
	if err != nil {
		return admission.Form{}, errors.Wrap(err, "updating admission form")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return admission.Form{}, admission.ErrNotFound
	}
	return f, nil
}

func (repo admissionRepository) DeleteFormsByID(ctx context.Context, schoolID string, ids ...string) error {
	if ids = validIDs(ids); len(ids) == 0 || !validID(schoolID) {
		return nil
	}
	q, args, err := deleteByIDs(repo.db, "admission_form", schoolID, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, q, args...); err != nil {
		return errors.Wrap(err, "deleting admission forms")
	}
	return nil
}

func (repo admissionRepository) DeleteFormsBySchool(ctx context.Context, schoolID string) error {
	if !validID(schoolID) {
		return nil
	}
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM admission_form WHERE school_id = $1`, schoolID); err != nil {
		return errors.Wrap(err, "deleting school admission forms")
	}
	return nil
}
