package sqlxrepos

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/brightloop/brightloop/core/school"
)

const schoolColumns = `id, owner_uid, name, zone, district, state, address, udise_code, type, management, reg_no,
	headmaster_name, watermark_text, slug, signature_url, roll_statement_classes, website, created_at, updated_at`

type schoolRow struct {
	ID                   string      `db:"id"`
	OwnerUID             null.String `db:"owner_uid"`
	Name                 string      `db:"name"`
	Zone                 string      `db:"zone"`
	District             string      `db:"district"`
	State                string      `db:"state"`
	Address              string      `db:"address"`
	UDISECode            string      `db:"udise_code"`
	Type                 string      `db:"type"`
	Management           string      `db:"management"`
	RegNo                null.String `db:"reg_no"`
	HeadmasterName       string      `db:"headmaster_name"`
	WatermarkText        null.String `db:"watermark_text"`
	Slug                 string      `db:"slug"`
	SignatureURL         null.String `db:"signature_url"`
	RollStatementClasses null.JSON   `db:"roll_statement_classes"`
	Website              null.JSON   `db:"website"`
	CreatedAt            time.Time   `db:"created_at"`
	UpdatedAt            time.Time   `db:"updated_at"`
}

type schoolRepository struct {
	db *sqlx.DB
}

var _ school.Repository = (*schoolRepository)(nil)

func NewSchoolRepository(db *sqlx.DB) school.Repository {
	return &schoolRepository{db: db}
}

func (repo schoolRepository) boil(p school.Profile) (schoolRow, error) {
	classes := p.RollStatementClasses
	if classes == nil {
		classes = []string{}
	}
	rsc, err := json.Marshal(classes)
	if err != nil {
		return schoolRow{}, errors.Wrap(err, "encoding roll statement classes")
	}
	website, err := json.Marshal(p.Website)
	if err != nil {
		return schoolRow{}, errors.Wrap(err, "encoding website config")
	}
	return schoolRow{
		ID:                   p.ID,
		OwnerUID:             null.NewString(p.OwnerUID, p.OwnerUID != ""),
		Name:                 p.Name,
		Zone:                 p.Zone,
		District:             p.District,
		State:                p.State,
		Address:              p.Address,
		UDISECode:            p.UDISECode,
		Type:                 string(p.Type),
		Management:           p.Management,
		RegNo:                null.NewString(p.RegNo, p.RegNo != ""),
		HeadmasterName:       p.HeadmasterName,
		WatermarkText:        null.NewString(p.WatermarkText, p.WatermarkText != ""),
		Slug:                 p.Slug,
		SignatureURL:         null.NewString(p.SignatureURL, p.SignatureURL != ""),
		RollStatementClasses: null.JSONFrom(rsc),
		Website:              null.JSONFrom(website),
		CreatedAt:            p.CreatedAt.UTC(),
		UpdatedAt:            p.UpdatedAt.UTC(),
	}, nil
}

func (repo schoolRepository) unboil(row schoolRow) (school.Profile, error) {
	p := school.Profile{
		ID:             row.ID,
		OwnerUID:       row.OwnerUID.String,
		Name:           row.Name,
		Zone:           row.Zone,
		District:       row.District,
		State:          row.State,
		Address:        row.Address,
		UDISECode:      row.UDISECode,
		Type:           school.Type(row.Type),
		Management:     row.Management,
		RegNo:          row.RegNo.String,
		HeadmasterName: row.HeadmasterName,
		WatermarkText:  row.WatermarkText.String,
		Slug:           row.Slug,
		SignatureURL:   row.SignatureURL.String,
		CreatedAt:      row.CreatedAt.UTC(),
		UpdatedAt:      row.UpdatedAt.UTC(),
	}
	if row.RollStatementClasses.Valid {
		if err := row.RollStatementClasses.Unmarshal(&p.RollStatementClasses); err != nil {
			return school.Profile{}, errors.Wrap(err, "decoding roll statement classes")
		}
	}
	if row.Website.Valid {
		if err := row.Website.Unmarshal(&p.Website); err != nil {
			return school.Profile{}, errors.Wrap(err, "decoding website config")
		}
	}
	return p, nil
}

func (repo schoolRepository) CreateSchool(ctx context.Context, p school.Profile) (school.Profile, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	row, err := repo.boil(p)
	if err != nil {
		return school.Profile{}, err
	}
	_, err = repo.db.NamedExecContext(ctx, `
		INSERT INTO school (`+schoolColumns+`)
		VALUES (:id, :owner_uid, :name, :zone, :district, :state, :address, :udise_code, :type, :management, :reg_no,
			:headmaster_name, :watermark_text, :slug, :signature_url, :roll_statement_classes, :website, :created_at, :updated_at)`,
		row,
	)
	if err != nil {
		return school.Profile{}, errors.Wrap(err, "inserting school")
	}
	return p, nil
}

func (repo schoolRepository) get(ctx context.Context, where string, arg interface{}) (school.Profile, error) {
	var row schoolRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+schoolColumns+` FROM school WHERE `+where, arg); err != nil {
		return school.Profile{}, trapNoRowsErr(err, school.ErrNotFound, "selecting school")
	}
	return repo.unboil(row)
}

func (repo schoolRepository) GetSchoolByID(ctx context.Context, id string) (school.Profile, error) {
	if !validID(id) {
		return school.Profile{}, school.ErrNotFound
	}
	return repo.get(ctx, "id = $1", id)
}

func (repo schoolRepository) GetSchoolBySlug(ctx context.Context, slug string) (school.Profile, error) {
	return repo.get(ctx, "slug = $1", slug)
}

func (repo schoolRepository) FilterSchools(ctx context.Context, filter school.QueryFilter) ([]school.Profile, error) {
	q := `SELECT ` + schoolColumns + ` FROM school`
	var args []interface{}
	if filter.Search != "" {
		q += ` WHERE name ILIKE $1 OR slug ILIKE $1 OR district ILIKE $1 OR udise_code ILIKE $1`
		args = append(args, likePattern(filter.Search))
	}
	q += " ORDER BY created_at DESC"

	var rows []schoolRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting schools")
	}
	schools := make([]school.Profile, 0, len(rows))
	for _, row := range rows {
		p, err := repo.unboil(row)
		if err != nil {
			return nil, err
		}
		schools = append(schools, p)
	}
	return schools, nil
}

func (repo schoolRepository) UpdateSchool(ctx context.Context, p school.Profile) (school.Profile, error) {
	if !validID(p.ID) {
		return school.Profile{}, school.ErrNotFound
	}
	row, err := repo.boil(p)
	if err != nil {
		return school.Profile{}, err
	}
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE school SET
			owner_uid = :owner_uid, name = :name, zone = :zone, district = :district, state = :state,
			address = :address, udise_code = :udise_code, type = :type, management = :management,
			reg_no = :reg_no, headmaster_name = :headmaster_name, watermark_text = :watermark_text,
			slug = :slug, signature_url = :signature_url, roll_statement_classes = :roll_statement_classes,
			website = :website, updated_at = :updated_at
		WHERE id = :id`,
		row,
	)
	if err != nil {
		return school.Profile{}, errors.Wrap(err, "updating school")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.Profile{}, school.ErrNotFound
	}
	return p, nil
}

func (repo schoolRepository) DeleteSchool(ctx context.Context, id string) error {
	if !validID(id) {
		return school.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM school WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting school")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.ErrNotFound
	}
	return nil
}
