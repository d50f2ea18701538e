package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/brightloop/brightloop/core/student"
)

const studentColumns = `id, school_id, name, roll_no, class, section, father_name, gender, dob, address, phone,
	admission_no, created_at`

type studentRow struct {
	ID          string    `db:"id"`
	SchoolID    string    `db:"school_id"`
	Name        string    `db:"name"`
	RollNo      string    `db:"roll_no"`
	Class       string    `db:"class"`
	Section     string    `db:"section"`
	FatherName  string    `db:"father_name"`
	Gender      string    `db:"gender"`
	DOB         string    `db:"dob"`
	Address     string    `db:"address"`
	Phone       string    `db:"phone"`
	AdmissionNo string    `db:"admission_no"`
	CreatedAt   time.Time `db:"created_at"`
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo studentRepository) boil(s student.Student) studentRow {
	return studentRow{
		ID:          s.ID,
		SchoolID:    s.SchoolID,
		Name:        s.Name,
		RollNo:      s.RollNo,
		Class:       s.Class,
		Section:     s.Section,
		FatherName:  s.FatherName,
		Gender:      s.Gender,
		DOB:         s.DOB,
		Address:     s.Address,
		Phone:       s.Phone,
		AdmissionNo: s.AdmissionNo,
		CreatedAt:   s.CreatedAt.UTC(),
	}
}

func (repo studentRepository) unboil(row studentRow) student.Student {
	return student.Student{
		ID:       row.ID,
		SchoolID: row.SchoolID,
		Fields: student.Fields{
			Name:        row.Name,
			RollNo:      row.RollNo,
			Class:       row.Class,
			Section:     row.Section,
			FatherName:  row.FatherName,
			Gender:      row.Gender,
			DOB:         row.DOB,
			Address:     row.Address,
			Phone:       row.Phone,
			AdmissionNo: row.AdmissionNo,
		},
		CreatedAt: row.CreatedAt.UTC(),
	}
}

func (repo studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	s.ID = uuid.NewString()
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO student (`+studentColumns+`)
		VALUES (:id, :school_id, :name, :roll_no, :class, :section, :father_name, :gender, :dob, :address, :phone,
			:admission_no, :created_at)`,
		repo.boil(s),
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return s, nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	if !validID(id) {
		return student.Student{}, student.ErrNotFound
	}
	var row studentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+studentColumns+` FROM student WHERE id = $1`, id); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "selecting student")
	}
	return repo.unboil(row), nil
}

func (repo studentRepository) FilterStudents(ctx context.Context, schoolID string, filter student.QueryFilter) ([]student.Student, error) {
	if !validID(schoolID) {
		return []student.Student{}, nil
	}
	conds := []string{"school_id = ?"}
	args := []interface{}{schoolID}
	if filter.Search != "" {
		conds = append(conds, "(name ILIKE ? OR roll_no ILIKE ? OR father_name ILIKE ?)")
		p := likePattern(filter.Search)
		args = append(args, p, p, p)
	}
	if filter.Class != "" {
		conds = append(conds, "class = ?")
		args = append(args, filter.Class)
	}
	if filter.Section != "" {
		conds = append(conds, "section ILIKE ?")
		args = append(args, likePattern(filter.Section))
	}
	if filter.Gender != "" {
		conds = append(conds, "gender = ?")
		args = append(args, filter.Gender)
	}
	q := `SELECT ` + studentColumns + ` FROM student WHERE ` + strings.Join(conds, " AND ")

	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, repo.unboil(row))
	}
	return students, nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	if !validID(s.ID) {
		return student.Student{}, student.ErrNotFound
	}
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE student SET
			name = :name, roll_no = :roll_no, class = :class, section = :section, father_name = :father_name,
			gender = :gender, dob = :dob, address = :address, phone = :phone, admission_no = :admission_no
		WHERE id = :id`,
		repo.boil(s),
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return s, nil
}

func (repo studentRepository) DeleteStudentsByID(ctx context.Context, schoolID string, ids ...string) error {
	if ids = validIDs(ids); len(ids) == 0 || !validID(schoolID) {
		return nil
	}
	q, args, err := deleteByIDs(repo.db, "student", schoolID, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, q, args...); err != nil {
		return errors.Wrap(err, "deleting students")
	}
	return nil
}

func (repo studentRepository) DeleteStudentsBySchool(ctx context.Context, schoolID string) error {
	if !validID(schoolID) {
		return nil
	}
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM student WHERE school_id = $1`, schoolID); err != nil {
		return errors.Wrap(err, "deleting school students")
	}
	return nil
}
