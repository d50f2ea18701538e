package student

import (
	"context"

	"github.com/pkg/errors"

	"github.com/brightloop/brightloop/core"
)

var ErrNotFound = core.NewNotFoundError("student")

type (
	Repository interface {
		CreateStudent(ctx context.Context, s Student) (Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		// FilterStudents returns the students of the school matching filter, in any order.
		FilterStudents(ctx context.Context, schoolID string, filter QueryFilter) ([]Student, error)
		UpdateStudent(ctx context.Context, s Student) (Student, error)
		DeleteStudentsByID(ctx context.Context, schoolID string, ids ...string) error
		DeleteStudentsBySchool(ctx context.Context, schoolID string) error
	}

	Service interface {
		Create(ctx context.Context, schoolID string, f Fields) (Student, error)
		Get(ctx context.Context, schoolID, id string) (Student, error)
		Query(ctx context.Context, schoolID string, filter QueryFilter, page core.Page) (core.PageResult[Student], error)
		Update(ctx context.Context, schoolID, id string, f Fields) (Student, error)
		Delete(ctx context.Context, schoolID string, ids ...string) error
		CountByClassAndGender(ctx context.Context, schoolID string) (map[string]ClassCount, error)
		PurgeSchool(ctx context.Context, schoolID string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, schoolID string, f Fields) (Student, error) {
	return svc.repo.CreateStudent(ctx, Student{
		SchoolID:  schoolID,
		Fields:    f,
		CreatedAt: core.NowFunc().UTC(),
	})
}

// Get returns the student only when it belongs to the school.
func (svc *service) Get(ctx context.Context, schoolID, id string) (Student, error) {
	s, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if s.SchoolID != schoolID {
		return Student{}, ErrNotFound
	}
	return s, nil
}

func (svc *service) Query(ctx context.Context, schoolID string, filter QueryFilter, page core.Page) (core.PageResult[Student], error) {
	students, err := svc.repo.FilterStudents(ctx, schoolID, filter)
	if err != nil {
		return core.PageResult[Student]{}, errors.Wrap(err, "filtering students")
	}
	Sort(students)
	page.Clean(DefaultPageSize)
	return core.Paginate(students, page), nil
}

func (svc *service) Update(ctx context.Context, schoolID, id string, f Fields) (Student, error) {
	s, err := svc.Get(ctx, schoolID, id)
	if err != nil {
		return Student{}, err
	}
	s.Fields = f
	return svc.repo.UpdateStudent(ctx, s)
}

func (svc *service) Delete(ctx context.Context, schoolID string, ids ...string) error {
	return svc.repo.DeleteStudentsByID(ctx, schoolID, ids...)
}

// CountByClassAndGender counts boys and girls per class. Students of other genders are not counted.
func (svc *service) CountByClassAndGender(ctx context.Context, schoolID string) (map[string]ClassCount, error) {
	students, err := svc.repo.FilterStudents(ctx, schoolID, QueryFilter{})
	if err != nil {
		return nil, errors.Wrap(err, "filtering students")
	}
	counts := make(map[string]ClassCount)
	for _, s := range students {
		c := counts[s.Class]
		switch s.Gender {
		case GenderMale:
			c.Boys++
		case GenderFemale:
			c.Girls++
		}
		counts[s.Class] = c
	}
	return counts, nil
}

func (svc *service) PurgeSchool(ctx context.Context, schoolID string) error {
	return svc.repo.DeleteStudentsBySchool(ctx, schoolID)
}
