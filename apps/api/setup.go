package main

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/admission"
	"github.com/brightloop/brightloop/core/blob"
	"github.com/brightloop/brightloop/core/rollstatement"
	"github.com/brightloop/brightloop/core/school"
	"github.com/brightloop/brightloop/core/student"
	"github.com/brightloop/brightloop/core/user"
	fsblob "github.com/brightloop/brightloop/storage/blob/fs"
	memblob "github.com/brightloop/brightloop/storage/blob/memory"
	s3blob "github.com/brightloop/brightloop/storage/blob/s3"
	"github.com/brightloop/brightloop/storage/database"
	dummydb "github.com/brightloop/brightloop/storage/database/dummy"
	sqlxrepos "github.com/brightloop/brightloop/storage/database/sqlx"
)

type repositories struct {
	db             *sqlx.DB // nil for the memory engine
	users          user.Repository
	schools        school.Repository
	students       student.Repository
	admissions     admission.Repository
	rollStatements rollstatement.Repository
}

func (r repositories) close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

func setUpRepositories(conf *core.Config) (repositories, error) {
	if conf.Database.Engine == "memory" {
		mem, err := dummydb.Open()
		if err != nil {
			return repositories{}, err
		}
		return repositories{
			users:          dummydb.NewUserRepository(mem),
			schools:        dummydb.NewSchoolRepository(mem),
			students:       dummydb.NewStudentRepository(mem),
			admissions:     dummydb.NewAdmissionRepository(mem),
			rollStatements: dummydb.NewRollStatementRepository(mem),
		}, nil
	}

	db, err := setUpDB(conf)
	if err != nil {
		return repositories{}, err
	}
	return repositories{
		db:             db,
		users:          sqlxrepos.NewUserRepository(db),
		schools:        sqlxrepos.NewSchoolRepository(db),
		students:       sqlxrepos.NewStudentRepository(db),
		admissions:     sqlxrepos.NewAdmissionRepository(db),
		rollStatements: sqlxrepos.NewRollStatementRepository(db),
	}, nil
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func setUpStore(ctx context.Context, conf *core.Config) (blob.Store, error) {
	switch blob.Driver(conf.Blob.Driver) {
	case blob.DriverFilesystem, "":
		return fsblob.New(conf.Blob.Dir)
	case blob.DriverMemory:
		return memblob.New(), nil
	case blob.DriverS3:
		return s3blob.New(ctx, conf.Blob)
	default:
		return nil, errors.Errorf("unknown blob driver %q", conf.Blob.Driver)
	}
}
