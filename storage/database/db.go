package database

import (
	"database/sql"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/brightloop/brightloop/core"
	appfs "github.com/brightloop/brightloop/fs"
)

const (
	// MigrationsDir is the directory of the SQL migrations within appfs.FS.
	MigrationsDir = "migrations"

	maintenanceDB   = "postgres"
	maxOpenConns    = 20
	maxIdleConns    = 5
	connMaxLifetime = 30 * time.Minute
	pingAttempts    = 30
)

func init() {
	goose.SetBaseFS(appfs.FS)
}

// dsn builds the connection URL of dbName, as the admin role when admin is set.
func dsn(dbName string, admin bool, conf core.DatabaseConfig) string {
	user := url.UserPassword(conf.User, conf.Password)
	if admin && conf.AdminUser != "" {
		user = url.UserPassword(conf.AdminUser, conf.AdminPassword)
	}

	q := make(url.Values)
	q.Set("sslmode", "require")
	if conf.DisableTLS {
		q.Set("sslmode", "disable")
	}
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   "postgres",
		User:     user,
		Host:     conf.Address(),
		Path:     dbName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Open returns a connection pool to the application database. It does not wait for the server.
func Open(conf *core.Config) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn(conf.Database.Name, false, conf.Database))
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	return db, nil
}

// Ping waits for the database to be ready, 100ms longer between each attempt.
func Ping(db *sql.DB) error {
	var err error
	for attempt := 1; attempt <= pingAttempts; attempt++ {
		if err = db.Ping(); err == nil {
			return nil
		}
		time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
	}
	return errors.Wrap(err, "DB ping timeout")
}

// CreateIfNotExist creates the application role (as the admin role) and then the
// application database (as the application role) when they are missing.
func CreateIfNotExist(conf *core.Config) error {
	admin, err := sqlx.Open("postgres", dsn(maintenanceDB, true, conf.Database))
	if err != nil {
		return errors.Wrap(err, "opening maintenance database")
	}
	defer func() { _ = admin.Close() }()

	if err = Ping(admin.DB); err != nil {
		return errors.Wrap(err, "pinging database")
	}
	if err = createAppRole(admin, conf.Database); err != nil {
		return err
	}

	app, err := sqlx.Open("postgres", dsn(maintenanceDB, false, conf.Database))
	if err != nil {
		return errors.Wrap(err, "opening maintenance database")
	}
	defer func() { _ = app.Close() }()
	return createAppDB(app, conf.Database)
}

func createAppRole(db *sqlx.DB, conf core.DatabaseConfig) error {
	if conf.User == "" {
		return nil
	}
	var exists bool
	if err := db.Get(&exists, "SELECT EXISTS (SELECT 1 FROM pg_roles WHERE rolname = $1)", conf.User); err != nil {
		return errors.Wrap(err, "checking app user")
	}
	if exists {
		return nil
	}
	q := "CREATE USER " + pq.QuoteIdentifier(conf.User) + " CREATEDB ENCRYPTED PASSWORD " + pq.QuoteLiteral(conf.Password)
	_, err := db.Exec(q)
	return errors.Wrap(err, "creating app user")
}

func createAppDB(db *sqlx.DB, conf core.DatabaseConfig) error {
	var exists bool
	if err := db.Get(&exists, "SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", conf.Name); err != nil {
		return errors.Wrap(err, "checking database")
	}
	if exists {
		return nil
	}
	_, err := db.Exec("CREATE DATABASE " + pq.QuoteIdentifier(conf.Name))
	return errors.Wrap(err, "creating database")
}

// Migrate applies the pending migrations embedded in appfs.FS.
func Migrate(db *sql.DB) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "setting goose dialect")
	}
	return errors.Wrap(goose.Up(db, MigrationsDir), "migrating database")
}
