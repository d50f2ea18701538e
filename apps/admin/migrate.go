package main

import (
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/brightloop/brightloop/storage/database"
)

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errors.New("migrations need the postgres engine")
	}
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return gooseRunFunc(args[0], cli.db, database.MigrationsDir, args[1:]...)
}
