package main

import (
	"log"
	"os"

	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/user"
	emailsvc "github.com/brightloop/brightloop/services/email"
	logsvc "github.com/brightloop/brightloop/services/logger"
	"github.com/brightloop/brightloop/storage/database"
	dummydb "github.com/brightloop/brightloop/storage/database/dummy"
	sqlxrepos "github.com/brightloop/brightloop/storage/database/sqlx"
)

var logger *logsvc.RollbarLogger

func main() {
	defer os.Exit(0)

	conf := core.NewConfig()
	logger = logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	logger.Enable(!conf.Debug)
	defer logger.Flush()

	cli := commandLine{conf: conf}
	var usrRepo user.Repository

	switch conf.Database.Engine {
	case "memory":
		mem, err := dummydb.Open()
		errAndDie(err)
		usrRepo = dummydb.NewUserRepository(mem)
	default:
		db, err := database.Open(conf)
		errAndDie(err)
		defer func() { _ = db.Close() }()
		if len(os.Args) < 2 || os.Args[1] != "createdb" {
			errAndDie(database.Ping(db.DB))
		}
		cli.db = db.DB
		usrRepo = sqlxrepos.NewUserRepository(db)
	}

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	core.ParseEmailTemplates(logger, true)
	cli.usrSvc = user.NewService(usrRepo, mailSvc, conf)

	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		logger.Flush()
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal("admin setup failed", err)
	}
}
