package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // /debug/pprof
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/brightloop/brightloop/apps/api/echo"
	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/admission"
	"github.com/brightloop/brightloop/core/document"
	"github.com/brightloop/brightloop/core/rollstatement"
	"github.com/brightloop/brightloop/core/school"
	"github.com/brightloop/brightloop/core/student"
	"github.com/brightloop/brightloop/core/undo"
	"github.com/brightloop/brightloop/core/user"
	"github.com/brightloop/brightloop/core/website"
	emailsvc "github.com/brightloop/brightloop/services/email"
	logsvc "github.com/brightloop/brightloop/services/logger"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)
	defer logger.Flush()

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	repos, err := setUpRepositories(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = repos.close(); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()

	store, err := setUpStore(context.Background(), conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up blob store: %v", err), err)
	}

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	scheduler := undo.NewScheduler(conf.Undo.Window, logger)

	usrSvc := user.NewService(repos.users, mailSvc, conf)
	studentSvc := student.NewService(repos.students)
	admissionSvc := admission.NewService(repos.admissions, scheduler, store, conf)
	rollStmtSvc := rollstatement.NewService(repos.rollStatements, studentSvc, scheduler)
	schoolSvc := school.NewService(
		repos.schools, usrSvc, store, conf,
		studentSvc.PurgeSchool, admissionSvc.PurgeSchool, rollStmtSvc.PurgeSchool,
	)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	school.InitValidators(validate, translator)
	admission.InitValidators(validate, translator)
	rollstatement.InitValidators(validate, translator)

	core.ParseEmailTemplates(logger, true)

	user.LoadCommonPasswords(logger)

	docs, err := document.NewRenderer()
	if err != nil {
		logger.Fatal(fmt.Sprintf("parsing document templates: %v", err), err)
	}
	sites, err := website.NewRenderer()
	if err != nil {
		logger.Fatal(fmt.Sprintf("parsing site templates: %v", err), err)
	}

	deps := echoapi.ServerDeps{
		Conf:         conf,
		Logger:       logger,
		Validate:     validate,
		Translator:   translator,
		UserSvc:      usrSvc,
		SchoolSvc:    schoolSvc,
		StudentSvc:   studentSvc,
		AdmissionSvc: admissionSvc,
		RollStmtSvc:  rollStmtSvc,
		Documents:    docs,
		Sites:        sites,
		Store:        store,
	}

	if conf.Demo.Enabled {
		if err = echoapi.SeedDemo(context.Background(), deps, repos.schools); err != nil {
			logger.Fatal(fmt.Sprintf("seeding demo school: %v", err), err)
		}
		logger.Info("Demo mode enabled : " + echoapi.DemoEmail)
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("blob").Set(string(store.Driver()))

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(deps)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}

		// deletions still inside their undo window are committed
		scheduler.Flush(ctx)
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
