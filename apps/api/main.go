package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/sayansi/apps/api/echo"
	"github.com/trezcool/sayansi/core"
	"github.com/trezcool/sayansi/core/contact"
	"github.com/trezcool/sayansi/core/enroll"
	"github.com/trezcool/sayansi/core/registration"
	"github.com/trezcool/sayansi/core/user"
	emailsvc "github.com/trezcool/sayansi/services/email"
	logsvc "github.com/trezcool/sayansi/services/logger"
	smssvc "github.com/trezcool/sayansi/services/sms"
	inmemdb "github.com/trezcool/sayansi/storage/inmem"
	"github.com/trezcool/sayansi/storage/mongodb"
)

type repos struct {
	user         user.Repository
	contact      contact.Repository
	registration registration.Repository
	enroll       enroll.Repository
	files        core.FileStore
}

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	db, err := setUpStorage(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}

	var mailSvc core.EmailService
	var smsSvc core.SMSService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
		smsSvc = smssvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
		smsSvc = smssvc.NewGatewayService(conf, logger)
	}

	usrSvc := user.NewService(conf, db.user, mailSvc)
	contactSvc := contact.NewService(db.contact)
	regSvc := registration.NewService(db.registration)
	enrollSvc := enroll.NewService(conf, db.enroll, db.files, mailSvc)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	contact.InitValidators(validate, translator)
	registration.InitValidators(validate, translator)
	enroll.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			UserSvc:    usrSvc,
			ContactSvc: contactSvc,
			RegSvc:     regSvc,
			EnrollSvc:  enrollSvc,
			SMSSvc:     smsSvc,
			Validate:   validate,
			Translator: translator,
		},
	)

	go server.Start()

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
	}
}

func setUpStorage(conf *core.Config) (repos, error) {
	switch conf.Database.Engine {
	case "mongodb":
		db, err := mongodb.Open(conf)
		if err != nil {
			return repos{}, err
		}
		if err = mongodb.EnsureIndexes(db); err != nil {
			return repos{}, err
		}
		files, err := mongodb.NewFileStore(db)
		if err != nil {
			return repos{}, err
		}
		return repos{
			user:         mongodb.NewUserRepository(db),
			contact:      mongodb.NewContactRepository(db),
			registration: mongodb.NewRegistrationRepository(db),
			enroll:       mongodb.NewEnrollRepository(db),
			files:        files,
		}, nil
	default: // memory
		db, err := inmemdb.Open()
		if err != nil {
			return repos{}, err
		}
		return repos{
			user:         inmemdb.NewUserRepository(db),
			contact:      inmemdb.NewContactRepository(db),
			registration: inmemdb.NewRegistrationRepository(db),
			enroll:       inmemdb.NewEnrollRepository(db),
			files:        inmemdb.NewFileStore(db),
		}, nil
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
