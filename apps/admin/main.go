package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/olety/Diplomatool/core"
	"github.com/olety/Diplomatool/core/faculty"
	"github.com/olety/Diplomatool/core/review"
	"github.com/olety/Diplomatool/core/thesis"
	"github.com/olety/Diplomatool/core/topic"
	"github.com/olety/Diplomatool/core/user"
	emailsvc "github.com/olety/Diplomatool/services/email"
	logsvc "github.com/olety/Diplomatool/services/logger"
	"github.com/olety/Diplomatool/storage/database"
	filestore "github.com/olety/Diplomatool/storage/files"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB; migrations are run through the migrate command
	repos, err := database.OpenRepositories(conf, false /* migrate */)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}

	storage, err := filestore.New(context.Background(), conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up file storage: %v", err), err)
	}

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	core.ParseEmailTemplates(conf, logger)
	user.LoadCommonPasswords(logger)

	// start CLI
	usrSvc := user.NewService(repos.User, mailSvc, conf)
	topicSvc := topic.NewService(repos.Topic, usrSvc, mailSvc)
	thesisSvc := thesis.NewService(repos.Thesis, topicSvc, storage)
	cli := commandLine{
		out:        os.Stdout,
		validate:   validate,
		translator: translator,
		usrSvc:     usrSvc,
		facultySvc: faculty.NewService(repos.Faculty),
		topicSvc:   topicSvc,
		thesisSvc:  thesisSvc,
		reviewSvc:  review.NewService(repos.Review, thesisSvc, usrSvc, storage, mailSvc, logger),
	}
	if repos.DB != nil {
		cli.db = repos.DB.DB
	}

	err = cli.run(os.Args)
	mailSvc.Wait() // commands may have queued notifications
	if cerr := repos.Close(); cerr != nil {
		logger.Error(fmt.Sprintf("closing database: %v", cerr), cerr)
	}
	if err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %v", err), err)
		}
		os.Exit(1)
	}
}
