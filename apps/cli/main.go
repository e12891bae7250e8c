package main

import (
	"log"
	"os"

	"github.com/corpacademy/client-go/core"
	"github.com/corpacademy/client-go/core/course"
	"github.com/corpacademy/client-go/core/report"
	"github.com/corpacademy/client-go/core/user"
	logsvc "github.com/corpacademy/client-go/services/logger"
	tokensvc "github.com/corpacademy/client-go/services/token"
	"github.com/corpacademy/client-go/storage/httpapi"
)

func main() {
	defer os.Exit(0)

	std := log.New(os.Stdout, "ACADEMY : ", log.LstdFlags|log.Lmicroseconds)
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(std, conf)
	logger.Enable(!conf.Debug)

	validate, translator := core.NewValidators()
	report.InitValidators(validate, translator)

	tokens := tokensvc.NewFileStore(conf.TokenPath)
	api := httpapi.NewClient(conf, tokens, logger)
	sess := user.NewSession()
	tokens.OnInvalidate(sess.Clear)

	cli := commandLine{
		out:     os.Stdout,
		tokens:  tokens,
		api:     api,
		sess:    sess,
		usrSvc:  user.NewService(httpapi.NewUserRepository(api), sess),
		rptSvc:  report.NewService(httpapi.NewReportRepository(api), sess, logger, validate, translator),
		crsSvc:  course.NewService(httpapi.NewCourseRepository(api), sess, logger),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			std.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
