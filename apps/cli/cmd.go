package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/corpacademy/client-go/core/course"
	"github.com/corpacademy/client-go/core/report"
	"github.com/corpacademy/client-go/core/user"
	tokensvc "github.com/corpacademy/client-go/services/token"
	"github.com/corpacademy/client-go/storage/httpapi"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	out    io.Writer
	tokens *tokensvc.FileStore
	api    *httpapi.Client
	sess   *user.Session
	usrSvc *user.Service
	rptSvc *report.Service
	crsSvc *course.Service
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -email EMAIL                                - log in (password prompted)")
	fmt.Fprintln(cli.out, "  logout                                            - drop the stored token")
	fmt.Fprintln(cli.out, "  whoami                                            - show the logged-in user")
	fmt.Fprintln(cli.out, "  courses [-filter ALL|ACTIVE|COMPLETED]            - list my courses")
	fmt.Fprintln(cli.out, "  catalog                                           - list the course catalog")
	fmt.Fprintln(cli.out, "  start -id COURSE                                  - start an assigned course")
	fmt.Fprintln(cli.out, "  lesson -id LESSON [-undo]                         - mark a lesson (in)complete")
	fmt.Fprintln(cli.out, "  standup -day N -done TEXT -plan TEXT -blockers TEXT - submit a standup report")
	fmt.Fprintln(cli.out, "  reports                                           - list my reports")
	fmt.Fprintln(cli.out, "  history -id REPORT                                - show a report's revisions")
	fmt.Fprintln(cli.out, "  revise -id REPORT -done TEXT -plan TEXT -blockers TEXT - resubmit after revision")
	fmt.Fprintln(cli.out, "  queue                                             - list reports awaiting my review")
	fmt.Fprintln(cli.out, "  decide -id REPORT -action ACCEPTED|REVISION [-comment TEXT] - review a report")
	fmt.Fprintln(cli.out, "  streak                                            - show my submission streak")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	switch args[1] {
	case "login":
		return cli.runLogin(ctx, args[2:])
	case "logout":
		cli.usrSvc.Logout()
		cli.tokens.Invalidate()
		fmt.Fprintln(cli.out, "logged out")
		return nil
	case "whoami":
		return cli.runWhoami(ctx)
	case "courses":
		return cli.runCourses(ctx, args[2:])
	case "catalog":
		return cli.runCatalog(ctx)
	case "start":
		return cli.runStartCourse(ctx, args[2:])
	case "lesson":
		return cli.runLesson(ctx, args[2:])
	case "standup":
		return cli.runStandup(ctx, args[2:])
	case "reports":
		return cli.runReports(ctx)
	case "history":
		return cli.runHistory(ctx, args[2:])
	case "revise":
		return cli.runRevise(ctx, args[2:])
	case "queue":
		return cli.runQueue(ctx)
	case "decide":
		return cli.runDecide(ctx, args[2:])
	case "streak":
		return cli.runStreak(ctx)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) runLogin(ctx context.Context, args []string) error {
	loginCmd := flag.NewFlagSet("login", flag.ExitOnError)
	email := loginCmd.String("email", "", "The account's email. The password will be prompted next.")
	if err := loginCmd.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		loginCmd.Usage()
		return errHelp
	}

	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Fprintln(cli.out)
	if err != nil {
		return err
	}
	if len(pwd) == 0 {
		loginCmd.Usage()
		return errHelp
	}

	token, err := cli.api.Login(ctx, *email, string(pwd))
	if err != nil {
		return err
	}
	if err = cli.tokens.Save(token); err != nil {
		return err
	}
	usr, err := cli.usrSvc.Reload(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "logged in as %s (%s)\n", usr.FullName, usr.Role)
	return nil
}

func (cli *commandLine) runWhoami(ctx context.Context) error {
	usr, err := cli.usrSvc.Me(ctx)
	if err != nil {
		// backend unreachable; the stored token's claims still identify us
		if claims, cErr := cli.tokens.Claims(); cErr == nil && claims.Email != "" {
			fmt.Fprintf(cli.out, "%s role=%s (from stored token)\n", claims.Email, claims.Role)
			return nil
		}
		return err
	}
	fmt.Fprintf(cli.out, "%s <%s> role=%s\n", usr.FullName, usr.Email, usr.Role)
	return nil
}

// requireUser resolves the identity for commands that need one; with a stored
// token this is a single /users/me round-trip on first use.
func (cli *commandLine) requireUser(ctx context.Context) (user.User, error) {
	return cli.usrSvc.Me(ctx)
}
