package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/corpacademy/client-go/core/report"
)

func (cli *commandLine) runQueue(ctx context.Context) error {
	usr, err := cli.requireUser(ctx)
	if err != nil {
		return err
	}
	if !usr.CanReviewReports() {
		return report.ErrPermissionDenied
	}
	if err = cli.rptSvc.Refresh(ctx); err != nil {
		return err
	}

	queue := cli.rptSvc.Queue()
	if len(queue) == 0 {
		fmt.Fprintln(cli.out, "nothing to review")
		return nil
	}
	for _, entry := range queue {
		fmt.Fprintf(cli.out, "[%d] day %d  %s  by %s <%s>\n",
			entry.ID, entry.DayNumber, entry.Status, entry.UserFullName, entry.UserEmail)
	}
	return nil
}

func (cli *commandLine) runDecide(ctx context.Context, args []string) error {
	decideCmd := flag.NewFlagSet("decide", flag.ExitOnError)
	id := decideCmd.Int("id", 0, "The report id to review.")
	action := decideCmd.String("action", "", "ACCEPTED or REVISION.")
	comment := decideCmd.String("comment", "", "Mentor comment; required for REVISION.")
	if err := decideCmd.Parse(args); err != nil {
		return err
	}
	if *id == 0 || *action == "" {
		decideCmd.Usage()
		return errHelp
	}
	if _, err := cli.requireUser(ctx); err != nil {
		return err
	}
	if err := cli.rptSvc.Refresh(ctx); err != nil {
		return err
	}

	rpt, err := cli.rptSvc.Decide(ctx, *id, report.MentorDecision{
		Action:        strings.ToUpper(*action),
		MentorComment: *comment,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "report %d is now %s\n", rpt.ID, rpt.Status)
	return nil
}
