package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/corpacademy/client-go/core/report"
)

func (cli *commandLine) runStandup(ctx context.Context, args []string) error {
	standupCmd := flag.NewFlagSet("standup", flag.ExitOnError)
	day := standupCmd.Int("day", 0, "The onboarding day number.")
	done := standupCmd.String("done", "", "What was done today.")
	plan := standupCmd.String("plan", "", "The plan for tomorrow.")
	blockers := standupCmd.String("blockers", "", "Current blockers, if any.")
	if err := standupCmd.Parse(args); err != nil {
		return err
	}
	if _, err := cli.requireUser(ctx); err != nil {
		return err
	}

	rpt, err := cli.rptSvc.Submit(ctx, report.NewReport{
		DayNumber:    *day,
		TextDone:     *done,
		TextPlan:     *plan,
		TextBlockers: *blockers,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "submitted report %d for day %d (%s)\n", rpt.ID, rpt.DayNumber, rpt.Status)
	return nil
}

func (cli *commandLine) runReports(ctx context.Context) error {
	if _, err := cli.requireUser(ctx); err != nil {
		return err
	}
	if err := cli.rptSvc.Refresh(ctx); err != nil {
		return err
	}

	mine := cli.rptSvc.Mine()
	if len(mine) == 0 {
		fmt.Fprintln(cli.out, "no reports yet")
		return nil
	}
	for _, rpt := range mine {
		cli.printReport(rpt)
	}
	return nil
}

func (cli *commandLine) runHistory(ctx context.Context, args []string) error {
	historyCmd := flag.NewFlagSet("history", flag.ExitOnError)
	id := historyCmd.Int("id", 0, "The report id.")
	if err := historyCmd.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		historyCmd.Usage()
		return errHelp
	}
	if _, err := cli.requireUser(ctx); err != nil {
		return err
	}

	_, revs, err := cli.rptSvc.ToggleHistory(ctx, *id)
	if err != nil {
		return err
	}
	if len(revs) == 0 {
		fmt.Fprintln(cli.out, "no revisions")
		return nil
	}
	for _, rev := range revs {
		fmt.Fprintf(cli.out, "%s  %s", rev.CreatedAt.Format(time.RFC3339), rev.Status)
		if rev.MentorComment != "" {
			fmt.Fprintf(cli.out, "  (%s)", rev.MentorComment)
		}
		fmt.Fprintln(cli.out)
	}
	return nil
}

func (cli *commandLine) runRevise(ctx context.Context, args []string) error {
	reviseCmd := flag.NewFlagSet("revise", flag.ExitOnError)
	id := reviseCmd.Int("id", 0, "The report id to revise.")
	done := reviseCmd.String("done", "", "What was done today.")
	plan := reviseCmd.String("plan", "", "The plan for tomorrow.")
	blockers := reviseCmd.String("blockers", "", "Current blockers, if any.")
	if err := reviseCmd.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		reviseCmd.Usage()
		return errHelp
	}
	if _, err := cli.requireUser(ctx); err != nil {
		return err
	}
	if err := cli.rptSvc.Refresh(ctx); err != nil {
		return err
	}

	draft, err := cli.rptSvc.BeginRevision(*id)
	if err != nil {
		return err
	}
	// flags left empty keep the previous text
	if *done != "" {
		draft.TextDone = *done
	}
	if *plan != "" {
		draft.TextPlan = *plan
	}
	if *blockers != "" {
		draft.TextBlockers = *blockers
	}

	rpt, err := cli.rptSvc.ReviseAndResubmit(ctx, *id, draft)
	if err != nil {
		cli.rptSvc.CancelRevision()
		return err
	}
	fmt.Fprintf(cli.out, "resubmitted report %d (%s)\n", rpt.ID, rpt.Status)
	return nil
}

func (cli *commandLine) runStreak(ctx context.Context) error {
	if _, err := cli.requireUser(ctx); err != nil {
		return err
	}
	if err := cli.rptSvc.Refresh(ctx); err != nil {
		return err
	}

	st := report.ComputeStreak(cli.rptSvc.Mine(), time.Now())
	fmt.Fprintf(cli.out, "current streak: %d day(s), best: %d\n", st.Current, st.Max)
	return nil
}

func (cli *commandLine) printReport(rpt report.Report) {
	fmt.Fprintf(cli.out, "[%d] day %d  %s", rpt.ID, rpt.DayNumber, rpt.Status)
	if rpt.MentorComment != "" {
		fmt.Fprintf(cli.out, "  mentor: %s", rpt.MentorComment)
	}
	fmt.Fprintln(cli.out)
}
