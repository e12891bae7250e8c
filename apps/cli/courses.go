package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/corpacademy/client-go/core/course"
)

func (cli *commandLine) runCourses(ctx context.Context, args []string) error {
	coursesCmd := flag.NewFlagSet("courses", flag.ExitOnError)
	filter := coursesCmd.String("filter", course.FilterAll, "ALL, ACTIVE or COMPLETED")
	if err := coursesCmd.Parse(args); err != nil {
		return err
	}
	if _, err := cli.requireUser(ctx); err != nil {
		return err
	}
	if err := cli.crsSvc.Refresh(ctx); err != nil {
		return err
	}

	list := course.Filter(cli.crsSvc.Mine(), strings.ToUpper(*filter))
	if len(list) == 0 {
		fmt.Fprintln(cli.out, "no courses")
		return nil
	}
	now := time.Now()
	for _, a := range list {
		cli.printCourse(a, now)
	}
	return nil
}

func (cli *commandLine) runCatalog(ctx context.Context) error {
	if _, err := cli.requireUser(ctx); err != nil {
		return err
	}
	if err := cli.crsSvc.RefreshCatalog(ctx); err != nil {
		return err
	}
	for _, a := range cli.crsSvc.Catalog() {
		fmt.Fprintf(cli.out, "[%d] %s\n", a.ID, a.Title)
	}
	return nil
}

func (cli *commandLine) runStartCourse(ctx context.Context, args []string) error {
	startCmd := flag.NewFlagSet("start", flag.ExitOnError)
	id := startCmd.Int("id", 0, "The course id to start.")
	if err := startCmd.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		startCmd.Usage()
		return errHelp
	}
	if _, err := cli.requireUser(ctx); err != nil {
		return err
	}
	if err := cli.crsSvc.Refresh(ctx); err != nil {
		return err
	}

	started, err := cli.crsSvc.Start(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Fprint(cli.out, "started: ")
	cli.printCourse(started, time.Now())
	return nil
}

func (cli *commandLine) runLesson(ctx context.Context, args []string) error {
	lessonCmd := flag.NewFlagSet("lesson", flag.ExitOnError)
	id := lessonCmd.Int("id", 0, "The lesson id.")
	undo := lessonCmd.Bool("undo", false, "Mark the lesson incomplete instead.")
	if err := lessonCmd.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		lessonCmd.Usage()
		return errHelp
	}
	if _, err := cli.requireUser(ctx); err != nil {
		return err
	}
	if err := cli.crsSvc.Refresh(ctx); err != nil {
		return err
	}

	if err := cli.crsSvc.CompleteLesson(ctx, *id, !*undo); err != nil {
		return err
	}
	now := time.Now()
	for _, a := range cli.crsSvc.Mine() {
		for _, l := range a.Lessons {
			if l.ID == *id {
				cli.printCourse(a, now)
			}
		}
	}
	return nil
}

func (cli *commandLine) printCourse(a course.Assignment, now time.Time) {
	line := fmt.Sprintf("[%d] %s (%s, %d%%)", a.ID, a.Title, a.Status, a.Progress())
	if a.Overdue(now) {
		line += " OVERDUE"
	}
	fmt.Fprintln(cli.out, line)
	for _, l := range a.Lessons {
		mark := " "
		if l.IsCompleted {
			mark = "x"
		}
		fmt.Fprintf(cli.out, "  [%s] %d. %s (lesson %d)\n", mark, l.Order, l.Title, l.ID)
	}
}
