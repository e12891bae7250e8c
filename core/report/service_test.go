package report_test

import (
	"context"
	"errors"
	"testing"

	"github.com/corpacademy/client-go/core"
	"github.com/corpacademy/client-go/core/report"
	"github.com/corpacademy/client-go/core/user"
	"github.com/corpacademy/client-go/storage/inmem"
	testutil "github.com/corpacademy/client-go/tests"
)

// countingRepo tracks how many remote calls an operation makes.
type countingRepo struct {
	repo  report.Repository
	calls int
}

func (r *countingRepo) CreateReport(ctx context.Context, nr report.NewReport) (report.Report, error) {
	r.calls++
	return r.repo.CreateReport(ctx, nr)
}

func (r *countingRepo) UpdateReport(ctx context.Context, id int, ru report.ReportUpdate) (report.Report, error) {
	r.calls++
	return r.repo.UpdateReport(ctx, id, ru)
}

func (r *countingRepo) ApplyMentorDecision(ctx context.Context, id int, md report.MentorDecision) (report.Report, error) {
	r.calls++
	return r.repo.ApplyMentorDecision(ctx, id, md)
}

func (r *countingRepo) QueryMyReports(ctx context.Context) ([]report.Report, error) {
	r.calls++
	return r.repo.QueryMyReports(ctx)
}

func (r *countingRepo) QueryMentorReports(ctx context.Context) ([]report.QueueEntry, error) {
	r.calls++
	return r.repo.QueryMentorReports(ctx)
}

func (r *countingRepo) QueryReportHistory(ctx context.Context, id int) ([]report.Revision, error) {
	r.calls++
	return r.repo.QueryReportHistory(ctx, id)
}

func newTestEngine(usr user.User) (*report.Service, *inmem.DB, *user.Session, *countingRepo) {
	db := inmem.NewDB()
	db.SetMe(usr)
	sess := user.NewSession()
	sess.SetUser(usr)
	repo := &countingRepo{repo: inmem.NewReportRepository(db)}
	validate, translator := testutil.NewValidator()
	svc := report.NewService(repo, sess, core.NopLogger{}, validate, translator)
	return svc, db, sess, repo
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{name: "pending to accepted", from: report.StatusPending, to: report.StatusAccepted, want: true},
		{name: "pending to revision", from: report.StatusPending, to: report.StatusRevision, want: true},
		{name: "revision to pending", from: report.StatusRevision, to: report.StatusPending, want: true},
		{name: "revision to accepted", from: report.StatusRevision, to: report.StatusAccepted, want: false},
		{name: "accepted is terminal (pending)", from: report.StatusAccepted, to: report.StatusPending, want: false},
		{name: "accepted is terminal (revision)", from: report.StatusAccepted, to: report.StatusRevision, want: false},
		{name: "pending to pending", from: report.StatusPending, to: report.StatusPending, want: false},
		{name: "unknown status", from: "BOGUS", to: report.StatusPending, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := report.CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestSubmit(t *testing.T) {
	svc, _, _, repo := newTestEngine(testutil.Employee(1))

	rpt, err := svc.Submit(context.Background(), testutil.NewReport(3))
	testutil.MustNoErr(t, err)
	if rpt.Status != report.StatusPending {
		t.Errorf("Submit() status = %s, want %s", rpt.Status, report.StatusPending)
	}
	if rpt.DayNumber != 3 {
		t.Errorf("Submit() day = %d, want 3", rpt.DayNumber)
	}
	if mine := svc.Mine(); len(mine) != 1 || mine[0].ID != rpt.ID {
		t.Errorf("Mine() = %+v, want the submitted report", mine)
	}
	if repo.calls != 1 {
		t.Errorf("remote calls = %d, want 1", repo.calls)
	}
}

func TestSubmit_Validation(t *testing.T) {
	tests := []struct {
		name string
		nr   report.NewReport
	}{
		{name: "blank done text", nr: report.NewReport{DayNumber: 1, TextDone: "   ", TextPlan: "p", TextBlockers: "b"}},
		{name: "blank plan text", nr: report.NewReport{DayNumber: 1, TextDone: "d", TextPlan: "", TextBlockers: "b"}},
		{name: "blank blockers text", nr: report.NewReport{DayNumber: 1, TextDone: "d", TextPlan: "p", TextBlockers: "\t"}},
		{name: "day number zero", nr: report.NewReport{DayNumber: 0, TextDone: "d", TextPlan: "p", TextBlockers: "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _, repo := newTestEngine(testutil.Employee(1))
			if _, err := svc.Submit(context.Background(), tt.nr); !core.IsValidationError(err) {
				t.Errorf("Submit() error = %v, want ValidationError", err)
			}
			if repo.calls != 0 {
				t.Errorf("remote calls = %d, want 0", repo.calls)
			}
		})
	}
}

func TestSubmit_NotAuthenticated(t *testing.T) {
	svc, _, sess, _ := newTestEngine(testutil.Employee(1))
	sess.Clear()

	if _, err := svc.Submit(context.Background(), testutil.NewReport(1)); !errors.Is(err, user.ErrNotAuthenticated) {
		t.Errorf("Submit() error = %v, want ErrNotAuthenticated", err)
	}
}

func TestDecide_RevisionRequiresComment(t *testing.T) {
	for _, comment := range []string{"", "   ", "\t\n"} {
		svc, db, _, repo := newTestEngine(testutil.Mentor(2))
		db.SeedReport(testutil.Employee(1), report.Report{DayNumber: 1, TextDone: "d", TextPlan: "p", TextBlockers: "b"})
		testutil.MustNoErr(t, svc.Refresh(context.Background()))
		baseline := repo.calls

		_, err := svc.Decide(context.Background(), svc.Queue()[0].ID, report.MentorDecision{
			Action:        report.ActionRevision,
			MentorComment: comment,
		})
		if !core.IsValidationError(err) {
			t.Errorf("Decide(REVISION, %q) error = %v, want ValidationError", comment, err)
		}
		if repo.calls != baseline {
			t.Errorf("Decide(REVISION, %q) issued a remote call", comment)
		}
	}
}

func TestDecide_AcceptedNeedsNoComment(t *testing.T) {
	svc, db, _, _ := newTestEngine(testutil.Mentor(2))
	db.SeedReport(testutil.Employee(1), report.Report{DayNumber: 1, TextDone: "d", TextPlan: "p", TextBlockers: "b"})
	testutil.MustNoErr(t, svc.Refresh(context.Background()))

	rpt, err := svc.Decide(context.Background(), svc.Queue()[0].ID, report.MentorDecision{Action: report.ActionAccepted})
	testutil.MustNoErr(t, err)
	if rpt.Status != report.StatusAccepted {
		t.Errorf("Decide(ACCEPTED) status = %s, want %s", rpt.Status, report.StatusAccepted)
	}
	if got := svc.Queue()[0].Status; got != report.StatusAccepted {
		t.Errorf("queue cache status = %s, want %s", got, report.StatusAccepted)
	}
}

func TestDecide_RoleGuard(t *testing.T) {
	for _, role := range []string{user.RoleEmployee, user.RoleLDManager} {
		usr := user.User{ID: 2, FullName: "U", Email: "u@test.test", Role: role}
		svc, _, _, repo := newTestEngine(usr)

		_, err := svc.Decide(context.Background(), 1, report.MentorDecision{Action: report.ActionAccepted})
		if !errors.Is(err, report.ErrPermissionDenied) {
			t.Errorf("Decide() as %s error = %v, want ErrPermissionDenied", role, err)
		}
		if repo.calls != 0 {
			t.Errorf("Decide() as %s issued a remote call", role)
		}
	}
}

func TestDecide_OnlyPendingReviewable(t *testing.T) {
	tests := []struct {
		name   string
		status string
		md     report.MentorDecision
	}{
		{name: "accepted is terminal", status: report.StatusAccepted, md: report.MentorDecision{Action: report.ActionAccepted}},
		{name: "accepted cannot be sent back", status: report.StatusAccepted, md: report.MentorDecision{Action: report.ActionRevision, MentorComment: "c"}},
		{name: "under revision cannot be accepted", status: report.StatusRevision, md: report.MentorDecision{Action: report.ActionAccepted}},
		{name: "under revision cannot be sent back again", status: report.StatusRevision, md: report.MentorDecision{Action: report.ActionRevision, MentorComment: "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, db, _, _ := newTestEngine(testutil.Mentor(2))
			db.SeedReport(testutil.Employee(1), report.Report{
				DayNumber: 1, TextDone: "d", TextPlan: "p", TextBlockers: "b",
				Status: tt.status,
			})
			testutil.MustNoErr(t, svc.Refresh(context.Background()))

			_, err := svc.Decide(context.Background(), svc.Queue()[0].ID, tt.md)
			if !errors.Is(err, report.ErrNotPending) {
				t.Errorf("Decide() error = %v, want ErrNotPending", err)
			}
		})
	}
}

func TestReviseAndResubmit_Guards(t *testing.T) {
	employee := testutil.Employee(1)
	update := report.ReportUpdate{TextDone: "d2", TextPlan: "p2", TextBlockers: "b2"}

	t.Run("unknown report", func(t *testing.T) {
		svc, _, _, _ := newTestEngine(employee)
		testutil.MustNoErr(t, svc.Refresh(context.Background()))
		if _, err := svc.ReviseAndResubmit(context.Background(), 99, update); !errors.Is(err, report.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("not under revision", func(t *testing.T) {
		svc, db, _, _ := newTestEngine(employee)
		db.SeedReport(employee, report.Report{DayNumber: 1, TextDone: "d", TextPlan: "p", TextBlockers: "b"})
		testutil.MustNoErr(t, svc.Refresh(context.Background()))
		if _, err := svc.ReviseAndResubmit(context.Background(), svc.Mine()[0].ID, update); !errors.Is(err, report.ErrNotUnderRevision) {
			t.Errorf("error = %v, want ErrNotUnderRevision", err)
		}
	})

	t.Run("not the owner", func(t *testing.T) {
		svc, db, sess, _ := newTestEngine(employee)
		rpt := db.SeedReport(employee, report.Report{
			DayNumber: 1, TextDone: "d", TextPlan: "p", TextBlockers: "b",
			Status: report.StatusRevision,
		})
		testutil.MustNoErr(t, svc.Refresh(context.Background()))

		// cache still holds the report but the session identity changed underneath
		sess.SetUser(testutil.Employee(42))
		if _, err := svc.ReviseAndResubmit(context.Background(), rpt.ID, update); !errors.Is(err, report.ErrPermissionDenied) {
			t.Errorf("error = %v, want ErrPermissionDenied", err)
		}
	})

	t.Run("blank revised text", func(t *testing.T) {
		svc, db, _, repo := newTestEngine(employee)
		rpt := db.SeedReport(employee, report.Report{
			DayNumber: 1, TextDone: "d", TextPlan: "p", TextBlockers: "b",
			Status: report.StatusRevision,
		})
		testutil.MustNoErr(t, svc.Refresh(context.Background()))
		baseline := repo.calls

		bad := report.ReportUpdate{TextDone: "  ", TextPlan: "p2", TextBlockers: "b2"}
		if _, err := svc.ReviseAndResubmit(context.Background(), rpt.ID, bad); !core.IsValidationError(err) {
			t.Errorf("error = %v, want ValidationError", err)
		}
		if repo.calls != baseline {
			t.Error("invalid revision must not reach the network")
		}
	})
}

func TestEditSlot_LastWriterWins(t *testing.T) {
	employee := testutil.Employee(1)
	svc, db, sess, _ := newTestEngine(employee)
	first := db.SeedReport(employee, report.Report{
		DayNumber: 1, TextDone: "d1", TextPlan: "p1", TextBlockers: "b1",
		Status: report.StatusRevision,
	})
	second := db.SeedReport(employee, report.Report{
		DayNumber: 2, TextDone: "d2", TextPlan: "p2", TextBlockers: "b2",
		Status: report.StatusRevision,
	})
	testutil.MustNoErr(t, svc.Refresh(context.Background()))

	draft, err := svc.BeginRevision(first.ID)
	testutil.MustNoErr(t, err)
	if draft.TextDone != "d1" {
		t.Errorf("draft prefill = %q, want %q", draft.TextDone, "d1")
	}

	if _, err = svc.BeginRevision(second.ID); err != nil {
		t.Fatalf("BeginRevision(second) failed: %v", err)
	}
	if id, ok := sess.EditingReportID(); !ok || id != second.ID {
		t.Errorf("editing slot = %d (%v), want %d", id, ok, second.ID)
	}

	svc.CancelRevision()
	if _, ok := sess.EditingReportID(); ok {
		t.Error("editing slot should be empty after CancelRevision")
	}
}

func TestToggleHistory_CachesAcrossCollapse(t *testing.T) {
	svc, db, _, repo := newTestEngine(testutil.Employee(1))

	rpt := db.SeedReport(testutil.Employee(1), report.Report{
		DayNumber: 1, TextDone: "d", TextPlan: "p", TextBlockers: "b",
	})
	// two status changes -> two snapshots
	backend := inmem.NewReportRepository(db)
	_, err := backend.ApplyMentorDecision(context.Background(), rpt.ID, report.MentorDecision{Action: report.ActionRevision, MentorComment: "more detail"})
	testutil.MustNoErr(t, err)
	_, err = backend.UpdateReport(context.Background(), rpt.ID, report.ReportUpdate{TextDone: "d2", TextPlan: "p2", TextBlockers: "b2"})
	testutil.MustNoErr(t, err)
	testutil.MustNoErr(t, svc.Refresh(context.Background()))
	baseline := repo.calls

	open, revs, err := svc.ToggleHistory(context.Background(), rpt.ID)
	testutil.MustNoErr(t, err)
	if !open || len(revs) != 2 {
		t.Fatalf("first expand: open=%v revs=%d, want open with 2 snapshots", open, len(revs))
	}
	if !revs[0].CreatedAt.Before(revs[1].CreatedAt) {
		t.Error("history must be ordered oldest first")
	}
	if repo.calls != baseline+1 {
		t.Errorf("remote calls = %d, want %d", repo.calls, baseline+1)
	}

	// collapse keeps the cache
	if open, _, err = svc.ToggleHistory(context.Background(), rpt.ID); err != nil || open {
		t.Fatalf("collapse: open=%v err=%v, want closed and no error", open, err)
	}
	open, revs, err = svc.ToggleHistory(context.Background(), rpt.ID)
	testutil.MustNoErr(t, err)
	if !open || len(revs) != 2 {
		t.Fatalf("re-expand: open=%v revs=%d", open, len(revs))
	}
	if repo.calls != baseline+1 {
		t.Errorf("re-expansion refetched: remote calls = %d, want %d", repo.calls, baseline+1)
	}

	// a full reload drops the cache
	testutil.MustNoErr(t, svc.Refresh(context.Background()))
	_, _, err = svc.ToggleHistory(context.Background(), rpt.ID)
	testutil.MustNoErr(t, err)
	if repo.calls != baseline+3 { // refresh + new history fetch
		t.Errorf("after reload: remote calls = %d, want %d", repo.calls, baseline+3)
	}
}

func TestRemoteFailureLeavesStateUntouched(t *testing.T) {
	svc, db, _, _ := newTestEngine(testutil.Mentor(2))
	db.SeedReport(testutil.Employee(1), report.Report{DayNumber: 1, TextDone: "d", TextPlan: "p", TextBlockers: "b"})
	testutil.MustNoErr(t, svc.Refresh(context.Background()))

	boom := core.NewRemoteError(500, "standup service unavailable")
	db.FailNext(boom)

	_, err := svc.Decide(context.Background(), svc.Queue()[0].ID, report.MentorDecision{Action: report.ActionAccepted})
	if err == nil || err.Error() != "standup service unavailable" {
		t.Errorf("Decide() error = %v, want the remote message verbatim", err)
	}
	if got := svc.Queue()[0].Status; got != report.StatusPending {
		t.Errorf("queue cache status = %s, want untouched %s", got, report.StatusPending)
	}
}

// gatedRepo blocks mentor decisions until released, to race two transitions.
type gatedRepo struct {
	report.Repository
	entered chan struct{}
	release chan struct{}
}

func (r *gatedRepo) ApplyMentorDecision(ctx context.Context, id int, md report.MentorDecision) (report.Report, error) {
	r.entered <- struct{}{}
	<-r.release
	return r.Repository.ApplyMentorDecision(ctx, id, md)
}

func TestInFlightGuard(t *testing.T) {
	mentor := testutil.Mentor(2)
	db := inmem.NewDB()
	db.SetMe(mentor)
	rpt := db.SeedReport(testutil.Employee(1), report.Report{DayNumber: 1, TextDone: "d", TextPlan: "p", TextBlockers: "b"})

	gated := &gatedRepo{
		Repository: inmem.NewReportRepository(db),
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	sess := user.NewSession()
	sess.SetUser(mentor)
	validate, translator := testutil.NewValidator()
	svc := report.NewService(gated, sess, core.NopLogger{}, validate, translator)
	testutil.MustNoErr(t, svc.Refresh(context.Background()))

	done := make(chan error, 1)
	go func() {
		_, err := svc.Decide(context.Background(), rpt.ID, report.MentorDecision{Action: report.ActionAccepted})
		done <- err
	}()
	<-gated.entered // first call is now in flight

	if _, err := svc.Decide(context.Background(), rpt.ID, report.MentorDecision{Action: report.ActionAccepted}); !errors.Is(err, report.ErrBusy) {
		t.Errorf("second concurrent Decide() error = %v, want ErrBusy", err)
	}

	close(gated.release)
	testutil.MustNoErr(t, <-done)

	// the guard is released once the call resolves
	if _, err := svc.Decide(context.Background(), rpt.ID, report.MentorDecision{Action: report.ActionAccepted}); !errors.Is(err, report.ErrNotPending) {
		t.Errorf("after resolution error = %v, want ErrNotPending (already accepted)", err)
	}
}

func TestScenario_FullLifecycle(t *testing.T) {
	ctx := context.Background()
	employee, mentor := testutil.Employee(1), testutil.Mentor(2)

	db := inmem.NewDB()
	validate, translator := testutil.NewValidator()

	empSess := user.NewSession()
	empSess.SetUser(employee)
	empSvc := report.NewService(inmem.NewReportRepository(db), empSess, core.NopLogger{}, validate, translator)

	mentorSess := user.NewSession()
	mentorSess.SetUser(mentor)
	mentorSvc := report.NewService(inmem.NewReportRepository(db), mentorSess, core.NopLogger{}, validate, translator)

	// day 3 submitted -> PENDING
	db.SetMe(employee)
	rpt, err := empSvc.Submit(ctx, testutil.NewReport(3))
	testutil.MustNoErr(t, err)
	if rpt.Status != report.StatusPending {
		t.Fatalf("submitted status = %s, want PENDING", rpt.Status)
	}

	// mentor sends it back with a comment
	db.SetMe(mentor)
	testutil.MustNoErr(t, mentorSvc.Refresh(ctx))
	rpt, err = mentorSvc.Decide(ctx, rpt.ID, report.MentorDecision{Action: report.ActionRevision, MentorComment: "fix plan"})
	testutil.MustNoErr(t, err)
	if rpt.Status != report.StatusRevision || rpt.MentorComment != "fix plan" {
		t.Fatalf("after decision: status=%s comment=%q, want REVISION/\"fix plan\"", rpt.Status, rpt.MentorComment)
	}

	// learner revises: same id, PENDING again, two history entries
	db.SetMe(employee)
	testutil.MustNoErr(t, empSvc.Refresh(ctx))
	if _, err = empSvc.BeginRevision(rpt.ID); err != nil {
		t.Fatalf("BeginRevision() failed: %v", err)
	}
	updated, err := empSvc.ReviseAndResubmit(ctx, rpt.ID, report.ReportUpdate{
		TextDone: "done v2", TextPlan: "plan v2", TextBlockers: "none",
	})
	testutil.MustNoErr(t, err)
	if updated.ID != rpt.ID {
		t.Fatalf("revision changed the report id: %d -> %d", rpt.ID, updated.ID)
	}
	if updated.Status != report.StatusPending {
		t.Fatalf("after revision status = %s, want PENDING", updated.Status)
	}
	if _, ok := empSess.EditingReportID(); ok {
		t.Error("edit slot should be cleared after a successful resubmit")
	}
	_, revs, err := empSvc.ToggleHistory(ctx, rpt.ID)
	testutil.MustNoErr(t, err)
	if len(revs) != 2 {
		t.Fatalf("history entries = %d, want 2", len(revs))
	}

	// mentor accepts: terminal
	db.SetMe(mentor)
	testutil.MustNoErr(t, mentorSvc.Refresh(ctx))
	rpt, err = mentorSvc.Decide(ctx, rpt.ID, report.MentorDecision{Action: report.ActionAccepted})
	testutil.MustNoErr(t, err)
	if rpt.Status != report.StatusAccepted {
		t.Fatalf("after accept status = %s, want ACCEPTED", rpt.Status)
	}

	// a further revise attempt is rejected
	db.SetMe(employee)
	testutil.MustNoErr(t, empSvc.Refresh(ctx))
	if _, err = empSvc.BeginRevision(rpt.ID); !errors.Is(err, report.ErrNotUnderRevision) {
		t.Errorf("BeginRevision() on accepted report error = %v, want ErrNotUnderRevision", err)
	}
}
