package report

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/corpacademy/client-go/core"
	"github.com/corpacademy/client-go/core/user"
)

var (
	// errors
	ErrNotFound         = errors.New("report not found")
	ErrBusy             = errors.New("another operation on this report is still in progress")
	ErrNotPending       = errors.New("report is not awaiting review")
	ErrNotUnderRevision = errors.New("report is not awaiting revision")
	ErrPermissionDenied = errors.New("permission denied")

	errInvalidInput = errors.New("invalid input")
)

type (
	Repository interface {
		CreateReport(ctx context.Context, nr NewReport) (Report, error)
		UpdateReport(ctx context.Context, id int, ru ReportUpdate) (Report, error)
		ApplyMentorDecision(ctx context.Context, id int, md MentorDecision) (Report, error)
		QueryMyReports(ctx context.Context) ([]Report, error)
		// QueryMentorReports returns the pending reports of the reviewer's department.
		QueryMentorReports(ctx context.Context) ([]QueueEntry, error)
		// QueryReportHistory returns snapshots in whatever order the backend
		// keeps them; the service re-sorts oldest first.
		QueryReportHistory(ctx context.Context, id int) ([]Revision, error)
	}

	// Service owns the report lifecycle: submissions, revisions, mentor
	// decisions and the per-report history view. All caches are rebuilt from
	// server responses only; a failed remote call leaves them untouched.
	Service struct {
		repo       Repository
		sess       *user.Session
		logger     core.Logger
		validate   *validator.Validate
		translator ut.Translator

		mu          sync.Mutex
		mine        []Report
		queue       []QueueEntry
		history     map[int][]Revision
		historyOpen map[int]bool
		inflight    map[int]bool
	}
)

func NewService(repo Repository, sess *user.Session, logger core.Logger, validate *validator.Validate, translator ut.Translator) *Service {
	return &Service{
		repo:        repo,
		sess:        sess,
		logger:      logger,
		validate:    validate,
		translator:  translator,
		history:     make(map[int][]Revision),
		historyOpen: make(map[int]bool),
		inflight:    make(map[int]bool),
	}
}

func (svc *Service) validateStruct(v interface{}) error {
	if err := svc.validate.Struct(v); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			return core.NewValidationError(errInvalidInput, core.TranslateValidationErrors(vErrs, svc.translator)...)
		}
		return err
	}
	return nil
}

// acquire guards against two concurrent transitions racing on the same report.
func (svc *Service) acquire(id int) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.inflight[id] {
		return ErrBusy
	}
	svc.inflight[id] = true
	return nil
}

func (svc *Service) release(id int) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	delete(svc.inflight, id)
}

// Submit creates a new report in PENDING state. day_number uniqueness is the
// backend's call; a duplicate comes back as a RemoteError.
func (svc *Service) Submit(ctx context.Context, nr NewReport) (Report, error) {
	if _, ok := svc.sess.User(); !ok {
		return Report{}, user.ErrNotAuthenticated
	}
	nr.TextDone = core.CleanString(nr.TextDone)
	nr.TextPlan = core.CleanString(nr.TextPlan)
	nr.TextBlockers = core.CleanString(nr.TextBlockers)
	if err := svc.validateStruct(nr); err != nil {
		return Report{}, err
	}

	rpt, err := svc.repo.CreateReport(ctx, nr)
	if err != nil {
		return Report{}, err
	}

	svc.mu.Lock()
	svc.mine = append([]Report{rpt}, svc.mine...) // newest first, as served
	svc.mu.Unlock()
	return rpt, nil
}

// BeginRevision puts a report into the session's single edit slot and returns
// a draft prefilled with the current texts. Re-entering with another report
// replaces the slot (last-writer-wins; only unsaved form input is lost).
func (svc *Service) BeginRevision(id int) (ReportUpdate, error) {
	usr, ok := svc.sess.User()
	if !ok {
		return ReportUpdate{}, user.ErrNotAuthenticated
	}
	rpt, err := svc.mineByID(id)
	if err != nil {
		return ReportUpdate{}, err
	}
	if rpt.UserID != usr.ID {
		return ReportUpdate{}, ErrPermissionDenied
	}
	if !CanTransition(rpt.Status, StatusPending) {
		return ReportUpdate{}, ErrNotUnderRevision
	}
	if replaced, wasEditing := svc.sess.BeginEditing(id); wasEditing && replaced != id {
		svc.logger.Warn(fmt.Sprintf("revision of report %d replaced by report %d; unsaved input discarded", replaced, id))
	}
	return ReportUpdate{
		TextDone:     rpt.TextDone,
		TextPlan:     rpt.TextPlan,
		TextBlockers: rpt.TextBlockers,
	}, nil
}

// CancelRevision leaves edit mode without touching persisted state.
func (svc *Service) CancelRevision() {
	svc.sess.StopEditing()
}

// ReviseAndResubmit sends the corrected texts of a report that was returned
// for revision; on success the same report is PENDING again.
func (svc *Service) ReviseAndResubmit(ctx context.Context, id int, ru ReportUpdate) (Report, error) {
	usr, ok := svc.sess.User()
	if !ok {
		return Report{}, user.ErrNotAuthenticated
	}
	rpt, err := svc.mineByID(id)
	if err != nil {
		return Report{}, err
	}
	if rpt.UserID != usr.ID {
		return Report{}, ErrPermissionDenied
	}
	if !CanTransition(rpt.Status, StatusPending) {
		return Report{}, ErrNotUnderRevision
	}

	ru.TextDone = core.CleanString(ru.TextDone)
	ru.TextPlan = core.CleanString(ru.TextPlan)
	ru.TextBlockers = core.CleanString(ru.TextBlockers)
	if err = svc.validateStruct(ru); err != nil {
		return Report{}, err
	}

	if err = svc.acquire(id); err != nil {
		return Report{}, err
	}
	defer svc.release(id)

	updated, err := svc.repo.UpdateReport(ctx, id, ru)
	if err != nil {
		return Report{}, err
	}

	svc.mu.Lock()
	svc.replaceMineLocked(updated)
	svc.mu.Unlock()
	if editing, ok := svc.sess.EditingReportID(); ok && editing == id {
		svc.sess.StopEditing()
	}
	return updated, nil
}

// Decide applies a mentor decision to a pending report.
// An empty comment on a REVISION verdict is rejected locally, before any
// network I/O happens.
func (svc *Service) Decide(ctx context.Context, id int, md MentorDecision) (Report, error) {
	usr, ok := svc.sess.User()
	if !ok {
		return Report{}, user.ErrNotAuthenticated
	}
	if !usr.CanReviewReports() {
		return Report{}, ErrPermissionDenied
	}
	md.MentorComment = core.CleanString(md.MentorComment)
	if err := svc.validateStruct(md); err != nil {
		return Report{}, err
	}

	entry, err := svc.queueByID(id)
	if err != nil {
		return Report{}, err
	}
	if !CanTransition(entry.Status, md.Action) {
		return Report{}, ErrNotPending
	}

	if err = svc.acquire(id); err != nil {
		return Report{}, err
	}
	defer svc.release(id)

	updated, err := svc.repo.ApplyMentorDecision(ctx, id, md)
	if err != nil {
		return Report{}, err
	}

	svc.mu.Lock()
	for i := range svc.queue {
		if svc.queue[i].ID == id {
			svc.queue[i].Report = updated
			break
		}
	}
	svc.mu.Unlock()
	return updated, nil
}

// ToggleHistory expands or collapses the history view of a report.
// The first expansion fetches the snapshots; collapsing keeps them cached, so
// re-expansion is free until the next Refresh.
func (svc *Service) ToggleHistory(ctx context.Context, id int) (open bool, revs []Revision, err error) {
	svc.mu.Lock()
	if svc.historyOpen[id] {
		svc.historyOpen[id] = false
		svc.mu.Unlock()
		return false, nil, nil
	}
	if cached, ok := svc.history[id]; ok {
		svc.historyOpen[id] = true
		svc.mu.Unlock()
		return true, cached, nil
	}
	svc.mu.Unlock()

	revs, err = svc.repo.QueryReportHistory(ctx, id)
	if err != nil {
		return false, nil, err
	}
	// oldest first, whatever the backend's order
	sort.SliceStable(revs, func(i, j int) bool { return revs[i].CreatedAt.Before(revs[j].CreatedAt) })

	svc.mu.Lock()
	svc.history[id] = revs
	svc.historyOpen[id] = true
	svc.mu.Unlock()
	return true, revs, nil
}

// Refresh reloads the authoritative caches: the learner's own reports and,
// for reviewer roles, the mentor queue. History caches are dropped.
func (svc *Service) Refresh(ctx context.Context) error {
	usr, ok := svc.sess.User()
	if !ok {
		return user.ErrNotAuthenticated
	}

	mine, err := svc.repo.QueryMyReports(ctx)
	if err != nil {
		return err
	}
	var queue []QueueEntry
	if usr.CanReviewReports() {
		if queue, err = svc.repo.QueryMentorReports(ctx); err != nil {
			return err
		}
	}

	svc.mu.Lock()
	svc.mine = mine
	svc.queue = queue
	svc.history = make(map[int][]Revision)
	svc.historyOpen = make(map[int]bool)
	svc.mu.Unlock()
	return nil
}

// Mine returns a snapshot of the learner's cached reports.
func (svc *Service) Mine() []Report {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	out := make([]Report, len(svc.mine))
	copy(out, svc.mine)
	return out
}

// Queue returns a snapshot of the cached mentor review queue.
func (svc *Service) Queue() []QueueEntry {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	out := make([]QueueEntry, len(svc.queue))
	copy(out, svc.queue)
	return out
}

func (svc *Service) mineByID(id int) (Report, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	for _, rpt := range svc.mine {
		if rpt.ID == id {
			return rpt, nil
		}
	}
	return Report{}, ErrNotFound
}

func (svc *Service) queueByID(id int) (QueueEntry, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	for _, entry := range svc.queue {
		if entry.ID == id {
			return entry, nil
		}
	}
	return QueueEntry{}, ErrNotFound
}

func (svc *Service) replaceMineLocked(rpt Report) {
	for i := range svc.mine {
		if svc.mine[i].ID == rpt.ID {
			svc.mine[i] = rpt
			return
		}
	}
	svc.mine = append([]Report{rpt}, svc.mine...)
}
