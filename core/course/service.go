package course

import (
	"context"
	"errors"
	"sync"

	"github.com/corpacademy/client-go/core"
	"github.com/corpacademy/client-go/core/user"
)

var (
	// errors
	ErrNotFound     = errors.New("course not found")
	ErrBusy         = errors.New("another operation on this course is still in progress")
	ErrNotAssigned  = errors.New("course has not been assigned")
	ErrAlreadyDone  = errors.New("course is already completed")
	ErrNoSuchLesson = errors.New("lesson not found in assigned courses")
)

type (
	Repository interface {
		// StartCourse asks the backend to move an ASSIGNED course to IN_PROGRESS.
		StartCourse(ctx context.Context, id int) error
		CompleteLesson(ctx context.Context, lessonID int, completed bool) error
		QueryMyCourses(ctx context.Context) ([]Assignment, error)
		QueryCatalog(ctx context.Context) ([]Assignment, error)
	}

	// Service owns the two course caches: the learner's assignments and the
	// catalog. Status transitions are the backend's responsibility; the
	// service only requests them and reloads the authoritative state.
	Service struct {
		repo   Repository
		sess   *user.Session
		logger core.Logger

		mu       sync.Mutex
		mine     []Assignment
		catalog  []Assignment
		inflight map[int]bool
	}
)

func NewService(repo Repository, sess *user.Session, logger core.Logger) *Service {
	return &Service{
		repo:     repo,
		sess:     sess,
		logger:   logger,
		inflight: make(map[int]bool),
	}
}

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

// Start requests the start of an assigned course and reloads the
// authoritative list. The returned copy has Status forced to IN_PROGRESS for
// immediate display; it is provisional and superseded by the reload.
func (svc *Service) Start(ctx context.Context, id int) (Assignment, error) {
	if _, ok := svc.sess.User(); !ok {
		return Assignment{}, user.ErrNotAuthenticated
	}
	assignment, err := svc.mineByID(id)
	if err != nil {
		return Assignment{}, err
	}
	if assignment.Status != StatusAssigned {
		return Assignment{}, ErrNotAssigned
	}

	if err = svc.acquire(id); err != nil {
		return Assignment{}, err
	}
	defer svc.release(id)

	if err = svc.repo.StartCourse(ctx, id); err != nil {
		return Assignment{}, err
	}

	// optimistic view object; the reload below overwrites the cache
	optimistic := assignment
	optimistic.Status = StatusInProgress

	if err = svc.reloadMine(ctx); err != nil {
		// the start itself succeeded; surface the stale cache, not a failure
		svc.logger.Warn("course list reload after start failed: " + err.Error())
	}
	return optimistic, nil
}

// CompleteLesson toggles a lesson completion and reloads the assignments so
// progress and status reflect the backend's recomputation.
func (svc *Service) CompleteLesson(ctx context.Context, lessonID int, completed bool) error {
	if _, ok := svc.sess.User(); !ok {
		return user.ErrNotAuthenticated
	}
	assignment, err := svc.mineByLesson(lessonID)
	if err != nil {
		return err
	}
	if assignment.Status == StatusCompleted {
		return ErrAlreadyDone
	}

	if err = svc.acquire(assignment.ID); err != nil {
		return err
	}
	defer svc.release(assignment.ID)

	if err = svc.repo.CompleteLesson(ctx, lessonID, completed); err != nil {
		return err
	}
	return svc.reloadMine(ctx)
}

// Refresh reloads the learner's assignment cache from the backend.
func (svc *Service) Refresh(ctx context.Context) error {
	if _, ok := svc.sess.User(); !ok {
		return user.ErrNotAuthenticated
	}
	return svc.reloadMine(ctx)
}

// RefreshCatalog reloads the catalog cache, collapsing duplicate ids to
// their first occurrence.
func (svc *Service) RefreshCatalog(ctx context.Context) error {
	if _, ok := svc.sess.User(); !ok {
		return user.ErrNotAuthenticated
	}
	list, err := svc.repo.QueryCatalog(ctx)
	if err != nil {
		return err
	}
	list = DedupeByID(list)

	svc.mu.Lock()
	svc.catalog = list
	svc.mu.Unlock()
	return nil
}

// Mine returns a snapshot of the cached assignments.
func (svc *Service) Mine() []Assignment {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	out := make([]Assignment, len(svc.mine))
	copy(out, svc.mine)
	return out
}

// Catalog returns a snapshot of the cached catalog.
func (svc *Service) Catalog() []Assignment {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	out := make([]Assignment, len(svc.catalog))
	copy(out, svc.catalog)
	return out
}

func (svc *Service) reloadMine(ctx context.Context) error {
	list, err := svc.repo.QueryMyCourses(ctx)
	if err != nil {
		return err
	}
	svc.mu.Lock()
	svc.mine = list
	svc.mu.Unlock()
	return nil
}

func (svc *Service) mineByID(id int) (Assignment, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	for _, a := range svc.mine {
		if a.ID == id {
			return a, nil
		}
	}
	return Assignment{}, ErrNotFound
}

func (svc *Service) mineByLesson(lessonID int) (Assignment, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	for _, a := range svc.mine {
		for _, l := range a.Lessons {
			if l.ID == lessonID {
				return a, nil
			}
		}
	}
	return Assignment{}, ErrNoSuchLesson
}
