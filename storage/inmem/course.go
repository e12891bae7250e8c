package inmem

import (
	"context"
	"net/http"

	"github.com/corpacademy/client-go/core"
	"github.com/corpacademy/client-go/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) StartCourse(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	if err := repo.db.takeFail(); err != nil {
		return err
	}

	for _, a := range repo.db.courses {
		if a.ID != id {
			continue
		}
		if a.Status != course.StatusAssigned {
			return core.NewRemoteError(http.StatusBadRequest, "course is not in ASSIGNED state")
		}
		a.Status = course.StatusInProgress
		return nil
	}
	return core.NewRemoteError(http.StatusNotFound, "Course not found")
}

func (repo *courseRepository) CompleteLesson(_ context.Context, lessonID int, completed bool) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	if err := repo.db.takeFail(); err != nil {
		return err
	}

	for _, a := range repo.db.courses {
		for i := range a.Lessons {
			if a.Lessons[i].ID != lessonID {
				continue
			}
			if a.Status == course.StatusCompleted {
				return core.NewRemoteError(http.StatusBadRequest, "Course already completed")
			}
			a.Lessons[i].IsCompleted = completed
			recomputeLocked(a)
			return nil
		}
	}
	return core.NewRemoteError(http.StatusNotFound, "Lesson not found")
}

func (repo *courseRepository) QueryMyCourses(_ context.Context) ([]course.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if err := repo.db.takeFail(); err != nil {
		return nil, err
	}

	out := make([]course.Assignment, 0, len(repo.db.courses))
	for _, a := range repo.db.courses {
		out = append(out, *a)
	}
	return out, nil
}

func (repo *courseRepository) QueryCatalog(_ context.Context) ([]course.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if err := repo.db.takeFail(); err != nil {
		return nil, err
	}

	out := make([]course.Assignment, len(repo.db.catalog))
	copy(out, repo.db.catalog)
	return out, nil
}

// recomputeLocked mirrors the backend: progress from lesson completions,
// status promoted to IN_PROGRESS on first progress and COMPLETED at 100%.
func recomputeLocked(a *course.Assignment) {
	total := len(a.Lessons)
	if total == 0 {
		return
	}
	done := 0
	for _, l := range a.Lessons {
		if l.IsCompleted {
			done++
		}
	}
	progress := done * 100 / total
	switch {
	case progress >= 100:
		a.Status = course.StatusCompleted
		a.ProgressPercent = 100
	case progress > 0 && a.Status == course.StatusAssigned:
		a.Status = course.StatusInProgress
		a.ProgressPercent = progress
	default:
		a.ProgressPercent = progress
	}
}
