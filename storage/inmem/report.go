package inmem

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/corpacademy/client-go/core"
	"github.com/corpacademy/client-go/core/report"
	"github.com/corpacademy/client-go/core/user"
)

type reportRepository struct {
	db *DB
}

var _ report.Repository = (*reportRepository)(nil) // interface compliance check

func NewReportRepository(db *DB) report.Repository {
	return &reportRepository{db: db}
}

// SeedReport inserts a report owned by the given author and returns it.
func (db *DB) SeedReport(author user.User, rpt report.Report) report.Report {
	db.Lock()
	defer db.Unlock()
	db.nextID++
	rpt.ID = db.nextID
	rpt.UserID = author.ID
	if rpt.Status == "" {
		rpt.Status = report.StatusPending
	}
	rpt.CreatedAt = db.tick()
	db.reports[rpt.ID] = &rpt
	db.authors[rpt.ID] = author
	return rpt
}

func (repo *reportRepository) CreateReport(_ context.Context, nr report.NewReport) (report.Report, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if err := repo.db.takeFail(); err != nil {
		return report.Report{}, err
	}

	repo.db.nextID++
	rpt := &report.Report{
		ID:           repo.db.nextID,
		UserID:       repo.db.me.ID,
		DayNumber:    nr.DayNumber,
		TextDone:     nr.TextDone,
		TextPlan:     nr.TextPlan,
		TextBlockers: nr.TextBlockers,
		Status:       report.StatusPending,
		CreatedAt:    repo.db.tick(),
	}
	repo.db.reports[rpt.ID] = rpt
	repo.db.authors[rpt.ID] = repo.db.me
	return *rpt, nil
}

func (repo *reportRepository) UpdateReport(_ context.Context, id int, ru report.ReportUpdate) (report.Report, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if err := repo.db.takeFail(); err != nil {
		return report.Report{}, err
	}

	rpt, ok := repo.db.reports[id]
	if !ok {
		return report.Report{}, core.NewRemoteError(http.StatusNotFound, "Report not found")
	}
	if rpt.Status != report.StatusRevision {
		return report.Report{}, core.NewRemoteError(http.StatusBadRequest, "only a report under revision can be edited")
	}
	rpt.TextDone = ru.TextDone
	rpt.TextPlan = ru.TextPlan
	rpt.TextBlockers = ru.TextBlockers
	rpt.Status = report.StatusPending
	rpt.MentorComment = ""
	repo.db.snapshotLocked(id)
	return *rpt, nil
}

func (repo *reportRepository) ApplyMentorDecision(_ context.Context, id int, md report.MentorDecision) (report.Report, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if err := repo.db.takeFail(); err != nil {
		return report.Report{}, err
	}

	rpt, ok := repo.db.reports[id]
	if !ok {
		return report.Report{}, core.NewRemoteError(http.StatusNotFound, "Report not found")
	}
	if md.Action == report.ActionRevision {
		if strings.TrimSpace(md.MentorComment) == "" {
			return report.Report{}, core.NewRemoteError(http.StatusBadRequest, "a comment is required for a revision")
		}
		rpt.Status = report.StatusRevision
		rpt.MentorComment = strings.TrimSpace(md.MentorComment)
	} else {
		rpt.Status = report.StatusAccepted
		rpt.MentorComment = strings.TrimSpace(md.MentorComment)
	}
	repo.db.snapshotLocked(id)
	return *rpt, nil
}

func (repo *reportRepository) QueryMyReports(_ context.Context) ([]report.Report, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if err := repo.db.takeFail(); err != nil {
		return nil, err
	}

	out := make([]report.Report, 0, len(repo.db.reports))
	for _, rpt := range repo.db.reports {
		if rpt.UserID == repo.db.me.ID {
			out = append(out, *rpt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID }) // newest first
	return out, nil
}

func (repo *reportRepository) QueryMentorReports(_ context.Context) ([]report.QueueEntry, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if err := repo.db.takeFail(); err != nil {
		return nil, err
	}

	out := make([]report.QueueEntry, 0, len(repo.db.reports))
	for _, rpt := range repo.db.reports {
		if rpt.UserID == repo.db.me.ID {
			continue
		}
		author := repo.db.authors[rpt.ID]
		out = append(out, report.QueueEntry{
			Report:       *rpt,
			UserFullName: author.FullName,
			UserEmail:    author.Email,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (repo *reportRepository) QueryReportHistory(_ context.Context, id int) ([]report.Revision, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if err := repo.db.takeFail(); err != nil {
		return nil, err
	}

	revs := repo.db.revisions[id]
	out := make([]report.Revision, len(revs))
	copy(out, revs)
	// the real backend serves newest first
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// snapshotLocked appends a revision mirroring the report's state after a
// status change. Creation is not a change; a fresh report has no history.
func (db *DB) snapshotLocked(id int) {
	rpt := db.reports[id]
	db.nextRev++
	db.revisions[id] = append(db.revisions[id], report.Revision{
		ID:            db.nextRev,
		CreatedAt:     db.tick(),
		Status:        rpt.Status,
		MentorComment: rpt.MentorComment,
		TextDone:      rpt.TextDone,
		TextPlan:      rpt.TextPlan,
		TextBlockers:  rpt.TextBlockers,
	})
}
