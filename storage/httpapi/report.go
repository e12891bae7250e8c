package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/corpacademy/client-go/core/report"
)

type reportRepository struct {
	client *Client
}

var _ report.Repository = (*reportRepository)(nil) // interface compliance check

func NewReportRepository(client *Client) report.Repository {
	return &reportRepository{client: client}
}

func (repo *reportRepository) CreateReport(ctx context.Context, nr report.NewReport) (report.Report, error) {
	var rpt report.Report
	err := repo.client.do(ctx, http.MethodPost, "/standups", nr, &rpt)
	return rpt, err
}

func (repo *reportRepository) UpdateReport(ctx context.Context, id int, ru report.ReportUpdate) (report.Report, error) {
	var rpt report.Report
	err := repo.client.do(ctx, http.MethodPut, fmt.Sprintf("/standups/%d", id), ru, &rpt)
	return rpt, err
}

func (repo *reportRepository) ApplyMentorDecision(ctx context.Context, id int, md report.MentorDecision) (report.Report, error) {
	var rpt report.Report
	err := repo.client.do(ctx, http.MethodPost, fmt.Sprintf("/standups/%d/mentor_decision", id), md, &rpt)
	return rpt, err
}

func (repo *reportRepository) QueryMyReports(ctx context.Context) ([]report.Report, error) {
	var list []report.Report
	err := repo.client.do(ctx, http.MethodGet, "/standups/my", nil, &list)
	return list, err
}

func (repo *reportRepository) QueryMentorReports(ctx context.Context) ([]report.QueueEntry, error) {
	var list []report.QueueEntry
	err := repo.client.do(ctx, http.MethodGet, "/standups/mentor", nil, &list)
	return list, err
}

func (repo *reportRepository) QueryReportHistory(ctx context.Context, id int) ([]report.Revision, error) {
	var list []report.Revision
	err := repo.client.do(ctx, http.MethodGet, fmt.Sprintf("/standups/%d/history", id), nil, &list)
	return list, err
}
