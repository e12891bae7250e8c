package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/corpacademy/client-go/core/course"
)

type courseRepository struct {
	client *Client
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(client *Client) course.Repository {
	return &courseRepository{client: client}
}

func (repo *courseRepository) StartCourse(ctx context.Context, id int) error {
	return repo.client.do(ctx, http.MethodPost, fmt.Sprintf("/courses/%d/start", id), nil, nil)
}

func (repo *courseRepository) CompleteLesson(ctx context.Context, lessonID int, completed bool) error {
	body := map[string]interface{}{"lesson_id": lessonID, "completed": completed}
	return repo.client.do(ctx, http.MethodPost, "/courses/complete_lesson", body, nil)
}

func (repo *courseRepository) QueryMyCourses(ctx context.Context) ([]course.Assignment, error) {
	var list []course.Assignment
	err := repo.client.do(ctx, http.MethodGet, "/courses/my_full", nil, &list)
	return list, err
}

func (repo *courseRepository) QueryCatalog(ctx context.Context) ([]course.Assignment, error) {
	var list []course.Assignment
	err := repo.client.do(ctx, http.MethodGet, "/courses/catalog", nil, &list)
	return list, err
}
