// Package lmsmock runs an in-process LMS backend for tests. It speaks the
// same routes and error shapes as the real API ({"detail": msg} on failures)
// and delegates state handling to the inmem tables.
package lmsmock

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/corpacademy/client-go/core"
	"github.com/corpacademy/client-go/core/course"
	"github.com/corpacademy/client-go/core/report"
	"github.com/corpacademy/client-go/core/user"
	"github.com/corpacademy/client-go/storage/inmem"
)

type account struct {
	usr      user.User
	password string
}

type Server struct {
	mu       sync.Mutex
	db       *inmem.DB
	accounts map[string]account // by email
	tokens   map[string]user.User

	reports report.Repository
	courses course.Repository

	app *echo.Echo
}

func New() *Server {
	srv := &Server{
		db:       inmem.NewDB(),
		accounts: make(map[string]account),
		tokens:   make(map[string]user.User),
	}
	srv.reports = inmem.NewReportRepository(srv.db)
	srv.courses = inmem.NewCourseRepository(srv.db)

	app := echo.New()
	app.HideBanner = true
	app.HTTPErrorHandler = detailErrorHandler

	app.POST("/auth/login", srv.login)

	authed := app.Group("", srv.requireAuth)
	authed.GET("/users/me", srv.me)
	authed.POST("/standups", srv.createReport)
	authed.GET("/standups/my", srv.myReports)
	authed.GET("/standups/mentor", srv.mentorReports)
	authed.GET("/standups/:id/history", srv.reportHistory)
	authed.PUT("/standups/:id", srv.updateReport)
	authed.POST("/standups/:id/mentor_decision", srv.mentorDecision)
	authed.POST("/courses/:id/start", srv.startCourse)
	authed.POST("/courses/complete_lesson", srv.completeLesson)
	authed.GET("/courses/my_full", srv.myCourses)
	authed.GET("/courses/catalog", srv.catalog)

	srv.app = app
	return srv
}

// Handler exposes the server for httptest.NewServer.
func (srv *Server) Handler() http.Handler { return srv.app }

// DB exposes the backing tables for seeding.
func (srv *Server) DB() *inmem.DB { return srv.db }

// AddAccount registers a login and returns its bearer token.
func (srv *Server) AddAccount(usr user.User, password string) (token string) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	srv.accounts[usr.Email] = account{usr: usr, password: password}
	token = fmt.Sprintf("tok-%d", usr.ID)
	srv.tokens[token] = usr
	return token
}

// detailErrorHandler renders failures the way the real backend does.
func detailErrorHandler(err error, ctx echo.Context) {
	code := http.StatusInternalServerError
	detail := "internal error"

	switch origErr := errors.Cause(err).(type) {
	case *echo.HTTPError:
		code = origErr.Code
		detail = fmt.Sprintf("%v", origErr.Message)
	case *core.RemoteError:
		code = origErr.Status
		detail = origErr.Detail
	default:
		detail = err.Error()
	}

	if !ctx.Response().Committed {
		_ = ctx.JSON(code, echo.Map{"detail": detail})
	}
}

func (srv *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		header := ctx.Request().Header.Get(echo.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
		}
		srv.mu.Lock()
		usr, ok := srv.tokens[strings.TrimPrefix(header, "Bearer ")]
		srv.mu.Unlock()
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		}
		// the suite runs requests sequentially; bind the tables to the caller
		srv.db.SetMe(usr)
		ctx.Set("user", usr)
		return next(ctx)
	}
}

func (srv *Server) login(ctx echo.Context) error {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := ctx.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	srv.mu.Lock()
	acct, ok := srv.accounts[in.Email]
	srv.mu.Unlock()
	if !ok || acct.password != in.Password {
		return echo.NewHTTPError(http.StatusUnauthorized, "Неверный email или пароль")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"access_token": fmt.Sprintf("tok-%d", acct.usr.ID), "token_type": "bearer"})
}

func (srv *Server) me(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, ctx.Get("user"))
}

func (srv *Server) createReport(ctx echo.Context) error {
	var nr report.NewReport
	if err := ctx.Bind(&nr); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	rpt, err := srv.reports.CreateReport(ctx.Request().Context(), nr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rpt)
}

func (srv *Server) myReports(ctx echo.Context) error {
	list, err := srv.reports.QueryMyReports(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, list)
}

func (srv *Server) mentorReports(ctx echo.Context) error {
	usr := ctx.Get("user").(user.User)
	if !usr.CanReviewReports() {
		return echo.NewHTTPError(http.StatusForbidden, "Forbidden")
	}
	list, err := srv.reports.QueryMentorReports(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, list)
}

func (srv *Server) reportHistory(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Report not found")
	}
	list, err := srv.reports.QueryReportHistory(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, list)
}

func (srv *Server) updateReport(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Report not found")
	}
	var ru report.ReportUpdate
	if err = ctx.Bind(&ru); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	rpt, err := srv.reports.UpdateReport(ctx.Request().Context(), id, ru)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rpt)
}

func (srv *Server) mentorDecision(ctx echo.Context) error {
	usr := ctx.Get("user").(user.User)
	if !usr.CanReviewReports() {
		return echo.NewHTTPError(http.StatusForbidden, "Forbidden")
	}
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Report not found")
	}
	var md report.MentorDecision
	if err = ctx.Bind(&md); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	rpt, err := srv.reports.ApplyMentorDecision(ctx.Request().Context(), id, md)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rpt)
}

func (srv *Server) startCourse(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Course not found")
	}
	if err = srv.courses.StartCourse(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"ok": true})
}

func (srv *Server) completeLesson(ctx echo.Context) error {
	var in struct {
		LessonID  int  `json:"lesson_id"`
		Completed bool `json:"completed"`
	}
	if err := ctx.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := srv.courses.CompleteLesson(ctx.Request().Context(), in.LessonID, in.Completed); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"ok": true})
}

func (srv *Server) myCourses(ctx echo.Context) error {
	list, err := srv.courses.QueryMyCourses(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, list)
}

func (srv *Server) catalog(ctx echo.Context) error {
	list, err := srv.courses.QueryCatalog(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, list)
}
