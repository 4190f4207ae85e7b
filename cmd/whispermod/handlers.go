package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/AladdinMagdy/whispr-sub000/models"
	"github.com/AladdinMagdy/whispr-sub000/safety/docstore"
	"github.com/AladdinMagdy/whispr-sub000/safety/moderation"
	"github.com/AladdinMagdy/whispr-sub000/safety/report"

	"github.com/labstack/echo/v4"
)

type GenericError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type GenericStatus struct {
	Daemon  string `json:"daemon"`
	Status  string `json:"status"`
	Message string `json:"msg,omitempty"`
}

func (srv *Server) errorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	var errorMessage string
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		errorMessage = he.Error()
	}
	if code >= 500 {
		srv.logger.Warn("whispermod-http-internal-error", "err", err)
	}
	c.JSON(code, GenericStatus{Status: "error", Daemon: "whispermod", Message: errorMessage})
}

func (srv *Server) HandleHealthCheck(c echo.Context) error {
	return c.JSON(200, GenericStatus{Status: "ok", Daemon: "whispermod"})
}

type ScoreTextRequest struct {
	Text string `json:"text"`
}

func (srv *Server) HandleScoreText(c echo.Context) error {
	var req ScoreTextRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, GenericError{Error: "InvalidRequest", Message: err.Error()})
	}
	res, err := srv.scorer.Analyze(req.Text)
	if err != nil {
		if moderation.IsValidationError(err) {
			return c.JSON(400, GenericError{Error: "ValidationError", Message: err.Error()})
		}
		return err
	}
	return c.JSON(200, res)
}

type SubmitReportRequest struct {
	SubjectType         string  `json:"subjectType"`
	SubjectID           string  `json:"subjectId"`
	SubjectAuthorID     string  `json:"subjectAuthorId"`
	ReporterID          string  `json:"reporterId"`
	ReporterDisplayName string  `json:"reporterDisplayName"`
	Category            string  `json:"category"`
	Reason              string  `json:"reason"`
	Evidence            *string `json:"evidence,omitempty"`
}

func (srv *Server) HandleSubmitReport(c echo.Context) error {
	if !srv.reportLimiter.Allow() {
		return c.JSON(429, GenericError{Error: "RateLimitExceeded", Message: "too many report submissions, slow down"})
	}
	var req SubmitReportRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, GenericError{Error: "InvalidRequest", Message: err.Error()})
	}

	r, err := srv.reports.SubmitReport(c.Request().Context(), report.SubmitReportInput{
		SubjectType:         req.SubjectType,
		SubjectID:           req.SubjectID,
		SubjectAuthorID:     req.SubjectAuthorID,
		ReporterID:          req.ReporterID,
		ReporterDisplayName: req.ReporterDisplayName,
		Category:            models.ReportCategory(req.Category),
		Reason:              req.Reason,
		Evidence:            req.Evidence,
	})
	switch {
	case errors.Is(err, report.ErrBannedReporter):
		return c.JSON(403, GenericError{Error: "PermissionDenied", Message: err.Error()})
	case errors.Is(err, report.ErrInvalidSubject),
		errors.Is(err, report.ErrInvalidCategory),
		errors.Is(err, report.ErrEmptyReason):
		return c.JSON(400, GenericError{Error: "ValidationError", Message: err.Error()})
	case err != nil:
		return err
	}
	return c.JSON(200, r)
}

type ResolveReportRequest struct {
	Action      string `json:"action"`
	Reason      string `json:"reason"`
	ModeratorID string `json:"moderatorId"`
}

func (srv *Server) HandleResolveReport(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(400, GenericError{Error: "InvalidRequest", Message: "report id must be an integer"})
	}
	var req ResolveReportRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, GenericError{Error: "InvalidRequest", Message: err.Error()})
	}
	err = srv.reports.Resolve(c.Request().Context(), id, models.Action(req.Action), req.Reason, req.ModeratorID)
	if err := srv.mapCloseError(c, err); err != nil {
		return err
	}
	return c.JSON(200, GenericStatus{Status: "ok", Daemon: "whispermod"})
}

type DismissReportRequest struct {
	Reason      string `json:"reason"`
	ModeratorID string `json:"moderatorId"`
}

func (srv *Server) HandleDismissReport(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(400, GenericError{Error: "InvalidRequest", Message: "report id must be an integer"})
	}
	var req DismissReportRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, GenericError{Error: "InvalidRequest", Message: err.Error()})
	}
	err = srv.reports.Dismiss(c.Request().Context(), id, req.Reason, req.ModeratorID)
	if err := srv.mapCloseError(c, err); err != nil {
		return err
	}
	return c.JSON(200, GenericStatus{Status: "ok", Daemon: "whispermod"})
}

func (srv *Server) mapCloseError(c echo.Context, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, docstore.ErrNotFound):
		return c.JSON(404, GenericError{Error: "ReportNotFound", Message: err.Error()})
	case errors.Is(err, report.ErrReportResolved):
		return c.JSON(409, GenericError{Error: "ReportAlreadyResolved", Message: err.Error()})
	case errors.Is(err, report.ErrMissingModerator):
		return c.JSON(400, GenericError{Error: "ValidationError", Message: err.Error()})
	default:
		return err
	}
}

func (srv *Server) HandleReportStats(c echo.Context) error {
	subjectType := c.QueryParam("subjectType")
	subjectID := c.QueryParam("subjectId")
	if subjectType == "" || subjectID == "" {
		return c.JSON(400, GenericError{Error: "InvalidRequest", Message: "subjectType and subjectId are required"})
	}
	stats := srv.reports.GetContentReportStats(c.Request().Context(), subjectType, subjectID)
	return c.JSON(200, stats)
}

func (srv *Server) HandleGetReputation(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Param("id")

	// recovery is applied lazily on access; the sweep is idempotent within
	// a day so repeated reads are safe
	rep, err := srv.reputation.ApplyRecovery(ctx, userID)
	if err != nil {
		return err
	}
	return c.JSON(200, rep)
}

type AdminSetScoreRequest struct {
	Score   int    `json:"score"`
	Reason  string `json:"reason"`
	AdminID string `json:"adminId"`
}

func (srv *Server) HandleAdminSetScore(c echo.Context) error {
	userID := c.Param("id")
	var req AdminSetScoreRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, GenericError{Error: "InvalidRequest", Message: err.Error()})
	}
	if req.AdminID == "" {
		return c.JSON(400, GenericError{Error: "ValidationError", Message: "adminId is required"})
	}
	rep, err := srv.reputation.AdminSetScore(c.Request().Context(), userID, req.Score, req.Reason, req.AdminID)
	if err != nil {
		return err
	}
	return c.JSON(200, rep)
}

type AdminStats struct {
	ActiveBannedUsers int64 `json:"activeBannedUsers"`
}

func (srv *Server) HandleAdminStats(c echo.Context) error {
	n, err := srv.store.CountActiveBannedUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(200, AdminStats{ActiveBannedUsers: n})
}
