package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jinhajunho/luel-note-sub000/internal/model"
	"github.com/jinhajunho/luel-note-sub000/internal/service"
)

// Handlers exposes the attendance engine and its supporting operations over
// HTTP. Expected business conditions come back as {success:false, message}
// with a matching status code; only unclassified persistence failures are
// logged as errors.
type Handlers struct {
	attendance *service.AttendanceService
	booking    *service.BookingService
	packages   *service.PackageService
	logger     *zap.Logger
}

func NewHandlers(
	attendance *service.AttendanceService,
	booking *service.BookingService,
	packages *service.PackageService,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		attendance: attendance,
		booking:    booking,
		packages:   packages,
		logger:     logger,
	}
}

type toggleRequest struct {
	// Advisory: the mark the client last saw. The stored row stays the
	// source of truth for the transition.
	CurrentMark string `json:"current_mark"`
}

// ToggleAttendance flips one participant's mark.
func (h *Handlers) ToggleAttendance(c *gin.Context) {
	lessonID, ok := pathID(c, "id")
	if !ok {
		return
	}
	memberID, ok := pathID(c, "memberID")
	if !ok {
		return
	}

	var req toggleRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	actor := actorRole(c)
	if actor != model.ActorStaff && callerMemberID(c) != memberID {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "cannot edit another member's attendance"})
		return
	}

	res, err := h.attendance.Toggle(c.Request.Context(), lessonID, memberID, actor)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"message":            "attendance updated",
		"new_mark":           res.NewMark,
		"check_in_time":      res.CheckInTime,
		"charged_package_id": res.ChargedPackageID,
	})
}

// CompleteLesson finishes a lesson, defaulting no-shows to absent.
func (h *Handlers) CompleteLesson(c *gin.Context) {
	lessonID, ok := pathID(c, "id")
	if !ok {
		return
	}

	res, err := h.attendance.Complete(c.Request.Context(), lessonID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "lesson completed",
		"absented": res.Absented,
	})
}

// CancelLesson runs the compensating cancel/revert path.
func (h *Handlers) CancelLesson(c *gin.Context) {
	lessonID, ok := pathID(c, "id")
	if !ok {
		return
	}

	res, err := h.attendance.Cancel(c.Request.Context(), lessonID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"message":          "lesson " + string(res.ResultingStatus),
		"resulting_status": res.ResultingStatus,
		"refunded":         res.Refunded,
	})
}

type createLessonRequest struct {
	Date          string  `json:"date" binding:"required"`
	StartTime     string  `json:"start_time" binding:"required"`
	EndTime       string  `json:"end_time" binding:"required"`
	PaymentTypeID int64   `json:"payment_type_id" binding:"required"`
	InstructorID  int64   `json:"instructor_id" binding:"required"`
	LessonTypeID  int64   `json:"lesson_type_id" binding:"required"`
	MemberIDs     []int64 `json:"member_ids"`
}

// CreateLesson books a lesson with its roster.
func (h *Handlers) CreateLesson(c *gin.Context) {
	var req createLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "date must be YYYY-MM-DD"})
		return
	}
	start, err := time.Parse("15:04", req.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "start_time must be HH:MM"})
		return
	}
	end, err := time.Parse("15:04", req.EndTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "end_time must be HH:MM"})
		return
	}

	lesson, err := h.booking.CreateLesson(c.Request.Context(), service.CreateLessonInput{
		Date:          date,
		StartTime:     start,
		EndTime:       end,
		PaymentTypeID: req.PaymentTypeID,
		InstructorID:  req.InstructorID,
		LessonTypeID:  req.LessonTypeID,
		MemberIDs:     req.MemberIDs,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "lesson booked", "lesson": lesson})
}

// GetLesson returns a lesson with its roster.
func (h *Handlers) GetLesson(c *gin.Context) {
	lessonID, ok := pathID(c, "id")
	if !ok {
		return
	}

	lesson, err := h.booking.GetLesson(c.Request.Context(), lessonID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "lesson": lesson})
}

// ListLessons returns all lessons on ?date=YYYY-MM-DD.
func (h *Handlers) ListLessons(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "date query parameter must be YYYY-MM-DD"})
		return
	}

	lessons, err := h.booking.ListLessonsByDate(c.Request.Context(), date)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "lessons": lessons})
}

type grantPackageRequest struct {
	MemberID      int64  `json:"member_id" binding:"required"`
	PaymentTypeID int64  `json:"payment_type_id" binding:"required"`
	TotalLessons  int    `json:"total_lessons" binding:"required"`
	StartDate     string `json:"start_date" binding:"required"`
	EndDate       string `json:"end_date" binding:"required"`
}

// GrantPackage creates a prepaid package for a member.
func (h *Handlers) GrantPackage(c *gin.Context) {
	var req grantPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "start_date must be YYYY-MM-DD"})
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "end_date must be YYYY-MM-DD"})
		return
	}

	pkg, err := h.packages.Grant(c.Request.Context(), service.GrantInput{
		MemberID:      req.MemberID,
		PaymentTypeID: req.PaymentTypeID,
		TotalLessons:  req.TotalLessons,
		StartDate:     start,
		EndDate:       end,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "package granted", "package": pkg})
}

// ListMemberPackages returns a member's packages. Participants may only see
// their own.
func (h *Handlers) ListMemberPackages(c *gin.Context) {
	memberID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if actorRole(c) != model.ActorStaff && callerMemberID(c) != memberID {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "cannot view another member's packages"})
		return
	}

	pkgs, err := h.packages.ListByMember(c.Request.Context(), memberID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "packages": pkgs})
}

func (h *Handlers) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLessonNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "lesson not found"})
	case errors.Is(err, service.ErrParticipationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "participation not found"})
	case errors.Is(err, service.ErrLessonCancelled):
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "lesson is cancelled"})
	case errors.Is(err, service.ErrOutsideEditWindow):
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "attendance can only be changed from one hour before the lesson to one hour after it ends"})
	case errors.Is(err, service.ErrNoActivePackage):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": "no active package with remaining credits; ask staff to grant one"})
	default:
		h.logger.Error("Unhandled service error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal error: " + err.Error()})
	}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid " + name})
		return 0, false
	}
	return id, true
}
