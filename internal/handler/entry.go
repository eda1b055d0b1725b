package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"daily-checkin/internal/entry"
	"daily-checkin/internal/logger"
	"daily-checkin/internal/middleware"
	"daily-checkin/internal/model"
	"daily-checkin/internal/schema"
	"daily-checkin/internal/service"

	"github.com/gin-gonic/gin"
)

var errForbiddenOverride = errors.New("not allowed to view another user's entries")

type EntryHandler struct {
	daily *service.DailyService
}

func NewEntryHandler(daily *service.DailyService) *EntryHandler {
	return &EntryHandler{daily: daily}
}

// Get handles GET /api/entries/:type?date=&uid=, one day's entry. A day with
// no entry is a blank state, not an error.
func (h *EntryHandler) Get(c *gin.Context) {
	t, err := entry.ParseFormType(c.Param("type"))
	if err != nil {
		writeError(c, err)
		return
	}
	uid, err := targetUser(c)
	if err != nil {
		writeError(c, err)
		return
	}
	day, err := h.day(c)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := model.EntryResponse{DateKey: entry.DateKey(day), IsToday: entry.IsToday(day, h.daily.Today())}
	e, err := h.daily.GetEntry(c.Request.Context(), t, uid, day)
	var nf *entry.NotFoundError
	switch {
	case errors.As(err, &nf):
	case err != nil:
		writeError(c, err)
		return
	default:
		resp.Entry = e
	}
	c.JSON(http.StatusOK, resp)
}

// History handles GET /api/history?type=&window=&uid=.
func (h *EntryHandler) History(c *gin.Context) {
	t, err := entry.ParseFormType(c.Query("type"))
	if err != nil {
		writeError(c, err)
		return
	}
	uid, err := targetUser(c)
	if err != nil {
		writeError(c, err)
		return
	}
	w := entry.ParseWindow(c.Query("window"))

	entries, p, err := h.daily.History(c.Request.Context(), t, uid, w)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.HistoryResponse{Type: t, Window: w, Entries: entries, Partition: p})
}

// Submit handles POST /api/entries/:type with the form as the body. Only
// today's entry is writable; a date naming any other day is rejected.
func (h *EntryHandler) Submit(c *gin.Context) {
	t, err := entry.ParseFormType(c.Param("type"))
	if err != nil {
		writeError(c, err)
		return
	}
	day, err := h.day(c)
	if err != nil {
		writeError(c, err)
		return
	}
	if !entry.IsToday(day, h.daily.Today()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only today's entry can be submitted"})
		return
	}
	var payload schema.Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form body"})
		return
	}
	h.submit(c, t, day, payload)
}

// SubmitTrackingForm handles POST /api/submitTrackingForm {type, form}, the
// callable write path. It always writes today's entry.
func (h *EntryHandler) SubmitTrackingForm(c *gin.Context) {
	var req model.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	t, err := entry.ParseFormType(req.Type)
	if err != nil {
		writeError(c, err)
		return
	}
	var payload schema.Payload
	if err := json.Unmarshal(req.Form, &payload); err != nil || payload == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "form must be an object"})
		return
	}
	h.submit(c, t, h.daily.Today(), payload)
}

func (h *EntryHandler) submit(c *gin.Context, t entry.FormType, day time.Time, payload schema.Payload) {
	uid := currentUID(c)
	e, err := h.daily.Submit(c.Request.Context(), t, uid, day, payload)
	if err != nil {
		logger.Warn("entry.submit.failed", "uid", uid, "type", t, "date", entry.DateKey(day), logger.Err(err))
		writeError(c, err)
		return
	}
	logger.Info("entry.submit.ok", "uid", uid, "id", e.ID)
	c.JSON(http.StatusOK, model.SubmitResponse{ID: e.ID, Entry: e})
}

// Today handles GET /api/today: which of today's forms are done.
func (h *EntryHandler) Today(c *gin.Context) {
	status, err := h.daily.TodayOverview(c.Request.Context(), currentUID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Forms handles GET /api/forms: page paths and field options per form type.
func (h *EntryHandler) Forms(c *gin.Context) {
	out := make([]model.FormInfo, 0, len(entry.FormTypes))
	for _, t := range entry.FormTypes {
		s, ok := h.daily.Registry().Lookup(t)
		if !ok {
			continue
		}
		out = append(out, model.FormInfo{Type: t, Path: entry.PagePath(t), Fields: s.Describe()})
	}
	c.JSON(http.StatusOK, out)
}

func (h *EntryHandler) day(c *gin.Context) (time.Time, error) {
	s := c.Query("date")
	if s == "" {
		return h.daily.Today(), nil
	}
	return entry.ParseDay(s, h.daily.Location())
}

func currentUID(c *gin.Context) string {
	if u := middleware.CurrentUser(c); u != nil {
		return u.UID
	}
	return ""
}

// targetUser resolves whose entries a read is for. Only caregivers may use
// the uid override.
func targetUser(c *gin.Context) (string, error) {
	u := middleware.CurrentUser(c)
	if u == nil {
		return "", service.ErrNoUser
	}
	override := c.Query("uid")
	if override == "" || override == u.UID {
		return u.UID, nil
	}
	if u.Role != model.RoleCaregiver {
		return "", errForbiddenOverride
	}
	return override, nil
}

func writeError(c *gin.Context, err error) {
	var (
		ite *entry.InvalidTypeError
		ide *entry.InvalidDateError
		nf  *entry.NotFoundError
		we  *entry.WriteError
		ve  *schema.ValidationError
	)
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": ve.Message, "field": ve.Field})
	case errors.As(err, &ite), errors.As(err, &ide):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &we):
		logger.Error("entry.write.failed", "id", we.ID, logger.Err(we.Err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error submitting form"})
	case errors.Is(err, service.ErrNoUser):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, errForbiddenOverride):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		logger.Error("request.failed", "path", c.FullPath(), logger.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
