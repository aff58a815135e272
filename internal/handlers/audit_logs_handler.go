package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/httpresp"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	reader audit.Reader
}

func NewAuditLogsHandler(reader audit.Reader) *AuditLogsHandler {
	return &AuditLogsHandler{reader: reader}
}

func (h *AuditLogsHandler) List(c *gin.Context) {
	f := audit.Filter{
		Action: c.Query("action"),
		Entity: c.Query("entity"),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", audit.DefaultListLimit),
	}

	// --------------------------------------------------
	// Optional date range
	// --------------------------------------------------

	var ok bool
	if f.From, ok = dateQuery(c, "from"); !ok {
		return
	}
	if f.To, ok = dateQuery(c, "to"); !ok {
		return
	}
	f = f.Normalize()

	logs, total, err := h.reader.List(c.Request.Context(), f)
	if err != nil {
		httperr.Internal(c, "audit_list_failed", "failed to list audit logs")
		return
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}

	httpresp.Page(c, logs, total, f.Page, f.Limit)
}

func dateQuery(c *gin.Context, key string) (*time.Time, bool) {
	s := c.Query(key)
	if s == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", key+" must be YYYY-MM-DD")
		return nil, false
	}
	return &t, true
}
