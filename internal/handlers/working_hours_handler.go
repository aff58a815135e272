package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/httpresp"
	ucAppointment "github.com/BruksfildServices01/barber-booking/internal/usecase/appointment"
)

type WorkingHoursHandler struct {
	get    *ucAppointment.GetWorkingHours
	update *ucAppointment.UpdateWorkingHours
}

type WorkingDayConfig struct {
	Weekday   *int   `json:"weekday" binding:"required,min=0,max=6"`
	Off       bool   `json:"off"`
	StartTime string `json:"start_time" binding:"omitempty,hhmm"`
	EndTime   string `json:"end_time" binding:"omitempty,hhmmend"`
}

type WorkingHoursUpdateRequest struct {
	Days []WorkingDayConfig `json:"days" binding:"required,max=7,dive"`
}

func NewWorkingHoursHandler(
	get *ucAppointment.GetWorkingHours,
	update *ucAppointment.UpdateWorkingHours,
) *WorkingHoursHandler {
	return &WorkingHoursHandler{get: get, update: update}
}

// Get serves the public weekly schedule of a barber.
func (h *WorkingHoursHandler) Get(c *gin.Context) {
	barberID, ok := idParam(c, "id")
	if !ok {
		return
	}

	week, err := h.get.Execute(c.Request.Context(), barberID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, week)
}

// Mine serves the schedule of the calling barber.
func (h *WorkingHoursHandler) Mine(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	week, err := h.get.ForUser(c.Request.Context(), a.UserID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, week)
}

func (h *WorkingHoursHandler) Update(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	var req WorkingHoursUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	days := make([]ucAppointment.WorkingDayInput, 0, len(req.Days))
	for _, d := range req.Days {
		days = append(days, ucAppointment.WorkingDayInput{
			Weekday:   *d.Weekday,
			Off:       d.Off,
			StartTime: d.StartTime,
			EndTime:   d.EndTime,
		})
	}

	week, err := h.update.Execute(c.Request.Context(), a, days)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, week)
}
