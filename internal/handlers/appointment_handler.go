package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/dto"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/httpresp"
	ucAppointment "github.com/BruksfildServices01/barber-booking/internal/usecase/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/validators"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	create     *ucAppointment.CreateAppointment
	list       *ucAppointment.ListAppointments
	get        *ucAppointment.GetAppointment
	transition *ucAppointment.TransitionAppointment
	reschedule *ucAppointment.RescheduleAppointment
}

func NewAppointmentHandler(
	create *ucAppointment.CreateAppointment,
	list *ucAppointment.ListAppointments,
	get *ucAppointment.GetAppointment,
	transition *ucAppointment.TransitionAppointment,
	reschedule *ucAppointment.RescheduleAppointment,
) *AppointmentHandler {
	return &AppointmentHandler{
		create:     create,
		list:       list,
		get:        get,
		transition: transition,
		reschedule: reschedule,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	BarberID   uint   `json:"barber_id" binding:"required"`
	ServiceIDs []uint `json:"service_ids" binding:"required,min=1"`
	Date       string `json:"date" binding:"required,civildate"`
	StartTime  string `json:"start_time" binding:"required,hhmm"`
	Notes      string `json:"notes" binding:"max=500"`
}

type TransitionRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type RescheduleRequest struct {
	Date      string `json:"date" binding:"required,civildate"`
	StartTime string `json:"start_time" binding:"required,hhmm"`
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	var req CreateAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	ap, err := h.create.Execute(c.Request.Context(), ucAppointment.CreateAppointmentInput{
		Actor:      a,
		BarberID:   req.BarberID,
		ServiceIDs: req.ServiceIDs,
		Date:       req.Date,
		StartTime:  req.StartTime,
		Notes:      req.Notes,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, dto.NewAppointmentView(ap))
}

// ======================================================
// READ
// ======================================================

func (h *AppointmentHandler) List(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	out, err := h.list.Execute(c.Request.Context(), ucAppointment.ListAppointmentsInput{
		Actor:     a,
		Status:    c.Query("status"),
		Date:      c.Query("date"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
		Page:      queryInt(c, "page", 1),
		Limit:     queryInt(c, "limit", ucAppointment.DefaultPageLimit),
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Page(c, dto.NewAppointmentViews(out.Items), out.Total, out.Page, out.Limit)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	ap, err := h.get.Execute(c.Request.Context(), a, id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, dto.NewAppointmentView(ap))
}

// ======================================================
// TRANSITIONS
// ======================================================

// Transition returns the handler for one state machine action. The body is
// optional and only carries a reason.
func (h *AppointmentHandler) Transition(action domain.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, ok := actor(c)
		if !ok {
			return
		}
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		var req TransitionRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			httperr.BadRequest(c, "invalid_request", validators.Message(err))
			return
		}

		ap, err := h.transition.Execute(c.Request.Context(), ucAppointment.TransitionInput{
			Actor:         a,
			AppointmentID: id,
			Action:        action,
			Reason:        req.Reason,
		})
		if err != nil {
			httperr.Respond(c, err)
			return
		}

		httpresp.OK(c, dto.NewAppointmentView(ap))
	}
}

func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req RescheduleRequest
	if !bindJSON(c, &req) {
		return
	}

	ap, err := h.reschedule.Execute(c.Request.Context(), ucAppointment.RescheduleInput{
		Actor:         a,
		AppointmentID: id,
		Date:          req.Date,
		StartTime:     req.StartTime,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, dto.NewAppointmentView(ap))
}
