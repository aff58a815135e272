package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/httpresp"
	ucAppointment "github.com/BruksfildServices01/barber-booking/internal/usecase/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/validators"
)

type AvailabilityHandler struct {
	availability *ucAppointment.GetAvailability
}

func NewAvailabilityHandler(availability *ucAppointment.GetAvailability) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability}
}

type availabilityQuery struct {
	Date string `form:"date" binding:"required,civildate"`
}

// Slots is public; it answers for barbers that are off or unavailable with
// an empty list and a reason rather than an error.
func (h *AvailabilityHandler) Slots(c *gin.Context) {
	barberID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var q availabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.BadRequest(c, "invalid_date", validators.Message(err))
		return
	}

	a, err := h.availability.Execute(c.Request.Context(), barberID, q.Date)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, a)
}
