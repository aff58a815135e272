package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-booking/internal/dto"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/httpresp"
	ucPayment "github.com/BruksfildServices01/barber-booking/internal/usecase/payment"
)

// ======================================================
// HANDLER
// ======================================================

type PaymentHandler struct {
	initiate  *ucPayment.InitiatePayment
	reconcile *ucPayment.ReconcilePayment
	list      *ucPayment.ListTransactions
}

func NewPaymentHandler(
	initiate *ucPayment.InitiatePayment,
	reconcile *ucPayment.ReconcilePayment,
	list *ucPayment.ListTransactions,
) *PaymentHandler {
	return &PaymentHandler{initiate: initiate, reconcile: reconcile, list: list}
}

type CreatePaymentRequest struct {
	AppointmentID uint `json:"appointment_id" binding:"required"`
}

// PaymentResult is what the browser return page receives.
type PaymentResult struct {
	Success     bool                 `json:"success"`
	RspCode     string               `json:"rsp_code"`
	GatewayCode string               `json:"gateway_code"`
	Message     string               `json:"message"`
	Transaction *dto.TransactionView `json:"transaction,omitempty"`
}

// ======================================================
// CREATE
// ======================================================

func (h *PaymentHandler) Create(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	var req CreatePaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	out, err := h.initiate.Execute(c.Request.Context(), ucPayment.InitiateInput{
		Actor:         a,
		AppointmentID: req.AppointmentID,
		ClientIP:      c.ClientIP(),
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, out)
}

// ======================================================
// GATEWAY CALLBACKS
// ======================================================

func (h *PaymentHandler) VNPayReturn(c *gin.Context) {
	o, err := h.reconcile.HandleReturn(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	res := PaymentResult{
		Success:     o.Succeeded(),
		RspCode:     string(o.Ack.RspCode),
		GatewayCode: o.GatewayCode,
		Message:     o.GatewayMessage,
	}
	if o.Transaction != nil {
		v := dto.NewTransactionView(o.Transaction)
		res.Transaction = &v
	}
	httpresp.OK(c, res)
}

// VNPayIPN always answers 200; the gateway reads the outcome from RspCode.
func (h *PaymentHandler) VNPayIPN(c *gin.Context) {
	ack := h.reconcile.HandleIPN(c.Request.Context(), c.Request.URL.Query())
	c.JSON(http.StatusOK, ack)
}

// ======================================================
// READ
// ======================================================

func (h *PaymentHandler) ListByAppointment(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	txns, err := h.list.Execute(c.Request.Context(), a, id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, dto.NewTransactionViews(txns))
}
