package http

import (
	"net/http"

	"github.com/lumiforge/cutroom-backend/internal/models"
)

// Payment Handlers

// InitiatePayment handles creating a pending payment
// @Summary		Initiate payment
// @Description	Create a pending payment for the project. The amount is derived from the payment type and the outstanding balance
// @Tags		payments
// @Accept		json
// @Produce	json
// @Security	BearerAuth
// @Param		request	body		models.InitiatePaymentRequest	true	"Payment request"
// @Success	201	{object}	ydb.Payment
// @Failure	400	{object}	models.ErrorResponse
// @Failure	409	{object}	models.ErrorResponse
// @Router		/payments [post]
func (s *Server) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	var req models.InitiatePaymentRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	p, err := s.paymentService.Initiate(r.Context(), actor, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, p)
}

// VerifyPayment handles gateway confirmation
// @Summary		Verify payment
// @Description	Check the gateway signature, complete the payment and advance the project payment state
// @Tags		payments
// @Accept		json
// @Produce	json
// @Security	BearerAuth
// @Param		request	body		models.VerifyPaymentRequest	true	"Gateway confirmation"
// @Success	200	{object}	payment.Receipt
// @Failure	401	{object}	models.ErrorResponse
// @Failure	409	{object}	models.ErrorResponse
// @Router		/payments/verify [post]
func (s *Server) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	var req models.VerifyPaymentRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	receipt, err := s.paymentService.Verify(r.Context(), actor, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, receipt)
}

// ListPayments handles payment history
// @Summary		List payments
// @Tags		payments
// @Produce	json
// @Security	BearerAuth
// @Param		project_id	query	string	false	"Project filter"
// @Param		user_id		query	string	false	"Payer filter (admin only)"
// @Param		status		query	string	false	"Payment status"
// @Param		limit		query	int		false	"Page size"	default(20)
// @Param		offset		query	int		false	"Offset"	default(0)
// @Success	200	{object}	models.ListResponse[ydb.Payment]
// @Router		/payments [get]
func (s *Server) ListPayments(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	resp, err := s.paymentService.List(r.Context(), actor, models.PaymentFilter{
		UserID:    q.Get("user_id"),
		ProjectID: q.Get("project_id"),
		Status:    models.PaymentRecordStatus(q.Get("status")),
		Limit:     queryInt(r, "limit", 20),
		Offset:    queryInt(r, "offset", 0),
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// PaymentStats handles payment aggregates
// @Summary		Payment statistics
// @Tags		payments
// @Produce	json
// @Security	BearerAuth
// @Success	200	{object}	models.PaymentStats
// @Failure	403	{object}	models.ErrorResponse
// @Router		/payments/stats [get]
func (s *Server) PaymentStats(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	stats, err := s.paymentService.Stats(r.Context(), actor)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, stats)
}

// GetPayment handles getting a single payment
// @Summary		Get payment
// @Tags		payments
// @Produce	json
// @Security	BearerAuth
// @Param		id	path	string	true	"Payment ID"
// @Success	200	{object}	ydb.Payment
// @Failure	404	{object}	models.ErrorResponse
// @Router		/payments/{id} [get]
func (s *Server) GetPayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	p, err := s.paymentService.Get(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, p)
}

// FailPayment handles marking a pending payment as failed
// @Summary		Fail payment
// @Tags		payments
// @Accept		json
// @Produce	json
// @Security	BearerAuth
// @Param		id		path	string						true	"Payment ID"
// @Param		request	body	models.FailPaymentRequest	true	"Failure reason"
// @Success	200	{object}	ydb.Payment
// @Failure	409	{object}	models.ErrorResponse
// @Router		/payments/{id}/fail [post]
func (s *Server) FailPayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	var req models.FailPaymentRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	p, err := s.paymentService.Fail(r.Context(), actor, r.PathValue("id"), req.Reason)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, p)
}

// RefundPayment handles a full or partial refund
// @Summary		Refund payment
// @Description	Admin refunds a completed payment. Partial refunds leave the payment completed
// @Tags		payments
// @Accept		json
// @Produce	json
// @Security	BearerAuth
// @Param		id		path	string						true	"Payment ID"
// @Param		request	body	models.RefundPaymentRequest	true	"Refund"
// @Success	200	{object}	payment.Receipt
// @Failure	400	{object}	models.ErrorResponse
// @Failure	409	{object}	models.ErrorResponse
// @Router		/payments/{id}/refund [post]
func (s *Server) RefundPayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	var req models.RefundPaymentRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	receipt, err := s.paymentService.Refund(r.Context(), actor, r.PathValue("id"), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, receipt)
}

// Payout Handlers

// CreatePayout handles batching an editor's eligible projects
// @Summary		Create payout
// @Tags		payouts
// @Accept		json
// @Produce	json
// @Security	BearerAuth
// @Param		request	body		models.CreatePayoutRequest	true	"Payout"
// @Success	201	{object}	ydb.Payout
// @Failure	409	{object}	models.ErrorResponse
// @Router		/payouts [post]
func (s *Server) CreatePayout(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	var req models.CreatePayoutRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	p, err := s.payoutService.Create(r.Context(), actor, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, p)
}

// UpdatePayoutStatus handles payout processing and settlement
// @Summary		Update payout status
// @Tags		payouts
// @Accept		json
// @Produce	json
// @Security	BearerAuth
// @Param		id		path	string								true	"Payout ID"
// @Param		request	body	models.UpdatePayoutStatusRequest	true	"New status"
// @Success	200	{object}	ydb.Payout
// @Failure	409	{object}	models.ErrorResponse
// @Router		/payouts/{id}/status [put]
func (s *Server) UpdatePayoutStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	var req models.UpdatePayoutStatusRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	p, err := s.payoutService.UpdateStatus(r.Context(), actor, r.PathValue("id"), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, p)
}

// GetPayout handles getting a single payout
// @Summary		Get payout
// @Tags		payouts
// @Produce	json
// @Security	BearerAuth
// @Param		id	path	string	true	"Payout ID"
// @Success	200	{object}	ydb.Payout
// @Failure	404	{object}	models.ErrorResponse
// @Router		/payouts/{id} [get]
func (s *Server) GetPayout(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	p, err := s.payoutService.Get(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, p)
}

// ListPayouts handles payout history
// @Summary		List payouts
// @Tags		payouts
// @Produce	json
// @Security	BearerAuth
// @Param		editor_id	query	string	false	"Editor filter (admin only)"
// @Param		status		query	string	false	"Payout status"
// @Param		limit		query	int		false	"Page size"	default(20)
// @Param		offset		query	int		false	"Offset"	default(0)
// @Success	200	{object}	models.ListResponse[ydb.Payout]
// @Router		/payouts [get]
func (s *Server) ListPayouts(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	resp, err := s.payoutService.List(r.Context(), actor, models.PayoutFilter{
		EditorID: q.Get("editor_id"),
		Status:   models.PayoutStatus(q.Get("status")),
		Limit:    queryInt(r, "limit", 20),
		Offset:   queryInt(r, "offset", 0),
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// PendingEarnings handles the editor's unpaid completed work
// @Summary		Pending earnings
// @Tags		payouts
// @Produce	json
// @Security	BearerAuth
// @Param		editor_id	query	string	false	"Editor, required for admins"
// @Success	200	{object}	models.PendingEarningsResponse
// @Router		/payouts/pending [get]
func (s *Server) PendingEarnings(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	resp, err := s.payoutService.PendingEarnings(r.Context(), actor, r.URL.Query().Get("editor_id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}
