package handlers

import (
	"context"
	"net/http"

	"github.com/kaayakalpa/healthfinder/internal/api/middleware"
	"github.com/kaayakalpa/healthfinder/internal/application/services"
	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
)

// OTPService defines the phone verification operations used by the handler
type OTPService interface {
	Send(ctx context.Context, input services.SendOTPInput) (*services.SendOTPResult, error)
	Resend(ctx context.Context, input services.SendOTPInput) (*services.SendOTPResult, error)
	Verify(ctx context.Context, input services.VerifyOTPInput) (*services.VerifyOTPResult, error)
}

// OTPHandler handles the OTP endpoints
type OTPHandler struct {
	service OTPService
}

// NewOTPHandler creates a new OTP handler
func NewOTPHandler(service OTPService) *OTPHandler {
	return &OTPHandler{service: service}
}

type sendOTPRequest struct {
	Phone   string              `json:"phone"`
	Purpose entities.OTPPurpose `json:"purpose"`
	UserID  string              `json:"user_id"`
}

type verifyOTPRequest struct {
	Phone   string              `json:"phone"`
	OTP     string              `json:"otp"`
	Purpose entities.OTPPurpose `json:"purpose"`
}

func (req sendOTPRequest) input(r *http.Request) services.SendOTPInput {
	return services.SendOTPInput{
		Phone:     req.Phone,
		Purpose:   req.Purpose,
		UserID:    req.UserID,
		IPAddress: middleware.ClientIP(r),
		Caller:    middleware.UserFromContext(r.Context()),
	}
}

// SendOTP handles POST /api/otp/send
func (h *OTPHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req sendOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.Send(r.Context(), req.input(r))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// ResendOTP handles POST /api/otp/resend
func (h *OTPHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req sendOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.Resend(r.Context(), req.input(r))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// VerifyOTP handles POST /api/otp/verify
func (h *OTPHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.Verify(r.Context(), services.VerifyOTPInput{
		Phone:   req.Phone,
		Code:    req.OTP,
		Purpose: req.Purpose,
		Caller:  middleware.UserFromContext(r.Context()),
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
		*services.VerifyOTPResult
	}{Message: "OTP verified successfully", VerifyOTPResult: result})
}
