package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"mobile-auth-service/internal/domain"
	"mobile-auth-service/internal/http/response"
	"mobile-auth-service/internal/observability"
	"mobile-auth-service/internal/service"
)

type AuthHandler struct {
	authSvc service.AuthServiceInterface
}

func NewAuthHandler(authSvc service.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

type registerRequest struct {
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

type loginRequest struct {
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

type sendCodeRequest struct {
	Mobile  string `json:"mobile"`
	Purpose string `json:"purpose"`
}

type verifyCodeRequest struct {
	Mobile string `json:"mobile"`
	Code   string `json:"code"`
}

type resetPasswordRequest struct {
	Mobile      string `json:"mobile"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "register", status, time.Since(start))
	}()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		status = "failure"
		observability.RecordAuthFlowEvent(r.Context(), "register", "bad_request")
		response.Error(w, r, http.StatusBadRequest, domain.ErrCodeInvalidMobile, "Invalid request body", nil)
		return
	}

	result, err := h.authSvc.Register(req.Mobile, req.Password)
	if err != nil {
		status = "failure"
		observability.Audit(r, "auth.register.failed", "mobile", observability.MaskMobile(req.Mobile))
		observability.RecordAuthFlowEvent(r.Context(), "register", "failure")
		h.writeAuthError(w, r, err)
		return
	}

	observability.Audit(r, "auth.register.success", "mobile", observability.MaskMobile(result.Mobile))
	observability.RecordAuthFlowEvent(r.Context(), "register", "success")
	response.JSON(w, r, http.StatusCreated, map[string]any{
		"success":     true,
		"mobile":      result.Mobile,
		"is_verified": result.IsVerified,
		"token":       result.Token,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "login", status, time.Since(start))
	}()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		status = "failure"
		observability.RecordAuthFlowEvent(r.Context(), "login", "bad_request")
		response.Error(w, r, http.StatusUnauthorized, domain.ErrCodeIncorrectMobilePwd, "Incorrect mobile or password", nil)
		return
	}

	result, err := h.authSvc.Login(req.Mobile, req.Password)
	if err != nil {
		status = "failure"
		observability.Audit(r, "auth.login.failed", "mobile", observability.MaskMobile(req.Mobile))
		observability.RecordAuthFlowEvent(r.Context(), "login", "failure")
		h.writeAuthError(w, r, err)
		return
	}

	observability.Audit(r, "auth.login.success", "mobile", observability.MaskMobile(result.Mobile), "is_verified", result.IsVerified)
	observability.RecordAuthFlowEvent(r.Context(), "login", "success")
	response.JSON(w, r, http.StatusOK, map[string]any{
		"success":     true,
		"is_verified": result.IsVerified,
		"token":       result.Token,
	})
}

func (h *AuthHandler) SendCode(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "send_code", status, time.Since(start))
	}()

	var req sendCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		status = "failure"
		observability.RecordAuthFlowEvent(r.Context(), "send_code", "bad_request")
		response.Error(w, r, http.StatusBadRequest, domain.ErrCodeIncorrectMobilePwd, "User does not exist", nil)
		return
	}

	purpose := domain.PurposeMobileVerification
	if req.Purpose != "" {
		parsed, err := domain.ParseCodePurpose(req.Purpose)
		if err != nil {
			status = "failure"
			observability.RecordAuthFlowEvent(r.Context(), "send_code", "bad_purpose")
			response.Error(w, r, http.StatusBadRequest, domain.ErrCodeIncorrectMobilePwd, "Unknown code purpose", nil)
			return
		}
		purpose = parsed
	}

	if err := h.authSvc.SendCode(r.Context(), req.Mobile, purpose); err != nil {
		status = "failure"
		observability.Audit(r, "auth.send_code.failed", "mobile", observability.MaskMobile(req.Mobile), "purpose", string(purpose))
		observability.RecordAuthFlowEvent(r.Context(), "send_code", "failure")
		h.writeAuthError(w, r, err)
		return
	}

	observability.Audit(r, "auth.send_code.success", "mobile", observability.MaskMobile(req.Mobile), "purpose", string(purpose))
	observability.RecordAuthFlowEvent(r.Context(), "send_code", "success")
	response.JSON(w, r, http.StatusOK, map[string]any{"success": true})
}

func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "verify_code", status, time.Since(start))
	}()

	var req verifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		status = "failure"
		observability.RecordAuthFlowEvent(r.Context(), "verify_code", "bad_request")
		response.Error(w, r, http.StatusBadRequest, domain.ErrCodeIncorrectVerifyCode, "Invalid or expired verification code", nil)
		return
	}

	result, err := h.authSvc.VerifyMobile(req.Mobile, req.Code)
	if err != nil {
		status = "failure"
		observability.Audit(r, "auth.verify_code.failed", "mobile", observability.MaskMobile(req.Mobile))
		observability.RecordVerifyCodeEvent(r.Context(), string(domain.PurposeMobileVerification), "failure")
		observability.RecordAuthFlowEvent(r.Context(), "verify_code", "failure")
		h.writeAuthError(w, r, err)
		return
	}

	observability.Audit(r, "auth.verify_code.success", "mobile", observability.MaskMobile(result.Mobile))
	observability.RecordVerifyCodeEvent(r.Context(), string(domain.PurposeMobileVerification), "success")
	observability.RecordAuthFlowEvent(r.Context(), "verify_code", "success")
	response.JSON(w, r, http.StatusOK, map[string]any{
		"success": true,
		"token":   result.Token,
	})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "reset_password", status, time.Since(start))
	}()

	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		status = "failure"
		observability.RecordAuthFlowEvent(r.Context(), "reset_password", "bad_request")
		response.Error(w, r, http.StatusBadRequest, domain.ErrCodeIncorrectVerifyCode, "Invalid or expired verification code", nil)
		return
	}

	if err := h.authSvc.ResetPassword(req.Mobile, req.Code, req.NewPassword); err != nil {
		status = "failure"
		observability.Audit(r, "auth.reset_password.failed", "mobile", observability.MaskMobile(req.Mobile))
		observability.RecordVerifyCodeEvent(r.Context(), string(domain.PurposePasswordReset), "failure")
		observability.RecordAuthFlowEvent(r.Context(), "reset_password", "failure")
		h.writeAuthError(w, r, err)
		return
	}

	observability.Audit(r, "auth.reset_password.success", "mobile", observability.MaskMobile(req.Mobile))
	observability.RecordVerifyCodeEvent(r.Context(), string(domain.PurposePasswordReset), "success")
	observability.RecordAuthFlowEvent(r.Context(), "reset_password", "success")
	response.JSON(w, r, http.StatusOK, map[string]any{"success": true})
}

// writeAuthError maps service sentinels onto the stable wire error codes.
// Anything unrecognized becomes a 500 without leaking internals.
func (h *AuthHandler) writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidMobile):
		response.Error(w, r, http.StatusBadRequest, domain.ErrCodeInvalidMobile, "Invalid mobile number format", nil)
	case errors.Is(err, service.ErrWeakPassword):
		response.Error(w, r, http.StatusBadRequest, domain.ErrCodeInvalidPassword, "Password must be at least 8 characters with uppercase, lowercase and a digit", nil)
	case errors.Is(err, service.ErrMobileRegistered):
		response.Error(w, r, http.StatusBadRequest, domain.ErrCodeMobileRegistered, "Mobile number already registered", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(w, r, http.StatusUnauthorized, domain.ErrCodeIncorrectMobilePwd, "Incorrect mobile or password", nil)
	case errors.Is(err, service.ErrUserNotFound):
		response.Error(w, r, http.StatusBadRequest, domain.ErrCodeIncorrectMobilePwd, "User does not exist", nil)
	case errors.Is(err, service.ErrInvalidCode):
		response.Error(w, r, http.StatusBadRequest, domain.ErrCodeIncorrectVerifyCode, "Invalid or expired verification code", nil)
	default:
		response.Error(w, r, http.StatusInternalServerError, domain.ErrCodeInternal, "Internal server error", nil)
	}
}
