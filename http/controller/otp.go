package controller

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-form-service/http/controller/dto"
	"github.com/tnqbao/gau-form-service/service"
	"github.com/tnqbao/gau-form-service/utils"
)

func (ctrl *Controller) RequestOtp(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RequestOtpDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request payload")
		return
	}

	_, err := ctrl.Otp.Issue(ctx, req.Recipient)
	if err != nil {
		if errors.Is(err, service.ErrDeliveryFailed) {
			// The code is issued and stays valid; only dispatch failed.
			ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[OTP] Delivery failed for %s", req.Recipient)
			utils.JSON502(c, "Verification code issued but delivery failed, retry later")
			return
		}
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[OTP] Failed to issue code: %v", err)
		respondServiceError(c, err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[OTP] Issued verification code for %s", req.Recipient)
	utils.JSON200(c, gin.H{"message": "Verification code sent"})
}

func (ctrl *Controller) VerifyOtp(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.VerifyOtpDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request payload")
		return
	}

	if err := ctrl.Otp.Verify(ctx, req.Recipient, req.Code); err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[OTP] Verification failed for %s: %v", req.Recipient, err)
		respondServiceError(c, err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[OTP] Verified %s", req.Recipient)
	utils.JSON200(c, gin.H{"message": "Verification successful"})
}
