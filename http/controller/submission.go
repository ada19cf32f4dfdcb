package controller

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tnqbao/gau-form-service/entity"
	"github.com/tnqbao/gau-form-service/http/controller/dto"
	"github.com/tnqbao/gau-form-service/service"
	"github.com/tnqbao/gau-form-service/utils"
)

func (ctrl *Controller) CreateSubmission(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Submission] user_id not found in context")
		utils.JSON401(c, "Unauthorized: user_id not found")
		return
	}

	var req dto.CreateSubmissionRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Submission] Failed to bind JSON: %v", err)
		utils.JSON400(c, "Invalid request payload")
		return
	}

	fields, err := json.Marshal(req.Fields)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Submission] Failed to marshal fields: %v", err)
		utils.JSON400(c, "Invalid fields payload")
		return
	}

	submission := &entity.Submission{
		ID:      uuid.New(),
		OwnerID: userID,
		Title:   req.Title,
		Fields:  fields,
	}

	if err := ctrl.Repository.SubmissionRepo.Create(ctx, submission); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Submission] Failed to create submission: %v", err)
		utils.JSON500(c, "Failed to create submission")
		return
	}

	attachments, err := ctrl.Attachments.Ingest(ctx, submission.ID, toFilePayloads(req.Attachments))
	if err != nil {
		// Rollback the bare submission so a failed ingest leaves nothing behind.
		if rollbackErr := ctrl.Repository.SubmissionRepo.Delete(ctx, submission.ID); rollbackErr != nil {
			ctrl.Infra.Logger.ErrorWithContextf(ctx, rollbackErr, "[Submission] Failed to rollback submission after ingest error: %v", rollbackErr)
		}
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Submission] Failed to ingest attachments: %v", err)
		respondServiceError(c, err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Submission] Created submission %s with %d attachments for user %s",
		submission.ID, len(attachments), userID)
	utils.JSON201(c, gin.H{
		"submission":  submission,
		"attachments": attachments,
	})
}

func (ctrl *Controller) ListSubmissions(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized: user_id not found")
		return
	}

	submissions, err := ctrl.Repository.SubmissionRepo.FindByOwnerID(ctx, userID)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Submission] Failed to list submissions: %v", err)
		utils.JSON500(c, "Failed to list submissions")
		return
	}

	utils.JSON200(c, gin.H{"submissions": submissions})
}

func (ctrl *Controller) GetSubmission(c *gin.Context) {
	ctx := c.Request.Context()
	submission, ok := ctrl.requireOwnedSubmission(c)
	if !ok {
		return
	}

	attachments, err := ctrl.Attachments.FetchByOwner(ctx, submission.ID)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Submission] Failed to fetch attachments: %v", err)
		respondServiceError(c, err)
		return
	}

	utils.JSON200(c, gin.H{
		"submission":  submission,
		"attachments": attachments,
	})
}

func (ctrl *Controller) UpdateSubmission(c *gin.Context) {
	ctx := c.Request.Context()
	submission, ok := ctrl.requireOwnedSubmission(c)
	if !ok {
		return
	}

	var req dto.UpdateSubmissionRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Submission] Failed to bind JSON: %v", err)
		utils.JSON400(c, "Invalid request payload")
		return
	}

	if req.Title != nil {
		submission.Title = *req.Title
	}
	if req.Fields != nil {
		fields, err := json.Marshal(req.Fields)
		if err != nil {
			utils.JSON400(c, "Invalid fields payload")
			return
		}
		submission.Fields = fields
	}
	if err := ctrl.Repository.SubmissionRepo.Update(ctx, submission); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Submission] Failed to update submission: %v", err)
		utils.JSON500(c, "Failed to update submission")
		return
	}

	attachments, err := ctrl.Attachments.Reconcile(ctx, submission.ID, req.RemovedAttachmentIDs, toFilePayloads(req.NewAttachments))
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Submission] Failed to reconcile attachments: %v", err)
		respondServiceError(c, err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Submission] Updated submission %s (removed %d, added %d attachments)",
		submission.ID, len(req.RemovedAttachmentIDs), len(req.NewAttachments))
	utils.JSON200(c, gin.H{
		"submission":  submission,
		"attachments": attachments,
	})
}

func (ctrl *Controller) DeleteSubmission(c *gin.Context) {
	ctx := c.Request.Context()
	submission, ok := ctrl.requireOwnedSubmission(c)
	if !ok {
		return
	}

	if err := ctrl.Attachments.DeleteOwnerCascade(ctx, submission.ID); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Submission] Failed to delete submission: %v", err)
		respondServiceError(c, err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Submission] Deleted submission %s", submission.ID)
	utils.JSON200(c, gin.H{"message": "Submission deleted"})
}

func (ctrl *Controller) DownloadAttachment(c *gin.Context) {
	ctx := c.Request.Context()
	submission, ok := ctrl.requireOwnedSubmission(c)
	if !ok {
		return
	}

	attachmentID, err := uuid.Parse(c.Param("attachment_id"))
	if err != nil {
		utils.JSON400(c, "Invalid attachment_id format")
		return
	}

	attachment, data, err := ctrl.Attachments.Download(ctx, submission.ID, attachmentID)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Submission] Failed to download attachment: %v", err)
		respondServiceError(c, err)
		return
	}

	contentType := attachment.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", `attachment; filename="`+attachment.FileName+`"`)
	c.Data(200, contentType, data)
}

// requireOwnedSubmission resolves the :id path parameter and rejects the
// request unless the submission exists and belongs to the caller.
func (ctrl *Controller) requireOwnedSubmission(c *gin.Context) (*entity.Submission, bool) {
	ctx := c.Request.Context()
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized: user_id not found")
		return nil, false
	}

	submissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.JSON400(c, "Invalid submission id format")
		return nil, false
	}

	submission, err := ctrl.Repository.SubmissionRepo.FindByID(ctx, submissionID)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Submission] Failed to look up submission: %v", err)
		utils.JSON500(c, "Failed to look up submission")
		return nil, false
	}
	if submission == nil {
		utils.JSON404(c, "Submission not found")
		return nil, false
	}
	if submission.OwnerID != userID {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Submission] User %s attempted to access submission %s owned by %s",
			userID, submission.ID, submission.OwnerID)
		utils.JSON403(c, "Forbidden: you don't have permission to access this submission")
		return nil, false
	}
	return submission, true
}

func toFilePayloads(payloads []dto.FilePayloadDTO) []service.FilePayload {
	result := make([]service.FilePayload, len(payloads))
	for i, p := range payloads {
		result[i] = service.FilePayload{
			FileName:    p.FileName,
			ContentType: p.ContentType,
			Content:     p.Content,
		}
	}
	return result
}
