package handlers

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/customeros/mailsherpa/mailvalidate"
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	apierrors "github.com/customeros/mailadmin/api/errors"
	"github.com/customeros/mailadmin/api/middleware"
	"github.com/customeros/mailadmin/dto"
	mailerrors "github.com/customeros/mailadmin/internal/errors"
	"github.com/customeros/mailadmin/internal/models"
	"github.com/customeros/mailadmin/internal/tracing"
	"github.com/customeros/mailadmin/internal/utils"
)

func (h *EmailsHandler) Send() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailsHandler.Send")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var request dto.SendRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			err = errors.Wrap(mailerrors.ErrInvalidRequest, err.Error())
			tracing.TraceErr(span, err)
			apierrors.Respond(c, err)
			return
		}

		email, errs := h.buildOutgoingEmail(ctx, &request, true)
		if errs.HasErrors() {
			tracing.TraceErr(span, errs)
			apierrors.Respond(c, errs)
			return
		}

		result, err := h.mail.SendMessage(ctx, middleware.GetIdentity(c), email)
		if err != nil {
			tracing.TraceErr(span, err)
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.SendResponse{
			Success:   true,
			MessageId: result.MessageID,
			Response:  result.Response,
		})
	}
}

func (h *EmailsHandler) SaveDraft() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailsHandler.SaveDraft")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var request dto.SendRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			err = errors.Wrap(mailerrors.ErrInvalidRequest, err.Error())
			tracing.TraceErr(span, err)
			apierrors.Respond(c, err)
			return
		}

		draft, errs := h.buildOutgoingEmail(ctx, &request, false)
		if errs.HasErrors() {
			tracing.TraceErr(span, errs)
			apierrors.Respond(c, errs)
			return
		}

		if err := h.mail.SaveDraft(ctx, middleware.GetIdentity(c), draft); err != nil {
			tracing.TraceErr(span, err)
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "Draft saved"})
	}
}

// Reply answers the sender of a message, threading it through In-Reply-To
// and References.
func (h *EmailsHandler) Reply() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailsHandler.Reply")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var request dto.ReplyRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			err = errors.Wrap(mailerrors.ErrInvalidRequest, err.Error())
			tracing.TraceErr(span, err)
			apierrors.Respond(c, err)
			return
		}

		errs := apierrors.NewMultiErrors()
		to := utils.ExtractEmailAddress(request.OriginalEmail.From)
		if validation := mailvalidate.ValidateEmailSyntax(to); !validation.IsValid {
			errs.Add("originalEmail.from", "sender of the original email is not a valid address", nil)
		} else {
			to = validation.CleanEmail
		}
		if strings.TrimSpace(request.ReplyText) == "" {
			errs.Add("replyText", "reply text is required", nil)
		}
		if errs.HasErrors() {
			tracing.TraceErr(span, errs)
			apierrors.Respond(c, errs)
			return
		}

		email := &models.OutgoingEmail{
			To:         []string{to},
			Subject:    utils.ReplySubject(request.OriginalEmail.Subject),
			Text:       request.ReplyText,
			HTML:       utils.TextToHTML(request.ReplyText),
			InReplyTo:  request.OriginalEmail.MessageId,
			References: replyReferences(request.OriginalEmail),
		}

		result, err := h.mail.SendMessage(ctx, middleware.GetIdentity(c), email)
		if err != nil {
			tracing.TraceErr(span, err)
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.SendResponse{
			Success:   true,
			MessageId: result.MessageID,
			Response:  result.Response,
		})
	}
}

func replyReferences(original dto.ReplyOriginal) []string {
	references := make([]string, 0, len(original.References)+1)
	references = append(references, original.References...)
	if original.MessageId != "" {
		references = append(references, original.MessageId)
	}
	return utils.UniqueStrings(references)
}

// buildOutgoingEmail validates recipients and decodes attachments. A draft
// may have no recipients at all.
func (h *EmailsHandler) buildOutgoingEmail(ctx context.Context, request *dto.SendRequest, requireRecipient bool) (*models.OutgoingEmail, *apierrors.MultiErrors) {
	span, _ := opentracing.StartSpanFromContext(ctx, "EmailsHandler.buildOutgoingEmail")
	defer span.Finish()

	errs := apierrors.NewMultiErrors()
	email := &models.OutgoingEmail{
		To:      cleanRecipients(errs, "to", request.To),
		Cc:      cleanRecipients(errs, "cc", request.Cc),
		Bcc:     cleanRecipients(errs, "bcc", request.Bcc),
		Subject: request.Subject,
		Text:    request.Text,
		HTML:    request.HTML,
	}
	if requireRecipient && len(request.To) == 0 {
		errs.Add("to", "please provide at least one recipient", nil)
	}

	for i, attachment := range request.Attachments {
		field := fmt.Sprintf("attachments[%d]", i)
		if attachment.Filename == "" {
			errs.Add(field, "filename is required", nil)
			continue
		}
		content, err := base64.StdEncoding.DecodeString(attachment.Content)
		if err != nil {
			errs.Add(field, "content is not valid base64", err)
			continue
		}
		contentType := attachment.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		email.Attachments = append(email.Attachments, models.OutgoingAttachment{
			Filename:    attachment.Filename,
			ContentType: contentType,
			Content:     content,
		})
	}
	return email, errs
}

func cleanRecipients(errs *apierrors.MultiErrors, field string, recipients dto.Recipients) []string {
	if len(recipients) == 0 {
		return nil
	}
	cleaned := make([]string, 0, len(recipients))
	for _, recipient := range recipients {
		address := utils.ExtractEmailAddress(recipient)
		validation := mailvalidate.ValidateEmailSyntax(address)
		if !validation.IsValid {
			errs.Add(field, fmt.Sprintf("%q is not a valid email address", recipient), nil)
			continue
		}
		cleaned = append(cleaned, validation.CleanEmail)
	}
	return utils.UniqueStrings(cleaned)
}
