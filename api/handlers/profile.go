package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	apierrors "github.com/customeros/mailadmin/api/errors"
	"github.com/customeros/mailadmin/api/middleware"
	"github.com/customeros/mailadmin/dto"
	"github.com/customeros/mailadmin/interfaces"
	mailerrors "github.com/customeros/mailadmin/internal/errors"
	"github.com/customeros/mailadmin/internal/logger"
	"github.com/customeros/mailadmin/internal/models"
	"github.com/customeros/mailadmin/internal/tracing"
	"github.com/customeros/mailadmin/internal/utils"
)

type ProfileHandler struct {
	profiles interfaces.ProfileService
	mail     interfaces.MailboxService
	log      logger.Logger
}

func NewProfileHandler(profiles interfaces.ProfileService, mail interfaces.MailboxService, log logger.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, mail: mail, log: log}
}

// owner checks the request credentials against the mail server and returns
// the email whose profile may be written.
func (h *ProfileHandler) owner(ctx context.Context, c *gin.Context) (string, error) {
	identity := middleware.GetIdentity(c)
	if err := h.mail.Login(ctx, identity); err != nil {
		return "", err
	}
	return identity.Key(), nil
}

func (h *ProfileHandler) GetProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "ProfileHandler.GetProfile")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		email := c.Query("email")
		ctx = utils.SetUserEmailInContext(ctx, email)
		profile, err := h.profiles.GetProfile(ctx, email)
		if err != nil {
			tracing.TraceErr(span, err)
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.ProfileResponse{Success: true, Profile: profile})
	}
}

// SaveProfile stores the profile fields of the authenticated user. A missing
// signatureEnabled keeps the stored setting.
func (h *ProfileHandler) SaveProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "ProfileHandler.SaveProfile")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var request dto.ProfileRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			err = errors.Wrap(mailerrors.ErrInvalidRequest, err.Error())
			tracing.TraceErr(span, err)
			apierrors.Respond(c, err)
			return
		}
		email, err := h.owner(ctx, c)
		if err != nil {
			tracing.TraceErr(span, err)
			apierrors.Respond(c, err)
			return
		}

		current, err := h.profiles.GetProfile(ctx, email)
		if err != nil {
			tracing.TraceErr(span, err)
			apierrors.Respond(c, err)
			return
		}
		signatureEnabled := current.SignatureEnabled
		if request.SignatureEnabled != nil {
			signatureEnabled = *request.SignatureEnabled
		}

		saved, err := h.profiles.SaveProfile(ctx, email, &models.Profile{
			Name:             request.Name,
			Position:         request.Position,
			Company:          request.Company,
			Phone:            request.Phone,
			Website:          request.Website,
			SignatureEnabled: signatureEnabled,
		})
		if err != nil {
			tracing.TraceErr(span, err)
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.ProfileResponse{Success: true, Profile: saved})
	}
}

func (h *ProfileHandler) UploadSignature() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "ProfileHandler.UploadSignature")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var request dto.SignatureUploadRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			err = errors.Wrap(mailerrors.ErrInvalidRequest, err.Error())
			tracing.TraceErr(span, err)
			apierrors.Respond(c, err)
			return
		}
		email, err := h.owner(ctx, c)
		if err != nil {
			tracing.TraceErr(span, err)
			apierrors.Respond(c, err)
			return
		}

		key, err := h.profiles.SaveSignatureImage(ctx, email, request.Image)
		if err != nil {
			tracing.TraceErr(span, err)
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.SignatureUploadResponse{
			Success: true,
			Message: "Signature image saved",
			Key:     key,
		})
	}
}

func (h *ProfileHandler) GetSignature() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "ProfileHandler.GetSignature")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		image, contentType, err := h.profiles.GetSignatureImage(ctx, c.Param("email"))
		if err != nil {
			tracing.TraceErr(span, err)
			apierrors.Respond(c, err)
			return
		}
		c.Header("Cache-Control", "private, max-age=3600")
		c.Header("Content-Length", strconv.Itoa(len(image)))
		c.Data(http.StatusOK, contentType, image)
	}
}
