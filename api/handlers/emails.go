package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	apierrors "github.com/customeros/mailadmin/api/errors"
	"github.com/customeros/mailadmin/api/middleware"
	"github.com/customeros/mailadmin/dto"
	"github.com/customeros/mailadmin/interfaces"
	mailerrors "github.com/customeros/mailadmin/internal/errors"
	"github.com/customeros/mailadmin/internal/folders"
	"github.com/customeros/mailadmin/internal/logger"
	"github.com/customeros/mailadmin/internal/tracing"
)

type EmailsHandler struct {
	mail    interfaces.MailboxService
	folders *folders.Resolver
	log     logger.Logger
}

func NewEmailsHandler(mail interfaces.MailboxService, folders *folders.Resolver, log logger.Logger) *EmailsHandler {
	return &EmailsHandler{
		mail:    mail,
		folders: folders,
		log:     log,
	}
}

// ListFolder serves a folder listing. The cache always answers with the
// newest entries, so page is only echoed back.
func (h *EmailsHandler) ListFolder() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailsHandler.ListFolder")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		limit := queryInt(c, "limit", 0)
		page := queryInt(c, "page", 1)
		if page < 1 {
			page = 1
		}

		result, err := h.mail.ListFolder(ctx, middleware.GetIdentity(c), c.Param("folder"), limit)
		if err != nil {
			tracing.TraceErr(span, err)
			apierrors.Respond(c, err)
			return
		}

		c.JSON(http.StatusOK, dto.ListFolderResponse{
			Success: true,
			Emails:  result.Emails,
			Pagination: dto.Pagination{
				Page:     page,
				Limit:    result.Limit,
				Total:    result.Total,
				Returned: len(result.Emails),
			},
			FromCache: result.FromCache,
		})
	}
}

func (h *EmailsHandler) OpenMessage() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailsHandler.OpenMessage")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		uid, err := uidParam(c)
		if err != nil {
			tracing.TraceErr(span, err)
			apierrors.Respond(c, err)
			return
		}

		detail, err := h.mail.OpenMessage(ctx, middleware.GetIdentity(c), c.Param("folder"), uid)
		if err != nil {
			tracing.TraceErr(span, err)
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.EmailResponse{Success: true, Email: detail})
	}
}

// DownloadAttachment streams one attachment of a message.
func (h *EmailsHandler) DownloadAttachment() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailsHandler.DownloadAttachment")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		uid, err := uidParam(c)
		if err != nil {
			tracing.TraceErr(span, err)
			apierrors.Respond(c, err)
			return
		}
		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			err = errors.Wrapf(mailerrors.ErrInvalidIndex, "attachment index %q", c.Param("index"))
			tracing.TraceErr(span, err)
			apierrors.Respond(c, err)
			return
		}

		attachment, err := h.mail.DownloadAttachment(ctx, middleware.GetIdentity(c), c.Param("folder"), uid, index)
		if err != nil {
			tracing.TraceErr(span, err)
			apierrors.Respond(c, err)
			return
		}

		contentType := attachment.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		filename := attachment.Filename
		if filename == "" {
			filename = fmt.Sprintf("attachment-%d", index)
		}
		c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, url.PathEscape(filename)))
		c.Header("Cache-Control", "private, max-age=3600")
		c.Header("Content-Length", strconv.Itoa(len(attachment.Content)))
		c.Data(http.StatusOK, contentType, attachment.Content)
	}
}

func (h *EmailsHandler) MoveMessage() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailsHandler.MoveMessage")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var request dto.MoveRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			err = errors.Wrap(mailerrors.ErrInvalidRequest, err.Error())
			tracing.TraceErr(span, err)
			apierrors.Respond(c, err)
			return
		}
		tracing.TagUid(span, request.Uid)

		err := h.mail.MoveMessage(ctx, middleware.GetIdentity(c), request.Uid, request.SourceFolder, request.TargetFolder)
		if err != nil {
			tracing.TraceErr(span, err)
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.MessageResponse{
			Success: true,
			Message: fmt.Sprintf("Email moved from %s to %s", request.SourceFolder, request.TargetFolder),
		})
	}
}

// DeleteMessage moves a message to trash, or removes it for good when it is
// already there.
func (h *EmailsHandler) DeleteMessage() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailsHandler.DeleteMessage")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		uid, err := uidParam(c)
		if err != nil {
			tracing.TraceErr(span, err)
			apierrors.Respond(c, err)
			return
		}

		if err = h.mail.DeleteMessage(ctx, middleware.GetIdentity(c), c.Param("folder"), uid); err != nil {
			tracing.TraceErr(span, err)
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "Email deleted"})
	}
}

func (h *EmailsHandler) ClearCache() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailsHandler.ClearCache")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		cleared := h.mail.ClearCache(ctx, middleware.GetIdentity(c))
		c.JSON(http.StatusOK, dto.MessageResponse{
			Success: true,
			Message: fmt.Sprintf("Cache cleared (%d folders)", cleared),
		})
	}
}

// Stats reads folder counts straight from the server.
func (h *EmailsHandler) Stats() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailsHandler.Stats")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		stats, err := h.mail.FolderStats(ctx, middleware.GetIdentity(c))
		if err != nil {
			tracing.TraceErr(span, err)
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.StatsResponse{Success: true, Stats: stats})
	}
}

func (h *EmailsHandler) Folders() gin.HandlerFunc {
	return func(c *gin.Context) {
		all := h.folders.All()
		result := make(map[string]string, len(all))
		for _, folder := range all {
			result[folder.Key.String()] = folder.Name
		}
		c.JSON(http.StatusOK, dto.FoldersResponse{Success: true, Folders: result})
	}
}

func uidParam(c *gin.Context) (uint32, error) {
	uid, err := strconv.ParseUint(c.Param("uid"), 10, 32)
	if err != nil || uid == 0 {
		return 0, errors.Wrapf(mailerrors.ErrInvalidRequest, "invalid uid %q", c.Param("uid"))
	}
	return uint32(uid), nil
}

func queryInt(c *gin.Context, name string, fallback int) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}
	return value
}
