package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	apierrors "github.com/customeros/mailadmin/api/errors"
	"github.com/customeros/mailadmin/api/middleware"
	"github.com/customeros/mailadmin/dto"
	"github.com/customeros/mailadmin/interfaces"
	"github.com/customeros/mailadmin/internal/logger"
	"github.com/customeros/mailadmin/internal/tracing"
)

type AuthHandler struct {
	mail interfaces.MailboxService
	log  logger.Logger
	now  func() time.Time
}

func NewAuthHandler(mail interfaces.MailboxService, log logger.Logger) *AuthHandler {
	return &AuthHandler{mail: mail, log: log, now: time.Now}
}

// Login checks the credentials against the mail server.
func (h *AuthHandler) Login() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "AuthHandler.Login")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		identity := middleware.GetIdentity(c)
		if err := h.mail.Login(ctx, identity); err != nil {
			tracing.TraceErr(span, err)
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.LoginResponse{
			Success: true,
			Message: "Login successful",
			User: dto.AuthUser{
				Email:           identity.Key(),
				AuthenticatedAt: h.now().UTC(),
			},
		})
	}
}

// Logout drops the pooled connection and cached listings of the identity.
func (h *AuthHandler) Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "AuthHandler.Logout")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		h.mail.Logout(ctx, middleware.GetIdentity(c))
		c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "Logged out"})
	}
}
