package middleware

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	apierrors "github.com/customeros/mailadmin/api/errors"
	"github.com/customeros/mailadmin/dto"
	mailerrors "github.com/customeros/mailadmin/internal/errors"
	"github.com/customeros/mailadmin/internal/models"
	"github.com/customeros/mailadmin/internal/utils"
)

const GinKeyIdentity = "Identity"

// RequireCredentials reads email and password from the JSON body and stores
// the identity on the gin context. The body is restored for the handler.
func RequireCredentials() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body []byte
		if c.Request.Body != nil {
			read, err := io.ReadAll(c.Request.Body)
			if err != nil {
				apierrors.Respond(c, errors.Wrap(mailerrors.ErrInvalidRequest, err.Error()))
				return
			}
			body = read
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		var credentials dto.Credentials
		if len(bytes.TrimSpace(body)) > 0 {
			if err := json.Unmarshal(body, &credentials); err != nil {
				apierrors.Respond(c, errors.Wrap(mailerrors.ErrInvalidRequest, "invalid json body"))
				return
			}
		}

		identity := models.Identity{Email: credentials.Email, Password: credentials.Password}
		if identity.IsEmpty() {
			apierrors.Respond(c, mailerrors.ErrMissingAuth)
			return
		}

		c.Set(GinKeyIdentity, identity)
		c.Set(utils.GinKeyUserEmail, identity.Key())
		c.Request = c.Request.WithContext(utils.SetUserEmailInContext(c.Request.Context(), identity.Key()))
		c.Next()
	}
}

// GetIdentity returns the identity stored by RequireCredentials.
func GetIdentity(c *gin.Context) models.Identity {
	if value, ok := c.Get(GinKeyIdentity); ok {
		if identity, ok := value.(models.Identity); ok {
			return identity
		}
	}
	return models.Identity{}
}
