package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailadmin/internal/models"
	"github.com/customeros/mailadmin/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequireCredentials_SetsIdentityAndRestoresBody(t *testing.T) {
	router := gin.New()
	router.Use(CustomContextMiddleware("test"))
	router.POST("/x", RequireCredentials(), func(c *gin.Context) {
		identity := GetIdentity(c)
		body, err := io.ReadAll(c.Request.Body)
		require.NoError(t, err)
		c.JSON(http.StatusOK, gin.H{
			"email":     identity.Email,
			"password":  identity.Password,
			"ctxEmail":  utils.GetUserEmailFromContext(c.Request.Context()),
			"appSource": utils.GetAppSourceFromContext(c.Request.Context()),
			"body":      string(body),
		})
	})

	payload := `{"email":"Ann@Example.com","password":"secret","limit":5}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(payload)))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"email":"Ann@Example.com","password":"secret","ctxEmail":"ann@example.com","appSource":"test","body":`+
		`"{\"email\":\"Ann@Example.com\",\"password\":\"secret\",\"limit\":5}"}`, w.Body.String())
}

func TestRequireCredentials_MissingPassword(t *testing.T) {
	router := gin.New()
	called := false
	router.POST("/x", RequireCredentials(), func(c *gin.Context) { called = true })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"email":"ann@example.com"}`)))

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"email and password are required","code":"AUTH"}`, w.Body.String())
}

func TestRequireCredentials_EmptyBody(t *testing.T) {
	router := gin.New()
	router.DELETE("/x", RequireCredentials(), func(c *gin.Context) {})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/x", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireCredentials_InvalidJson(t *testing.T) {
	router := gin.New()
	router.POST("/x", RequireCredentials(), func(c *gin.Context) {})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"email":`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetIdentity_Absent(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, models.Identity{}, GetIdentity(c))
}

func TestRequestIdMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RequestIdMiddleware(), CustomContextMiddleware("test"))
	router.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, utils.GetRequestIdFromContext(c.Request.Context()))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestId, "req-1")
	router.ServeHTTP(w, req)
	assert.Equal(t, "req-1", w.Body.String())
	assert.Equal(t, "req-1", w.Header().Get(HeaderRequestId))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Len(t, w.Body.String(), 36)
	assert.Equal(t, w.Body.String(), w.Header().Get(HeaderRequestId))
}

func TestBodyLimitMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(BodyLimitMiddleware(8))
	router.POST("/x", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("short")))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("much too long")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
