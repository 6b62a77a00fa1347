package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/release-planner/internal/constants"
	"github.com/yukikurage/release-planner/internal/models"
)

type fakeFinder map[string]models.Launch

func (f fakeFinder) GetLaunch(id string) (*models.Launch, error) {
	l, ok := f[id]
	if !ok {
		return nil, errors.New("launch not found")
	}
	return &l, nil
}

func TestRequireAuth_RejectsMissingSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionName, cookie.NewStore([]byte("secret"))))
	r.GET("/private", RequireAuth(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestRequireAuth_AcceptsSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionName, cookie.NewStore([]byte("secret"))))
	r.GET("/login", func(c *gin.Context) {
		s := sessions.Default(c)
		s.Set(constants.ContextKeyAccountID, uint64(7))
		require.NoError(t, s.Save())
		c.Status(http.StatusOK)
	})
	var got uint64
	r.GET("/private", RequireAuth(), func(c *gin.Context) {
		got, _ = GetAccountID(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint64(7), got)
}

func TestGetAccountID_Types(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetAccountID(c)
	assert.False(t, ok)

	c.Set(constants.ContextKeyAccountID, 3)
	id, ok := GetAccountID(c)
	assert.True(t, ok)
	assert.Equal(t, uint64(3), id)

	c.Set(constants.ContextKeyAccountID, -1)
	_, ok = GetAccountID(c)
	assert.False(t, ok)

	c.Set(constants.ContextKeyAccountID, "7")
	_, ok = GetAccountID(c)
	assert.False(t, ok)
}

func TestRequireLaunch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	finder := fakeFinder{"l1": {ID: "l1", SongName: "Neon Rain"}}
	r := gin.New()
	r.GET("/launches/:id", RequireLaunch(finder), func(c *gin.Context) {
		launch, ok := GetLaunch(c)
		require.True(t, ok)
		c.String(http.StatusOK, launch.SongName)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/launches/l1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Neon Rain", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/launches/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
