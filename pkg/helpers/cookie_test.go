package helpers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieManager_SetAndClear(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewCookie("localhost", true)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	m.SetAccess(c, "tok", time.Now().Add(time.Hour))

	res := w.Result()
	require.Len(t, res.Cookies(), 1)
	ck := res.Cookies()[0]
	assert.Equal(t, AccessCookieName, ck.Name)
	assert.Equal(t, "tok", ck.Value)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
	assert.Greater(t, ck.MaxAge, 3500)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	m.Clear(c)
	require.Len(t, w.Result().Cookies(), 1)
	assert.Equal(t, "", w.Result().Cookies()[0].Value)
	assert.Less(t, w.Result().Cookies()[0].MaxAge, 0)
}
