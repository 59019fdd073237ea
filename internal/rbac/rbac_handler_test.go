package rbac

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"timetrack/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_Permissions(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewHandler(newTestService(t))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/rbac/permissions", nil)
	c.Set("role", RoleManager)

	h.Permissions(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Ok   bool                       `json:"ok"`
		Data domain.PermissionsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Ok)
	assert.Equal(t, RoleManager, env.Data.Role)
	assert.Contains(t, env.Data.Permissions, "vacation:approve")
	assert.NotContains(t, env.Data.Permissions, "user:manage")
}
