package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookstore-core/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(t *testing.T, h gin.HandlerFunc) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	h(c)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestError_ClientError(t *testing.T) {
	err := fmt.Errorf("create order: %w",
		apperrors.Newf(apperrors.ErrCodeInsufficientInventory, "可用副本不足: 需要%d, 可用%d", 3, 1))

	w, resp := perform(t, func(c *gin.Context) { Error(c, err) })

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperrors.ErrCodeInsufficientInventory, resp.Code)
	assert.Equal(t, "可用副本不足: 需要3, 可用1", resp.Message)
}

func TestError_HidesInternalCause(t *testing.T) {
	err := apperrors.ErrConflict.WithErr(fmt.Errorf("Error 1213: Deadlock found"))

	w, resp := perform(t, func(c *gin.Context) { Error(c, err) })

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, apperrors.ErrCodeConflict, resp.Code)
	assert.NotContains(t, w.Body.String(), "Deadlock")
}

func TestSuccessWithPage(t *testing.T) {
	w, resp := perform(t, func(c *gin.Context) {
		SuccessWithPage(c, []int{1, 2}, 5, 1, 2)
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, resp.Code)
	page, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 3, page["total_pages"])
}
