package errors

import (
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	serrors "community-forum/internal/service/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestFromServiceError(t *testing.T) {
	appErr := FromServiceError(serrors.New(serrors.ErrNotFound, "Community not found"))
	assert.Equal(t, ErrResourceNotFound, appErr.Code)
	assert.Equal(t, "Community not found", appErr.Message)

	appErr = FromServiceError(stderrors.New("boom"))
	assert.Equal(t, ErrInternal, appErr.Code)
}

func TestHandleErrorStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
	}{
		{New(ErrUnauthorized, "需要认证"), http.StatusUnauthorized},
		{serrors.New(serrors.ErrInvalidInput, "bad"), http.StatusBadRequest},
		{serrors.Wrap(serrors.ErrDatabase, "load posts", stderrors.New("timeout")), http.StatusBadGateway},
		{stderrors.New("unexpected"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		HandleError(c, tc.err)
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		assert.Len(t, c.Errors, 1)
	}
}
