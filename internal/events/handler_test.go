package events

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// The server runs without S3 when object storage is not configured; the
// promo image endpoint must answer 503 instead of dereferencing a nil client.
func TestPromoImageUploadURLWithoutStorage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(nil, nil, nil, zap.NewNop())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/events/"+uuid.NewString()+"/promo_image", nil)
	c.Params = gin.Params{{Key: "id", Value: uuid.NewString()}}

	h.PromoImageUploadURL(c)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"storage unavailable"}`, rec.Body.String())
}
