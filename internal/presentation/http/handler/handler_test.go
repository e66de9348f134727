package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/optica-api/internal/domain/entity"
	"github.com/sangkips/optica-api/internal/domain/enum"
	"github.com/sangkips/optica-api/internal/presentation/http/dto/request"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParseFilter(t *testing.T) {
	loc := time.FixedZone("UTC+1", 60*60)
	h := NewReceiptHandler(nil, nil, loc)
	clientID := uuid.New()

	filter, fields := h.parseFilter(request.ReceiptFilterRequest{
		Search:         "ami",
		ClientID:       clientID.String(),
		DeliveryStatus: "Delivered",
		MontageStatus:  "InCutting",
		StartDate:      "2024-03-01",
		EndDate:        "2024-03-31",
	})

	require.Empty(t, fields)
	assert.Equal(t, "ami", filter.Search)
	assert.Equal(t, clientID, *filter.ClientID)
	assert.Equal(t, enum.DeliveryStatusDelivered, *filter.DeliveryStatus)
	assert.Equal(t, enum.MontageStatusInCutting, *filter.MontageStatus)
	assert.True(t, filter.StartDate.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, loc)))
	assert.True(t, filter.EndDate.Equal(time.Date(2024, 3, 31, 23, 59, 59, 999999999, loc)))
}

func TestParseFilter_InvalidFields(t *testing.T) {
	h := NewReceiptHandler(nil, nil, nil)

	filter, fields := h.parseFilter(request.ReceiptFilterRequest{
		ClientID:       "nope",
		DeliveryStatus: "Lost",
		MontageStatus:  "Broken",
		StartDate:      "01/03/2024",
		EndDate:        "2024-13-01",
	})

	var names []string
	for _, f := range fields {
		names = append(names, f.Field)
	}
	assert.Equal(t, []string{"client_id", "delivery_status", "montage_status", "start_date", "end_date"}, names)
	assert.Nil(t, filter.ClientID)
	assert.Nil(t, filter.EndDate)
}

func TestReceiptHandler_List_RejectsBadFilter(t *testing.T) {
	h := NewReceiptHandler(nil, nil, time.UTC)
	r := gin.New()
	r.GET("/receipts", h.List)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/receipts?start_date=yesterday", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "start_date")
}

func TestParamID(t *testing.T) {
	r := gin.New()
	r.GET("/clients/:id", func(c *gin.Context) {
		id, ok := paramID(c, "client")
		if !ok {
			return
		}
		c.String(http.StatusOK, id.String())
	})

	id := uuid.New()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/clients/"+id.String(), nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id.String(), w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/clients/42", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid client ID")
}

func TestIdentityHelpers(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetUserID(c))
	assert.False(t, IsSuperAdmin(c))

	c.Set("user_id", uuid.Nil)
	assert.Nil(t, GetUserID(c))

	id := uuid.New()
	c.Set("user_id", id)
	c.Set("user_roles", []string{entity.RoleOwner, entity.RoleSuperAdmin})
	require.NotNil(t, GetUserID(c))
	assert.Equal(t, id, *GetUserID(c))
	assert.True(t, IsSuperAdmin(c))
}
