package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/vidgen_server/internal/testutil"
)

func TestPageHandler_Home(t *testing.T) {
	env := setupTestEnv(t)

	w := env.get("/?message=Payment+Confirmed", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := parseResponse(t, w).Data.(map[string]interface{})
	assert.Equal(t, "Payment Confirmed", data["message"])
	assert.Nil(t, data["email"])
	assert.Nil(t, data["has_paid"])
}

func TestPageHandler_Pricing(t *testing.T) {
	env := setupTestEnv(t)

	w := env.get("/pricing", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := parseResponse(t, w).Data.(map[string]interface{})
	plans := data["plans"].([]interface{})
	require.Len(t, plans, 3)

	first := plans[0].(map[string]interface{})
	assert.Equal(t, "basic", first["id"])
	assert.Equal(t, 24.99, first["price"])
	assert.Equal(t, float64(5), first["credits"])
	assert.Equal(t, float64(6), first["max_duration"])
}

func TestPageHandler_Checkout(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name     string
		path     string
		planID   string
		planName string
		limit    float64
	}{
		{"pro", "/checkout?plan=pro", "pro", "Pro", 15},
		{"default", "/checkout", "basic", "Basic", 5},
		{"unknown falls back", "/checkout?plan=platinum", "basic", "Basic", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.get(tt.path, nil)

			assert.Equal(t, http.StatusOK, w.Code)
			data := parseResponse(t, w).Data.(map[string]interface{})
			assert.Equal(t, tt.planID, data["plan_id"])
			assert.Equal(t, tt.planName, data["plan_name"])
			assert.Equal(t, tt.limit, data["video_limit"])
			assert.Equal(t, "paypal-client-id", data["paypal_client_id"])
			assert.Equal(t, map[string]interface{}{"basic": "P-BASIC"}, data["paypal_plan_ids"])
			assert.Nil(t, data["user"])
		})
	}
}

func TestPageHandler_Checkout_LoggedIn(t *testing.T) {
	env := setupTestEnv(t)
	testutil.TestUser(t, env.store,
		testutil.WithEmail("a@example.com"),
		testutil.WithPlan("basic", 3, time.Now()),
	)
	cookie := env.login(t, "a@example.com")

	w := env.get("/checkout?plan=elite", cookie)

	data := parseResponse(t, w).Data.(map[string]interface{})
	assert.Equal(t, "a@example.com", data["email"])
	user := data["user"].(map[string]interface{})
	assert.Equal(t, float64(3), user["videos_left"])
	assert.NotContains(t, user, "password_hash")
}
