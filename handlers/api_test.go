package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"actionbot/core"
	"actionbot/middleware"
	"actionbot/models"
	actionssvc "actionbot/services/actions"
	triggerssvc "actionbot/services/triggers"
)

const testAPIKey = "admin-key"

func setupAPITest() (*mux.Router, *triggerssvc.MockTriggersService, *actionssvc.MockActionsService) {
	triggersService := new(triggerssvc.MockTriggersService)
	actionsService := new(actionssvc.MockActionsService)

	router := mux.NewRouter()
	handler := NewAPIHandler(triggersService, actionsService)
	handler.SetupEndpoints(router, middleware.NewAPIKeyAuthMiddleware(testAPIKey))

	return router, triggersService, actionsService
}

func doRequest(router *mux.Router, method, path, body string, authorized bool) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if authorized {
		req.Header.Set("Authorization", "Bearer "+testAPIKey)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestAPITrigger(t *testing.T) {
	t.Run("CreateTrigger", func(t *testing.T) {
		router, triggersService, _ := setupAPITest()
		triggersService.On("CreateTrigger", mock.Anything, "guild-7", models.TriggerCategoryMessage,
			models.ParamMap{"match_statement": "ping", "channel_id": "42"}).
			Return(&models.Trigger{ID: 1, GuildID: "guild-7", Category: models.TriggerCategoryMessage}, nil)

		resp := doRequest(router, "POST", "/api/triggers",
			`{"guild_id":"guild-7","category":"message","activation_params":{"match_statement":"ping","channel_id":"42"}}`,
			true)

		assert.Equal(t, http.StatusCreated, resp.Code)
		assert.Contains(t, resp.Body.String(), `"id":1`)
	})

	t.Run("ValidationErrorIsBadRequest", func(t *testing.T) {
		router, triggersService, _ := setupAPITest()
		triggersService.On("CreateTrigger", mock.Anything, "guild-7", models.TriggerCategoryMessage,
			mock.Anything).
			Return(nil, core.NewValidationError("channel_id", "missing required parameter"))

		resp := doRequest(router, "POST", "/api/triggers",
			`{"guild_id":"guild-7","category":"message","activation_params":{"match_statement":"ping"}}`,
			true)

		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Contains(t, resp.Body.String(), "channel_id")
	})

	t.Run("DeleteNotFound", func(t *testing.T) {
		router, triggersService, _ := setupAPITest()
		triggersService.On("DeleteTrigger", mock.Anything, int64(99), "guild-7").Return(core.ErrNotFound)

		resp := doRequest(router, "DELETE", "/api/triggers/99?guild_id=guild-7", "", true)

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("MissingGuildID", func(t *testing.T) {
		router, _, _ := setupAPITest()

		resp := doRequest(router, "GET", "/api/triggers", "", true)

		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}

func TestAPIAuth(t *testing.T) {
	t.Run("MissingBearerKey", func(t *testing.T) {
		router, triggersService, _ := setupAPITest()

		resp := doRequest(router, "GET", "/api/triggers?guild_id=guild-7", "", false)

		assert.Equal(t, http.StatusUnauthorized, resp.Code)
		triggersService.AssertNotCalled(t, "ListTriggers", mock.Anything, mock.Anything)
	})

	t.Run("WrongBearerKey", func(t *testing.T) {
		router, _, _ := setupAPITest()

		req := httptest.NewRequest("GET", "/api/triggers?guild_id=guild-7", nil)
		req.Header.Set("Authorization", "Bearer wrong-key")
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}

func TestAPIAction(t *testing.T) {
	t.Run("ListActions", func(t *testing.T) {
		router, _, actionsService := setupAPITest()
		actionsService.On("ListActions", mock.Anything, "guild-7").
			Return([]*models.Action{{ID: 10, GuildID: "guild-7", Kind: models.ActionKindMessageSend}}, nil)

		resp := doRequest(router, "GET", "/api/actions?guild_id=guild-7", "", true)

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"id":10`)
	})

	t.Run("CreateActionParentNotFound", func(t *testing.T) {
		router, _, actionsService := setupAPITest()
		actionsService.On("CreateAction", mock.Anything, int64(42), "guild-7",
			models.ActionKindMessageSend, mock.Anything).
			Return(nil, core.ErrNotFound)

		resp := doRequest(router, "POST", "/api/actions",
			`{"guild_id":"guild-7","trigger_id":42,"kind":"message_send","action_params":{"message_content":"hi","channel_id":"6"}}`,
			true)

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}
