package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
)

func callFunction(t *testing.T, env *testEnv, kind, path string, args any) (*http.Response, map[string]any) {
	t.Helper()
	resp := performJSONRequest(t, env.app, http.MethodPost, "/api/"+kind, map[string]any{
		"path": path,
		"args": args,
	}, nil)
	return resp, decodeJSONMap(t, resp)
}

func TestFunctionsHandler_ChatFlow(t *testing.T) {
	env := setupTestEnv(t)

	resp, body := callFunction(t, env, "mutation", "groups:create", map[string]any{
		"name": "Team", "description": "", "icon_url": "",
	})
	assertStatus(t, resp, http.StatusOK)
	groupID, _ := body["data"].(string)
	if _, err := uuid.Parse(groupID); err != nil {
		t.Fatalf("expected new group id, got %+v", body)
	}

	resp, body = callFunction(t, env, "query", "groups:getGroup", map[string]any{"id": groupID})
	assertStatus(t, resp, http.StatusOK)
	if got := dataMap(t, body); got["name"] != "Team" {
		t.Fatalf("unexpected group %+v", got)
	}

	resp, _ = callFunction(t, env, "mutation", "messages:sendMessage", map[string]any{
		"content": "hello", "group_id": groupID, "user": "ana#ab12c",
	})
	assertStatus(t, resp, http.StatusOK)

	resp, body = callFunction(t, env, "query", "messages:get", map[string]any{"chatId": groupID})
	assertStatus(t, resp, http.StatusOK)
	list := dataList(t, body)
	if len(list) != 1 || list[0].(map[string]any)["content"] != "hello" {
		t.Fatalf("unexpected messages %+v", list)
	}

	resp, body = callFunction(t, env, "query", "groups:get", map[string]any{})
	assertStatus(t, resp, http.StatusOK)
	if len(dataList(t, body)) != 1 {
		t.Fatalf("expected one group, got %+v", body)
	}

	resp, body = callFunction(t, env, "action", "greeting:getGreeting", map[string]any{"name": "Ana"})
	assertStatus(t, resp, http.StatusOK)
	if body["data"] != "Welcome back, Ana!" {
		t.Fatalf("unexpected greeting %+v", body)
	}
}

func TestFunctionsHandler_MissingGroupIsNull(t *testing.T) {
	env := setupTestEnv(t)

	resp, body := callFunction(t, env, "query", "groups:getGroup", map[string]any{"id": uuid.NewString()})
	assertStatus(t, resp, http.StatusOK)
	data, present := body["data"]
	if !present || data != nil {
		t.Fatalf("expected data null, got %+v", body)
	}
}

func TestFunctionsHandler_Errors(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name   string
		kind   string
		path   string
		args   any
		status int
	}{
		{"unknown function", "query", "groups:remove", map[string]any{}, http.StatusNotFound},
		{"wrong kind", "query", "groups:create", map[string]any{}, http.StatusBadRequest},
		{"invalid args", "query", "messages:get", map[string]any{"chatId": "x"}, http.StatusBadRequest},
		{"missing path", "query", "", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := callFunction(t, env, tt.kind, tt.path, tt.args)
			assertStatus(t, resp, tt.status)
			if success, _ := body["success"].(bool); success {
				t.Fatalf("expected failure envelope, got %+v", body)
			}
		})
	}

	resp := performRequest(t, env.app, http.MethodPost, "/api/query", stringsReader("not json"), nil)
	assertStatus(t, resp, http.StatusBadRequest)
	assertEnvelopeError(t, decodeJSONMap(t, resp), "invalid request body")
}
