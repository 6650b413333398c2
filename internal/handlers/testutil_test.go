package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/groupchat/groupchat/internal/config"
	"github.com/groupchat/groupchat/internal/database"
	"github.com/groupchat/groupchat/internal/middleware"
	"github.com/groupchat/groupchat/internal/services"
	"github.com/groupchat/groupchat/internal/storage"
	"github.com/groupchat/groupchat/pkg/logger"
	"github.com/groupchat/groupchat/pkg/storagetoken"
	"gorm.io/gorm"
)

const testSiteURL = "http://chat.test"

type testEnv struct {
	app      *fiber.App
	db       *gorm.DB
	hub      *services.Hub
	groups   *services.GroupService
	messages *services.MessageService
	files    *services.FileService
}

var testSetupOnce sync.Once

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testSetupOnce.Do(func() {
		logger.Init()
		storagetoken.SetSecret("test-secret")
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}

	blobs, err := storage.NewBadgerStore(config.BadgerConfig{}, testSiteURL)
	if err != nil {
		t.Fatalf("failed opening in-memory blob store: %v", err)
	}
	t.Cleanup(func() {
		_ = blobs.Close()
	})

	hub := services.NewHub()
	groups := services.NewGroupService(db, hub)
	files := services.NewFileService(db, blobs, time.Hour, hub)
	messages := services.NewMessageService(db, files, hub)

	app := fiber.New(fiber.Config{BodyLimit: 100 * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS("*"))
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	RegisterRoutes(app, Deps{
		Groups:    groups,
		Messages:  messages,
		Files:     files,
		Registry:  services.NewChatRegistry(groups, messages),
		Hub:       hub,
		Heartbeat: 50 * time.Millisecond,
		Info:      ServerInfo{Storage: "badger", UploadLimitMB: 100},
	})

	return &testEnv{
		app:      app,
		db:       db,
		hub:      hub,
		groups:   groups,
		messages: messages,
		files:    files,
	}
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	requestHeaders := map[string]string{}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	if payload != nil {
		requestHeaders["Content-Type"] = "application/json"
	}

	return performRequest(t, app, method, path, body, requestHeaders)
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}

	return payload
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

func assertEnvelopeError(t *testing.T, body map[string]any, expected string) {
	t.Helper()
	if success, _ := body["success"].(bool); success {
		t.Fatalf("expected success=false, got %+v", body)
	}
	if got, _ := body["error"].(string); got != expected {
		t.Fatalf("expected error %q, got %q", expected, got)
	}
}

func dataList(t *testing.T, body map[string]any) []any {
	t.Helper()
	list, ok := body["data"].([]any)
	if !ok {
		t.Fatalf("expected data to be a list, got %T (%+v)", body["data"], body)
	}
	return list
}

func dataMap(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	obj, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data to be an object, got %T (%+v)", body["data"], body)
	}
	return obj
}

func stringsReader(s string) io.Reader {
	return bytes.NewReader([]byte(s))
}
