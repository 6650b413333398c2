package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/groupchat/groupchat/internal/config"
	"github.com/groupchat/groupchat/internal/database"
	"github.com/groupchat/groupchat/internal/storage"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	blobs    *storage.BadgerStore
	hub      *Hub
	groups   *GroupService
	files    *FileService
	messages *MessageService
	registry *Registry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Connect(config.DBConfig{
		Driver: config.DBDriverSQLite,
		Path:   filepath.Join(t.TempDir(), "chat.db"),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	blobs, err := storage.NewBadgerStore(config.BadgerConfig{}, "http://chat.test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = blobs.Close() })

	hub := NewHub()
	groups := NewGroupService(db, hub)
	files := NewFileService(db, blobs, time.Hour, hub)
	messages := NewMessageService(db, files, hub)

	return &testEnv{
		db:       db,
		blobs:    blobs,
		hub:      hub,
		groups:   groups,
		files:    files,
		messages: messages,
		registry: NewChatRegistry(groups, messages),
	}
}

type recordingNotifier struct {
	mu     sync.Mutex
	tables []string
}

func (n *recordingNotifier) Notify(_ context.Context, tables ...string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tables = append(n.tables, tables...)
}

func (n *recordingNotifier) Tables() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.tables...)
}
