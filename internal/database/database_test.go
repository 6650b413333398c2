package database

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/groupchat/groupchat/internal/config"
	"github.com/groupchat/groupchat/internal/models"
)

func TestConnect(t *testing.T) {
	t.Run("sqlite creates all tables", func(t *testing.T) {
		db, err := Connect(config.DBConfig{
			Driver: config.DBDriverSQLite,
			Path:   filepath.Join(t.TempDir(), "chat.db"),
		})
		if err != nil {
			t.Fatalf("Connect returned error: %v", err)
		}
		sqlDB, _ := db.DB()
		t.Cleanup(func() { _ = sqlDB.Close() })

		for _, table := range []string{"groups", "messages", "blobs"} {
			if !db.Migrator().HasTable(table) {
				t.Errorf("expected table %s to exist", table)
			}
		}
	})

	t.Run("messages accept ids of groups that do not exist", func(t *testing.T) {
		db, err := Connect(config.DBConfig{
			Driver: config.DBDriverSQLite,
			Path:   filepath.Join(t.TempDir(), "chat.db"),
		})
		if err != nil {
			t.Fatalf("Connect returned error: %v", err)
		}
		sqlDB, _ := db.DB()
		t.Cleanup(func() { _ = sqlDB.Close() })

		msg := models.Message{Content: "hello", GroupID: uuid.New(), User: "ann#abcde"}
		if err := db.Create(&msg).Error; err != nil {
			t.Fatalf("expected insert without referential check to succeed, got %v", err)
		}
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		if _, err := Connect(config.DBConfig{Driver: "oracle"}); err == nil {
			t.Fatal("expected error for unsupported driver")
		}
	})
}
