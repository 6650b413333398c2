package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/groupchat/groupchat/internal/config"
	"github.com/groupchat/groupchat/pkg/logger"
	"github.com/groupchat/groupchat/pkg/storagetoken"
)

// chunkSize keeps every entry below badger's value threshold so values stay in
// the LSM tree. In-memory databases have no value log to spill into.
const (
	chunkSize      = 512 << 10
	valueThreshold = 1 << 20
)

type badgerMeta struct {
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
	Chunks      int    `json:"chunks"`
}

// BadgerStore keeps blobs in an embedded badger database and hands out
// signed URLs served by this process under /api/storage/.
type BadgerStore struct {
	db      *badger.DB
	siteURL string
}

func NewBadgerStore(cfg config.BadgerConfig, siteURL string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(cfg.Path).WithLogger(nil)
	if cfg.Path == "" {
		opts = opts.WithInMemory(true).WithValueThreshold(valueThreshold)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger at %q: %w", cfg.Path, err)
	}

	return &BadgerStore{db: db, siteURL: strings.TrimRight(siteURL, "/")}, nil
}

func (b *BadgerStore) Close() error {
	return b.db.Close()
}

func metaKey(key string) []byte {
	return []byte("meta/" + key)
}

func chunkKey(key string, n int) []byte {
	return []byte(fmt.Sprintf("chunk/%s/%06d", key, n))
}

func (b *BadgerStore) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	wb := b.db.NewWriteBatch()
	defer wb.Cancel()

	buf := make([]byte, chunkSize)
	var written int64
	chunks := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := io.ReadFull(reader, buf)
		if n > 0 {
			if setErr := wb.Set(chunkKey(key, chunks), bytes.Clone(buf[:n])); setErr != nil {
				return setErr
			}
			chunks++
			written += int64(n)
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return err
		}
	}

	meta, err := json.Marshal(badgerMeta{Size: written, ContentType: contentType, Chunks: chunks})
	if err != nil {
		return err
	}
	if err := wb.Set(metaKey(key), meta); err != nil {
		return err
	}

	if err := wb.Flush(); err != nil {
		logger.Error("badger_upload_failed", err, map[string]interface{}{
			"object_name":  key,
			"size":         size,
			"content_type": contentType,
		})
		return err
	}

	logger.Info("badger_upload_success", map[string]interface{}{
		"object_name":  key,
		"size":         written,
		"content_type": contentType,
		"chunks":       chunks,
	})
	return nil
}

func (b *BadgerStore) readMeta(txn *badger.Txn, key string) (*badgerMeta, error) {
	item, err := txn.Get(metaKey(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, err
	}

	var meta badgerMeta
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &meta)
	})
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

func (b *BadgerStore) Download(_ context.Context, key string) (io.ReadCloser, *ObjectInfo, error) {
	var (
		data bytes.Buffer
		meta *badgerMeta
	)

	err := b.db.View(func(txn *badger.Txn) error {
		var err error
		meta, err = b.readMeta(txn, key)
		if err != nil {
			return err
		}
		data.Grow(int(meta.Size))
		for n := 0; n < meta.Chunks; n++ {
			item, err := txn.Get(chunkKey(key, n))
			if err != nil {
				return fmt.Errorf("reading chunk %d of %s: %w", n, key, err)
			}
			if err := item.Value(func(val []byte) error {
				_, err := data.Write(val)
				return err
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrObjectNotFound) {
			logger.Error("badger_download_failed", err, map[string]interface{}{
				"object_name": key,
			})
		}
		return nil, nil, err
	}

	return io.NopCloser(&data), &ObjectInfo{Key: key, Size: meta.Size, ContentType: meta.ContentType}, nil
}

func (b *BadgerStore) Delete(_ context.Context, key string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		meta, err := b.readMeta(txn, key)
		if err != nil {
			return err
		}
		for n := 0; n < meta.Chunks; n++ {
			if err := txn.Delete(chunkKey(key, n)); err != nil {
				return err
			}
		}
		return txn.Delete(metaKey(key))
	})
	if err != nil {
		logger.Error("badger_delete_failed", err, map[string]interface{}{
			"object_name": key,
		})
	} else {
		logger.Info("badger_delete_success", map[string]interface{}{
			"object_name": key,
		})
	}
	return err
}

// URL signs a token for key; the object itself is not checked.
func (b *BadgerStore) URL(_ context.Context, key string, expiry time.Duration) (string, error) {
	token, err := storagetoken.Generate(key, expiry)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/api/storage/%s?token=%s", b.siteURL, key, url.QueryEscape(token)), nil
}
