package providers

import (
	"backlog/internal/storage"
	"backlog/internal/structures"
	"github.com/coocood/freecache"
	"unsafe"
)

// StorageProviderInterface is the client-side key-value store backing the
// persisted session, in the spirit of browser local storage.
type StorageProviderInterface interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(keys ...string) error
}

func NewStorageProvider(conf *structures.Config, logger Logger) (StorageProviderInterface, func(), error) {
	if conf.Storage.Driver == "memory" {
		logger.Infof(TypeApp, "Memory storage initialized: %dMB", max(conf.Storage.Size, 1))
		return NewMemoryStorage(conf.Storage.Size), func() {}, nil
	}

	compressor, err := storage.NewZstdCompressor()
	if err != nil {
		return nil, nil, err
	}
	fs := storage.NewFileStore(conf.Storage.FilePath, compressor)
	if err := fs.Load(); err != nil {
		// Unreadable storage is treated as empty; the next write replaces it.
		logger.Warnf(TypeApp, "Discarding unreadable storage %s: %s", fs.Path(), err)
	}
	logger.Infof(TypeApp, "File storage initialized: %s", fs.Path())
	return fs, fs.Close, nil
}

// MemoryStorage keeps values for the lifetime of the process only.
type MemoryStorage struct {
	cache *freecache.Cache
}

func NewMemoryStorage(sizeMB int) *MemoryStorage {
	return &MemoryStorage{cache: freecache.NewCache(max(sizeMB, 1) * 1024 * 1024)}
}

// unsafeStringToBytes converts string to []byte without allocation.
// Safe because freecache copies keys and values internally.
func unsafeStringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func (m *MemoryStorage) Get(key string) (string, bool) {
	val, err := m.cache.Get(unsafeStringToBytes(key))
	if err != nil {
		return "", false
	}
	return string(val), true
}

func (m *MemoryStorage) Set(key, value string) error {
	return m.cache.Set(unsafeStringToBytes(key), []byte(value), 0)
}

func (m *MemoryStorage) Remove(keys ...string) error {
	for _, k := range keys {
		m.cache.Del(unsafeStringToBytes(k))
	}
	return nil
}
