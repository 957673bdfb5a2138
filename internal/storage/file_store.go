package storage

import (
	"backlog/internal/storage/interfaces"
	"fmt"
	json "github.com/goccy/go-json"
	"os"
	"path/filepath"
	"sync"
)

const formatVersion = 1

type envelope struct {
	Version int               `json:"version"`
	Values  map[string]string `json:"values"`
}

// FileStore is a small persisted key-value map. Every mutation rewrites the
// whole file through a temp file and rename.
type FileStore struct {
	path       string
	compressor interfaces.CompressorInterface

	mu   sync.Mutex
	data map[string]string
}

func NewFileStore(path string, compressor interfaces.CompressorInterface) *FileStore {
	return &FileStore{
		path:       path,
		compressor: compressor,
		data:       make(map[string]string),
	}
}

// Load replaces the in-memory map with the file contents. A missing file is
// not an error. On a corrupt file the map is left empty and the error is
// returned so the caller can decide what to do with it.
func (f *FileStore) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.data = make(map[string]string)

	raw, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressed, err := f.compressor.Decompress(raw)
	if err != nil {
		return fmt.Errorf("decompress %s: %w", f.path, err)
	}

	var env envelope
	if err := json.Unmarshal(decompressed, &env); err != nil {
		return fmt.Errorf("decode %s: %w", f.path, err)
	}
	if env.Version != formatVersion {
		return fmt.Errorf("decode %s: unsupported version %d", f.path, env.Version)
	}
	for k, v := range env.Values {
		f.data[k] = v
	}
	return nil
}

func (f *FileStore) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok
}

func (f *FileStore) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return f.save()
}

func (f *FileStore) Remove(keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	changed := false
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return f.save()
}

func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Close() {
	f.compressor.Close()
}

func (f *FileStore) save() error {
	jsonData, err := json.Marshal(envelope{Version: formatVersion, Values: f.data})
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	if err = os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}

	tmpFile := f.path + ".tmp"
	file, err := os.OpenFile(tmpFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, f.path)
}
