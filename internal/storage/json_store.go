package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// JSONStore persists game data in a single local JSON file.
type JSONStore struct {
	filePath string
	mutex    sync.RWMutex
	data     *jsonData
}

// jsonData is the on-disk structure of the JSON store.
type jsonData struct {
	Meta *MetaProgression      `json:"meta,omitempty"`
	Runs map[string]*ActiveRun `json:"runs"`
}

// NewJSONStore opens (or creates) a JSON store at the given path.
func NewJSONStore(filePath string) (*JSONStore, error) {
	store := &JSONStore{
		filePath: filePath,
		data:     &jsonData{Runs: make(map[string]*ActiveRun)},
	}

	if _, err := os.Stat(filePath); err == nil {
		if err := store.loadFromFile(); err != nil {
			return nil, fmt.Errorf("failed to load JSON store: %w", err)
		}
	} else {
		if err := store.saveToFile(); err != nil {
			return nil, fmt.Errorf("failed to create JSON store file: %w", err)
		}
	}

	return store, nil
}

func (js *JSONStore) loadFromFile() error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	file, err := os.ReadFile(js.filePath)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(file, js.data); err != nil {
		return err
	}
	if js.data.Runs == nil {
		js.data.Runs = make(map[string]*ActiveRun)
	}
	return nil
}

func (js *JSONStore) saveToFile() error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	data, err := json.MarshalIndent(js.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(js.filePath, data, 0644)
}

// SaveMeta stores the meta-progression record.
func (js *JSONStore) SaveMeta(_ context.Context, meta *MetaProgression) error {
	js.mutex.Lock()
	js.data.Meta = meta
	js.mutex.Unlock()
	return js.saveToFile()
}

// LoadMeta returns the meta-progression record.
func (js *JSONStore) LoadMeta(_ context.Context) (*MetaProgression, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()
	if js.data.Meta == nil {
		return nil, ErrNotFound
	}
	return js.data.Meta, nil
}

// SaveRun stores an active run by ID.
func (js *JSONStore) SaveRun(_ context.Context, run *ActiveRun) error {
	js.mutex.Lock()
	js.data.Runs[run.ID] = run
	js.mutex.Unlock()
	return js.saveToFile()
}

// LoadRun returns the active run with the given ID.
func (js *JSONStore) LoadRun(_ context.Context, id string) (*ActiveRun, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()
	run, ok := js.data.Runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: run %s", ErrNotFound, id)
	}
	return run, nil
}

// DeleteRun removes the active run with the given ID.
func (js *JSONStore) DeleteRun(_ context.Context, id string) error {
	js.mutex.Lock()
	delete(js.data.Runs, id)
	js.mutex.Unlock()
	return js.saveToFile()
}

// Close flushes the store to disk.
func (js *JSONStore) Close() error {
	return js.saveToFile()
}
