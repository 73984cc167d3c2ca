package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"rebalance-sim/internal/logging"

	"github.com/sirupsen/logrus"
)

// PersistenceError reports a settings file that could not be read or written.
// Load failures are recoverable: the caller gets defaults alongside this error.
type PersistenceError struct {
	Path string
	Op   string // "load" or "save"
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("settings %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// FileStore keeps the settings document in a single JSON file.
type FileStore struct {
	Path string
	Log  *logrus.Logger
}

// NewFileStore returns a store for path. A nil logger discards log output.
func NewFileStore(path string, log *logrus.Logger) *FileStore {
	if log == nil {
		log = logging.Discard()
	}
	return &FileStore{Path: path, Log: log}
}

// Load reads the settings file. When the file is missing or cannot be decoded
// it returns Default() together with a *PersistenceError.
func (s *FileStore) Load() (Document, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return Default(), &PersistenceError{Path: s.Path, Op: "load", Err: err}
	}

	doc, stage, err := Decode(raw)
	if err != nil {
		return Default(), &PersistenceError{Path: s.Path, Op: "load", Err: err}
	}
	if stage != StageJSON {
		s.Log.WithFields(logrus.Fields{"path": s.Path, "parser": stage}).Warn("settings file is not strict JSON; loaded leniently")
	}
	return doc, nil
}

// Save writes doc as indented JSON, creating the parent directory if needed.
func (s *FileStore) Save(doc Document) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return &PersistenceError{Path: s.Path, Op: "save", Err: err}
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return &PersistenceError{Path: s.Path, Op: "save", Err: err}
	}

	if err := os.WriteFile(s.Path, raw, 0644); err != nil {
		return &PersistenceError{Path: s.Path, Op: "save", Err: err}
	}
	s.Log.WithField("path", s.Path).Debug("settings saved")
	return nil
}
