package journal

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StateFormat selects who owns the cursor persisted in the state file
type StateFormat string

const (
	// StateJournal delegates the file to journalctl --cursor-file. Its
	// content is opaque to the check.
	StateJournal StateFormat = "journal"
	// StateYAML stores a YAML document `cursor: <token>` written by the check.
	StateYAML StateFormat = "yaml"
)

// ParseStateFormat converts a string to StateFormat
func ParseStateFormat(s string) (StateFormat, error) {
	switch s {
	case "", "journal":
		return StateJournal, nil
	case "yaml":
		return StateYAML, nil
	default:
		return "", fmt.Errorf("unknown state format %q (want journal or yaml)", s)
	}
}

// state is what gets written to disk in yaml format
type state struct {
	Cursor string `yaml:"cursor"`
}

// Statefile wraps load/update of a YAML cursor record
type Statefile struct {
	path  string
	state state
}

// LoadStatefile reads the cursor record at path. A missing or unparsable
// file is (re)created empty and yields an empty cursor, which means "read
// the configured span".
func LoadStatefile(path string) (*Statefile, error) {
	sf := &Statefile{path: path}
	data, err := os.ReadFile(path)
	if err == nil && yaml.Unmarshal(data, &sf.state) == nil {
		return sf, nil
	}
	sf.state = state{}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, &StateFileError{Path: path, Op: "create", Err: err}
	}
	return sf, f.Close()
}

// Cursor returns the stored cursor, empty if none
func (s *Statefile) Cursor() string {
	return s.state.Cursor
}

// UpdateCursor persists a new cursor. The record is written to a temporary
// file and renamed so a crash never leaves a half-written document.
func (s *Statefile) UpdateCursor(cursor string) error {
	s.state.Cursor = cursor
	data, err := yaml.Marshal(&s.state)
	if err != nil {
		return &StateFileError{Path: s.path, Op: "write", Err: err}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &StateFileError{Path: s.path, Op: "write", Err: err}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return &StateFileError{Path: s.path, Op: "write", Err: err}
	}
	return nil
}

// ResetStateFile truncates path to zero length, creating it if needed.
func ResetStateFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return &StateFileError{Path: path, Op: "reset", Err: err}
	}
	return f.Close()
}

var cursorPrefix = []byte("-- cursor: ")

// lastCursor returns the token of the last "-- cursor: " line printed by
// journalctl --show-cursor.
func lastCursor(out []byte) string {
	i := bytes.LastIndex(out, cursorPrefix)
	if i < 0 || (i > 0 && out[i-1] != '\n') {
		return ""
	}
	line := out[i+len(cursorPrefix):]
	if j := bytes.IndexByte(line, '\n'); j >= 0 {
		line = line[:j]
	}
	return string(bytes.TrimSpace(line))
}
