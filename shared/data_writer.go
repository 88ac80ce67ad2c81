package shared

import (
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
)

var jsonAPI = sonic.Config{
	UseNumber:            true,
	EscapeHTML:           false,
	SortMapKeys:          false,
	CompactMarshaler:     true,
	NoQuoteTextMarshaler: true,
	NoNullSliceOrMap:     true,
}.Froze()

// JSON exposes the frozen sonic config used for every serialization in the
// project: cache files, socket payloads and report output.
func JSON() sonic.API {
	return jsonAPI
}

// SaveJSON writes v as indented JSON, creating parent directories as needed.
func SaveJSON(path string, v interface{}) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	data, err := jsonAPI.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadJSON reads path into v. Missing files are reported as-is so callers can
// decide whether absence is an error.
func LoadJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return jsonAPI.Unmarshal(data, v)
}
