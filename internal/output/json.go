package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// JSONPath returns dest with its extension replaced by ".json".
// A path without an extension gets ".json" appended.
func JSONPath(dest string) string {
	return strings.TrimSuffix(dest, filepath.Ext(dest)) + ".json"
}

// WriteJSON serializes v as indented UTF-8 JSON.
//
// Parameters:
//   - v: Any value encoding/json can marshal. Struct field order is kept.
//   - dest: Target path. Its extension is always replaced with ".json"
//     ("mask.png" becomes "mask.json"). Missing parent directories are created.
//
// Returns:
//   - string: The path actually written.
//   - error: Non-nil if the directory or file cannot be created, or v cannot
//     be encoded.
//
// Output uses 4-space indentation and leaves non-ASCII text and HTML
// characters unescaped.
func WriteJSON(v any, dest string) (string, error) {
	path := JSONPath(dest)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to encode JSON: %w", err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	return path, nil
}
