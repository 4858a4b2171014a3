package directory

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Groups and rooms are persisted as flat JSON arrays of strings, always
// sorted and deduplicated on save and read permissively: a missing or
// corrupt file is an empty list, never a startup failure.

// Normalize trims, deduplicates and sorts a name list.
func Normalize(items []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

// LoadList reads a persisted name list. Corruption is logged and treated as
// an empty list.
func LoadList(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("failed to read %s: %v", path, err)
		}
		return nil
	}

	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		log.Printf("failed to parse %s, treating as empty: %v", path, err)
		return nil
	}
	return Normalize(items)
}

// SaveList atomically overwrites a persisted name list: the data is written
// to a temp file in the same directory and renamed into place, so a crash
// mid-write never leaves a truncated file.
func SaveList(path string, items []string) error {
	data, err := json.MarshalIndent(Normalize(items), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
