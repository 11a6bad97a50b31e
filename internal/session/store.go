// Package session persists conversations so a chat can be resumed later.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"meeple-cli/internal/agent"
)

type Record struct {
	ID       string          `json:"id"`
	Messages []agent.Message `json:"messages"`
	Updated  time.Time       `json:"updated"`
}

func dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".meeple", "sessions"), nil
}

func ensureDir() (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(d, 0o755); err != nil {
		return "", err
	}
	return d, nil
}

// Save writes the conversation under id, minting one when empty, and
// returns the id used.
func Save(id string, messages []agent.Message) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	d, err := ensureDir()
	if err != nil {
		return "", err
	}
	rec := Record{ID: id, Messages: messages, Updated: time.Now()}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(d, id+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return id, nil
}

func Load(id string) (Record, error) {
	var rec Record
	d, err := dir()
	if err != nil {
		return rec, err
	}
	data, err := os.ReadFile(filepath.Join(d, id+".json"))
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, err
	}
	return rec, nil
}

// Last returns the most recently updated session.
func Last() (Record, error) {
	ids, err := ListIDs()
	if err != nil {
		return Record{}, err
	}
	if len(ids) == 0 {
		return Record{}, fmt.Errorf("no sessions found")
	}
	var latest Record
	for _, id := range ids {
		rec, err := Load(id)
		if err != nil {
			continue
		}
		if rec.Updated.After(latest.Updated) {
			latest = rec
		}
	}
	if latest.ID == "" {
		return Record{}, fmt.Errorf("no readable sessions found")
	}
	return latest, nil
}

func ListIDs() ([]string, error) {
	d, err := dir()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(d)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		ids = append(ids, trimExt(e.Name()))
	}
	sort.Strings(ids)
	return ids, nil
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
