// Package file provides filesystem-backed store adapters: flows and
// session state saved as JSON documents under a base directory.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/formflow-go/formflow/pkg/domain"
)

// DefaultBasePath is used when no base path is configured.
const DefaultBasePath = ".formflow"

// FlowStore implements ports.FlowStore on the local filesystem. Each
// flow lives in <base>/flows/<id>.json.
type FlowStore struct {
	dir string
}

// NewFlowStore creates a flow store rooted at basePath, defaulting to
// DefaultBasePath when empty.
func NewFlowStore(basePath string) *FlowStore {
	if basePath == "" {
		basePath = DefaultBasePath
	}
	return &FlowStore{dir: filepath.Join(basePath, "flows")}
}

// Save writes the flow as indented JSON.
func (s *FlowStore) Save(ctx context.Context, flowID string, flow *domain.Flow) error {
	if flowID == "" {
		return fmt.Errorf("flowID cannot be empty")
	}
	data, err := json.MarshalIndent(flow, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal flow: %w", err)
	}
	return writeDoc(s.dir, flowID, data)
}

// Load reads a flow back from disk.
func (s *FlowStore) Load(ctx context.Context, flowID string) (*domain.Flow, error) {
	if flowID == "" {
		return nil, fmt.Errorf("flowID cannot be empty")
	}
	data, err := os.ReadFile(docPath(s.dir, flowID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrFlowNotFound
		}
		return nil, fmt.Errorf("failed to read flow file: %w", err)
	}

	var flow domain.Flow
	if err := json.Unmarshal(data, &flow); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flow: %w", err)
	}
	return &flow, nil
}

// Delete removes the flow file. Deleting a missing flow is not an error.
func (s *FlowStore) Delete(ctx context.Context, flowID string) error {
	return removeDoc(s.dir, flowID)
}

// List returns the stored flow IDs.
func (s *FlowStore) List(ctx context.Context) ([]string, error) {
	return listDocs(s.dir)
}

// SessionStore implements ports.SessionStore on the local filesystem.
// Each session lives in <base>/sessions/<id>.json.
type SessionStore struct {
	dir string
}

// NewSessionStore creates a session store rooted at basePath, defaulting
// to DefaultBasePath when empty.
func NewSessionStore(basePath string) *SessionStore {
	if basePath == "" {
		basePath = DefaultBasePath
	}
	return &SessionStore{dir: filepath.Join(basePath, "sessions")}
}

// Save writes the session state as indented JSON.
func (s *SessionStore) Save(ctx context.Context, sessionID string, state *domain.State) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID cannot be empty")
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	return writeDoc(s.dir, sessionID, data)
}

// Load reads the session state back from disk.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("sessionID cannot be empty")
	}
	data, err := os.ReadFile(docPath(s.dir, sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var state domain.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session state: %w", err)
	}
	return &state, nil
}

// Delete removes the session file.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if _, err := os.Stat(docPath(s.dir, sessionID)); os.IsNotExist(err) {
		return domain.ErrSessionNotFound
	}
	return removeDoc(s.dir, sessionID)
}

// List returns active session IDs.
func (s *SessionStore) List(ctx context.Context) ([]string, error) {
	return listDocs(s.dir)
}

func docPath(dir, id string) string {
	return filepath.Join(dir, id+".json")
}

func writeDoc(dir, id string, data []byte) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure store directory: %w", err)
	}
	if err := os.WriteFile(docPath(dir, id), data, 0644); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	return nil
}

func removeDoc(dir, id string) error {
	err := os.Remove(docPath(dir, id))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete store file: %w", err)
	}
	return nil
}

func listDocs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list store directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	return ids, nil
}
