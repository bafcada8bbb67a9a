// config/store.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"querygate/internal/schema"
)

// Store loads and saves the externally owned configuration documents.
// The core packages never touch the filesystem; they receive the parsed
// structures bundled in a Snapshot.
type Store struct {
	dir string
}

// NewStore creates a store rooted at the given configuration directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// LoadQueries reads queries.json. A missing file yields an empty config.
func (s *Store) LoadQueries() (*schema.QueriesConfig, error) {
	queries := &schema.QueriesConfig{}
	if err := s.loadJSON("queries.json", queries, true); err != nil {
		return nil, err
	}
	customLog.Printf("Loaded queries.json with %d queries", len(queries.Queries))
	return queries, nil
}

// SaveQueries writes queries.json.
func (s *Store) SaveQueries(queries *schema.QueriesConfig) error {
	return s.saveJSON("queries.json", queries)
}

// LoadMapping reads mapping.json. A missing file yields an empty config.
func (s *Store) LoadMapping() (*schema.MappingConfig, error) {
	mapping := &schema.MappingConfig{}
	if err := s.loadJSON("mapping.json", mapping, true); err != nil {
		return nil, err
	}
	customLog.Printf("Loaded mapping.json with %d routes", len(mapping.Routes))
	return mapping, nil
}

// SaveMapping writes mapping.json.
func (s *Store) SaveMapping(mapping *schema.MappingConfig) error {
	return s.saveJSON("mapping.json", mapping)
}

// LoadIntegrationSchema reads integration.json. The integration contract
// is mandatory; a missing file is an error.
func (s *Store) LoadIntegrationSchema() (*schema.IntegrationSchema, error) {
	integration := &schema.IntegrationSchema{}
	if err := s.loadJSON("integration.json", integration, false); err != nil {
		return nil, err
	}
	customLog.Printf("Loaded integration.json with %d arrays", len(integration.Arrays))
	return integration, nil
}

// Snapshot is the immutable configuration bundle handed to request
// handlers. It is built once at startup (or on a coordinated reload) and
// shared read-only across concurrent requests; handlers never mutate it.
type Snapshot struct {
	Queries     *schema.QueriesConfig
	Mapping     *schema.MappingConfig
	Integration *schema.IntegrationSchema
	APIKey      string
}

// LoadSnapshot loads all three contract documents and decrypts the
// expected API key into a ready-to-serve snapshot.
func (s *Store) LoadSnapshot(settings *Settings, protector *Protector) (*Snapshot, error) {
	queries, err := s.LoadQueries()
	if err != nil {
		return nil, err
	}
	mapping, err := s.LoadMapping()
	if err != nil {
		return nil, err
	}
	integration, err := s.LoadIntegrationSchema()
	if err != nil {
		return nil, err
	}

	apiKey := ""
	if settings.Security.APIKeyEncrypted != "" {
		apiKey, err = protector.Unprotect(settings.Security.APIKeyEncrypted)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt API key: %w", err)
		}
	}

	return &Snapshot{
		Queries:     queries,
		Mapping:     mapping,
		Integration: integration,
		APIKey:      apiKey,
	}, nil
}

func (s *Store) loadJSON(name string, target any, optional bool) error {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && optional {
			customLog.Warnf("Configuration file %s not found, using empty config", path)
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

func (s *Store) saveJSON(name string, source any) error {
	data, err := json.MarshalIndent(source, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	customLog.Printf("Saved %s", path)
	return nil
}
