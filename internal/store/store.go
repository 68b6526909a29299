package store

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/kyvra-tech/shard-node-dashboard/internal/models"
)

//go:embed seed/default_nodes.json
var defaultNodes []byte

// Store defines the interface for endpoint persistence
type Store interface {
	List() ([]models.NodeEndpoint, error)
	Add(endpoint models.NodeEndpoint) error
	Remove(name string) error
	Export(dst string) error
	Import(src string) error
	FindByName(name string) (*models.NodeEndpoint, error)
}

// FileStore persists the endpoint list as a human-editable JSON array.
// The file is seeded from the bundled default dataset on first use.
type FileStore struct {
	path   string
	mu     sync.Mutex
	logger *logrus.Logger
}

// NewFileStore creates a file-backed endpoint store
func NewFileStore(path string, logger *logrus.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger,
	}
}

// List returns all registered endpoints in insertion order
func (s *FileStore) List() ([]models.NodeEndpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

// Add appends an endpoint to the persisted list. Names are unique; a
// duplicate is rejected with a conflict error.
func (s *FileStore) Add(endpoint models.NodeEndpoint) error {
	if err := validateEndpoint(endpoint); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	endpoints, err := s.load()
	if err != nil {
		return err
	}

	for _, ep := range endpoints {
		if ep.Name == endpoint.Name {
			return models.NewNameConflictError(endpoint.Name)
		}
	}

	endpoints = append(endpoints, endpoint)
	if err := s.save(endpoints); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"name": endpoint.Name,
		"host": endpoint.Host,
		"port": endpoint.Port,
	}).Info("Node endpoint added")

	return nil
}

// Remove deletes all endpoints matching name. Removing an absent name
// is a no-op, not an error.
func (s *FileStore) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	endpoints, err := s.load()
	if err != nil {
		return err
	}

	kept := endpoints[:0]
	for _, ep := range endpoints {
		if ep.Name != name {
			kept = append(kept, ep)
		}
	}

	if len(kept) == len(endpoints) {
		return nil
	}

	if err := s.save(kept); err != nil {
		return err
	}

	s.logger.WithField("name", name).Info("Node endpoint removed")
	return nil
}

// FindByName resolves a single endpoint by its name
func (s *FileStore) FindByName(name string) (*models.NodeEndpoint, error) {
	endpoints, err := s.List()
	if err != nil {
		return nil, err
	}

	for i := range endpoints {
		if endpoints[i].Name == name {
			return &endpoints[i], nil
		}
	}

	return nil, models.NewNodeNotFoundError(name)
}

// Export copies the persisted record byte-for-byte to dst
func (s *FileStore) Export(dst string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureSeeded(); err != nil {
		return err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return models.NewPersistenceError("failed to read endpoint record", err)
	}

	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return models.NewPersistenceError("failed to write exported record", err)
	}

	s.logger.WithField("destination", dst).Info("Node list exported")
	return nil
}

// Import replaces the persisted record with a byte-for-byte copy of src.
// The source must still parse as an endpoint list.
func (s *FileStore) Import(src string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(src)
	if err != nil {
		return models.NewPersistenceError("failed to read imported record", err)
	}

	var endpoints []models.NodeEndpoint
	if err := json.Unmarshal(data, &endpoints); err != nil {
		return models.NewValidationError("imported record is not a valid endpoint list", err.Error())
	}

	if err := s.write(data); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"source": src,
		"count":  len(endpoints),
	}).Info("Node list imported")

	return nil
}

// load reads the endpoint list, seeding the file first if it does not
// exist yet. Callers must hold the mutex.
func (s *FileStore) load() ([]models.NodeEndpoint, error) {
	if err := s.ensureSeeded(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, models.NewPersistenceError("failed to read endpoint record", err)
	}

	var endpoints []models.NodeEndpoint
	if err := json.Unmarshal(data, &endpoints); err != nil {
		return nil, models.NewPersistenceError("endpoint record is corrupted", err)
	}

	return endpoints, nil
}

func (s *FileStore) save(endpoints []models.NodeEndpoint) error {
	data, err := json.MarshalIndent(endpoints, "", "  ")
	if err != nil {
		return models.NewPersistenceError("failed to encode endpoint record", err)
	}
	return s.write(data)
}

func (s *FileStore) write(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return models.NewPersistenceError("failed to create store directory", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return models.NewPersistenceError("failed to write endpoint record", err)
	}
	return nil
}

// ensureSeeded copies the bundled default dataset into place when no
// persisted record exists (one-time migration on first use).
func (s *FileStore) ensureSeeded() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return models.NewPersistenceError("failed to stat endpoint record", err)
	}

	if err := s.write(defaultNodes); err != nil {
		return err
	}

	s.logger.WithField("path", s.path).Info("Seeded endpoint record from bundled defaults")
	return nil
}

func validateEndpoint(endpoint models.NodeEndpoint) error {
	if endpoint.Name == "" {
		return models.NewValidationError("invalid endpoint", "name must not be empty")
	}
	if endpoint.Host == "" {
		return models.NewValidationError("invalid endpoint", "host must not be empty")
	}
	if endpoint.Port <= 0 || endpoint.Port > 65535 {
		return models.NewValidationError("invalid endpoint", fmt.Sprintf("port %d out of range", endpoint.Port))
	}
	return nil
}
