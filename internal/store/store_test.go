package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyvra-tech/shard-node-dashboard/internal/models"
	pkgerrors "github.com/kyvra-tech/shard-node-dashboard/pkg/errors"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel) // Reduce noise in tests
	return NewFileStore(filepath.Join(t.TempDir(), "nodes.json"), logger)
}

func TestFileStore_SeedsOnFirstUse(t *testing.T) {
	s := newTestStore(t)

	_, err := os.Stat(s.path)
	require.True(t, os.IsNotExist(err), "store file should not exist before first read")

	endpoints, err := s.List()
	require.NoError(t, err)
	assert.NotEmpty(t, endpoints, "seeded store should contain the bundled defaults")

	// The seed is copied to disk, not generated in memory
	data, err := os.ReadFile(s.path)
	require.NoError(t, err)
	assert.Equal(t, defaultNodes, data)
}

func TestFileStore_AddThenList(t *testing.T) {
	s := newTestStore(t)

	before, err := s.List()
	require.NoError(t, err)

	endpoint := models.NodeEndpoint{Name: "test-node", Host: "10.0.0.1", Port: 9334}
	require.NoError(t, s.Add(endpoint))

	after, err := s.List()
	require.NoError(t, err)

	require.Len(t, after, len(before)+1)
	assert.Equal(t, endpoint, after[len(after)-1], "new endpoint should be appended last")

	count := 0
	for _, ep := range after {
		if ep.Name == "test-node" {
			count++
		}
	}
	assert.Equal(t, 1, count, "new endpoint should appear exactly once")
}

func TestFileStore_AddRejectsDuplicateName(t *testing.T) {
	s := newTestStore(t)

	endpoint := models.NodeEndpoint{Name: "dup", Host: "10.0.0.1", Port: 9334}
	require.NoError(t, s.Add(endpoint))

	err := s.Add(models.NodeEndpoint{Name: "dup", Host: "10.0.0.2", Port: 9335})
	require.Error(t, err)

	var appErr *models.AppError
	require.True(t, pkgerrors.As(err, &appErr))
	assert.Equal(t, models.ErrCodeNameConflict, appErr.Code)
}

func TestFileStore_AddValidation(t *testing.T) {
	s := newTestStore(t)

	tests := []struct {
		name     string
		endpoint models.NodeEndpoint
	}{
		{"empty name", models.NodeEndpoint{Host: "10.0.0.1", Port: 9334}},
		{"empty host", models.NodeEndpoint{Name: "a", Port: 9334}},
		{"zero port", models.NodeEndpoint{Name: "a", Host: "10.0.0.1"}},
		{"port out of range", models.NodeEndpoint{Name: "a", Host: "10.0.0.1", Port: 70000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Add(tt.endpoint)
			require.Error(t, err)

			var appErr *models.AppError
			require.True(t, pkgerrors.As(err, &appErr))
			assert.Equal(t, models.ErrCodeValidation, appErr.Code)
		})
	}
}

func TestFileStore_RemoveAbsentNameIsNoOp(t *testing.T) {
	s := newTestStore(t)

	before, err := s.List()
	require.NoError(t, err)

	require.NoError(t, s.Remove("no-such-node"))

	after, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, before, after, "removing an absent name must not alter the list")
}

func TestFileStore_DoubleDelete(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	s := NewFileStore(filepath.Join(t.TempDir(), "nodes.json"), logger)

	// Start from a store holding exactly one endpoint
	require.NoError(t, os.WriteFile(s.path, []byte(`[{"name":"A","host":"h1","port":1}]`), 0o644))

	require.NoError(t, s.Remove("A"))
	endpoints, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, endpoints)

	require.NoError(t, s.Remove("A"))
	endpoints, err = s.List()
	require.NoError(t, err)
	assert.Empty(t, endpoints)
}

func TestFileStore_ExportImportRoundTrip(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Add(models.NodeEndpoint{Name: "rt", Host: "10.0.0.1", Port: 9334}))

	original, err := os.ReadFile(s.path)
	require.NoError(t, err)

	exported := filepath.Join(t.TempDir(), "exported.json")
	require.NoError(t, s.Export(exported))

	exportedData, err := os.ReadFile(exported)
	require.NoError(t, err)
	assert.Equal(t, original, exportedData, "export must be byte-for-byte")

	// Import into a fresh store at a new location
	fresh := newTestStore(t)
	require.NoError(t, fresh.Import(exported))

	imported, err := os.ReadFile(fresh.path)
	require.NoError(t, err)
	assert.Equal(t, original, imported, "import must reproduce the record byte-for-byte")

	originalList, err := s.List()
	require.NoError(t, err)
	freshList, err := fresh.List()
	require.NoError(t, err)
	assert.Equal(t, originalList, freshList)
}

func TestFileStore_ImportRejectsInvalidRecord(t *testing.T) {
	s := newTestStore(t)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"not":"a list"}`), 0o644))

	err := s.Import(bad)
	require.Error(t, err)

	var appErr *models.AppError
	require.True(t, pkgerrors.As(err, &appErr))
	assert.Equal(t, models.ErrCodeValidation, appErr.Code)
}

func TestFileStore_FindByName(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Add(models.NodeEndpoint{Name: "findme", Host: "10.0.0.9", Port: 9334}))

	endpoint, err := s.FindByName("findme")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.9", endpoint.Host)

	_, err = s.FindByName("missing")
	require.Error(t, err)

	var appErr *models.AppError
	require.True(t, pkgerrors.As(err, &appErr))
	assert.Equal(t, models.ErrCodeNodeNotFound, appErr.Code)
}
