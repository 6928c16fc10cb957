// Package testutil provides shared test helpers for creating config files and seed document fixtures.
package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// SetupTestConfig creates a config file storing data in a sqlite database under tmpDir.
// Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	configContent := fmt.Sprintf(`store:
  driver: sqlite
  path: %s
cache:
  ttl: 5m
`,
		filepath.Join(tmpDir, "elearn.db"),
	)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// SetupTestConfigWithSeedDirectory creates a config file that reads seed
// documents from tmpDir/seed instead of the embedded ones.
func SetupTestConfigWithSeedDirectory(t *testing.T, tmpDir string) string {
	t.Helper()
	cfgPath := SetupTestConfig(t, tmpDir)

	seedDir := filepath.Join(tmpDir, "seed")
	require.NoError(t, os.MkdirAll(seedDir, 0755))

	content, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	content = append(content, []byte(fmt.Sprintf("seed:\n  directory: %s\n", seedDir))...)
	require.NoError(t, os.WriteFile(cfgPath, content, 0644))
	return cfgPath
}

// SeedDocumentOption configures optional fields of the records in a seed document fixture.
type SeedDocumentOption func(*seedDocumentConfig)

type seedDocumentConfig struct {
	fields map[string]any
}

// WithField sets field on every record of the seed document.
func WithField(name string, value any) SeedDocumentOption {
	return func(cfg *seedDocumentConfig) {
		cfg.fields[name] = value
	}
}

// CreateSeedDocument writes a seed document named name with count records
// whose idField runs from 1 to count.
func CreateSeedDocument(t *testing.T, seedDir, name, idField string, count int, opts ...SeedDocumentOption) {
	t.Helper()

	cfg := seedDocumentConfig{fields: map[string]any{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	records := make([]map[string]any, 0, count)
	for i := 1; i <= count; i++ {
		record := map[string]any{idField: i}
		for k, v := range cfg.fields {
			record[k] = v
		}
		records = append(records, record)
	}

	content, err := json.Marshal(records)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(seedDir, name), content, 0644))
}
