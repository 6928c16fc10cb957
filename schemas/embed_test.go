package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocuments(t *testing.T) {
	tests := []struct {
		driver   string
		wantType string
		wantErr  bool
	}{
		{driver: "sqlite", wantType: "doc_key TEXT PRIMARY KEY"},
		{driver: "mysql", wantType: "doc_key VARCHAR(255) NOT NULL PRIMARY KEY"},
		{driver: "postgres", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			got, err := Documents(tt.driver)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, got, "CREATE TABLE IF NOT EXISTS documents")
			assert.Contains(t, got, tt.wantType)
		})
	}
}
