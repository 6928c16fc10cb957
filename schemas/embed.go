// Package schemas provides the embedded DDL of the documents table.
package schemas

import (
	"embed"
	"fmt"
	"strings"
)

// Migrations contains one CREATE TABLE statement per SQL dialect.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// Documents returns the statement creating the documents table for driver.
func Documents(driver string) (string, error) {
	content, err := Migrations.ReadFile(fmt.Sprintf("migrations/%s_documents.sql", driver))
	if err != nil {
		return "", fmt.Errorf("no documents schema for driver %s: %w", driver, err)
	}
	return strings.TrimSpace(string(content)), nil
}
