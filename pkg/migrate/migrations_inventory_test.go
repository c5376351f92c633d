package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCatalogMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_catalog_tables.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no catalog migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS gas_products",
		"CREATE TABLE IF NOT EXISTS vendor_profiles",
		"CREATE TABLE IF NOT EXISTS vendor_inventories",
		"FOREIGN KEY (product_id) REFERENCES gas_products(id) ON DELETE CASCADE",
		"CHECK (current_stock >= 0)",
		"CHECK (reserved_stock >= 0)",
		"CHECK (reserved_stock <= current_stock)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_vendor_product",
		"DROP TABLE IF EXISTS vendor_inventories",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
