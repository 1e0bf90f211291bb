package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/novaderm/clinic-backend/pkg/migrate"
)

func TestPrescriptionsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_prescriptions_table.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no prescriptions migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS prescriptions",
		"CHECK (type IN ('product', 'service'))",
		"CHECK (status IN ('prescribed', 'pending', 'sold', 'completed', 'cancelled'))",
		"CHECK (quantity > 0)",
		"FOREIGN KEY (customer_id) REFERENCES customers(id) ON DELETE CASCADE",
		"FOREIGN KEY (product_id) REFERENCES products(id)",
		"DROP TABLE IF EXISTS prescriptions",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestProductsMigrationGuardsStock(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_products_table.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no products migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	for _, sub := range []string{
		"CHECK (stock_quantity >= 0)",
		"CHECK (unit_price >= 0)",
	} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
