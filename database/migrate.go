package database

import (
	"fmt"

	"gorm.io/gorm"

	"gstbilling-backend/models"
)

// MigrateTenantSchema applies (idempotent) schema migrations for a single tenant schema.
// It pins search_path to the tenant and performs:
// - AutoMigrate (tables/columns)
// - Money column types (NUMERIC(12,2))
// - Indexes (documents, items, counters, idempotency keys)
// - Basic CHECK constraints on quantities, prices and numbering
func MigrateTenantSchema(schema string) error {
	if schema == "" {
		return fmt.Errorf("schema name is empty")
	}

	return DB.Transaction(func(tx *gorm.DB) error {
		// Pin the tenant schema for this transaction
		if err := tx.Exec(`SET search_path = "` + schema + `", public`).Error; err != nil {
			return fmt.Errorf("set search_path failed: %w", err)
		}

		// --- AutoMigrate tables/columns/index tags (non-destructive) ---
		if err := tx.AutoMigrate(
			&models.Party{},
			&models.Document{},
			&models.DocumentItem{},
			&models.SequenceCounter{},
			&models.IdempotencyKey{},
		); err != nil {
			return fmt.Errorf("tenant automigrate failed: %w", err)
		}

		// --- Enforce money columns as NUMERIC(12,2) (idempotent ALTERs) ---
		alters := []string{
			`ALTER TABLE documents      ALTER COLUMN subtotal        TYPE numeric(12,2)`,
			`ALTER TABLE documents      ALTER COLUMN discount_amount TYPE numeric(12,2)`,
			`ALTER TABLE documents      ALTER COLUMN taxable_amount  TYPE numeric(12,2)`,
			`ALTER TABLE documents      ALTER COLUMN cgst            TYPE numeric(12,2)`,
			`ALTER TABLE documents      ALTER COLUMN sgst            TYPE numeric(12,2)`,
			`ALTER TABLE documents      ALTER COLUMN igst            TYPE numeric(12,2)`,
			`ALTER TABLE documents      ALTER COLUMN total           TYPE numeric(12,2)`,
			`ALTER TABLE documents      ALTER COLUMN rounded_total   TYPE numeric(12,2)`,
			`ALTER TABLE documents      ALTER COLUMN round_off       TYPE numeric(12,2)`,
			`ALTER TABLE documents      ALTER COLUMN discount_percent TYPE numeric(5,2)`,
			`ALTER TABLE document_items ALTER COLUMN quantity        TYPE numeric(9,3)`,
			`ALTER TABLE document_items ALTER COLUMN price           TYPE numeric(12,2)`,
			`ALTER TABLE document_items ALTER COLUMN amount          TYPE numeric(12,2)`,
		}
		for _, stmt := range alters {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("money type migration failed on: %s - %w", stmt, err)
			}
		}

		// --- Composite / helpful indexes (idempotent) ---
		indexes := []string{
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_documents_owner_seq ON documents (owner_id, sequence_number)`,
			`CREATE INDEX IF NOT EXISTS idx_documents_kind ON documents (kind)`,
			`CREATE INDEX IF NOT EXISTS idx_document_items_document ON document_items (document_id)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_sequence_counters_owner ON sequence_counters (owner_id)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_idempotency_keys_key ON idempotency_keys (key)`,
		}
		for _, stmt := range indexes {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
			}
		}

		// --- Basic CHECK constraints (idempotent) ---
		checks := []string{
			// Positive document numbers
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'documents'::regclass
					  AND conname  = 'chk_documents_sequence_number_pos'
				) THEN
					ALTER TABLE documents
					ADD CONSTRAINT chk_documents_sequence_number_pos
					CHECK (sequence_number > 0);
				END IF;
			END $$;`,
			// Item quantity and price must be positive
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'document_items'::regclass
					  AND conname  = 'chk_document_items_quantity_pos'
				) THEN
					ALTER TABLE document_items
					ADD CONSTRAINT chk_document_items_quantity_pos
					CHECK (quantity > 0);
				END IF;
			END $$;`,
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'document_items'::regclass
					  AND conname  = 'chk_document_items_price_pos'
				) THEN
					ALTER TABLE document_items
					ADD CONSTRAINT chk_document_items_price_pos
					CHECK (price > 0);
				END IF;
			END $$;`,
			// Counter never goes negative
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'sequence_counters'::regclass
					  AND conname  = 'chk_sequence_counters_nonneg'
				) THEN
					ALTER TABLE sequence_counters
					ADD CONSTRAINT chk_sequence_counters_nonneg
					CHECK (last_issued_number >= 0);
				END IF;
			END $$;`,
		}
		for _, stmt := range checks {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("check constraint migration failed on: %s - %w", stmt, err)
			}
		}

		return nil
	})
}
