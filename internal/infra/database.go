package infra

import (
	"fmt"

	"barcontrol/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens a GORM connection backed by pgx, migrates every model and then applies
// the idempotent SQL patches GORM cannot express (sequences, partial indexes, checks).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates or updates the schema. Integration tests call it directly.
func RunMigrations(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("pgcrypto: %w", err)
	}
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Produto{},
		&model.ProdutoComponente{},
		&model.Comanda{},
		&model.ItemComanda{},
		&model.MovEstoque{},
		&model.Caixa{},
		&model.CaixaMov{},
		&model.LogAcao{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs DDL that AutoMigrate cannot handle. Every statement is guarded so
// re-running on an already-patched database is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"comanda_numero_seq", `CREATE SEQUENCE IF NOT EXISTS comanda_numero_seq START 1`},

		// At most one ABERTO caixa. A concurrent second opener fails with 23505 on this index.
		{"uniq_caixa_aberto", `CREATE UNIQUE INDEX IF NOT EXISTS uniq_caixa_aberto
			ON caixas (status) WHERE status = 'ABERTO'`},

		{"chk_mov_estoque_quantidade", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_mov_estoque_quantidade') THEN
    ALTER TABLE mov_estoque ADD CONSTRAINT chk_mov_estoque_quantidade CHECK (quantidade > 0);
  END IF;
END $$`},
		{"chk_mov_estoque_tipo", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_mov_estoque_tipo') THEN
    ALTER TABLE mov_estoque ADD CONSTRAINT chk_mov_estoque_tipo
      CHECK (tipo IN ('BAIXA', 'ESTORNO', 'ENTRADA'));
  END IF;
END $$`},
		{"chk_componente_quantidade", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_componente_quantidade') THEN
    ALTER TABLE produtos_componentes ADD CONSTRAINT chk_componente_quantidade CHECK (quantidade > 0);
  END IF;
END $$`},
		{"chk_componente_nao_recursivo", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_componente_nao_recursivo') THEN
    ALTER TABLE produtos_componentes ADD CONSTRAINT chk_componente_nao_recursivo
      CHECK (combo_id <> componente_id);
  END IF;
END $$`},
		{"chk_item_quantidade", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_item_quantidade') THEN
    ALTER TABLE itens_comanda ADD CONSTRAINT chk_item_quantidade CHECK (quantidade > 0);
  END IF;
END $$`},

		// Ledger aggregation by product is the hot path of every balance read.
		{"idx_mov_estoque_produto_tipo", `CREATE INDEX IF NOT EXISTS idx_mov_estoque_produto_tipo
			ON mov_estoque (produto_id, tipo)`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
