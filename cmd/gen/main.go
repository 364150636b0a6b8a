// Command gen generates typed GORM queries for the reconciliation journal.
package main

import (
	"medchain/internal/infra/persistence/model"

	"gorm.io/gen"
)

func main() {
	g := gen.NewGenerator(gen.Config{
		OutPath: "./internal/infra/persistence/postgres/query",
		Mode:    gen.WithDefaultQuery | gen.WithQueryInterface,
	})

	g.ApplyBasic(model.OrphanModel{})

	g.Execute()
}
