package postgresql

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cmlabs-hris/presence-ledger-go/internal/pkg/database"
)

//go:embed schema.sql
var schema string

// ApplySchema creates the attendance and leave tables when they do not exist yet.
func ApplySchema(ctx context.Context, db *database.DB) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
