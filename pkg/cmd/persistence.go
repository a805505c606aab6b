// Package cmd provides common initialization for the scenario-engine
// binaries.
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/omnidesk/scenario-engine/pkg/persistence"
	"github.com/omnidesk/scenario-engine/pkg/persistence/file"
	"github.com/omnidesk/scenario-engine/pkg/persistence/postgresql"
)

// NewPersistence selects the persistence backend from the database URL
// scheme: postgres for production, a file tree for everything else.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) persistence.Persistence {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			panic(err)
		}

		return p
	default:
		return file.NewPersistence(databaseURL)
	}
}
