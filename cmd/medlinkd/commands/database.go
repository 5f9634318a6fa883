package commands

import (
	"database/sql"

	"github.com/medlinkvn/medlink/config"
	"github.com/medlinkvn/medlink/db"
	"github.com/medlinkvn/medlink/errors"
	"github.com/medlinkvn/medlink/logger"
)

// openDatabase opens and migrates a database using the specified path.
// If dbPath is empty, it loads from config.
func openDatabase(dbPath string) (*sql.DB, error) {
	if dbPath == "" {
		path, err := config.GetDatabasePath()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get database path")
		}
		if path == "" {
			dbPath = "medlink.db"
		} else {
			dbPath = path
		}
	}

	database, err := db.Open(dbPath, logger.Logger)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database at %s", dbPath)
	}

	if err := db.Migrate(database, logger.Logger); err != nil {
		database.Close()
		return nil, errors.Wrapf(err, "failed to run migrations on %s", dbPath)
	}

	return database, nil
}
