// Package storage persists named board snapshots in a BadgerDB database.
package storage

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/pkg/errors"
)

const appName = "chesscore"

// EnvDatabaseDir overrides the database directory when set.
const EnvDatabaseDir = "CHESSCORE_DB"

// GetDataDir returns the application's data directory under the platform
// data home, creating it:
// - Linux: $XDG_DATA_HOME/chesscore (~/.local/share/chesscore)
// - macOS: ~/Library/Application Support/chesscore
// - Windows: %LOCALAPPDATA%\chesscore
func GetDataDir() (string, error) {
	dir := filepath.Join(xdg.DataHome, appName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create data dir")
	}
	return dir, nil
}

// GetDatabaseDir returns the directory holding the snapshot database:
// $CHESSCORE_DB if set, otherwise "db" under GetDataDir.
func GetDatabaseDir() (string, error) {
	dbDir := os.Getenv(EnvDatabaseDir)
	if dbDir == "" {
		dataDir, err := GetDataDir()
		if err != nil {
			return "", err
		}
		dbDir = filepath.Join(dataDir, "db")
	}

	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return "", errors.Wrap(err, "create database dir")
	}
	return dbDir, nil
}
