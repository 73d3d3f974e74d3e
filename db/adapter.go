package db

import (
	"fmt"

	"github.com/moonveil-games/friendserver/config"
	dbmysql "github.com/moonveil-games/friendserver/db/mysql"
	dbsqlite "github.com/moonveil-games/friendserver/db/sqlite"
	"gorm.io/gorm"
)

const (
	ModeMySQL        = "mysql"
	ModeSQLite       = "sqlite"
	ModeSQLiteMemory = "sqlite_memory"
)

// Open returns a *gorm.DB for the configured database mode.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	switch cfg.Mode {
	case ModeMySQL:
		return dbmysql.Open(cfg.MySQLDSN, cfg.MySQLMaxOpen, cfg.MySQLMaxIdle, cfg.MySQLMaxLife)
	case ModeSQLite:
		return dbsqlite.Open(cfg.SQLitePath)
	case ModeSQLiteMemory:
		return dbsqlite.OpenMemory()
	default:
		return nil, fmt.Errorf("db: unknown mode %q", cfg.Mode)
	}
}
