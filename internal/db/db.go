package db

import (
	"fmt"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	conf "pricefeed/internal/config"
)

type Handle struct {
	DB  *gorm.DB
	DSN string
}

// Open connects according to cfg. An empty driver means sqlite; an empty
// sqlite DSN places the file inside dataDir.
func Open(dataDir string, cfg conf.DBConfig) (*Handle, error) {
	var dialector gorm.Dialector
	dsn := cfg.DSN

	switch cfg.Driver {
	case "", "sqlite":
		if dsn == "" {
			dsn = filepath.Join(dataDir, "pricefeed.db")
		}
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.Driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		// Logger: logger.Default.LogMode(logger.Info), // enable for verbose SQL
	})
	if err != nil {
		return nil, err
	}
	return &Handle{DB: gdb, DSN: dsn}, nil
}
