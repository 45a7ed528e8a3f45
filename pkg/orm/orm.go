package orm

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	TypeMySQL    = "mysql"
	TypePostgres = "postgres"
)

type Config struct {
	Type        string // mysql | postgres
	DSN         string
	MaxIdle     int
	MaxOpen     int
	MaxLifetime int // seconds
	LogLevel    logger.LogLevel
}

// Open connects with the driver named by c.Type and applies the pool
// settings. TranslateError is on so unique-key violations come back as
// gorm.ErrDuplicatedKey regardless of the driver.
func Open(c *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch c.Type {
	case "", TypeMySQL:
		dialector = mysql.Open(c.DSN)
	case TypePostgres:
		dialector = postgres.Open(c.DSN)
	default:
		return nil, fmt.Errorf("orm: unsupported db type %q", c.Type)
	}

	level := c.LogLevel
	if level == 0 {
		level = logger.Warn
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("orm: connect %s: %w", c.Type, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if c.MaxIdle > 0 {
		sqlDB.SetMaxIdleConns(c.MaxIdle)
	}
	if c.MaxOpen > 0 {
		sqlDB.SetMaxOpenConns(c.MaxOpen)
	}
	if c.MaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(c.MaxLifetime) * time.Second)
	}
	return db, nil
}
