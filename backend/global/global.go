// Package global holds process-wide handles set once by initialize.Build.
package global

import (
	"bugtracker/backend/config"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var (
	Config *config.Config
	// Logger discards until initialize replaces it.
	Logger = zerolog.Nop()
	Mdb    *gorm.DB
	// Rdb is nil when notifications are queued in memory.
	Rdb *redis.Client
)
