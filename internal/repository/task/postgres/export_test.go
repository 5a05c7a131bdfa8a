package postgres

import (
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/source"
)

// SetNewMigrate подменяет конструктор migrate и возвращает функцию восстановления
func SetNewMigrate(fn func(string, source.Driver, string, database.Driver) (*migrate.Migrate, error)) func() {
	prev := newMigrate
	newMigrate = fn
	return func() { newMigrate = prev }
}

func (s *Storage) AcquiredConns() int32 {
	return s.pool.Stat().AcquiredConns()
}
