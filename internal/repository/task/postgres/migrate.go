package postgres

import (
	"context"
	"errors"
	"fmt"
	"taskManager/internal/logger"
	"taskManager/internal/migrations"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

var newMigrate = migrate.NewWithInstance

// migrator возвращает migrate и функцию, освобождающую его соединение с пулом
func (s *Storage) migrator() (*migrate.Migrate, func(), error) {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, nil, fmt.Errorf("источник миграций: %w", err)
	}

	// закрытие этого *sql.DB не закрывает пул, но возвращает в него соединения.
	// драйвер migrate, созданный через WithInstance, сам db не закрывает.
	db := stdlib.OpenDBFromPool(s.pool)
	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		_ = source.Close()
		_ = db.Close()
		return nil, nil, fmt.Errorf("драйвер миграций: %w", err)
	}

	m, err := newMigrate("iofs", source, "pgx5", driver)
	if err != nil {
		_ = driver.Close()
		_ = source.Close()
		_ = db.Close()
		return nil, nil, fmt.Errorf("инициализация миграций: %w", err)
	}

	release := func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn("Repository: Ошибка закрытия миграций",
				zap.NamedError("source", srcErr),
				zap.NamedError("database", dbErr))
		}
		_ = db.Close()
	}
	return m, release, nil
}

func (s *Storage) Migrate(ctx context.Context) error {
	logger.Info("Repository: Применение миграций")

	m, release, err := s.migrator()
	if err != nil {
		logger.Error("Repository: Не удалось подготовить миграции", err)
		return err
	}
	defer release()

	// отмена контекста останавливает миграцию после текущего шага
	stop := context.AfterFunc(ctx, func() { m.GracefulStop <- true })
	defer stop()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Repository: Не удалось применить миграции", err)
		return fmt.Errorf("применение миграций: %w", err)
	}

	version, dirty, _ := m.Version()
	logger.Info("Repository: Миграции применены",
		zap.Uint("version", version),
		zap.Bool("dirty", dirty))
	return nil
}

func (s *Storage) Down(ctx context.Context) error {
	logger.Info("Repository: Откат миграций")

	m, release, err := s.migrator()
	if err != nil {
		logger.Error("Repository: Не удалось подготовить миграции", err)
		return err
	}
	defer release()

	// отмена контекста останавливает миграцию после текущего шага
	stop := context.AfterFunc(ctx, func() { m.GracefulStop <- true })
	defer stop()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Repository: Не удалось откатить миграции", err)
		return fmt.Errorf("откат миграций: %w", err)
	}

	logger.Info("Repository: Миграции откачены")
	return nil
}
