package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/tasktrack/internal/config"
	"github.com/yukikurage/tasktrack/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Dialector picks the gorm driver named by DB_DRIVER.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBName,
		)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBName,
		)
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(cfg.DBPath + "?_foreign_keys=on"), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

func Connect(cfg *config.Config) error {
	dialector, err := Dialector(cfg)
	if err != nil {
		return err
	}

	logLevel := logger.Info
	if cfg.IsProduction() {
		logLevel = logger.Warn
	}

	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	logrus.WithField("driver", cfg.DBDriver).Info("Database connection established")
	return nil
}

func Migrate() error {
	return MigrateDB(DB)
}

// MigrateDB creates the schema and seeds the lookup vocabulary and permissions.
func MigrateDB(db *gorm.DB) error {
	logrus.Info("Running database migrations...")
	err := db.AutoMigrate(
		&models.Permission{},
		&models.User{},
		&models.Reference{},
		&models.Priority{},
		&models.Status{},
		&models.Task{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	if err := Seed(db); err != nil {
		return fmt.Errorf("failed to seed lookups: %w", err)
	}

	logrus.Info("Database migrations completed")
	return nil
}

// Seed inserts any missing permission, priority and status rows. Safe to run repeatedly.
func Seed(db *gorm.DB) error {
	for _, permission := range models.DefaultPermissions {
		row := permission
		if err := db.Where(models.Permission{Codename: row.Codename}).
			FirstOrCreate(&row).Error; err != nil {
			return err
		}
	}

	for _, level := range models.PriorityLevels {
		var count int64
		if err := db.Model(&models.Priority{}).Where("name = ?", level).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := db.Create(&models.Priority{Name: level}).Error; err != nil {
				return err
			}
		}
	}

	for _, statusType := range models.StatusTypes {
		var count int64
		if err := db.Model(&models.Status{}).Where("name = ?", statusType).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := db.Create(&models.Status{Name: statusType}).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func GetDB() *gorm.DB {
	return DB
}

// SetDB sets the database instance (used for testing)
func SetDB(db *gorm.DB) {
	DB = db
}
