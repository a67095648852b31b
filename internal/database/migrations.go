package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type indexSpec struct {
	table   string
	name    string
	columns string
}

// Indexes backing the dashboard and calendar queries.
var secondaryIndexes = []indexSpec{
	{"tasks", "idx_tasks_due_date", "due_date"},
	{"tasks", "idx_tasks_updated_at", "updated_at"},
	{"tasks", "idx_tasks_assigned_status", "assigned_to_id, status_id"},
}

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	migrator := db.Migrator()

	for _, idx := range secondaryIndexes {
		if migrator.HasIndex(idx.table, idx.name) {
			logrus.Debugf("Index %s already exists, skipping", idx.name)
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		logrus.Infof("Created index %s on %s(%s)", idx.name, idx.table, idx.columns)
	}

	return nil
}
