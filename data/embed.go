package data

import (
	"embed"
	"fmt"
)

// ActiveJobIndexName is the unique index holding one active deletion job per user
const ActiveJobIndexName = "idx_deletion_jobs_active_user"

//go:embed sql/*.sql
var sqlFiles embed.FS

// ActiveJobIndexDDL returns the CREATE INDEX statement for a GORM dialector name
func ActiveJobIndexDDL(dialect string) (string, error) {
	file := ""
	switch dialect {
	case "mysql":
		file = "sql/active_job_index.mysql.sql"
	case "postgres":
		file = "sql/active_job_index.postgres.sql"
	case "sqlite":
		file = "sql/active_job_index.sqlite.sql"
	case "sqlserver":
		file = "sql/active_job_index.sqlserver.sql"
	default:
		return "", fmt.Errorf("no active job index DDL for dialect %q", dialect)
	}
	ddl, err := sqlFiles.ReadFile(file)
	if err != nil {
		return "", err
	}
	return string(ddl), nil
}
