// Package database provides database helper functions
package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/havenwellness/haven-go/internal/infrastructure/observability/logging"
	"github.com/havenwellness/haven-go/pkg/config"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// TestLibsqlConnection tests a hosted libsql database connection
func TestLibsqlConnection(databaseURL, authToken string) error {
	connStr := databaseURL
	if authToken != "" {
		connStr = fmt.Sprintf("%s?authToken=%s", databaseURL, authToken)
	}

	db, err := sql.Open("libsql", connStr)
	if err != nil {
		return fmt.Errorf("failed to open connection: %w", err)
	}
	defer db.Close()

	var result int
	err = db.QueryRow("SELECT 1").Scan(&result)
	if err != nil {
		return fmt.Errorf("connection test query failed: %w", err)
	}

	if result != 1 {
		return fmt.Errorf("unexpected query result: %d", result)
	}

	return nil
}

// BuildDSN assembles the data source name for the configured driver.
func BuildDSN(driverName, path, authToken string) string {
	if driverName == "libsql" && authToken != "" {
		return fmt.Sprintf("%s?authToken=%s", path, authToken)
	}
	return path
}

// CheckAndLogSlowQuery checks if a query duration exceeds the configured
// threshold and logs it on the slow query channel if it does
func CheckAndLogSlowQuery(logger *logging.ChanneledLogger, query string, duration time.Duration) {
	if duration > config.GetSlowQueryThreshold() {
		logger.LogSlowQuery(query, duration)
	}
}
