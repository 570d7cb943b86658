package database

import (
	"database/sql"
	"fmt"
)

// GetColumnNames returns all column names for a given table in declaration order.
func GetColumnNames(db *sql.DB, driver, tableName string) ([]string, error) {
	var (
		rows *sql.Rows
		err  error
	)
	switch driver {
	case DriverPostgres:
		rows, err = db.Query(`
			SELECT column_name
			FROM information_schema.columns
			WHERE table_name = $1
			ORDER BY ordinal_position
		`, tableName)
	default:
		rows, err = db.Query("SELECT name FROM pragma_table_info(?) ORDER BY cid", tableName)
	}
	if err != nil {
		return nil, fmt.Errorf("list columns of %s: %w", tableName, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var colName string
		if err := rows.Scan(&colName); err != nil {
			return nil, err
		}
		columns = append(columns, colName)
	}

	return columns, rows.Err()
}

// CheckColumnExists checks if a column exists in a table
func CheckColumnExists(db *sql.DB, driver, tableName, columnName string) (bool, error) {
	columns, err := GetColumnNames(db, driver, tableName)
	if err != nil {
		return false, err
	}

	for _, col := range columns {
		if col == columnName {
			return true, nil
		}
	}

	return false, nil
}

// TableExists reports whether the table has at least one column.
func TableExists(db *sql.DB, driver, tableName string) (bool, error) {
	columns, err := GetColumnNames(db, driver, tableName)
	if err != nil {
		return false, err
	}
	return len(columns) > 0, nil
}
