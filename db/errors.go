package db

import "strings"

// IsUniqueViolation reports whether err looks like a unique-constraint
// violation. Matching on message text keeps it portable across the MySQL
// and SQLite drivers.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") ||
		strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "already exists")
}
