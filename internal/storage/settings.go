package storage

import (
	"database/sql"
	"fmt"
	"strconv"
)

// Setting is a single stored option.
type Setting struct {
	Namespace string
	Key       string
	Value     bool
}

// GetSettings resolves the given keys in namespace. Keys missing from the
// table keep their default. A stored value that is not a boolean is an error.
func GetSettings(db *sql.DB, namespace string, defaults map[string]bool) (map[string]bool, error) {
	out := make(map[string]bool, len(defaults))
	for k, v := range defaults {
		out[k] = v
	}

	rows, err := db.Query("SELECT key, value FROM settings WHERE namespace = ?", namespace)
	if err != nil {
		return nil, fmt.Errorf("query settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		if _, wanted := defaults[key]; !wanted {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("setting %s.%s: %w", namespace, key, err)
		}
		out[key] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settings: %w", err)
	}
	return out, nil
}

// SetSetting inserts or replaces one option.
func SetSetting(db *sql.DB, namespace, key string, value bool) error {
	_, err := db.Exec(`INSERT INTO settings (namespace, key, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		namespace, key, strconv.FormatBool(value))
	if err != nil {
		return fmt.Errorf("set %s.%s: %w", namespace, key, err)
	}
	return nil
}

// ListSettings returns every stored option in namespace, ordered by key.
func ListSettings(db *sql.DB, namespace string) ([]Setting, error) {
	rows, err := db.Query("SELECT key, value FROM settings WHERE namespace = ? ORDER BY key", namespace)
	if err != nil {
		return nil, fmt.Errorf("query settings: %w", err)
	}
	defer rows.Close()

	var result []Setting
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		v, _ := strconv.ParseBool(raw)
		result = append(result, Setting{Namespace: namespace, Key: key, Value: v})
	}
	return result, rows.Err()
}
