package db

import (
	"fmt"
	"strconv"
	"strings"
)

type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
)

// Drivers lists the accepted driver names.
func Drivers() []string { return []string{"sqlite3", "sqlite", "pgx", "postgres", "mysql"} }

func DialectFor(driver string) (Dialect, error) {
	switch normalizeDriver(driver) {
	case "sqlite3", "sqlite":
		return SQLite, nil
	case "pgx", "postgres":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	}
	return "", fmt.Errorf("db: unsupported driver %q", driver)
}

// Rebind rewrites ? placeholders into $n for Postgres. Queries in this
// package never contain literal question marks.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// upsertCompatibility returns the insert-or-replace statement for one pair.
func (d Dialect) upsertCompatibility() string {
	const insert = `INSERT INTO user_compatibilities
  (user1_id, user2_id, score, shared_empathy, shared_growth, shared_relationships, shared_values, calculated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	cols := []string{"score", "shared_empathy", "shared_growth", "shared_relationships", "shared_values", "calculated_at"}
	sets := make([]string, len(cols))
	for i, c := range cols {
		if d == MySQL {
			sets[i] = c + " = VALUES(" + c + ")"
		} else {
			sets[i] = c + " = excluded." + c
		}
	}
	if d == MySQL {
		return d.Rebind(insert + "\nON DUPLICATE KEY UPDATE " + strings.Join(sets, ", "))
	}
	return d.Rebind(insert + "\nON CONFLICT (user1_id, user2_id) DO UPDATE SET " + strings.Join(sets, ", "))
}
