package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

//go:embed migrations/*/*.sql
var embeddedMigrations embed.FS

type migrationFile struct {
	name string
	data []byte
}

// RunMigrations applies pending migrations for the database's dialect and
// records each one in schema_migrations. Files come from dir (or
// dir/<dialect> when present), falling back to the embedded set.
func RunMigrations(ctx context.Context, d *DB, dir string) ([]string, error) {
	if d == nil || d.SQL == nil {
		return nil, errors.New("db: DB is nil")
	}
	files, err := loadMigrations(d.Dialect, dir)
	if err != nil {
		return nil, err
	}
	if _, err := d.SQL.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version VARCHAR(255) PRIMARY KEY, applied_at VARCHAR(40) NOT NULL)`); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}
	done, err := appliedVersions(ctx, d)
	if err != nil {
		return nil, err
	}
	var applied []string
	for _, mf := range files {
		if _, ok := done[mf.name]; ok || len(mf.data) == 0 {
			continue
		}
		// MySQL rejects multi-statement Exec without multiStatements=true.
		for _, stmt := range splitSQL(string(mf.data)) {
			if _, err := d.SQL.ExecContext(ctx, stmt); err != nil {
				return applied, fmt.Errorf("exec migration %s at %q: %w", mf.name, firstLine(stmt), err)
			}
		}
		if _, err := d.SQL.ExecContext(ctx, d.Dialect.Rebind(`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`), mf.name, formatTime(time.Now())); err != nil {
			return applied, fmt.Errorf("record migration %s: %w", mf.name, err)
		}
		applied = append(applied, mf.name)
	}
	return applied, nil
}

func appliedVersions(ctx context.Context, d *DB) (map[string]struct{}, error) {
	rows, err := d.SQL.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()
	out := map[string]struct{}{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out[v] = struct{}{}
	}
	return out, rows.Err()
}

func loadMigrations(dialect Dialect, dir string) ([]migrationFile, error) {
	if dir != "" {
		for _, candidate := range []string{filepath.Join(dir, string(dialect)), dir} {
			files, err := readMigrationDir(os.DirFS(candidate), ".")
			if err == nil && len(files) > 0 {
				return files, nil
			}
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read migrations: %w", err)
			}
		}
	}
	files, err := readMigrationDir(embeddedMigrations, path.Join("migrations", string(dialect)))
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}
	return files, nil
}

func readMigrationDir(fsys fs.FS, dir string) ([]migrationFile, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	var files []migrationFile
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".sql" {
			continue
		}
		content, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		files = append(files, migrationFile{name: entry.Name(), data: content})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })
	return files, nil
}

// splitSQL splits a script on semicolons; migrations hold plain DDL only.
func splitSQL(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if strings.TrimSpace(stripComments(part)) == "" {
			continue
		}
		out = append(out, strings.TrimSpace(part))
	}
	return out
}

func stripComments(s string) string {
	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
