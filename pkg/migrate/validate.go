package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
)

var sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

const (
	markerUp        = "-- +goose Up"
	markerDown      = "-- +goose Down"
	markerStmtBegin = "-- +goose StatementBegin"
	markerStmtEnd   = "-- +goose StatementEnd"
)

// ValidateDir checks the migrations under dir on disk.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}
	return validateFS(os.DirFS(dir), dir)
}

// ValidateEmbedded checks the migrations compiled into the binary.
func ValidateEmbedded() error {
	sub, err := fs.Sub(embedded, embeddedDir)
	if err != nil {
		return err
	}
	return validateFS(sub, "embedded")
}

func validateFS(fsys fs.FS, label string) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("read dir %q: %w", label, err)
	}

	versions := map[string]string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}
		if prev, ok := versions[m[1]]; ok {
			return fmt.Errorf("duplicate migration version %s in %q and %q", m[1], prev, name)
		}
		versions[m[1]] = name

		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read file %q: %w", name, err)
		}
		if err := checkSections(string(body)); err != nil {
			return fmt.Errorf("migration %q: %w", name, err)
		}
	}

	if len(versions) == 0 {
		return fmt.Errorf("no migrations found in %q", label)
	}
	return nil
}

func checkSections(txt string) error {
	up := strings.Index(txt, markerUp)
	down := strings.Index(txt, markerDown)
	switch {
	case up < 0:
		return fmt.Errorf("missing %q", markerUp)
	case down < 0:
		return fmt.Errorf("missing %q", markerDown)
	case down < up:
		return fmt.Errorf("down section precedes up section")
	case strings.Count(txt, markerStmtBegin) != strings.Count(txt, markerStmtEnd):
		return fmt.Errorf("unbalanced StatementBegin/StatementEnd")
	}
	return nil
}
