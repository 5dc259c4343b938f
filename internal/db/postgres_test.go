package db

import "testing"

func TestMigrationURL(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@localhost:5432/jobs":   "pgx5://u:p@localhost:5432/jobs",
		"postgresql://u:p@localhost:5432/jobs": "pgx5://u:p@localhost:5432/jobs",
		"u:p@localhost:5432/jobs":              "pgx5://u:p@localhost:5432/jobs",
	}
	for in, want := range tests {
		if got := migrationURL(in); got != want {
			t.Errorf("migrationURL(%q) = %q, want %q", in, got, want)
		}
	}
}
