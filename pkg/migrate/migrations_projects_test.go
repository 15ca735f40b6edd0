package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/raedalotaibi/mashary-backend/pkg/migrate"
)

func TestProjectsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_projects.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no projects migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS projects",
		"is_completed boolean NOT NULL DEFAULT false",
		"build_stage build_stage NOT NULL DEFAULT 'basic_info'",
		"version bigint NOT NULL DEFAULT 0",
		"CREATE UNIQUE INDEX ux_projects_single_draft",
		"WHERE is_completed = false",
		"DROP TABLE IF EXISTS projects",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOutboxMigrationKeepsOneShotEventsUnique(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_outbox_events.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no outbox migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE UNIQUE INDEX ux_outbox_events_event_aggregate",
		"WHERE event_type IN ('project_draft_created', 'project_completed')",
		"WHERE published_at IS NULL",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
