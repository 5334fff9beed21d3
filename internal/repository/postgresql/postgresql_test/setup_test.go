package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
)

// schema holds the tables the repositories read and write.
const schema = `
CREATE TABLE IF NOT EXISTS branches (
	id TEXT PRIMARY KEY,
	company_id TEXT NOT NULL,
	name TEXT NOT NULL,
	timezone TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS work_schedules (
	id TEXT PRIMARY KEY,
	company_id TEXT NOT NULL,
	name TEXT NOT NULL,
	start_time TIME NOT NULL,
	end_time TIME NOT NULL,
	working_days INT[] NOT NULL DEFAULT '{1,2,3,4,5}',
	grace_period_minutes INT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	deleted_at TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS work_schedule_date_overrides (
	work_schedule_id TEXT NOT NULL REFERENCES work_schedules(id),
	date DATE NOT NULL,
	start_time TIME NOT NULL,
	end_time TIME NOT NULL,
	is_work_day BOOLEAN NOT NULL,
	description TEXT,
	PRIMARY KEY (work_schedule_id, date)
);
CREATE TABLE IF NOT EXISTS employees (
	id TEXT PRIMARY KEY,
	company_id TEXT NOT NULL,
	branch_id TEXT NOT NULL,
	employee_code TEXT NOT NULL,
	full_name TEXT NOT NULL,
	biometric_id TEXT,
	card_id TEXT,
	work_schedule_id TEXT,
	hourly_wage NUMERIC(14, 4),
	employment_status TEXT NOT NULL DEFAULT 'active',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	deleted_at TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS employee_schedule_assignments (
	id TEXT PRIMARY KEY,
	employee_id TEXT NOT NULL REFERENCES employees(id),
	date DATE NOT NULL,
	work_schedule_id TEXT,
	start_time TIME,
	end_time TIME,
	is_work_day BOOLEAN NOT NULL DEFAULT TRUE,
	grace_period_minutes INT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (employee_id, date)
);
CREATE TABLE IF NOT EXISTS employee_date_overrides (
	id TEXT PRIMARY KEY,
	employee_id TEXT NOT NULL REFERENCES employees(id),
	date DATE NOT NULL,
	start_time TIME NOT NULL,
	end_time TIME NOT NULL,
	is_work_day BOOLEAN NOT NULL,
	description TEXT,
	UNIQUE (employee_id, date)
);
CREATE TABLE IF NOT EXISTS holidays (
	id TEXT PRIMARY KEY,
	company_id TEXT NOT NULL,
	date DATE NOT NULL,
	description TEXT NOT NULL,
	UNIQUE (company_id, date)
);
CREATE TABLE IF NOT EXISTS leave_types (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS leave_requests (
	id TEXT PRIMARY KEY,
	employee_id TEXT NOT NULL REFERENCES employees(id),
	leave_type_id TEXT REFERENCES leave_types(id),
	start_date DATE NOT NULL,
	end_date DATE NOT NULL,
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS payroll_settings (
	id TEXT PRIMARY KEY,
	company_id TEXT NOT NULL UNIQUE,
	late_deduction_enabled BOOLEAN NOT NULL DEFAULT FALSE,
	late_deduction_mode TEXT NOT NULL DEFAULT 'fixed',
	late_deduction_per_minute NUMERIC(14, 4) NOT NULL DEFAULT 0,
	late_deduction_max_minutes INT NOT NULL DEFAULT 0,
	half_day_threshold_minutes INT NOT NULL DEFAULT 0,
	absent_threshold_minutes INT NOT NULL DEFAULT 0,
	overtime_rate NUMERIC(8, 4) NOT NULL DEFAULT 1,
	pay_rounding_places INT NOT NULL DEFAULT 2,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS payroll_runs (
	id TEXT PRIMARY KEY,
	company_id TEXT NOT NULL,
	branch_id TEXT NOT NULL,
	period_start DATE NOT NULL,
	period_end DATE NOT NULL,
	source TEXT NOT NULL,
	record_count INT NOT NULL,
	result JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS payroll_run_employees (
	run_id TEXT NOT NULL REFERENCES payroll_runs(id) ON DELETE CASCADE,
	employee_id TEXT NOT NULL,
	total_worked_minutes INT NOT NULL,
	total_overtime_hours NUMERIC(10, 2) NOT NULL,
	total_late_minutes INT NOT NULL,
	late_days INT NOT NULL,
	total_late_deductions NUMERIC(14, 4) NOT NULL,
	total_pay NUMERIC(14, 4) NOT NULL,
	present_days INT NOT NULL,
	absent_days INT NOT NULL,
	half_days INT NOT NULL,
	leave_days INT NOT NULL,
	holiday_days INT NOT NULL,
	missing_punch_days INT NOT NULL,
	PRIMARY KEY (run_id, employee_id)
);
CREATE TABLE IF NOT EXISTS devices (
	id TEXT PRIMARY KEY,
	company_id TEXT NOT NULL,
	branch_id TEXT NOT NULL,
	name TEXT NOT NULL,
	key_hash TEXT NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	last_seen_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS attendance_uploads (
	id TEXT PRIMARY KEY,
	company_id TEXT NOT NULL,
	branch_id TEXT NOT NULL,
	device_id TEXT NOT NULL,
	format TEXT NOT NULL,
	payload BYTEA NOT NULL,
	status TEXT NOT NULL,
	run_id TEXT,
	error_message TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	processed_at TIMESTAMPTZ
);
`

var tables = []string{
	"attendance_uploads",
	"devices",
	"payroll_run_employees",
	"payroll_runs",
	"payroll_settings",
	"leave_requests",
	"leave_types",
	"holidays",
	"employee_date_overrides",
	"employee_schedule_assignments",
	"employees",
	"work_schedule_date_overrides",
	"work_schedules",
	"branches",
}

// TestDatabaseSetup holds the connection used by repository tests.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and creates the schema. Tests
// are skipped when the variable is not set.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	setup := &TestDatabaseSetup{DB: db}
	ctx := context.Background()
	if _, err := db.Exec(ctx, schema); err != nil {
		db.Close()
		t.Fatalf("failed to create schema: %v", err)
	}
	if err := setup.TruncateAllTables(ctx); err != nil {
		db.Close()
		t.Fatalf("failed to truncate tables: %v", err)
	}

	t.Cleanup(setup.Close)
	return setup
}

// TruncateAllTables removes all rows from the repository tables.
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := t.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// Close closes the database connection
func (t *TestDatabaseSetup) Close() {
	t.DB.Close()
}
