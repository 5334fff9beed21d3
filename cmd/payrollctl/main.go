// Command payrollctl reconciles attendance files from the command line and
// mints service tokens for the HTTP API.
//
//	payrollctl process -company C -branch B -from 2025-03-01 -to 2025-03-31 -file march.csv
//	payrollctl token -company C -subject ops
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/app"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/config"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/jwt"
)

const usage = `usage: payrollctl <command> [flags]

commands:
  process   reconcile an attendance file and print the payroll result as JSON
  token     print an access token scoped to a company`

var errUsage = errors.New(usage)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "process":
		return runProcess(ctx, args[1:], stdout)
	case "token":
		return runToken(args[1:], stdout)
	default:
		return fmt.Errorf("unknown command %q\n%w", args[0], errUsage)
	}
}

type processFlags struct {
	companyID string
	branchID  string
	from      string
	to        string
	file      string
	format    string
	out       string
}

func parseProcessFlags(args []string) (processFlags, error) {
	var f processFlags
	fs := flag.NewFlagSet("process", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&f.companyID, "company", "", "company ID")
	fs.StringVar(&f.branchID, "branch", "", "branch ID")
	fs.StringVar(&f.from, "from", "", "period start, YYYY-MM-DD")
	fs.StringVar(&f.to, "to", "", "period end, YYYY-MM-DD")
	fs.StringVar(&f.file, "file", "", "attendance file (.csv, .txt, .xlsx or .json)")
	fs.StringVar(&f.format, "format", "", "delimited, xlsx or events; detected from the file extension when empty")
	fs.StringVar(&f.out, "out", "", "write the result to this file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return f, err
	}

	var missing []string
	for _, req := range []struct{ name, value string }{
		{"company", f.companyID},
		{"branch", f.branchID},
		{"file", f.file},
	} {
		if req.value == "" {
			missing = append(missing, "-"+req.name)
		}
	}
	if len(missing) > 0 {
		return f, fmt.Errorf("missing required flags: %s", strings.Join(missing, ", "))
	}
	if f.format == "" {
		f.format = string(formatFromPath(f.file))
	}
	return f, nil
}

func runProcess(ctx context.Context, args []string, stdout io.Writer) error {
	f, err := parseProcessFlags(args)
	if err != nil {
		return err
	}

	payload, err := os.ReadFile(f.file)
	if err != nil {
		return fmt.Errorf("read %s: %w", f.file, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	app.NewLogger(cfg.App, "payrollctl")

	db, err := database.NewPostgreSQLDBWithOptions(ctx, cfg.DatabaseURL(), database.PoolOptions{MaxConns: 4, MinConns: 1})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	services, err := app.NewServices(cfg, db)
	if err != nil {
		return err
	}

	run, err := services.Payroll.ProcessBatch(ctx, payroll.ProcessBatchRequest{
		CompanyID:   f.companyID,
		BranchID:    f.branchID,
		PeriodStart: f.from,
		PeriodEnd:   f.to,
		Format:      f.format,
		Payload:     payload,
		Source:      payroll.RunSourceCLI,
	})
	if err != nil {
		return err
	}

	w := stdout
	if f.out != "" {
		file, err := os.Create(f.out)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}
	return writeJSON(w, run)
}

func runToken(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	companyID := fs.String("company", "", "company ID")
	subject := fs.String("subject", "payrollctl", "token subject")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	token, expiresAt, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration).GenerateAccessToken(*companyID, *subject)
	if err != nil {
		return err
	}
	return writeJSON(stdout, map[string]interface{}{
		"access_token": token,
		"expires_at":   expiresAt,
	})
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatFromPath(path string) attendance.BatchFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return attendance.BatchFormatSpreadsheet
	case ".json":
		return attendance.BatchFormatEvents
	default:
		return attendance.BatchFormatDelimited
	}
}
