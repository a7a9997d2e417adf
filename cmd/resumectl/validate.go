package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-studio/internal/form"
	"github.com/jonathan/resume-studio/internal/observability"
	"github.com/jonathan/resume-studio/internal/schemas"
	"github.com/jonathan/resume-studio/internal/types"
	"github.com/jonathan/resume-studio/internal/validation"
)

var validateStatus string

var validateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Check a resume submission file without sending it",
	Long: `Checks a submission JSON file against the submission schema and then against the
requirements of the target status (the file's resume_status unless --status is given).`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateStatus, "status", "s", "", "Target status: DRAFT, PUBLISHED or ARCHIVED")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	payload, err := loadSubmission(args[0])
	if err != nil {
		return reportFieldErrors(cmd.OutOrStdout(), err)
	}

	target := payload.Status
	if validateStatus != "" {
		target = types.Status(validateStatus)
	}
	fields := checkSubmission(payload, target)
	if verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintFieldErrors(target, fields)
	}
	if len(fields) > 0 {
		return reportFieldErrors(cmd.OutOrStdout(), &validation.Error{Target: target, Fields: fields})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Validation passed: ready to save as %s\n", target)
	return nil
}

// loadSubmission reads a submission file, checking its structure against the schema first.
func loadSubmission(path string) (types.SubmissionPayload, error) {
	var p types.SubmissionPayload
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, fmt.Errorf("JSON file not found: %s", path)
		}
		return p, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := schemas.ValidateSubmission(data); err != nil {
		return p, err
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("failed to unmarshal submission JSON: %w", err)
	}
	return p, nil
}

// checkSubmission returns what blocks the payload from being saved as target.
func checkSubmission(p types.SubmissionPayload, target types.Status) []types.FieldError {
	return validation.Validate(form.ToEditable(form.FromSubmission(p)), target)
}

// reportFieldErrors prints field errors one per line and returns err for the exit status.
func reportFieldErrors(w io.Writer, err error) error {
	var fields []types.FieldError
	var schemaErr *schemas.ValidationError
	var ruleErr *validation.Error
	switch {
	case errors.As(err, &schemaErr):
		fields = schemaErr.Errors
	case errors.As(err, &ruleErr):
		fields = ruleErr.Fields
	default:
		return err
	}
	fmt.Fprintln(w, "Validation failed:")
	for _, f := range fields {
		fmt.Fprintf(w, "  %s: %s\n", f.Field, f.Message)
	}
	return fmt.Errorf("validation failed with %d error(s)", len(fields))
}
