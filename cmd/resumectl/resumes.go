package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-studio/internal/actions"
	"github.com/jonathan/resume-studio/internal/form"
	"github.com/jonathan/resume-studio/internal/observability"
	"github.com/jonathan/resume-studio/internal/types"
	"github.com/jonathan/resume-studio/internal/validation"
	"github.com/jonathan/resume-studio/internal/workspace"
)

var (
	listPublic    bool
	listFavorites bool
	listOrdering  string
	listPage      int
	listPageSize  int
	listJSON      bool

	submitID     int64
	submitStatus string

	downloadOut string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your resumes, the public feed, or your favorites",
	RunE:  runList,
}

var submitCmd = &cobra.Command{
	Use:   "submit FILE",
	Short: "Create or replace a resume from a submission file",
	Long: `Validates a submission JSON file for its target status and stores it. With --id the
stored resume is replaced, otherwise a new one is created.`,
	Args: cobra.ExactArgs(1),
	RunE: runSubmit,
}

var statusCmd = &cobra.Command{
	Use:       "status ID publish|archive|unarchive",
	Short:     "Change the status of a resume",
	Long:      `Publishing checks the stored resume against the publishing requirements first. Unarchiving returns it to DRAFT.`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"publish", "archive", "unarchive"},
	RunE:      runStatus,
}

var favoriteCmd = &cobra.Command{
	Use:   "favorite ID",
	Short: "Toggle your favorite on another user's public resume",
	Args:  cobra.ExactArgs(1),
	RunE:  runFavorite,
}

var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete one of your resumes",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var downloadCmd = &cobra.Command{
	Use:   "download ID",
	Short: "Download a resume",
	Args:  cobra.ExactArgs(1),
	RunE:  runDownload,
}

var shareCmd = &cobra.Command{
	Use:   "share ID",
	Short: "Print the shareable view link of a resume",
	Args:  cobra.ExactArgs(1),
	RunE:  runShare,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show views, downloads and favorites across your resumes",
	RunE:  runStats,
}

func init() {
	listCmd.Flags().BoolVar(&listPublic, "public", false, "List the public feed instead of your own resumes")
	listCmd.Flags().BoolVar(&listFavorites, "favorites", false, "List the resumes you have favorited")
	listCmd.Flags().StringVar(&listOrdering, "ordering", "", "Ordering, e.g. -updated_at or title")
	listCmd.Flags().IntVar(&listPage, "page", 1, "Page number")
	listCmd.Flags().IntVar(&listPageSize, "page-size", 0, "Results per page (defaults to the configured page size)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print raw JSON")
	listCmd.MarkFlagsMutuallyExclusive("public", "favorites")

	submitCmd.Flags().Int64Var(&submitID, "id", 0, "Replace the resume with this ID")
	submitCmd.Flags().StringVarP(&submitStatus, "status", "s", "", "Target status (defaults to the file's resume_status)")

	downloadCmd.Flags().StringVarP(&downloadOut, "out", "o", "", "Output path (defaults to the server-provided filename, - for stdout)")

	rootCmd.AddCommand(listCmd, submitCmd, statusCmd, favoriteCmd, deleteCmd, downloadCmd, shareCmd, statsCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	c, cfg, err := newClient(cmd)
	if err != nil {
		return err
	}
	opts := actions.ListOptions{Ordering: cfg.Ordering, Page: listPage, PageSize: cfg.PageSize}
	if cmd.Flags().Changed("ordering") {
		opts.Ordering = listOrdering
	}
	if listPageSize > 0 {
		opts.PageSize = listPageSize
	}

	var (
		docs  []types.Resume
		total int
	)
	switch {
	case listFavorites:
		docs, err = c.ListFavorites(cmd.Context())
		total = len(docs)
	case listPublic:
		var page *types.ResumePage
		page, err = c.ListPublic(cmd.Context(), opts)
		if page != nil {
			docs, total = page.Results, page.Count
		}
	default:
		var page *types.ResumePage
		page, err = c.List(cmd.Context(), opts)
		if page != nil {
			docs, total = page.Results, page.Count
		}
	}
	if err != nil {
		return fmt.Errorf("failed to list resumes: %w", err)
	}

	if listJSON {
		return printJSON(cmd.OutOrStdout(), docs)
	}
	printResumeTable(cmd.OutOrStdout(), docs)
	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d\n", len(docs), total)
	return nil
}

func printResumeTable(w io.Writer, docs []types.Resume) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tPRIVACY\tOWNER\tFAVORITED\tUPDATED")
	for _, d := range docs {
		owner := ""
		if d.User != nil {
			owner = d.User.Username
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%t\t%s\n",
			d.ID, d.Title, d.Status, d.Privacy, owner, d.Favorited(), d.UpdatedAt.Format("2006-01-02"))
	}
	_ = tw.Flush()
}

func runSubmit(cmd *cobra.Command, args []string) error {
	payload, err := loadSubmission(args[0])
	if err != nil {
		return reportFieldErrors(cmd.OutOrStdout(), err)
	}
	target := payload.Status
	if submitStatus != "" {
		target = types.Status(submitStatus)
	}

	ws, cfg, err := newWorkspace(cmd)
	if err != nil {
		return err
	}
	var editor *workspace.Editor
	if submitID > 0 {
		editor, err = ws.OpenEditor(cmd.Context(), submitID)
		if err != nil {
			return err
		}
	} else {
		editor = ws.NewEditor()
	}
	defer editor.Close()

	if err := editor.Update(func(types.EditableResume) types.EditableResume {
		return form.ToEditable(form.FromSubmission(payload))
	}); err != nil {
		return err
	}

	stored, err := editor.Submit(cmd.Context(), target)
	if err != nil {
		var vErr *workspace.ValidationFailedError
		if errors.As(err, &vErr) {
			return reportFieldErrors(cmd.OutOrStdout(), &validation.Error{Target: vErr.Target, Fields: vErr.Fields})
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved resume %d (%s) as %s\n", stored.ID, stored.Title, stored.Status)
	if cfg.Verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintResume(stored)
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	ws, _, err := newWorkspace(cmd)
	if err != nil {
		return err
	}

	var doc *types.Resume
	switch args[1] {
	case "publish":
		doc, err = ws.Publish(cmd.Context(), id)
	case "archive":
		doc, err = ws.Archive(cmd.Context(), id)
	case "unarchive":
		doc, err = ws.Unarchive(cmd.Context(), id)
	default:
		return fmt.Errorf("unknown action %q: want publish, archive or unarchive", args[1])
	}
	if err != nil {
		var vErr *workspace.ValidationFailedError
		if errors.As(err, &vErr) {
			return reportFieldErrors(cmd.OutOrStdout(), &validation.Error{Target: vErr.Target, Fields: vErr.Fields})
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Resume %d is now %s\n", doc.ID, doc.Status)
	return nil
}

func runFavorite(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	ws, _, err := newWorkspace(cmd)
	if err != nil {
		return err
	}
	doc, err := ws.ToggleFavorite(cmd.Context(), id)
	if err != nil {
		return err
	}
	if doc.Favorited() {
		fmt.Fprintf(cmd.OutOrStdout(), "Added resume %d to favorites\n", id)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Removed resume %d from favorites\n", id)
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	ws, _, err := newWorkspace(cmd)
	if err != nil {
		return err
	}
	if err := ws.Delete(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted resume %d\n", id)
	return nil
}

func runDownload(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	ws, _, err := newWorkspace(cmd)
	if err != nil {
		return err
	}
	d, err := ws.Download(cmd.Context(), id)
	if err != nil {
		return err
	}
	defer d.Body.Close()

	if downloadOut == "-" {
		_, err := io.Copy(cmd.OutOrStdout(), d.Body)
		return err
	}
	path := downloadOut
	if path == "" {
		path = d.Filename
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := io.Copy(f, d.Body); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
	return nil
}

func runShare(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	ws, _, err := newWorkspace(cmd)
	if err != nil {
		return err
	}
	link, err := ws.Share(cmd.Context(), id)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), link)
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	ws, _, err := newWorkspace(cmd)
	if err != nil {
		return err
	}
	stats, err := ws.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintStats(stats)
	return nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid resume ID %q", arg)
	}
	return id, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
