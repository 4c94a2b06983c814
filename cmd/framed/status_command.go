package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"framed/internal/catalog"
	"framed/internal/deps"
	"framed/internal/jobs"
	"framed/internal/preflight"
)

func newStatusCommand(cmdCtx *commandContext) *cobra.Command {
	var showJobs bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report media, conversion, and dependency status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			if asJSON {
				return printStatusJSON(cmd, cmdCtx, showJobs)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config: %s\n\n", cmdCtx.configPath)

			printPreflight(cmd, cmdCtx)
			printDeps(cmd, cmdCtx)

			snapshot, err := catalog.Scan(cfg.Paths.MediaDir)
			if err != nil {
				fmt.Fprintf(out, "Media scan failed: %v\n", err)
			} else {
				printMedia(out, snapshot)
			}

			return printJobs(cmd, cmdCtx, showJobs)
		},
	}

	cmd.Flags().BoolVar(&showJobs, "jobs", false, "List individual conversion jobs")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit machine-readable JSON")
	return cmd
}

type mediaCounts struct {
	Photos          int `json:"photos"`
	RawVideos       int `json:"raw_videos"`
	ConvertedVideos int `json:"converted_videos"`
	Skipped         int `json:"skipped"`
}

type statusReport struct {
	ConfigPath   string             `json:"config_path"`
	Checks       []preflight.Result `json:"checks"`
	Dependencies []deps.Status      `json:"dependencies"`
	Media        *mediaCounts       `json:"media,omitempty"`
	MediaError   string             `json:"media_error,omitempty"`
	Conversions  *jobs.Summary      `json:"conversions,omitempty"`
	JobsError    string             `json:"jobs_error,omitempty"`
	Jobs         []*jobs.Job        `json:"jobs,omitempty"`
}

func printStatusJSON(cmd *cobra.Command, cmdCtx *commandContext, showJobs bool) error {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return err
	}
	report := statusReport{
		ConfigPath:   cmdCtx.configPath,
		Checks:       preflight.RunAll(cmd.Context(), cfg),
		Dependencies: preflight.CheckSystemDeps(cmd.Context(), cfg),
	}

	snapshot, err := catalog.Scan(cfg.Paths.MediaDir)
	if err != nil {
		report.MediaError = err.Error()
	} else {
		report.Media = &mediaCounts{
			Photos:          len(snapshot.Photos()),
			RawVideos:       len(snapshot.RawVideos()),
			ConvertedVideos: len(snapshot.ConvertedVideos()),
			Skipped:         snapshot.Skipped,
		}
	}

	store, err := jobs.Open(cfg)
	if err != nil {
		report.JobsError = err.Error()
	} else {
		defer store.Close()
		summary, err := store.Summarize(cmd.Context())
		if err != nil {
			return fmt.Errorf("summarize jobs: %w", err)
		}
		report.Conversions = &summary
		if showJobs {
			list, err := store.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list jobs: %w", err)
			}
			report.Jobs = list
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func printPreflight(cmd *cobra.Command, cmdCtx *commandContext) {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return
	}
	out := cmd.OutOrStdout()
	results := preflight.RunAll(cmd.Context(), cfg)
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		rows = append(rows, []string{result.Name, passLabel(result.Passed), result.Detail})
	}
	fmt.Fprintln(out, "Checks:")
	fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, rows, nil))
	fmt.Fprintln(out)
}

func printDeps(cmd *cobra.Command, cmdCtx *commandContext) {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return
	}
	out := cmd.OutOrStdout()
	statuses := preflight.CheckSystemDeps(cmd.Context(), cfg)
	rows := make([][]string, 0, len(statuses))
	for _, status := range statuses {
		label := passLabel(status.Available)
		if !status.Available && status.Optional {
			label = "missing (optional)"
		}
		detail := status.Detail
		if detail == "" {
			detail = status.Command
		}
		rows = append(rows, []string{status.Name, label, detail})
	}
	fmt.Fprintln(out, "Dependencies:")
	fmt.Fprintln(out, renderTable([]string{"Tool", "Status", "Detail"}, rows, nil))
	fmt.Fprintln(out)
}

func passLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}

func printMedia(out io.Writer, snapshot catalog.Snapshot) {
	rows := [][]string{
		{"Photos", strconv.Itoa(len(snapshot.Photos()))},
		{"Raw videos", strconv.Itoa(len(snapshot.RawVideos()))},
		{"Converted videos", strconv.Itoa(len(snapshot.ConvertedVideos()))},
		{"Skipped entries", strconv.Itoa(snapshot.Skipped)},
	}
	fmt.Fprintln(out, "Media:")
	fmt.Fprintln(out, renderTable([]string{"Kind", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
	fmt.Fprintln(out)
}

func printJobs(cmd *cobra.Command, cmdCtx *commandContext, showJobs bool) error {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	store, err := jobs.Open(cfg)
	if err != nil {
		fmt.Fprintf(out, "Job store unavailable: %v\n", err)
		return nil
	}
	defer store.Close()

	summary, err := store.Summarize(cmd.Context())
	if err != nil {
		return fmt.Errorf("summarize jobs: %w", err)
	}
	rows := [][]string{
		{"Pending", strconv.Itoa(summary.Pending)},
		{"Running", strconv.Itoa(summary.Running)},
		{"Succeeded", strconv.Itoa(summary.Succeeded)},
		{"Failed", strconv.Itoa(summary.Failed)},
		{"Total", strconv.Itoa(summary.Total)},
	}
	fmt.Fprintln(out, "Conversions:")
	fmt.Fprintln(out, renderTable([]string{"State", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))

	if !showJobs {
		return nil
	}

	list, err := store.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list jobs: %w", err)
	}
	jobRows := make([][]string, 0, len(list))
	for _, job := range list {
		jobRows = append(jobRows, []string{
			job.SourceName,
			string(job.Status),
			strconv.Itoa(job.Attempts),
			job.UpdatedAt.Local().Format(time.DateTime),
			job.ErrorMessage,
		})
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable(
		[]string{"Source", "State", "Attempts", "Updated", "Last error"},
		jobRows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	))
	return nil
}
