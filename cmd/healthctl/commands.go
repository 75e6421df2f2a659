package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var errUnhealthy = errors.New("engine reports unhealthy")

type checkView struct {
	Status string          `json:"status"`
	Value  json.RawMessage `json:"value,omitempty"`
	Error  string          `json:"error,omitempty"`
}

type healthView struct {
	Status    string               `json:"status"`
	Timestamp time.Time            `json:"timestamp"`
	Checks    map[string]checkView `json:"checks"`
}

func statusColor(status string) func(a ...interface{}) string {
	switch status {
	case "healthy":
		return color.New(color.FgGreen).SprintFunc()
	case "degraded":
		return color.New(color.FgYellow).SprintFunc()
	default:
		return color.New(color.FgRed).SprintFunc()
	}
}

func statusIcon(status string) string {
	switch status {
	case "healthy":
		return "✓"
	case "degraded":
		return "⚠"
	default:
		return "✗"
	}
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show overall health and per-probe results",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, code, err := opts.client().do(cmd.Context(), http.MethodGet, "/healthz", nil, nil,
				http.StatusOK, http.StatusServiceUnavailable)
			if err != nil {
				return err
			}

			var view healthView
			if err := json.Unmarshal(data, &view); err != nil {
				return fmt.Errorf("decode health response: %w", err)
			}

			out := cmd.OutOrStdout()
			cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
			gray := color.New(color.FgHiBlack).SprintFunc()

			overall := statusColor(view.Status)
			fmt.Fprintf(out, "%s %s\n", cyan("Overall:"), overall(statusIcon(view.Status)+" "+view.Status))
			fmt.Fprintf(out, "%s\n", gray(view.Timestamp.Format(time.RFC3339)))

			names := make([]string, 0, len(view.Checks))
			for name := range view.Checks {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				check := view.Checks[name]
				paint := statusColor(check.Status)
				line := fmt.Sprintf("  %s %-14s %s", paint(statusIcon(check.Status)), name, paint(check.Status))
				switch {
				case check.Error != "":
					line += "  " + gray(check.Error)
				case len(check.Value) > 0:
					line += "  " + gray(string(check.Value))
				}
				fmt.Fprintln(out, line)
			}

			if code == http.StatusServiceUnavailable {
				return errUnhealthy
			}
			return nil
		},
	}
}

func newSnapshotCmd(opts *rootOptions) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Collect a fresh snapshot and print or save it as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, _, err := opts.client().do(cmd.Context(), http.MethodGet, "/snapshot", nil, nil, http.StatusOK)
			if err != nil {
				return err
			}
			if outPath == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			green := color.New(color.FgGreen).SprintFunc()
			fmt.Fprintf(cmd.OutOrStdout(), "%s snapshot written to %s\n", green("✓"), outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the snapshot to this file instead of stdout")
	return cmd
}

func newMetricsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Print headline metrics in Prometheus text format",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, _, err := opts.client().do(cmd.Context(), http.MethodGet, "/metrics/text", nil, nil, http.StatusOK)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newRecordCmd(opts *rootOptions) *cobra.Command {
	var (
		duration time.Duration
		failed   bool
		format   string
		intent   string
	)
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record one request outcome",
		RunE: func(cmd *cobra.Command, args []string) error {
			seconds := duration.Seconds()
			success := !failed
			body := map[string]any{
				"duration_seconds": seconds,
				"success":          success,
			}
			if format != "" {
				body["format"] = format
			}
			if intent != "" {
				body["intent"] = intent
			}

			if _, _, err := opts.client().do(cmd.Context(), http.MethodPost, "/events", nil, body, http.StatusNoContent); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recorded %s (success=%t)\n", duration, success)
			return nil
		},
	}
	cmd.Flags().DurationVarP(&duration, "duration", "d", 0, "Request duration")
	cmd.Flags().BoolVar(&failed, "failed", false, "Mark the request as failed")
	cmd.Flags().StringVar(&format, "format", "", "Document format tag")
	cmd.Flags().StringVar(&intent, "intent", "", "Classified intent tag")
	_ = cmd.MarkFlagRequired("duration")
	return cmd
}

func newResetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear recorder counters and latency history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := opts.client().do(cmd.Context(), http.MethodPost, "/admin/reset", nil, nil, http.StatusNoContent); err != nil {
				return err
			}
			yellow := color.New(color.FgYellow).SprintFunc()
			fmt.Fprintln(cmd.OutOrStdout(), yellow("recorder reset"))
			return nil
		},
	}
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Ask the engine to write a structured snapshot file",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if path != "" {
				query.Set("path", path)
			}
			data, _, err := opts.client().do(cmd.Context(), http.MethodPost, "/admin/export", query, nil, http.StatusOK)
			if err != nil {
				return err
			}
			var resp struct {
				ID string `json:"id"`
			}
			if err := json.Unmarshal(data, &resp); err != nil {
				return fmt.Errorf("decode export response: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported snapshot %s\n", resp.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "Server-side file path (defaults to the engine's export.path)")
	return cmd
}
