package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/solrwrap-labs/solrwrap/internal/settings"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

func newShowCmd(st *state) *cobra.Command {
	var (
		output  string
		metrics bool
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Resolve and print every setting",
		Long: `Resolve every setting of the managed Solr instance and print the result.
Unset values are computed: a free port is allocated and the download URL is
asked from the mirror-selection service, falling back to the Apache archive
when the mirror cannot be reached.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := st.settings().Snapshot(cmd.Context())
			if err != nil {
				return fmt.Errorf("resolving settings: %w", err)
			}

			out := cmd.OutOrStdout()
			if err := writeResolved(out, resolved, output); err != nil {
				return err
			}
			if metrics {
				return writeMetrics(out, st)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "Output format (table, json, yaml)")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "Print resolution counters in Prometheus text format")
	return cmd
}

func writeResolved(w io.Writer, r *settings.Resolved, output string) error {
	switch output {
	case outputJSON:
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling settings: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("marshaling settings: %w", err)
		}
		return enc.Close()
	case outputTable:
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"Setting", "Value"})
		t.AppendRows([]table.Row{
			{"host", r.Host},
			{"port", r.Port},
			{"url", r.URL},
			{"version", r.Version},
			{"download_url", r.DownloadURL},
			{"download_dir", r.DownloadDir},
			{"download_path", r.DownloadPath},
			{"instance_dir", r.InstanceDir},
			{"version_file", r.VersionFile},
			{"md5_url", r.MD5URL},
			{"md5sum_path", r.MD5SumPath},
			{"solr_binary_path", r.SolrBinaryPath},
			{"managed", strconv.FormatBool(r.Managed)},
		})
		style := table.StyleLight
		style.Options.DrawBorder = false
		t.SetStyle(style)
		t.Render()
		return nil
	default:
		return fmt.Errorf("unknown output format %q (use %s, %s or %s)", output, outputTable, outputJSON, outputYAML)
	}
}

func writeMetrics(w io.Writer, st *state) error {
	families, err := st.registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encoding metrics: %w", err)
		}
	}
	return nil
}
