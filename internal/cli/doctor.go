package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/solrwrap-labs/solrwrap/internal/config"
	"github.com/solrwrap-labs/solrwrap/internal/platform"
	"github.com/solrwrap-labs/solrwrap/internal/release"
	"github.com/solrwrap-labs/solrwrap/internal/settings"
)

const (
	statusOK   = "[ OK ]"
	statusWarn = "[WARN]"
	statusFail = "[FAIL]"
	statusMiss = "[MISS]"
)

type checkLine struct {
	status  string
	message string
}

type checkResult struct {
	title string
	lines []checkLine
}

func (r *checkResult) add(status, format string, args ...any) {
	r.lines = append(r.lines, checkLine{status: status, message: fmt.Sprintf(format, args...)})
}

func (r *checkResult) failed() bool {
	for _, l := range r.lines {
		if l.status == statusFail {
			return true
		}
	}
	return false
}

func newDoctorCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Health check for the managed Solr instance",
		Long: `Run diagnostic checks on the configuration, the instance directory and the
installed release. Checks run concurrently; the command fails if any check fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := st.settings()
			configPath := st.v.ConfigFileUsed()

			checks := []func(context.Context, *checkResult){
				func(_ context.Context, r *checkResult) { checkConfig(r, configPath) },
				func(_ context.Context, r *checkResult) { checkPort(r, s) },
				func(ctx context.Context, r *checkResult) { checkInstance(ctx, r, s) },
				func(ctx context.Context, r *checkResult) { checkRelease(ctx, r, s) },
			}
			results := runChecks(cmd.Context(), checks)

			failed := printChecks(cmd.OutOrStdout(), results)
			if failed > 0 {
				return fmt.Errorf("%d check(s) failed", failed)
			}
			return nil
		},
	}
}

// runChecks runs every check concurrently and returns the results in order.
func runChecks(ctx context.Context, checks []func(context.Context, *checkResult)) []*checkResult {
	results := make([]*checkResult, len(checks))
	g, gctx := errgroup.WithContext(ctx)
	for i, check := range checks {
		check := check
		results[i] = &checkResult{}
		r := results[i]
		g.Go(func() error {
			check(gctx, r)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func printChecks(w io.Writer, results []*checkResult) int {
	failed := 0
	for _, r := range results {
		fmt.Fprintf(w, "%s:\n", r.title)
		for _, l := range r.lines {
			fmt.Fprintf(w, "  %s %s\n", l.status, l.message)
		}
		if r.failed() {
			failed++
		}
	}
	return failed
}

func checkConfig(r *checkResult, path string) {
	r.title = "Config check"
	if path == "" || !platform.Exists(path) {
		r.add(statusMiss, "no config file, using flags, environment and defaults")
		return
	}

	result, err := config.ValidateFile(path)
	if err != nil {
		r.add(statusFail, "%v", err)
		return
	}
	if result.Valid {
		r.add(statusOK, "%s is valid", path)
		return
	}
	for _, issue := range result.Issues {
		r.add(statusFail, "%s: %s", issue.Path, issue.Message)
	}
}

func checkPort(r *checkResult, s *settings.Settings) {
	r.title = "Port check"
	url, err := s.URL()
	if err != nil {
		r.add(statusFail, "%v", err)
		return
	}
	r.add(statusOK, "instance url %s", url)
}

func checkInstance(ctx context.Context, r *checkResult, s *settings.Settings) {
	r.title = "Instance check"
	dir, err := s.InstanceDir(ctx)
	if err != nil {
		r.add(statusFail, "resolving instance directory: %v", err)
		return
	}
	managed, err := s.Managed(ctx)
	if err != nil {
		r.add(statusFail, "%v", err)
		return
	}
	if !managed {
		r.add(statusMiss, "%s does not exist (nothing installed yet)", dir)
		return
	}
	r.add(statusOK, "%s exists", dir)

	bin, err := s.SolrBinaryPath(ctx)
	if err != nil {
		r.add(statusFail, "%v", err)
		return
	}
	if platform.Exists(bin) {
		r.add(statusOK, "launcher found at %s", bin)
	} else {
		r.add(statusWarn, "launcher %s not found", bin)
	}
}

func checkRelease(ctx context.Context, r *checkResult, s *settings.Settings) {
	r.title = "Release check"
	versionFile, err := s.VersionFile(ctx)
	if err != nil {
		r.add(statusFail, "resolving version file: %v", err)
		return
	}

	status, err := release.Check(versionFile, s.Version())
	if err != nil {
		r.add(statusFail, "%v", err)
		return
	}
	switch {
	case status.Installed == "":
		r.add(statusMiss, "no %s marker at %s", settings.VersionFileName, versionFile)
	case status.Current:
		r.add(statusOK, "installed version %s matches", status.Installed)
	default:
		r.add(statusWarn, "installed version %s, configured %s", status.Installed, status.Wanted)
	}
}
