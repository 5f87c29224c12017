package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/solrwrap-labs/solrwrap/internal/branding"
	"github.com/solrwrap-labs/solrwrap/internal/config"
	"github.com/solrwrap-labs/solrwrap/internal/logging"
	"github.com/solrwrap-labs/solrwrap/internal/settings"
	"github.com/solrwrap-labs/solrwrap/internal/telemetry"
)

// BuildInfo is injected via ldflags at build time.
type BuildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// state is shared by every command of one command tree.
type state struct {
	build      BuildInfo
	configPath string

	v        *viper.Viper
	logger   zerolog.Logger
	registry *prometheus.Registry
	metrics  *telemetry.PrometheusCollector
}

// skipConfig lists commands that run without loading configuration.
var skipConfig = map[string]bool{
	"version":  true,
	"validate": true,
}

// NewRootCmd builds the command tree. A fresh tree is built per call so
// flag state never leaks between runs.
func NewRootCmd(build BuildInfo) *cobra.Command {
	st := &state{build: build, logger: zerolog.Nop()}

	cmd := &cobra.Command{
		Use:   branding.CLIName(),
		Short: branding.Description(),
		Long: branding.DisplayName() + ` resolves the effective settings of a locally managed Solr
instance: port, base URL, download location, install directory and VERSION marker.
Values come from flags, ` + branding.EnvPrefix() + `_* environment variables and ~/` + branding.HomeDir() + `/config.yaml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipConfig[cmd.Name()] {
				return nil
			}
			return st.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&st.configPath, "config", "", "Config file (default ~/"+branding.HomeDir()+"/config.yaml)")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newShowCmd(st),
		newPortCmd(st),
		newConfigCmd(st),
		newDoctorCmd(st),
		newVersionCmd(st),
	)
	return cmd
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	cmd := NewRootCmd(BuildInfo{Version: version, Commit: commit, Date: date})
	if err := cmd.Execute(); err != nil {
		cmd.PrintErrln("Error:", err)
		return err
	}
	return nil
}

func (st *state) load(cmd *cobra.Command) error {
	v := config.New(st.configPath)
	if err := config.Load(v); err != nil {
		return err
	}
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return err
	}

	logger, err := logging.Setup(config.Logging(v), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics, err := telemetry.NewPrometheusCollector(reg)
	if err != nil {
		return err
	}

	st.v, st.logger, st.registry, st.metrics = v, logger, reg, metrics
	st.logger.Debug().Str("config", v.ConfigFileUsed()).Msg("configuration loaded")
	return nil
}

// settings creates a resolver over the loaded configuration.
func (st *state) settings() *settings.Settings {
	return settings.New(config.Static(st.v),
		settings.WithLogger(st.logger),
		settings.WithCollector(st.metrics),
		settings.WithMirrorTimeout(config.MirrorTimeout(st.v)),
	)
}
