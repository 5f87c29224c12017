package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/solrwrap-labs/solrwrap/internal/branding"
	"github.com/solrwrap-labs/solrwrap/internal/config"
)

func newConfigCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage user settings",
		Long: `Read and write ` + branding.DisplayName() + ` configuration stored at ~/` + branding.HomeDir() + `/config.yaml.

Known keys: ` + strings.Join(config.Keys, ", "),
	}
	cmd.AddCommand(newConfigGetCmd(st), newConfigSetCmd(st), newConfigValidateCmd(st))
	return cmd
}

func newConfigGetCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get the effective value of a configuration key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if !config.IsKnownKey(key) {
				return fmt.Errorf("unknown config key %q", key)
			}
			fmt.Fprintln(cmd.OutOrStdout(), st.v.GetString(key))
			return nil
		},
	}
}

func newConfigSetCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			if err := config.Set(st.configPath, key, value); err != nil {
				return fmt.Errorf("setting config key %q: %w", key, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
			return nil
		},
	}
}

func newConfigValidateCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := st.configPath
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				path = config.FilePath()
			}

			result, err := config.ValidateFile(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.Valid {
				fmt.Fprintf(out, "[ OK ] %s is valid\n", path)
				return nil
			}
			fmt.Fprintf(out, "[FAIL] %s: %d validation issue(s):\n", path, len(result.Issues))
			for _, issue := range result.Issues {
				if issue.Path != "" {
					fmt.Fprintf(out, "  - %s: %s\n", issue.Path, issue.Message)
				} else {
					fmt.Fprintf(out, "  - %s\n", issue.Message)
				}
			}
			return fmt.Errorf("%s is not a valid config file", path)
		},
	}
}
