package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPortCmd(st *state) *cobra.Command {
	var url bool

	cmd := &cobra.Command{
		Use:   "port",
		Short: "Print the instance port",
		Long: `Print the configured port, or allocate a free loopback port and print it.
The allocated port is released right away, so another process may take it
before Solr binds.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := st.settings()
			value, err := s.Port()
			if url {
				value, err = s.URL()
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}

	cmd.Flags().BoolVar(&url, "url", false, "Print the instance base URL instead")
	return cmd
}
