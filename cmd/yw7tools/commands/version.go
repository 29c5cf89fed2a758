package commands

import (
	"github.com/erraggy/yw7tools"
	"github.com/spf13/cobra"
)

func newVersionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				writef(a.stdout, "%s", yw7tools.BuildInfo())
				return
			}
			writef(a.stdout, "yw7tools %s\n", yw7tools.Version())
		},
	}
	cmd.Flags().BoolP("verbose", "v", false, "print commit, build time and Go version too")
	return cmd
}
