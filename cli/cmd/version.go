package cmd

import (
	"github.com/groupchat/groupchat/cli/internal/api"
	"github.com/groupchat/groupchat/cli/internal/output"
	"github.com/spf13/cobra"
)

// Version is the CLI version, injected at build time:
//
//	go build -ldflags "-X github.com/groupchat/groupchat/cli/cmd.Version=1.2.3"
var Version = "dev"

type versionReport struct {
	CLIVersion  string           `json:"cliVersion"`
	Server      *api.VersionInfo `json:"server,omitempty"`
	ServerError string           `json:"serverError,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show CLI version and the server's setup",
	Long: `Show the CLI version together with what the server reports: its version,
where images are stored, the largest accepted image and whether live updates
are shared between replicas.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, serverErr := apiClient.Version()

		if flagJSON {
			report := versionReport{CLIVersion: Version, Server: server}
			if serverErr != nil {
				report.ServerError = serverErr.Error()
			}
			output.JSON(report)
			return nil
		}

		output.VersionInfo(cmd.OutOrStdout(), Version, server, serverErr)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
