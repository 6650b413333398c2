package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/groupchat/groupchat/cli/internal/api"
	"github.com/groupchat/groupchat/cli/internal/output"
	"github.com/spf13/cobra"
)

var flagWatch bool

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List chat groups",
	Long: `List every chat group, followed by a greeting for your identity.

  groupchat groups            Print the list once
  groupchat groups --watch    Keep the list updated as groups are created`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		greeting := ""
		if !flagJSON {
			if user, err := ensureUser(cmd.InOrStdin(), out); err == nil {
				if greeting, err = apiClient.Greeting(user); err != nil {
					output.Errorf(out, "loading greeting: %v", err)
				}
			}
		}

		if !flagWatch {
			groups, err := apiClient.ListGroups()
			if err != nil {
				return fmt.Errorf("listing groups: %w", err)
			}
			renderGroups(out, groups, greeting)
			return nil
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		err := apiClient.WatchGroups(ctx, func(groups []api.Group) error {
			if !flagJSON {
				fmt.Fprint(out, "\033[H\033[2J")
			}
			renderGroups(out, groups, greeting)
			return nil
		})
		if err != nil {
			return fmt.Errorf("watching groups: %w", err)
		}
		return nil
	},
}

func renderGroups(out io.Writer, groups []api.Group, greeting string) {
	if flagJSON {
		output.JSON(groups)
		return
	}
	output.GroupTable(out, groups)
	output.Greeting(out, greeting)
}

func init() {
	groupsCmd.Flags().BoolVarP(&flagWatch, "watch", "w", false, "Keep the list updated live")
	rootCmd.AddCommand(groupsCmd)
}
