package cmd

import (
	"fmt"

	"github.com/groupchat/groupchat/cli/internal/output"
	"github.com/spf13/cobra"
)

var greetCmd = &cobra.Command{
	Use:   "greet",
	Short: "Ask the server to greet you",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := ensureUser(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}

		greeting, err := apiClient.Greeting(user)
		if err != nil {
			return fmt.Errorf("loading greeting: %w", err)
		}

		if flagJSON {
			output.JSON(map[string]string{"greeting": greeting})
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), greeting)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(greetCmd)
}
