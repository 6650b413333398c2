package cmd

import (
	"fmt"

	"github.com/groupchat/groupchat/cli/internal/output"
	"github.com/spf13/cobra"
)

var nameCmd = &cobra.Command{
	Use:   "name [display-name]",
	Short: "Set the name you chat as",
	Long: `Set or replace your chat identity. A random suffix is added so that
two people with the same name can be told apart:

  groupchat name Ana      ->  Ana#k3f9q

Without an argument the current identity is printed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			if flagJSON {
				output.JSON(map[string]string{"user": cfg.User})
				return nil
			}
			if !cfg.HasUser() {
				fmt.Fprintln(cmd.OutOrStdout(), "No name set. Run \"groupchat name <name>\".")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfg.User)
			return nil
		}

		user, err := setUser(args[0])
		if err != nil {
			return err
		}
		if flagJSON {
			output.JSON(map[string]string{"user": user})
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "You are chatting as %s\n", user)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(nameCmd)
}
