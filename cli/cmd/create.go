package cmd

import (
	"fmt"

	"github.com/groupchat/groupchat/cli/internal/output"
	"github.com/spf13/cobra"
)

var (
	flagGroupName        string
	flagGroupDescription string
	flagGroupIconURL     string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a chat group",
	Long: `Create a new chat group. All fields are optional and names need not be unique.

  groupchat create --name Hiking --description "Weekend trips" --icon-url https://...`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := apiClient.CreateGroup(flagGroupName, flagGroupDescription, flagGroupIconURL)
		if err != nil {
			return fmt.Errorf("creating group: %w", err)
		}

		if flagJSON {
			output.JSON(map[string]string{"id": id})
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created group %q (%s)\n", flagGroupName, id)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&flagGroupName, "name", "", "Group name")
	createCmd.Flags().StringVar(&flagGroupDescription, "description", "", "Group description")
	createCmd.Flags().StringVar(&flagGroupIconURL, "icon-url", "", "URL of the group icon")
	rootCmd.AddCommand(createCmd)
}
