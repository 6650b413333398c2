package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/groupchat/groupchat/cli/internal/identity"
	"github.com/groupchat/groupchat/cli/internal/output"
	"github.com/spf13/cobra"
)

var flagImage string

var sendCmd = &cobra.Command{
	Use:   "send <group-id> [text...]",
	Short: "Send one message to a group",
	Long: `Send a single message without opening the chat screen.

  groupchat send <group-id> hello there
  groupchat send <group-id> "look at this" --image photo.png`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		groupID := args[0]
		text := strings.Join(args[1:], " ")
		user := identity.Or(cfg.User)

		if flagImage != "" {
			return sendImage(cmd, groupID, user, text, flagImage)
		}
		if text == "" {
			return fmt.Errorf("message text is required")
		}

		id, err := apiClient.SendMessage(groupID, user, text)
		if err != nil {
			return fmt.Errorf("sending message: %w", err)
		}
		if flagJSON {
			output.JSON(map[string]string{"id": id})
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Sent.")
		return nil
	},
}

func sendImage(cmd *cobra.Command, groupID, user, caption, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}
	mime, err := mimetype.DetectFile(path)
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}

	if err := apiClient.SendImage(groupID, user, caption, path); err != nil {
		return fmt.Errorf("uploading image: %w", err)
	}

	if flagJSON {
		output.JSON(map[string]any{"success": true})
		return nil
	}
	output.Uploaded(cmd.OutOrStdout(), filepath.Base(path), info.Size(), mime.String())
	return nil
}

func init() {
	sendCmd.Flags().StringVar(&flagImage, "image", "", "Attach an image file")
	rootCmd.AddCommand(sendCmd)
}
