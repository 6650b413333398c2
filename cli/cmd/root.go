package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/groupchat/groupchat/cli/internal/api"
	"github.com/groupchat/groupchat/cli/internal/config"
	"github.com/groupchat/groupchat/cli/internal/identity"
	"github.com/spf13/cobra"
)

var (
	flagJSON      bool
	flagServerURL string
	flagSiteURL   string

	// stored is what is persisted; cfg has environment and flag overrides applied.
	stored    *config.Config
	cfg       *config.Config
	apiClient *api.Client
)

var rootCmd = &cobra.Command{
	Use:   "groupchat",
	Short: "groupchat: group chats from the terminal",
	Long: `groupchat lets you browse chat groups, create new ones and chat
in them with live updates, including image messages.

Get started:
  groupchat name Ana             Pick the name you chat as
  groupchat groups               List groups
  groupchat create --name Team   Create a group
  groupchat chat <group-id>      Open a group and start chatting`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		stored, err = config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = stored.WithEnv()
		if flagServerURL != "" {
			cfg.ServerURL = flagServerURL
		}
		if flagSiteURL != "" {
			cfg.SiteURL = flagSiteURL
		}
		apiClient = api.NewClient(cfg.ServerURL, cfg.Site())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().StringVar(&flagServerURL, "server", "", "Override backend URL (default: $GROUPCHAT_URL, config or http://localhost:8080)")
	rootCmd.PersistentFlags().StringVar(&flagSiteURL, "site", "", "Override upload site URL (default: $GROUPCHAT_SITE_URL or the backend URL)")
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// setUser creates and persists a new identity for name.
func setUser(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("a name is required")
	}
	stored.User = identity.New(name)
	if err := config.Save(stored); err != nil {
		return "", fmt.Errorf("saving identity: %w", err)
	}
	cfg.User = stored.User
	return stored.User, nil
}

// ensureUser returns the stored identity, asking for a name on in when there is none.
func ensureUser(in io.Reader, out io.Writer) (string, error) {
	if cfg.HasUser() {
		return cfg.User, nil
	}

	fmt.Fprintln(out, "Username required")
	fmt.Fprint(out, "Please insert a name to start chatting.\n> ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("a name is required")
	}
	return setUser(line)
}
