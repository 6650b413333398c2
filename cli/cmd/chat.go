package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/groupchat/groupchat/cli/internal/api"
	"github.com/groupchat/groupchat/cli/internal/identity"
	"github.com/groupchat/groupchat/cli/internal/output"
	"github.com/spf13/cobra"
)

const defaultChatTitle = "Chat"

var chatCmd = &cobra.Command{
	Use:   "chat <group-id>",
	Short: "Open a group and chat live",
	Long: `Open the chat screen of a group. New messages appear as they arrive.

Type a line and press enter to send it. Commands:
  /image <path> [caption]   Send an image, optionally with a caption
  /quit                     Leave the chat`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		groupID := args[0]
		out := cmd.OutOrStdout()

		title := defaultChatTitle
		group, err := apiClient.GetGroup(groupID)
		if err != nil {
			return fmt.Errorf("loading group: %w", err)
		}
		if group != nil && group.Name != "" {
			title = group.Name
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		screen := &chatScreen{out: out, self: cfg.User}
		output.ChatTitle(out, title)

		watchErr := make(chan error, 1)
		go func() {
			watchErr <- apiClient.WatchMessages(ctx, groupID, screen.render)
		}()

		lines := make(chan string)
		go readLines(cmd.InOrStdin(), lines)

		user := identity.Or(cfg.User)
		for {
			select {
			case <-ctx.Done():
				return nil
			case err := <-watchErr:
				if err != nil && ctx.Err() == nil {
					return fmt.Errorf("live updates stopped: %w", err)
				}
				return nil
			case line, ok := <-lines:
				if !ok {
					return nil
				}
				if quit := screen.handle(groupID, user, line); quit {
					return nil
				}
			}
		}
	},
}

func readLines(in io.Reader, lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		lines <- scanner.Text()
	}
}

// chatScreen prints the message stream. Results from the server are full lists;
// only messages not shown yet are printed.
type chatScreen struct {
	mu    sync.Mutex
	out   io.Writer
	self  string
	shown map[string]bool
}

func (s *chatScreen) render(messages []api.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shown == nil {
		s.shown = make(map[string]bool)
		if len(messages) == 0 {
			output.MessageList(s.out, messages, s.self)
		}
	}
	for _, m := range messages {
		if s.shown[m.ID] {
			continue
		}
		s.shown[m.ID] = true
		output.MessageLine(s.out, m, s.self)
	}
	return nil
}

func (s *chatScreen) errorf(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	output.Errorf(s.out, format, args...)
}

// handle acts on one input line and reports whether the chat should close.
func (s *chatScreen) handle(groupID, user, line string) bool {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return false
	case line == "/quit":
		return true
	case line == "/image" || strings.HasPrefix(line, "/image "):
		path, caption, _ := strings.Cut(strings.TrimSpace(strings.TrimPrefix(line, "/image")), " ")
		if path == "" {
			s.errorf("usage: /image <path> [caption]")
			return false
		}
		if err := apiClient.SendImage(groupID, user, strings.TrimSpace(caption), path); err != nil {
			s.errorf("sending image: %v", err)
		}
		return false
	default:
		if _, err := apiClient.SendMessage(groupID, user, line); err != nil {
			s.errorf("sending message: %v", err)
		}
		return false
	}
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
