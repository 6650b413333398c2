package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/groupchat/groupchat/cli/internal/api"
	"github.com/olekukonko/tablewriter"
)

var (
	ownStyle    = color.New(color.FgGreen, color.OpBold)
	authorStyle = color.New(color.FgCyan)
	metaStyle   = color.New(color.FgGray)
	titleStyle  = color.New(color.BgBlack, color.FgGreen)
	errorStyle  = color.New(color.FgRed)
)

// JSON prints v as indented JSON to stdout.
func JSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// GroupTable prints the group list screen.
func GroupTable(w io.Writer, groups []api.Group) {
	if len(groups) == 0 {
		fmt.Fprintln(w, "No groups yet. Create one with \"groupchat create\".")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "Description", "Icon", "ID", "Created"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")

	for _, g := range groups {
		table.Append([]string{g.Name, g.Description, g.IconURL, g.ID, RelativeTime(g.CreatedAt)})
	}
	table.Render()
}

// Greeting prints the greeting line under the group list.
func Greeting(w io.Writer, greeting string) {
	if greeting == "" {
		return
	}
	fmt.Fprintf(w, "\n%s\n", greeting)
}

// ChatTitle prints the chat screen header.
func ChatTitle(w io.Writer, title string) {
	fmt.Fprintln(w, titleStyle.Sprint(fmt.Sprintf("  ====== %s ======  ", title)))
}

// MessageLine renders one message; messages written by self are highlighted.
func MessageLine(w io.Writer, m api.Message, self string) {
	author := authorStyle.Sprint(m.User)
	content := m.Content
	if m.User == self && self != "" {
		author = ownStyle.Sprint(m.User)
		content = ownStyle.Sprint(m.Content)
	}

	line := fmt.Sprintf("%s %s:", metaStyle.Sprint(m.CreatedAt.Local().Format("15:04")), author)
	if m.Content != "" {
		line += " " + content
	}
	if m.File != nil && *m.File != "" {
		line += " " + metaStyle.Sprint("[image] "+*m.File)
	}
	fmt.Fprintln(w, line)
}

// MessageList renders messages oldest first.
func MessageList(w io.Writer, messages []api.Message, self string) {
	if len(messages) == 0 {
		fmt.Fprintln(w, metaStyle.Sprint("No messages yet."))
		return
	}
	for _, m := range messages {
		MessageLine(w, m, self)
	}
}

// Errorf prints a highlighted error line without stopping the screen.
func Errorf(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, errorStyle.Sprint("error: "+fmt.Sprintf(format, args...)))
}

// Uploaded confirms an image message.
func Uploaded(w io.Writer, name string, size int64, mime string) {
	fmt.Fprintf(w, "Sent %s (%s, %s)\n", name, shortMIME(mime), FormatSize(size))
}

// VersionInfo prints the CLI version and what the server reports about itself.
func VersionInfo(w io.Writer, cliVersion string, server *api.VersionInfo, serverErr error) {
	fmt.Fprintf(w, "CLI version:    %s\n", cliVersion)
	if server == nil {
		if serverErr != nil {
			fmt.Fprintf(w, "Server:         unreachable (%v)\n", serverErr)
		}
		return
	}

	fmt.Fprintf(w, "Server version: %s (api %s)\n", server.Version, server.APIVersion)
	if server.Storage != "" {
		fmt.Fprintf(w, "Image storage:  %s\n", server.Storage)
	}
	if server.UploadLimitMB > 0 {
		fmt.Fprintf(w, "Max image size: %s\n", FormatSize(int64(server.UploadLimitMB)<<20))
	}
	if server.LiveUpdates != "" {
		fmt.Fprintf(w, "Live updates:   %s\n", server.LiveUpdates)
	}
	if len(server.Functions) > 0 {
		fmt.Fprintf(w, "Functions:      %s\n", strings.Join(server.Functions, ", "))
	}
}

// FormatSize converts bytes to a human-readable string.
func FormatSize(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

// RelativeTime formats a timestamp relative to now (e.g. "2h ago", "3d ago").
func RelativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}

func shortMIME(mime string) string {
	// "image/png" -> "png", "image/svg+xml; charset=utf-8" -> "svg+xml"
	mime, _, _ = strings.Cut(mime, ";")
	parts := strings.Split(strings.TrimSpace(mime), "/")
	if len(parts) == 2 {
		return parts[1]
	}
	return mime
}
