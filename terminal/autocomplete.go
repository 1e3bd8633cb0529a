package terminal

import (
	"os"
	"strings"

	"github.com/c-bata/go-prompt"
	"github.com/samber/lo"
)

// CommandCompleter suggests protocol verbs and local file arguments.
type CommandCompleter struct {
	commands []prompt.Suggest
	localDir string
}

// NewCommandCompleter creates a completer. localDir is offered for commands
// that take a local file argument.
func NewCommandCompleter(localDir string) *CommandCompleter {
	return &CommandCompleter{
		localDir: localDir,
		commands: []prompt.Suggest{
			{Text: "LIST", Description: "List files on the server"},
			{Text: "OPEN", Description: "Open an existing remote file"},
			{Text: "CREATE", Description: "Create a new remote file"},
			{Text: "RENAME", Description: "Rename a remote file"},
			{Text: "DELETE", Description: "Delete a remote file"},
			{Text: "READ", Description: "Read the open remote file"},
			{Text: "WRITE", Description: "Append data to the open remote file"},
			{Text: "CLOSE", Description: "Close the open remote file"},
			{Text: "UPLOAD", Description: "Send a local file (resumable)"},
			{Text: "DOWNLOAD", Description: "Fetch a remote file (resumable)"},
			{Text: "LEAVE", Description: "End the association and quit"},
			{Text: "lls", Description: "List the local transfer directory"},
			{Text: "theme", Description: "Switch terminal theme (dark/light)"},
			{Text: "clear", Description: "Clear the screen"},
		},
	}
}

// Completer returns suggestions for the current input.
func (c *CommandCompleter) Completer(d prompt.Document) []prompt.Suggest {
	text := d.TextBeforeCursor()
	words := strings.Fields(text)

	if len(words) == 0 || (len(words) == 1 && !strings.HasSuffix(text, " ")) {
		return c.suggestCommands(words)
	}
	return c.suggestArguments(words)
}

func (c *CommandCompleter) suggestCommands(words []string) []prompt.Suggest {
	if len(words) == 0 {
		return c.commands
	}
	prefix := strings.ToUpper(words[0])
	return lo.Filter(c.commands, func(s prompt.Suggest, _ int) bool {
		return strings.HasPrefix(strings.ToUpper(s.Text), prefix)
	})
}

func (c *CommandCompleter) suggestArguments(words []string) []prompt.Suggest {
	switch strings.ToUpper(words[0]) {
	case "UPLOAD":
		// The upload argument names a file in the local transfer directory.
		prefix := ""
		if len(words) > 1 {
			prefix = words[1]
		}
		return c.suggestLocalFiles(prefix)
	case "THEME":
		return []prompt.Suggest{
			{Text: "dark", Description: "Dark theme"},
			{Text: "light", Description: "Light theme"},
		}
	}
	return nil
}

func (c *CommandCompleter) suggestLocalFiles(prefix string) []prompt.Suggest {
	entries, err := os.ReadDir(c.localDir)
	if err != nil {
		return nil
	}
	var suggestions []prompt.Suggest
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		suggestions = append(suggestions, prompt.Suggest{Text: entry.Name(), Description: "Local file"})
	}
	return suggestions
}
