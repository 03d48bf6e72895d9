// Package repl provides an interactive go-prompt console for poking the
// conformance endpoint by hand: list and describe tools, call them, or send
// raw protocol lines.
package repl

import (
	"fmt"
	"os"
	"strings"

	prompt "github.com/c-bata/go-prompt"

	"mcp-testbed/internal/command"
	"mcp-testbed/internal/mcp/server"
	"mcp-testbed/internal/mcp/tools"
)

// Start runs the console until the user exits. The dispatcher is in-process,
// so the session shares one response-id sequence like any other stream.
func Start(dispatcher *server.Dispatcher, registry *tools.Registry) {
	handler := &command.Handler{
		Dispatcher: dispatcher,
		Registry:   registry,
		Out:        os.Stdout,
	}

	fmt.Println("mcp-testbed interactive console.")
	fmt.Println("Type 'help' for available commands, 'exit' or 'quit' to exit.")

	p := prompt.New(
		func(in string) {
			if !handler.Execute(in) {
				fmt.Println("Bye.")
				os.Exit(0)
			}
		},
		newCompleter(registry),
		prompt.OptionPrefix("mcp> "),
	)
	p.Run()
}

// newCompleter suggests console commands and, after call/describe, the
// registered tool names.
func newCompleter(registry *tools.Registry) prompt.Completer {
	commands := []prompt.Suggest{
		{Text: "list", Description: "List the tool catalog"},
		{Text: "describe", Description: "Show one tool's descriptor"},
		{Text: "call", Description: "Invoke a tool"},
		{Text: "raw", Description: "Send a raw protocol line"},
		{Text: "help", Description: "Show help"},
		{Text: "exit", Description: "Leave the console"},
		{Text: "quit", Description: "Leave the console"},
	}

	var toolSuggests []prompt.Suggest
	for _, tool := range registry.Descriptors() {
		toolSuggests = append(toolSuggests, prompt.Suggest{
			Text:        tool.Name,
			Description: tool.Description,
		})
	}

	return func(d prompt.Document) []prompt.Suggest {
		text := d.TextBeforeCursor()
		fields := strings.Fields(text)

		if len(fields) > 0 && (fields[0] == "call" || fields[0] == "describe") {
			if len(fields) > 2 {
				return nil
			}
			return prompt.FilterHasPrefix(toolSuggests, d.GetWordBeforeCursor(), true)
		}
		if strings.Contains(text, " ") {
			return nil
		}
		return prompt.FilterHasPrefix(commands, d.GetWordBeforeCursor(), true)
	}
}
