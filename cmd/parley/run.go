package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/dialogue"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/rulebook"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Dispatch contexts against a rule book interactively",
	Long: `Loads a rule book and reads one request context per line from stdin as JSON
(e.g. {"domain":"weather","intent":"forecast","entities":[{"type":"city","value":"Paris"}]}),
dispatching each one and rendering the resulting client actions.

Handlers are generated from the book's replies/prompts; entity values are
copied into slots so phrasings can reference them as {type} placeholders.`,
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("book")
		if len(args) > 0 {
			path = args[0]
		}
		level, _ := cmd.Flags().GetString("log-level")
		jsonMode, _ := cmd.Flags().GetBool("json")

		if err := runSession(path, level, jsonMode); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("json", false, "Emit dispatch results as NDJSON instead of rendering")
}

func runSession(path, level string, jsonMode bool) error {
	book, err := rulebook.LoadFile(path)
	if err != nil {
		return err
	}

	m := dialogue.NewManager(dialogue.WithLogger(logging.New(logging.ParseLevel(level))))
	if err := book.Bind(m, bookHandlers(book)); err != nil {
		return err
	}
	m.Seal()

	interactive := !jsonMode && term.IsTerminal(int(os.Stdout.Fd()))
	render := newActionRenderer(interactive)

	scanner := bufio.NewScanner(os.Stdin)
	if interactive {
		fmt.Print("> ")
	}
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == "exit" || line == "quit" {
			if line != "" {
				break
			}
			if interactive {
				fmt.Print("> ")
			}
			continue
		}

		var ctx domain.Context
		if err := json.Unmarshal([]byte(line), &ctx); err != nil {
			fmt.Fprintf(os.Stderr, "invalid context: %v\n", err)
			if interactive {
				fmt.Print("> ")
			}
			continue
		}

		result, err := m.Dispatch(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "dispatch failed: %v\n", err)
			if interactive {
				fmt.Print("> ")
			}
			continue
		}

		if jsonMode {
			out, _ := json.Marshal(result)
			fmt.Println(string(out))
		} else {
			render(result)
		}
		if interactive {
			fmt.Print("> ")
		}
	}
	return scanner.Err()
}

// bookHandlers generates a handler per state from the book's phrasings.
// Entity values are copied into slots keyed by entity type before replying.
func bookHandlers(book *rulebook.Book) map[string]dialogue.HandlerFunc {
	handlers := make(map[string]dialogue.HandlerFunc, len(book.Defs))
	for _, def := range book.Defs {
		replies := def.Replies
		prompts := def.Prompts
		handlers[def.State] = func(ctx domain.Context, slots domain.Slots, r *dialogue.Responder) {
			for _, e := range ctx.Entities {
				slots[e.Type] = e.Value
			}
			if len(replies) > 0 {
				r.Reply(replies...)
			}
			if len(prompts) > 0 {
				r.Prompt(prompts...)
			}
		}
	}
	return handlers
}

// newActionRenderer returns a printer for dispatch results. On a terminal
// reply text is rendered as markdown and state names are colored.
func newActionRenderer(interactive bool) func(*dialogue.Result) {
	var markdown *glamour.TermRenderer
	if interactive {
		markdown, _ = glamour.NewTermRenderer(glamour.WithAutoStyle())
	}
	profile := termenv.ColorProfile()

	return func(result *dialogue.Result) {
		state := result.DialogueState
		if state == "" {
			state = "(default)"
		}
		if interactive {
			fmt.Println(termenv.String("state: " + state).Foreground(profile.Color("#818cf8")))
		} else {
			fmt.Println("state:", state)
		}

		for _, action := range result.ClientActions {
			if msg, ok := action.Payload.(domain.Message); ok {
				text := msg.Text
				if markdown != nil {
					if rendered, err := markdown.Render(text); err == nil {
						text = strings.TrimRight(rendered, "\n")
					}
				}
				fmt.Printf("%s: %s\n", action.Name, text)
				continue
			}
			payload, _ := json.Marshal(action.Payload)
			fmt.Printf("%s: %s\n", action.Name, payload)
		}
	}
}
