package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"sanjeevani/internal/orchestrator"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question and print the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.close()

		question := strings.Join(args, " ")
		resp := a.orch.Query(cmd.Context(), question, "", limit)
		printResponse(resp)
		return nil
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd)
	},
}

// runChat is a plain line-oriented REPL sharing one session across
// turns so follow-up questions can use pronouns.
func runChat(cmd *cobra.Command) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	sessionID := a.orch.Sessions().NewSessionID()
	fmt.Println("Sanjeevani chat. Ask about medicinal plants; 'exit' to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			return nil
		}

		resp := a.orch.Query(cmd.Context(), question, sessionID, limit)
		printResponse(resp)
	}
}

// printResponse renders the answer as Markdown when a terminal style
// is available, falling back to plain text.
func printResponse(resp orchestrator.Response) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err == nil {
		if out, rerr := renderer.Render(resp.Answer); rerr == nil {
			fmt.Print(out)
		} else {
			fmt.Println(resp.Answer)
		}
	} else {
		fmt.Println(resp.Answer)
	}

	if len(resp.Locations) > 0 {
		fmt.Printf("Locations: %s\n", strings.Join(resp.Locations, ", "))
	}
	if resp.ImageURL != "" {
		fmt.Printf("Image: %s\n", resp.ImageURL)
	}
	if verbose && len(resp.Plan) > 0 {
		fmt.Printf("Plan: %s\n", strings.Join(resp.Plan, " | "))
	}
}
