package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/parley/pkg/dialogue"
	"github.com/aretw0/parley/pkg/rulebook"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a rule book for consistency",
	Long:  `Parses the rule book, validates every rule specification, and prints the resulting evaluation order.`,
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("book")
		if len(args) > 0 {
			path = args[0]
		}
		if err := runValidate(path); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Rule book is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(path string) error {
	book, err := rulebook.LoadFile(path)
	if err != nil {
		return err
	}
	if err := book.Validate(); err != nil {
		return err
	}

	// Register on a scratch manager to show the order dispatch will try.
	m := dialogue.NewManager()
	for _, def := range book.Defs {
		spec, err := def.Spec()
		if err != nil {
			return err
		}
		if err := m.Register(def.State, nil, spec); err != nil {
			return err
		}
	}

	fmt.Printf("Evaluation order (%d rules, ascending specificity):\n", len(book.Defs))
	for i, rule := range m.Rules() {
		fmt.Printf("  %2d. %-24s specificity=%d\n", i+1, rule.State(), rule.Specificity())
	}
	return nil
}
