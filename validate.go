package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/sokoban/game/levels"
)

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate level files (defaults to every .txt file in --levels-dir)",
		ArgsUsage: "[files...]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				var err error
				files, err = filepath.Glob(filepath.Join(cmd.String("levels-dir"), "*.txt"))
				if err != nil {
					return fmt.Errorf("error finding level files: %w", err)
				}
			}
			if !validateFiles(cmd.Root().Writer, files) {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

// validateFiles prints a report for each file and returns true when every
// file is a playable level
func validateFiles(w io.Writer, files []string) bool {
	if len(files) == 0 {
		fmt.Fprintln(w, "No level files found")
		return false
	}

	allValid := true
	for _, file := range files {
		result := levels.ValidateFile(file)

		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Messages {
				fmt.Fprintln(w, "  "+info)
			}
		} else {
			fmt.Fprintln(w, "❌ INVALID")
			allValid = false
			for _, msg := range result.Messages {
				fmt.Fprintln(w, "  ❌ "+msg)
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All levels are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some levels have errors")
	}
	return allValid
}
