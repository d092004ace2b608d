package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/sokoban/game/engine"
	"github.com/wricardo/mcp-training/sokoban/game/levels"
)

func playCommand() *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "Play a level in the terminal (w/a/s/d or up/down/left/right, r to restart, n for next, q to quit)",
		ArgsUsage: "[level]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			manager, err := levels.NewManager(cmd.String("levels-dir"), newLogger(cmd.Bool("debug")))
			if err != nil {
				return err
			}
			levelID := cmd.Args().First()
			if levelID == "" {
				if levelID, err = manager.First(); err != nil {
					return err
				}
			}
			return play(ctx, manager, levelID, cmd.Root().Reader, cmd.Root().Writer)
		},
	}
}

// levelSource is the part of the level catalogue the terminal game needs
type levelSource interface {
	Load(id string) (*engine.Grid, error)
	Next(id string) (string, bool)
}

// play runs the terminal loop until input ends, the player quits or the
// last level is solved
func play(ctx context.Context, catalogue levelSource, levelID string, in io.Reader, out io.Writer) error {
	grid, err := catalogue.Load(levelID)
	if err != nil {
		return err
	}
	level := engine.NewLevel(grid)
	render(out, levelID, level)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		for _, token := range strings.Fields(scanner.Text()) {
			switch strings.ToLower(token) {
			case "q", "quit", "exit":
				fmt.Fprintln(out, "Bye!")
				return nil

			case "r", "restart":
				if grid, err = catalogue.Load(levelID); err != nil {
					return err
				}
				level = engine.NewLevel(grid)
				fmt.Fprintln(out, "Level restarted.")

			case "n", "next":
				if level.Status() != engine.StatusWon {
					fmt.Fprintln(out, "Solve the level first.")
					continue
				}
				next, ok := catalogue.Next(levelID)
				if !ok {
					fmt.Fprintln(out, "That was the last level. Well done!")
					return nil
				}
				if grid, err = catalogue.Load(next); err != nil {
					return err
				}
				levelID, level = next, engine.NewLevel(grid)

			default:
				if err := applyMoves(level, token); err != nil {
					fmt.Fprintln(out, err)
				}
			}
		}

		render(out, levelID, level)
	}
	return scanner.Err()
}

// applyMoves accepts a direction word or a run of w/a/s/d keys
func applyMoves(level *engine.Level, token string) error {
	if d, err := engine.ParseDirection(token); err == nil {
		level.MakeMove(d)
		return nil
	}

	dirs := make([]engine.Direction, 0, len(token))
	for _, key := range token {
		d, err := engine.ParseDirection(string(key))
		if err != nil {
			return fmt.Errorf("unknown command %q", token)
		}
		dirs = append(dirs, d)
	}
	for _, d := range dirs {
		if level.Status() != engine.StatusPlaying {
			break
		}
		level.MakeMove(d)
	}
	return nil
}

func render(out io.Writer, levelID string, level *engine.Level) {
	g := level.Grid()
	fmt.Fprintf(out, "\n%s | moves: %d | crates placed: %d/%d\n",
		levelID, level.PushCount(), engine.CratesPlaced(g), len(g.Destinations()))
	fmt.Fprintln(out, g.String())

	switch level.Status() {
	case engine.StatusWon:
		fmt.Fprintln(out, "Solved! Type n for the next level.")
	case engine.StatusDeadlocked:
		fmt.Fprintln(out, "Deadlocked. Type r to restart.")
	}
}
