package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/Pranoschal/BookVerse/internal/assistant"
)

func toolCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tool",
		Usage: "Invoke an assistant tool by name, or list the tool schemas",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{Name: "args", Usage: "Tool arguments as a JSON object", Value: "{}"},
			&cli.BoolFlag{Name: "schemas", Usage: "Print the tool schemas and exit"},
		},
		Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			r.reload(cmd)
			ctx, cancel := context.WithTimeout(ctx, commandTimeout)
			defer cancel()

			s, err := r.openSession(ctx)
			if err != nil {
				return fmt.Errorf("load library: %w", err)
			}
			defer s.close()

			toolbox := assistant.NewToolbox(s.svc, r.gateway())

			if cmd.Bool("schemas") {
				enc := json.NewEncoder(r.output)
				enc.SetIndent("", "  ")
				return enc.Encode(toolbox.Tools())
			}

			name := strings.TrimSpace(cmd.StringArg("name"))
			if name == "" {
				return fmt.Errorf("usage: bookverse tool <name> --args '{...}'")
			}

			var args assistant.Args
			if err := json.Unmarshal([]byte(cmd.String("args")), &args); err != nil {
				return fmt.Errorf("parse --args: %w", err)
			}

			text, err := toolbox.Invoke(ctx, name, args)
			if err != nil {
				return err
			}

			// Mutating tools change the store; persist the result like any
			// other command.
			switch name {
			case "addBook", "editBook", "deleteBook":
				if err := r.persist(ctx, s); err != nil {
					return fmt.Errorf("save library: %w", err)
				}
			}

			fmt.Fprintln(r.output, text)
			return nil
		},
	}
}
