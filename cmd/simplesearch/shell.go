package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/nainya/simplesearch/pkg/query"
)

const shellHelp = `Enter a search to explain it:
  go "error handling"          free-text query
  q=go&df=01/01/2020&status=x  full query string
Commands:
  :dialect sqlite|postgres     switch SQL dialect
  :help                        show this help
  :quit                        leave the shell`

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".simplesearch_history")
}

func shellCmd() *cobra.Command {
	var flags translatorFlags
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactively explain searches",
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := flags.translator(cmd.Context())
			if err != nil {
				return err
			}
			dialect, err := flags.sqlDialect()
			if err != nil {
				return err
			}
			queryParam := tr.Config().QueryParam
			out := cmd.OutOrStdout()

			line := liner.NewLiner()
			defer line.Close()
			line.SetCtrlCAborts(true)

			hist := historyPath()
			if hist != "" {
				if f, err := os.Open(hist); err == nil {
					line.ReadHistory(f)
					f.Close()
				}
				defer func() {
					if f, err := os.Create(hist); err == nil {
						line.WriteHistory(f)
						f.Close()
					}
				}()
			}

			fmt.Fprintln(out, "simplesearch shell, :help for usage")
			for {
				input, err := line.Prompt("search> ")
				if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
					fmt.Fprintln(out)
					return nil
				}
				if err != nil {
					return err
				}

				input = strings.TrimSpace(input)
				if input == "" {
					continue
				}
				line.AppendHistory(input)

				switch {
				case input == ":quit" || input == ":q":
					return nil
				case input == ":help":
					fmt.Fprintln(out, shellHelp)
					continue
				case strings.HasPrefix(input, ":dialect"):
					name := strings.TrimSpace(strings.TrimPrefix(input, ":dialect"))
					switch name {
					case query.SQLite.Name:
						dialect = query.SQLite
					case query.Postgres.Name:
						dialect = query.Postgres
					default:
						fmt.Fprintf(out, "unknown dialect %q\n", name)
					}
					continue
				case strings.HasPrefix(input, ":"):
					fmt.Fprintf(out, "unknown command %s\n", input)
					continue
				}

				params, err := parseParams(input, queryParam)
				if err != nil {
					fmt.Fprintf(out, "error: %v\n", err)
					continue
				}
				if err := explain(out, tr, params, dialect); err != nil {
					fmt.Fprintf(out, "error: %v\n", err)
				}
			}
		},
	}
	flags.register(cmd)
	return cmd
}
