// Copyright 2026 cinerec Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cinerec/cinerec/base/log"
	"github.com/cinerec/cinerec/engine"
	"github.com/juju/errors"
	"github.com/spf13/cobra"
)

const shellHelp = `commands:
  similar <title>       movies similar to a title
  similar-id <id>       movies similar to a movie identifier
  recommend <user-id>   movies recommended to a user
  movies [offset] [n]   list titles of the catalog
  n <count>             set the number of results
  help                  show this message
  exit                  leave the shell`

var shellCommand = &cobra.Command{
	Use:   "shell",
	Short: "Query both recommenders interactively.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		e, err := buildEngine(context.Background(), cfg)
		if err != nil {
			return errors.Trace(err)
		}
		// keep logs out of the prompt
		log.CloseLogger()
		return runShell(e, os.Stdin, os.Stdout)
	},
}

// runShell reads one command per line until exit or end of input. Query errors are
// printed and the loop goes on.
func runShell(e *engine.Engine, in io.Reader, out io.Writer) error {
	n := e.Config.Content.NumSimilar
	fmt.Fprintf(out, "%d movies, %d rated movies\n%s\n", e.Content.Count(), e.Collaborative.CountItems(), shellHelp)
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return errors.Trace(scanner.Err())
		}
		command, argument, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		argument = strings.TrimSpace(argument)
		var err error
		switch command {
		case "":
		case "exit", "quit":
			return nil
		case "help":
			fmt.Fprintln(out, shellHelp)
		case "n":
			var value int
			if value, err = strconv.Atoi(argument); err == nil && value < 0 {
				err = errors.NotValidf("negative count %d", value)
			}
			if err == nil {
				n = value
			}
		case "similar", "similar-id":
			if argument == "" {
				err = errors.NotValidf("missing movie")
				break
			}
			if command == "similar" {
				movies, queryErr := e.Content.SimilarTo(argument, n)
				if err = queryErr; err == nil {
					err = renderSimilar(out, "table", movies)
				}
			} else {
				movies, queryErr := e.Content.SimilarToId(argument, n)
				if err = queryErr; err == nil {
					err = renderSimilar(out, "table", movies)
				}
			}
		case "recommend":
			var userId int64
			if userId, err = strconv.ParseInt(argument, 10, 64); err != nil {
				break
			}
			recommendations, queryErr := e.Collaborative.RecommendForUser(userId, n)
			if err = queryErr; err == nil {
				err = renderRecommendations(out, "table", recommendations)
			}
		case "movies":
			offset, count := 0, n
			fields := strings.Fields(argument)
			if len(fields) > 0 {
				offset, err = strconv.Atoi(fields[0])
			}
			if len(fields) > 1 && err == nil {
				count, err = strconv.Atoi(fields[1])
			}
			if err == nil {
				offset = max(offset, 0)
				for i, title := range e.Content.Titles(offset, count) {
					fmt.Fprintf(out, "%6d  %s\n", offset+i, title)
				}
			}
		default:
			err = errors.NotSupportedf("command %q", command)
		}
		if err != nil {
			fmt.Fprintln(out, "error:", err)
		}
	}
}
