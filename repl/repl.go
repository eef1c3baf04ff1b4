package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/flarexio/mongovec"
)

const Prompt = "Query (type 'exit' to quit): "

type Searcher interface {
	Search(ctx context.Context, query string, k ...int) ([]mongovec.SearchResult, error)
}

// Run reads one query per line and prints ranked results until exit, quit
// or end of input. A failed search ends the loop with its error.
func Run(ctx context.Context, svc Searcher, in io.Reader, out io.Writer, k int) error {
	reader := bufio.NewReader(in)

	for {
		fmt.Fprint(out, Prompt)

		// lines have no length limit; a final line without newline still counts
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(out)

			if errors.Is(err, io.EOF) {
				return nil
			}

			return err
		}

		query := strings.TrimSpace(line)
		if query == "" {
			continue
		}

		switch strings.ToLower(query) {
		case "exit", "quit":
			return nil
		}

		results, err := svc.Search(ctx, query, k)
		if err != nil {
			return err
		}

		PrintResults(out, results)
	}
}

func PrintResults(out io.Writer, results []mongovec.SearchResult) {
	if len(results) == 0 {
		fmt.Fprint(out, "No results found\n\n")
		return
	}

	fmt.Fprint(out, "\nResults:\n\n")
	for i, res := range results {
		fmt.Fprintf(out, "%d. Score: %.4f\n", i+1, res.Score)
		fmt.Fprintf(out, "   Text: %s\n\n", res.Text)
	}
}
