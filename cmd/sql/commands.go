package sql

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/scribedb/scribe/rpc/client"
	"github.com/scribedb/scribe/rpc/common"
	"github.com/spf13/cobra"
)

var (
	execCmd = &cobra.Command{
		Use:   "exec [sql] [params...]",
		Short: "Executes a single statement",
		Long:  `Executes a single SQL statement with positional parameters. Parameters are parsed as JSON values where possible (numbers, booleans, null) and as text otherwise.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := make([]any, len(args)-1)
			for i, arg := range args[1:] {
				params[i] = parseParam(arg)
			}

			res, err := rpcClient.Exec(common.NewStatement(args[0], params...))
			if err != nil {
				return err
			}
			printResult(res)
			return nil
		},
	}

	batchCmd = &cobra.Command{
		Use:   "batch [sql]...",
		Short: "Executes a batch of statements",
		Long:  `Executes several SQL statements as one batch. In atomic mode (the default) the batch either applies completely or not at all; with --per-statement each statement commits on its own and execution halts at the first failure.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stmts := make([]common.Statement, len(args))
			for i, arg := range args {
				stmts[i] = common.NewStatement(arg)
			}

			mode := common.ModeAtomic
			if perStatement, _ := cmd.Flags().GetBool("per-statement"); perStatement {
				mode = common.ModePerStatement
			}

			res, err := rpcClient.ExecBatch(stmts, mode)
			if err != nil {
				return err
			}
			printResult(res)
			return nil
		},
	}
)

func init() {
	batchCmd.Flags().Bool("per-statement", false, "commit each statement independently")
}

// parseParam interprets a command line argument as a JSON scalar where
// possible, so numbers stay numbers on the wire. Everything else is text.
func parseParam(arg string) any {
	dec := json.NewDecoder(strings.NewReader(arg))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return arg
	}
	switch v.(type) {
	case json.Number, bool, nil:
		return v
	default:
		return arg
	}
}

// printResult renders a batch result: a tab-separated table for queries,
// a status line for plain writes.
func printResult(res *client.Result) {
	if len(res.Columns) > 0 {
		fmt.Println(strings.Join(res.Columns, "\t"))
		for _, row := range res.Rows {
			cells := make([]string, len(row))
			for i, v := range row {
				if v == nil {
					cells[i] = "NULL"
				} else {
					cells[i] = fmt.Sprint(v)
				}
			}
			fmt.Println(strings.Join(cells, "\t"))
		}
		return
	}
	fmt.Printf("ok (statements: %d, rows affected: %d, rev: %d)\n",
		res.Succeeded, res.RowsAffected, res.Rev)
}
