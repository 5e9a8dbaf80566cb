package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	flagAPI string

	callCmd = &cobra.Command{
		Use:   "call <method> [args...]",
		Short: "Issue a single JSON-RPC call",
		Long: `Issue one JSON-RPC call. Each arg is parsed as JSON; args that do
not parse are sent as plain strings, so both '42' and 'alice' work.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}
			defer c.Close()

			method := args[0]
			callArgs := parseArgs(args[1:])

			result, err := c.ExecAPI(cmd.Context(), flagAPI, method, callArgs...)
			if err != nil {
				return err
			}

			fmt.Println(string(result))
			return nil
		},
	}
)

func init() {
	callCmd.Flags().StringVar(&flagAPI, "api", "", "API namespace to dispatch through")
}

// parseArgs interprets each command line arg as JSON, falling back to
// a plain string.
func parseArgs(raw []string) []interface{} {
	args := make([]interface{}, 0, len(raw))
	for _, r := range raw {
		var v interface{}
		if err := json.Unmarshal([]byte(r), &v); err != nil {
			v = r
		}
		args = append(args, v)
	}
	return args
}
