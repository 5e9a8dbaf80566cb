package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"rpcfailover/client"
)

var (
	flagBatchAPI    string
	flagParamsFile  string
	flagBatchWorker int

	batchCmd = &cobra.Command{
		Use:   "batch <method>",
		Short: "Fan one call out over many parameter sets",
		Long: `Run one method once per parameter set, concurrently. The parameter
sets are read as a JSON array (each element an argument array or a
single scalar) from --params or stdin. Results are printed as NDJSON
in completion order, each line pairing the result with its args.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := readParams(flagParamsFile)
			if err != nil {
				return err
			}

			c, logger, err := newClient()
			if err != nil {
				return err
			}
			defer c.Close()

			opts := []client.BatchOption{client.WithAPI(flagBatchAPI)}
			if flagBatchWorker > 0 {
				opts = append(opts, client.WithWorkers(flagBatchWorker))
			}

			failed, err := writeBatchResults(os.Stdout, c.ExecBatch(cmd.Context(), args[0], params, opts...))
			if err != nil {
				return err
			}

			if failed > 0 {
				logger.Warn().Int("failed", failed).Int("total", len(params)).Msg("batch finished with errors")
				return fmt.Errorf("%d of %d calls failed", failed, len(params))
			}
			return nil
		},
	}
)

func init() {
	batchCmd.Flags().StringVar(&flagBatchAPI, "api", "", "API namespace to dispatch through")
	batchCmd.Flags().StringVarP(&flagParamsFile, "params", "p", "-", `JSON array of parameter sets ("-" for stdin)`)
	batchCmd.Flags().IntVarP(&flagBatchWorker, "workers", "w", 0, "worker pool size override")
}

// writeBatchResults streams results as NDJSON lines. On a write error
// it keeps consuming the channel before returning so the batch workers
// behind it are not left blocked on their result sends.
func writeBatchResults(w io.Writer, results <-chan client.BatchResult) (failed int, err error) {
	enc := json.NewEncoder(w)
	for res := range results {
		line := map[string]interface{}{"args": res.Args}
		if res.Err != nil {
			line["error"] = res.Err.Error()
			failed++
		} else {
			line["result"] = res.Value
		}
		if encErr := enc.Encode(line); encErr != nil {
			for range results {
			}
			return failed, encErr
		}
	}
	return failed, nil
}

func readParams(path string) ([]interface{}, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read params: %w", err)
	}

	var params []interface{}
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("params must be a JSON array: %w", err)
	}
	return params, nil
}
