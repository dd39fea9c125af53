package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"
)

func newSendCmd(flags *rootFlags) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "send -f request.yaml",
		Short: "Send a request file to the configured cluster",
		Example: `  esdsl send -f search.yaml
  ENV=dev esdsl send -f rank-eval.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rf, err := readRequestFile(file)
			if err != nil {
				return err
			}
			client, err := flags.newClient()
			if err != nil {
				return err
			}
			req, err := rf.build()
			if err != nil {
				return err
			}
			res, err := client.Do(cmd.Context(), req, rf.callOptions()...)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			writeBody(&buf, res.Body)
			if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
				return err
			}
			if res.IsError() {
				return fmt.Errorf("%s: status %d", req, res.StatusCode)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "request file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
