package main

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/esdsl"
	"github.com/kailas-cloud/esdsl/internal/pipeline"
)

func newRenderCmd(flags *rootFlags) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "render -f request.yaml",
		Short: "Print the HTTP request a request file assembles to",
		Example: `  esdsl render -f search.yaml
  esdsl render -c config/dev.yaml -f bulk-delete.yaml`,
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
			tr, err := client.Render(req, rf.callOptions()...)
			if err != nil {
				return err
			}
			return writeTransportRequest(cmd.OutOrStdout(), tr)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "request file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (f *rootFlags) newClient() (*esdsl.Client, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := f.logger("cli", cfg)
	if err != nil {
		return nil, err
	}
	return esdsl.New(clientOptions(cfg, logger)...)
}

// writeTransportRequest prints the request line, sorted headers and the
// indented body.
func writeTransportRequest(w io.Writer, tr *pipeline.TransportRequest) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s %s\n", tr.Method(), tr.URL())

	h := tr.Headers()
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range h[k] {
			fmt.Fprintf(&buf, "%s: %s\n", k, v)
		}
	}

	if tr.HasBody() {
		buf.WriteByte('\n')
		writeBody(&buf, tr.Body())
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// writeBody indents JSON bodies and copies anything else (NDJSON) as is.
func writeBody(buf *bytes.Buffer, body []byte) {
	var out bytes.Buffer
	if err := json.Indent(&out, body, "", "  "); err != nil {
		buf.Write(body)
		if len(body) > 0 && body[len(body)-1] != '\n' {
			buf.WriteByte('\n')
		}
		return
	}
	buf.Write(out.Bytes())
	buf.WriteByte('\n')
}
