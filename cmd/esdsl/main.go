// Command esdsl renders and sends Elasticsearch requests described in YAML
// files, and runs a local stub cluster.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
