// Command rawproto decodes protobuf payloads without a schema, optionally
// naming fields from .proto files or descriptor sets.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
