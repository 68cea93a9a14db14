// plume produces and verifies deterministic nullifier signatures: anonymous
// proofs of key ownership that can only be redeemed once per message.
package main

import (
	"fmt"
	"os"

	plume "github.com/leopardracer/zk-nullifier-sig/internal/plume-cli"
)

func main() {
	app := plume.CLI()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "plume: %s\n", err)
		os.Exit(1)
	}
}
