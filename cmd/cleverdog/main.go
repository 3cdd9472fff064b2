// cleverdog discovers a camera on the local network and streams its
// video toward a local media pipeline or a remote collector.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	app := &cli.App{
		Name:  "cleverdog",
		Usage: "discover and stream from cleverdog cameras",
		Commands: []*cli.Command{
			scanCommand(),
			streamCommand(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERR:", err)
		os.Exit(1)
	}
}
