// rtpproxy terminates relay connections and re-emits each payload as a
// UDP datagram for consumption by a local media pipeline.
package main

import (
	"fmt"
	"net"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"cleverdog"
	"cleverdog/pkg/sdpgen"
)

func run(c *cli.Context) error {
	var logger *zap.Logger
	var err error
	if c.Bool("debug") {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	target := c.String("target")

	if path := c.String("sdp"); path != "" {
		addr, err2 := net.ResolveUDPAddr("udp", target)
		if err2 != nil {
			return err2
		}

		byts, err2 := sdpgen.Generate(addr)
		if err2 != nil {
			return err2
		}

		err2 = os.WriteFile(path, byts, 0o644)
		if err2 != nil {
			return err2
		}

		logger.Info("SDP document written", zap.String("path", path))
	}

	p := &cleverdog.Proxy{
		ListenAddress:  c.String("addr"),
		ForwardAddress: target,
		Log:            logger,
	}

	err = p.Initialize()
	if err != nil {
		return err
	}

	logger.Info("listening",
		zap.Stringer("address", p.Addr()),
		zap.String("target", target))

	p.Wait()
	return nil
}

func main() {
	app := &cli.App{
		Name:  "rtpproxy",
		Usage: "re-emit relayed camera payloads as UDP datagrams",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "addr",
				Usage:    "network address to listen on",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "target",
				Value: "127.0.0.1:8088",
				Usage: "UDP address decoded payloads are forwarded to",
			},
			&cli.StringFlag{
				Name:  "sdp",
				Usage: "write an SDP document describing the forwarded stream to this path",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Action: run,
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERR:", err)
		os.Exit(1)
	}
}
