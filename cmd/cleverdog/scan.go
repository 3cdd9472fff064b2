package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"cleverdog"
)

func scanCommand() *cli.Command {
	return &cli.Command{
		Name:  "scan",
		Usage: "scan the local network for a camera",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "broadcast",
				Usage: "discovery broadcast address",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: time.Second,
				Usage: "amount of time to wait for a reply",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Action: runScan,
	}
}

func runScan(c *cli.Context) error {
	logger, err := newLogger(c.Bool("debug"))
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	d := &cleverdog.Discoverer{
		BroadcastAddress: c.String("broadcast"),
		ReadTimeout:      c.Duration("timeout"),
		Log:              logger,
	}

	handle, err := d.Discover()
	if err != nil {
		return err
	}

	fmt.Println("Address:", handle.Addr)
	fmt.Println("CID:    ", handle.CIDString())
	fmt.Println("MAC:    ", handle.MAC)
	fmt.Println("Version:", handle.Version)
	return nil
}
