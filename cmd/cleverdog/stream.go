package main

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"cleverdog"
)

const retryPause = 1 * time.Second

type destination struct {
	scheme string // "udp" or "https"
	host   string
	port   string
}

func (d destination) hostport() string {
	return net.JoinHostPort(d.host, d.port)
}

func parseDestination(raw string) (destination, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return destination{}, err
	}

	switch u.Scheme {
	case "udp":
		if u.Port() == "" {
			return destination{}, fmt.Errorf("missing port in %q", raw)
		}
		return destination{scheme: "udp", host: u.Hostname(), port: u.Port()}, nil

	case "https":
		port := u.Port()
		if port == "" {
			port = "443"
		}
		return destination{scheme: "https", host: u.Hostname(), port: port}, nil

	default:
		return destination{}, fmt.Errorf("unsupported protocol %q", u.Scheme)
	}
}

func streamCommand() *cli.Command {
	return &cli.Command{
		Name:  "stream",
		Usage: "stream video from a camera",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "addr",
				Usage:    "destination address, udp://host:port or https://host[:port]",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "retries",
				Value: 10,
				Usage: "number of session attempts before giving up",
			},
			&cli.StringFlag{
				Name:  "broadcast",
				Usage: "discovery broadcast address",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Action: runStream,
	}
}

func runStream(c *cli.Context) error {
	logger, err := newLogger(c.Bool("debug"))
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	dest, err := parseDestination(c.String("addr"))
	if err != nil {
		return err
	}

	d := &cleverdog.Discoverer{
		BroadcastAddress: c.String("broadcast"),
		Log:              logger,
	}

	handle, err := d.Discover()
	if err != nil {
		return err
	}

	logger.Info("camera located",
		zap.Stringer("address", handle.Addr),
		zap.String("cid", handle.CIDString()),
		zap.Stringer("mac", handle.MAC),
		zap.Stringer("version", handle.Version))

	var sink func([]byte) error

	switch dest.scheme {
	case "udp":
		raddr, err2 := net.ResolveUDPAddr("udp", dest.hostport())
		if err2 != nil {
			return err2
		}

		pc, err2 := net.ListenUDP("udp", nil)
		if err2 != nil {
			return err2
		}
		defer pc.Close()

		sink = func(payload []byte) error {
			_, err3 := pc.WriteToUDP(payload, raddr)
			return err3
		}

	case "https":
		relay := &cleverdog.Relay{
			Address:   dest.hostport(),
			TLSConfig: &tls.Config{ServerName: dest.host},
			Log:       logger,
		}
		err = relay.Initialize()
		if err != nil {
			return err
		}
		defer relay.Close()

		sink = relay.OnPayload
	}

	retries := c.Int("retries")

	for i := 0; i < retries; i++ {
		sess := &cleverdog.Session{
			Handle:    handle,
			OnPayload: sink,
			Log:       logger,
		}

		err = sess.Initialize()
		if err != nil {
			return err
		}

		err = sess.Run()
		sess.Close()

		var rc cleverdog.ErrRelayClosed
		if errors.As(err, &rc) {
			return err
		}

		logger.Warn("streaming stopped", zap.Error(err))
		time.Sleep(retryPause)
	}

	return nil
}
