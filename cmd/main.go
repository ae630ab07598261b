// Command sockctl is a small demo binary for the sockets library: an echo
// server and a load-generating client.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mgerhold/sockets"
)

// zerologAdapter satisfies sockets.Logger.
type zerologAdapter struct {
	l zerolog.Logger
}

func (a *zerologAdapter) Debugf(format string, v ...any) { a.l.Debug().Msgf(format, v...) }
func (a *zerologAdapter) Infof(format string, v ...any)  { a.l.Info().Msgf(format, v...) }
func (a *zerologAdapter) Warnf(format string, v ...any)  { a.l.Warn().Msgf(format, v...) }
func (a *zerologAdapter) Errorf(format string, v ...any) { a.l.Error().Msgf(format, v...) }

func main() {
	logger := &zerologAdapter{
		l: zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger(),
	}

	var port uint16
	var host string

	root := &cobra.Command{
		Use:           "sockctl",
		Short:         "demo server and client for the sockets library",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Uint16Var(&port, "port", 3456, "TCP port")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "run an echo server",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServer(logger, port)
		},
	}

	var requests int
	var workers int
	send := &cobra.Command{
		Use:   "send",
		Short: "flood an echo server with requests",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runClient(logger, host, port, requests, workers)
		},
	}
	send.Flags().StringVar(&host, "host", "localhost", "server host")
	send.Flags().IntVar(&requests, "requests", 10000, "number of requests")
	send.Flags().IntVar(&workers, "workers", 2, "concurrent senders")

	root.AddCommand(serve, send)

	if err := root.Execute(); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

func runServer(logger *zerologAdapter, port uint16) error {
	srv, err := sockets.NewServer(sockets.FamilyIPv4, port, func(client *sockets.Client) {
		logger.Infof("accepted %s", client.RemoteAddress())
		go echo(logger, client)
	}, &sockets.ServerConfig{Logger: logger})
	if err != nil {
		return err
	}
	defer srv.Stop()

	logger.Infof("listening on %s", srv.LocalAddress())
	select {}
}

func echo(logger *zerologAdapter, client *sockets.Client) {
	defer client.Close()

	for client.IsConnected() {
		fut, err := client.ReceiveTimeout(4096, time.Minute)
		if err != nil {
			logger.Errorf("receive: %v", err)
			return
		}

		data, err := fut.Await()
		if err != nil || len(data) == 0 {
			return
		}

		reply, err := client.Send(data)
		if err != nil {
			return
		}
		if _, err := reply.Await(); err != nil {
			return
		}
	}
}

func runClient(logger *zerologAdapter, host string, port uint16, requests, workers int) error {
	client, err := sockets.Dial(sockets.FamilyIPv4, host, port)
	if err != nil {
		return err
	}
	defer client.Close()

	logger.Infof("connected to %s", client.RemoteAddress())

	start := time.Now()
	eg := errgroup.Group{}
	eg.SetLimit(workers)

	for i := 0; i < requests; i++ {
		i := i
		eg.Go(func() error {
			fut, err := client.SendString(fmt.Sprintf("hello_%d", i))
			if err != nil {
				return err
			}
			if _, err := fut.Await(); err != nil {
				return err
			}

			resp, err := client.ReceiveTimeout(4096, 5*time.Second)
			if err != nil {
				return err
			}
			data, err := resp.Await()
			if err != nil {
				return err
			}

			logger.Debugf("response: %s", data)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}

	logger.Infof("%d requests in %v", requests, time.Since(start))
	return nil
}
