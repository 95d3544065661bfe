package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"docustream.dev/docustream/config"
	"docustream.dev/docustream/convert"
	"docustream.dev/docustream/intake"
	"docustream.dev/docustream/logging"
	"docustream.dev/docustream/render"
	"docustream.dev/docustream/rpc"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr, nil); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run serves until ctx is done. When ready is non-nil it receives the bound
// listen address once the server accepts connections.
func run(ctx context.Context, args []string, errOut io.Writer, ready chan<- string) error {
	fs := flag.NewFlagSet("docustreamd", flag.ContinueOnError)
	fs.SetOutput(errOut)
	configPath := fs.String("config", "", "YAML config file")
	listen := fs.String("listen", "", "listen address (overrides config)")
	logLevel := fs.String("log-level", "", "log level (overrides config)")
	soffice := fs.String("soffice", "", "LibreOffice binary; enables Convert (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Defaults()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadFile(*configPath); err != nil {
			return err
		}
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *soffice != "" {
		cfg.Converter.Binary = *soffice
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	srv := &rpc.Server{
		Pipeline:  render.New(cfg.AcceptedExtension),
		Limits:    intake.Limits{MaxStreams: cfg.MaxStreams, MaxBytes: cfg.MaxBytes},
		ChunkSize: cfg.ChunkSize,
		Logger:    logger,
	}
	if cfg.Converter.Binary != "" {
		srv.Converter = &convert.LibreOffice{
			Binary:     cfg.Converter.Binary,
			ScratchDir: cfg.ScratchDir,
			Timeout:    cfg.Converter.Timeout,
			Logger:     logger,
		}
	}

	lis, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return err
	}
	s, hs := rpc.NewGRPCServer(srv, cfg.MaxMsgBytes)

	logger.Info("docustreamd listening",
		zap.String("addr", lis.Addr().String()),
		zap.String("accepted_extension", srv.Pipeline.Validator.Accepted),
		zap.Bool("convert", srv.Converter != nil))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Serve(lis)
	})
	g.Go(func() error {
		<-gctx.Done()
		hs.Shutdown()
		logger.Info("docustreamd stopping")
		s.GracefulStop()
		return nil
	})
	if ready != nil {
		ready <- lis.Addr().String()
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
