package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"restfulwebclient/pkg/config"
	"restfulwebclient/pkg/logger"
	"restfulwebclient/pkg/webclient"

	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "sample failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	head := flag.Bool("head", false, "also issue a HEAD against the same URL")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if url := flag.Arg(0); url != "" {
		cfg.SampleURL = url
	}

	log := logger.New(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := webclient.New(cfg, webclient.WithLogger(log))
	if err != nil {
		return fmt.Errorf("init client: %w", err)
	}
	defer client.Close()

	calls := []*webclient.Call{client.Get(ctx, cfg.SampleURL, onComplete(log, "GET"))}
	if *head {
		calls = append(calls, client.Head(ctx, cfg.SampleURL, onComplete(log, "HEAD")))
	}
	for _, call := range calls {
		call.Wait()
	}
	return nil
}

func onComplete(log *zap.Logger, verb string) webclient.Callback {
	return func(resp webclient.Response) {
		log.Info("sample request finished",
			zap.String("verb", verb),
			zap.Stringer("outcome", resp.Outcome),
			zap.Int("status_code", resp.StatusCode),
			zap.String("data", resp.Body()),
			zap.String("error", resp.ErrorText()),
			zap.Any("headers", resp.Headers),
		)
	}
}
