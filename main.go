package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/linesmerrill/justice-case-api/api/handlers"
	"github.com/linesmerrill/justice-case-api/api/scheduler"
	"github.com/linesmerrill/justice-case-api/config"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	conf := config.New()
	defer zap.L().Sync()

	flagSet := pflag.NewFlagSet("justice-case-api", pflag.ContinueOnError)
	conf.AddFlags(flagSet)
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return err
	}
	if err := conf.Validate(); err != nil {
		return err
	}

	a := handlers.App{Config: *conf}
	if err := a.Initialize(); err != nil { //initialize store, policy and router
		return err
	}

	s := scheduler.NewScheduler(a.Service, conf.ExpiryScanCron, a.Metrics.SetExpiring, a.Hub.ReportExpiring)
	if err := s.Start(); err != nil {
		return err
	}
	defer s.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%v", conf.Port),
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() { errs <- srv.ListenAndServe() }()
	zap.S().Infow("justice-case-api is up and running",
		"port", conf.Port,
		"url", conf.BaseURL,
		"store", conf.StoreDriver,
	)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errs:
		return err
	case sig := <-stop:
		zap.S().Infow("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	return a.Close(ctx)
}
