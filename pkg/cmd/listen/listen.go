package listen

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	otlpruntime "go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/mpapenbr/accbroadcast-go/log"
	"github.com/mpapenbr/accbroadcast-go/pkg/cmd/util"
	"github.com/mpapenbr/accbroadcast-go/pkg/config"
	"github.com/mpapenbr/accbroadcast-go/pkg/model"
	"github.com/mpapenbr/accbroadcast-go/pkg/protocol"
	"github.com/mpapenbr/accbroadcast-go/pkg/recording"
	"github.com/mpapenbr/accbroadcast-go/pkg/session"
	"github.com/mpapenbr/accbroadcast-go/pkg/transport/udp"
)

//nolint:funlen // by design
func NewListenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "connects to the broadcasting interface and processes the session data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startListen()
		},
	}
	cmd.Flags().StringVarP(&config.Addr,
		"addr",
		"a",
		"127.0.0.1:9000",
		"address of the broadcasting interface")
	cmd.Flags().StringVar(&config.DisplayName,
		"display-name",
		"accb",
		"name announced to the server")
	cmd.Flags().StringVarP(&config.Password,
		"password",
		"p",
		"",
		"connection password")
	cmd.Flags().StringVar(&config.CommandPassword,
		"command-password",
		"",
		"password for read-write access")
	cmd.Flags().StringVar(&config.UpdateInterval,
		"update-interval",
		"250ms",
		"interval of realtime updates")
	cmd.Flags().StringVar(&config.EntryListRefresh,
		"entry-list-refresh",
		"1s",
		"min duration between entry list requests for unknown cars (0 disables)")
	cmd.Flags().StringVar(&config.NatsURL,
		"nats-url",
		"",
		"publish events to this NATS server")
	cmd.Flags().StringVar(&config.Record,
		"record",
		"",
		"write received datagrams to this file")
	cmd.Flags().StringVar(&config.Output,
		"output",
		"log",
		"event output (log, json, none)")
	util.AddLogFlags(cmd)
	return cmd
}

//nolint:funlen,cyclop // by design
func startListen() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger := util.SetupLogger(ctx)

	if telemetry := util.SetupTelemetry(ctx); telemetry != nil {
		defer telemetry.Shutdown()
		err := otlpruntime.Start(otlpruntime.WithMinimumReadMemStatsInterval(time.Second))
		if err != nil {
			log.Warn("Could not start runtime metrics", log.ErrorField(err))
		}
	}
	if err := util.WaitForRequiredServices(ctx); err != nil {
		log.Error("required services not ready", log.ErrorField(err))
		return err
	}

	client, err := udp.Dial(ctx, config.Addr, udp.WithLogger(logger.Named("udp")))
	if err != nil {
		log.Error("could not open udp socket", log.ErrorField(err))
		return err
	}
	defer client.Close()

	var recorder *recording.Recorder
	if config.Record != "" {
		if recorder, err = recording.Create(config.Record); err != nil {
			log.Error("could not create recording", log.ErrorField(err))
			return err
		}
		log.Info("Recording datagrams", log.String("file", config.Record))
	}

	pipeline := util.NewPipeline(ctx)
	sinks, err := util.SetupSinks(ctx, pipeline, config.Addr)
	if err != nil {
		pipeline.Close()
		if recorder != nil {
			recorder.Close()
		}
		log.Error("could not setup event sinks", log.ErrorField(err))
		return err
	}

	updateInterval := util.ParseDuration(config.UpdateInterval, 250*time.Millisecond)
	rejected := make(chan struct{})
	var rejectOnce sync.Once
	ctrl := session.New(client,
		protocol.ConnectionParams{
			DisplayName:      config.DisplayName,
			Password:         config.Password,
			CommandPassword:  config.CommandPassword,
			UpdateIntervalMS: uint32(updateInterval.Milliseconds()),
		},
		session.WithLogger(logger.Named("session")),
		session.WithListener(pipeline.Listener()),
		session.WithListener(session.EventFunc(func(ev model.Event) {
			if res, ok := ev.(*model.RegistrationResult); ok && !res.ConnectionSuccess {
				rejectOnce.Do(func() { close(rejected) })
			}
		})),
		session.WithEntryListRefresh(util.ParseDuration(config.EntryListRefresh, time.Second)),
	)

	readCtx, stopReading := context.WithCancel(ctx)
	readDone := make(chan error, 1)
	go func() {
		readDone <- client.Run(readCtx, func(data []byte) {
			if recorder != nil {
				if err := recorder.Record(data); err != nil {
					log.Warn("could not record datagram", log.ErrorField(err))
				}
			}
			//nolint:errcheck // failures are logged and counted by the controller
			ctrl.HandleDatagram(data)
		})
	}()

	log.Info("Connecting", log.String("addr", config.Addr))
	if err = ctrl.Connect(); err != nil {
		log.Error("could not connect", log.ErrorField(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	readStopped := false
	if err == nil {
		select {
		case v := <-sigChan:
			log.Debug("Got signal", log.Any("signal", v))
			if err := ctrl.Disconnect(); err != nil && !errors.Is(err, session.ErrNotConnected) {
				log.Warn("disconnect failed", log.ErrorField(err))
			}
		case <-rejected:
			err = errors.New("registration rejected")
		case err = <-readDone:
			readStopped = true
			log.Error("receiving stopped", log.ErrorField(err))
		}
	}

	stopReading()
	client.Close()
	if !readStopped {
		if readErr := <-readDone; readErr != nil && err == nil {
			err = readErr
		}
	}
	if recorder != nil {
		log.Info("Recording closed",
			log.String("file", config.Record),
			log.Int("frames", recorder.Frames()))
		err = errors.Join(err, recorder.Close())
	}
	err = errors.Join(err, pipeline.Close(), sinks.Close())
	log.Info("Listener terminated")
	return err
}
