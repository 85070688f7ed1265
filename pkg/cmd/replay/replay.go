package replay

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/accbroadcast-go/log"
	"github.com/mpapenbr/accbroadcast-go/pkg/cmd/util"
	"github.com/mpapenbr/accbroadcast-go/pkg/config"
	"github.com/mpapenbr/accbroadcast-go/pkg/protocol"
	"github.com/mpapenbr/accbroadcast-go/pkg/recording"
	"github.com/mpapenbr/accbroadcast-go/pkg/session"
)

func NewReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <file>",
		Short: "processes a recording as if received from the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return startReplay(args[0])
		},
	}
	cmd.Flags().Float64Var(&config.Speed, "speed", 0,
		"Replay speed (0 means: go as fast as possible)")
	cmd.Flags().StringVar(&config.Output,
		"output",
		"log",
		"event output (log, json, none)")
	cmd.Flags().StringVar(&config.NatsURL,
		"nats-url",
		"",
		"publish events to this NATS server")
	util.AddLogFlags(cmd)
	return cmd
}

func startReplay(file string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	logger := util.SetupLogger(ctx)
	if telemetry := util.SetupTelemetry(ctx); telemetry != nil {
		defer telemetry.Shutdown()
	}

	frames, err := recording.ReadFile(file)
	if err != nil && len(frames) == 0 {
		log.Error("could not read recording", log.String("file", file), log.ErrorField(err))
		return err
	}
	if err != nil {
		log.Warn("recording is truncated", log.Int("frames", len(frames)), log.ErrorField(err))
	}
	if err := util.WaitForRequiredServices(ctx); err != nil {
		log.Error("required services not ready", log.ErrorField(err))
		return err
	}

	pipeline := util.NewPipeline(ctx)
	sinks, err := util.SetupSinks(ctx, pipeline, "replay:"+file)
	if err != nil {
		pipeline.Close()
		log.Error("could not setup event sinks", log.ErrorField(err))
		return err
	}
	ctrl := session.New(session.DiscardSender,
		protocol.ConnectionParams{DisplayName: "replay"},
		session.WithLogger(logger.Named("session")),
		session.WithListener(pipeline.Listener()))

	// the recording starts with the registration result
	if err = ctrl.Connect(); err == nil {
		log.Info("Replaying", log.String("file", file), log.Int("frames", len(frames)))
		err = recording.Play(ctx, frames, config.Speed, func(data []byte) {
			//nolint:errcheck // failures are logged and counted by the controller
			ctrl.HandleDatagram(data)
		})
		if errors.Is(err, context.Canceled) {
			err = nil
		}
	}
	if ctrl.State() != session.Disconnected {
		//nolint:errcheck // a discarding sender does not fail
		ctrl.Disconnect()
	}
	err = errors.Join(err, pipeline.Close(), sinks.Close())
	log.Info("Replay finished", log.Int("cars", len(ctrl.Cars())))
	return err
}
