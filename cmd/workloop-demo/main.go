// Command workloop-demo runs one of the scheduler's bundled scenarios to
// completion (or for a fixed duration) and prints a final metrics
// snapshot, the same flag-driven shape the teacher's device CLI uses.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ehrlich-b/go-workloop/internal/logging"
	"github.com/ehrlich-b/go-workloop/ring"
	"github.com/ehrlich-b/go-workloop/scheduler"
)

func main() {
	var (
		mode     = flag.String("mode", "producer-consumer", "scenario to run: producer-consumer or event-driven")
		duration = flag.Duration("duration", 5*time.Second, "maximum time to let the scenario run")
		verbose  = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	logConfig := logging.DefaultConfig()
	if *verbose {
		logConfig.Level = logging.LevelDebug
	}
	logger := logging.NewLogger(logConfig)
	logging.SetDefault(logger)

	s, err := scheduler.New(scheduler.DefaultParams(), &scheduler.Options{Logger: logger})
	if err != nil {
		logger.Error("failed to create scheduler", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	sigCtx, stopSignals := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	switch *mode {
	case "producer-consumer":
		runProducerConsumer(s, logger)
	case "event-driven":
		runEventDriven(s, logger)
	default:
		logger.Error("unknown mode", "mode", *mode)
		os.Exit(1)
	}

	if err := s.Start(sigCtx); err != nil {
		logger.Info("scheduler stopped", "reason", err)
	}

	snap := s.Snapshot()
	logger.Info("final metrics",
		"scheduled", snap.Scheduled,
		"executed", snap.Executed,
		"cancelled", snap.Cancelled,
		"faulted", snap.Faulted,
		"triggered", snap.Triggered,
	)
}

func runProducerConsumer(s *scheduler.Scheduler, logger *logging.Logger) {
	buf, err := ring.New(2048)
	if err != nil {
		logger.Error("failed to create ring buffer", "error", err)
		os.Exit(1)
	}

	var produced, consumed uint16

	s.Repeat(func(params ...any) {
		produced++
		message := []byte(fmt.Sprintf("message-%d", produced))
		if buf.IsFull() {
			logger.Debugf("buffer full, producer waiting")
			return
		}
		if err := buf.Put(produced, message); err != nil {
			logger.Error("put failed", "error", err)
			return
		}
		if produced >= 10 {
			s.TriggerEvent("production_complete")
		}
	}, 500, 0)

	s.Repeat(func(params ...any) {
		if buf.IsEmpty() {
			logger.Debugf("buffer empty, consumer waiting")
			return
		}
		buf.Get()
		consumed++
		if consumed >= 10 {
			s.TriggerEvent("consumption_complete")
		}
	}, 800, 0)

	s.On(func(params ...any) {
		logger.Info("producer-consumer complete", "produced", produced, "consumed", consumed)
		s.Stop()
	}, "consumption_complete", 0, false)
}

func runEventDriven(s *scheduler.Scheduler, logger *logging.Logger) {
	s.On(func(params ...any) {
		value := params[0].(int)
		if value > 100 {
			s.TriggerEvent("high_value_alert", value)
		}
	}, "sensor_data", 0, false)

	s.On(func(params ...any) {
		logger.Info("high value alert", "value", params[0])
	}, "high_value_alert", 0, false)

	s.On(func(params ...any) {
		logger.Debugf("button pressed")
	}, "button_event", 0, true)

	s.At(func(params ...any) { s.TriggerEvent("sensor_data", 50) }, 1_000)
	s.At(func(params ...any) { s.TriggerEvent("sensor_data", 150) }, 2_000)
	s.At(func(params ...any) { s.TriggerEvent("button_event") }, 3_000)
	s.At(func(params ...any) { s.TriggerEvent("button_event") }, 4_000)
	s.At(func(params ...any) { s.Stop() }, 4_500)
}
