package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/signaldesk/signaldesk/internal/orchestrator"
	"github.com/signaldesk/signaldesk/internal/signal"
)

// Ingestor polls sources on an interval and runs each fetched signal
// through the orchestrator. Kafka signals arrive push-style and bypass
// the poll timer.
type Ingestor struct {
	sources      []Source
	kafka        *KafkaIntake
	orchestrator *orchestrator.Orchestrator
	interval     time.Duration
	log          *slog.Logger
}

// NewIngestor creates an ingestor. kafka may be nil.
func NewIngestor(sources []Source, kafka *KafkaIntake, orch *orchestrator.Orchestrator, interval time.Duration) *Ingestor {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Ingestor{
		sources:      sources,
		kafka:        kafka,
		orchestrator: orch,
		interval:     interval,
		log:          slog.Default().With("component", "ingest"),
	}
}

// Run polls until the context is cancelled. The first poll happens
// immediately, not after one interval.
func (i *Ingestor) Run(ctx context.Context) error {
	i.log.Info("Ingestion started", "sources", len(i.sources), "interval", i.interval, "kafka", i.kafka != nil)

	var kafkaCh <-chan signal.Signal
	if i.kafka != nil {
		i.kafka.Start(ctx)
		kafkaCh = i.kafka.Signals()
	}

	ticker := time.NewTicker(i.interval)
	defer ticker.Stop()

	i.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			i.poll(ctx)
		case sig, ok := <-kafkaCh:
			if !ok {
				kafkaCh = nil
				continue
			}
			i.process(ctx, sig)
		}
	}
}

// poll fetches every source once. A failing source is logged and
// skipped so one broken feed never stalls the rest.
func (i *Ingestor) poll(ctx context.Context) {
	for _, src := range i.sources {
		signals, err := src.Fetch(ctx)
		if err != nil {
			i.log.Warn("Source fetch failed", "source", src.Name(), "error", err)
			continue
		}
		for _, sig := range signals {
			i.process(ctx, sig)
		}
	}
}

func (i *Ingestor) process(ctx context.Context, sig signal.Signal) {
	res, err := i.orchestrator.ProcessSignal(ctx, sig)
	if err != nil {
		i.log.Error("Signal pipeline failed", "signal", sig.Topic, "error", err)
		return
	}
	i.log.Info("Signal ingested",
		"signal_id", res.SignalID, "source", sig.Source, "gated", res.Gated, "outputs", len(res.Outputs))
}
