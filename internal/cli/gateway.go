package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/signaldesk/signaldesk/internal/autonomous"
	"github.com/signaldesk/signaldesk/internal/bus"
	"github.com/signaldesk/signaldesk/internal/channels"
	"github.com/signaldesk/signaldesk/internal/ingest"
	"github.com/signaldesk/signaldesk/internal/tools"
)

// Nightly confidence decay cadence.
const decayInterval = 24 * time.Hour

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Run the full gateway: ingestion, Slack, and the autonomous loop",
	RunE:  runGateway,
}

func runGateway(cmd *cobra.Command, args []string) error {
	printHeader("SignalDesk Gateway")

	d, err := openDeps(true)
	if err != nil {
		return err
	}
	defer d.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messageBus := bus.NewMessageBus()
	registry := d.toolRegistry()

	// Slack channel, when configured.
	var slackChan *channels.SlackChannel
	if d.cfg.Slack.Enabled {
		slackChan = channels.NewSlackChannel(d.cfg.Slack, messageBus)
		registry.Register(tools.NewPostToSlackTool(slackChan.API(), ""))
		go func() {
			if err := slackChan.Run(ctx); err != nil && ctx.Err() == nil {
				slog.Error("Slack channel stopped", "error", err)
			}
		}()
		fmt.Println("Slack channel: enabled")
	}

	// Signal ingestion.
	sources := []ingest.Source{ingest.NewSimulatedSource()}
	if d.cfg.Ingest.NewsAPIKey != "" {
		sources = append(sources, ingest.NewNewsSource(d.cfg.Ingest.NewsAPIKey, d.cfg.Ingest.NewsQuery))
	}
	var kafkaIntake *ingest.KafkaIntake
	if d.cfg.Ingest.Kafka.Enabled {
		kafkaIntake = ingest.NewKafkaIntake(d.cfg.Ingest.Kafka.Brokers, d.cfg.Ingest.Kafka.Topic, d.cfg.Ingest.Kafka.ConsumerGroup)
		defer kafkaIntake.Close()
		fmt.Println("Kafka intake: enabled")
	}
	ingestor := ingest.NewIngestor(sources, kafkaIntake, d.orch, d.cfg.PollInterval())
	go ingestor.Run(ctx)

	// Autonomous loop over the bus.
	controller := autonomous.New(d.provider, registry, d.store, d.memory, d.semantic, d.cfg)
	go messageBus.DispatchOutbound(ctx)
	go consumeObjectives(ctx, messageBus, controller)

	// Nightly confidence decay.
	go func() {
		ticker := time.NewTicker(decayInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := d.orch.RunConfidenceDecay(time.Now()); err != nil {
					slog.Error("Confidence decay failed", "error", err)
				}
			}
		}
	}()

	fmt.Println("Gateway running. Ctrl+C to stop.")
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	fmt.Println("Shutting down.")
	return nil
}

// consumeObjectives feeds inbound bus messages to the autonomous loop
// and publishes its answers back.
func consumeObjectives(ctx context.Context, b *bus.MessageBus, controller *autonomous.Controller) {
	for {
		msg, err := b.ConsumeInbound(ctx)
		if err != nil {
			return
		}
		res, err := controller.Run(ctx, autonomous.Objective{
			Text:      msg.Content,
			UserID:    msg.SenderID,
			ChannelID: msg.ChannelID,
			Mentioned: msg.Mentioned,
		})
		if err != nil {
			slog.Error("Objective run failed", "channel_id", msg.ChannelID, "error", err)
			continue
		}
		if res.Skipped || res.Answer == "" {
			continue
		}
		b.PublishOutbound(&bus.OutboundMessage{
			Channel:   msg.Channel,
			ChannelID: msg.ChannelID,
			Content:   res.Answer,
		})
	}
}
