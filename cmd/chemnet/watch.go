package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/alfredjeanlab/chemnet/internal/events"
	"github.com/alfredjeanlab/chemnet/internal/ui"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Short:   "Print annotation events as they are published",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		if cfg.NATSURL == "" {
			return fmt.Errorf("watch needs an event bus (set CHEMNET_NATS_URL)")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		sub, err := events.NewNATSSubscriber(cfg.NATSURL,
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				logger.Warn("nats: disconnected", "err", err)
			}),
			nats.ReconnectHandler(func(_ *nats.Conn) {
				logger.Info("nats: reconnected")
			}),
		)
		if err != nil {
			return err
		}
		defer sub.Close()

		ch, cancel, err := sub.Subscribe(topic)
		if err != nil {
			return fmt.Errorf("subscribing to events: %w", err)
		}
		defer cancel()

		for {
			select {
			case <-ctx.Done():
				return nil
			case msg, ok := <-ch:
				if !ok {
					return nil
				}
				fmt.Println(formatEvent(msg))
			}
		}
	},
}

func init() {
	watchCmd.Flags().String("topic", "chemnet.>", "subject to subscribe to (NATS wildcards allowed)")
}

// formatEvent renders one event on a single line.
func formatEvent(msg events.Message) string {
	if jsonOutput {
		return string(msg.Data)
	}
	var ev struct {
		NodeID       string   `json:"node_id"`
		NewStructure string   `json:"new_structure"`
		LinksCreated int      `json:"links_created"`
		Error        string   `json:"error"`
		Edges        []string `json:"edges"`
		Project      string   `json:"project"`
		Path         string   `json:"path"`
		Annotations  int      `json:"annotations"`
	}
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		return ui.RenderError(fmt.Sprintf("%s: unparseable event: %s", msg.Topic, msg.Data))
	}

	switch msg.Topic {
	case events.TopicAnnotationSubmitted:
		return fmt.Sprintf("%s %s", ui.RenderSkipped("submitted "+ev.NodeID), ev.NewStructure)
	case events.TopicAnnotationApplied:
		return fmt.Sprintf("%s %s (%d links)", ui.RenderLinked("applied "+ev.NodeID), ev.NewStructure, ev.LinksCreated)
	case events.TopicAnnotationFailed:
		return fmt.Sprintf("%s %s", ui.RenderError("failed "+ev.NodeID), ev.Error)
	case events.TopicAnnotationRemoved:
		return ui.RenderMuted("removed " + ev.NodeID)
	case events.TopicLinksGenerated:
		return fmt.Sprintf("%s %d edge(s)", ui.RenderAccent("links "+ev.NodeID), len(ev.Edges))
	case events.TopicProjectSaved:
		return fmt.Sprintf("%s %s (%d annotations)", ui.RenderAccent("saved"), ev.Path, ev.Annotations)
	case events.TopicProjectLoaded:
		return fmt.Sprintf("%s %s (%d annotations)", ui.RenderAccent("loaded"), ev.Project, ev.Annotations)
	}
	return fmt.Sprintf("%s %s", msg.Topic, msg.Data)
}
