package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"safeview-shield/internal/logger"
	"safeview-shield/internal/metrics"
	"safeview-shield/internal/models"
	"safeview-shield/internal/mqtt"
	"safeview-shield/internal/player"

	"github.com/spf13/cobra"
)

func newRunCommand(load func() (*models.Config, error)) *cobra.Command {
	var autoplay bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a player session driven by MQTT commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if cfg.MQTT.Broker == "" {
				return errors.New("mqtt.broker is required for run; use simulate for an offline session")
			}

			// 1. Initialize Clients
			mqttClient := mqtt.NewClient(cfg.MQTT)

			// 2. Initialize Player
			incidents, session := newPlayer(cfg, wiring{
				statePublisher:    mqttClient,
				incidentPublisher: mqttClient,
			})
			logger.Infof("Player session %s ready (%d seeded incidents)", session.ID(), incidents.Len())

			// 3. Connect to MQTT
			if err := mqttClient.Connect(); err != nil {
				return err
			}
			defer mqttClient.Disconnect()

			// 4. Subscribe to player commands
			if err := mqttClient.Subscribe(session.Commands()); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// 5. Metrics endpoint
			if cfg.Metrics.Addr != "" {
				srv := metrics.NewServer(cfg.Metrics.Addr)
				go func() {
					if err := srv.Start(); err != nil {
						logger.Errorf("%v", err)
					}
				}()
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := srv.Shutdown(shutdownCtx); err != nil {
						logger.Warnf("Metrics server shutdown: %v", err)
					}
				}()
			}

			if autoplay {
				session.Commands() <- models.Command{Type: player.CommandStart}
			}

			// 6. Run until signalled
			err = session.Run(ctx)
			logger.Infof("Shutting down, %d incidents logged", incidents.Len())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("player session: %w", err)
		},
	}
	cmd.Flags().BoolVar(&autoplay, "autoplay", false, "Start playback immediately instead of waiting for a start command")

	return cmd
}
