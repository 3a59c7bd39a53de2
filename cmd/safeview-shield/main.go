package main

import (
	"fmt"
	"os"
	"time"

	"safeview-shield/internal/config"
	"safeview-shield/internal/incidentlog"
	"safeview-shield/internal/logger"
	"safeview-shield/internal/models"
	"safeview-shield/internal/player"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "safeview-shield",
		Short:         "Protected player simulation for SafeView Shield",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")

	load := func() (*models.Config, error) {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		logger.SetLevel(cfg.LogLevel)
		logger.SetJSON(cfg.LogFormat == "json")
		if configPath != "" {
			logger.Infof("Loaded config from %s", configPath)
		}
		return cfg, nil
	}

	cmd.AddCommand(newRunCommand(load))
	cmd.AddCommand(newSimulateCommand(load))

	return cmd
}

// wiring holds the publishers for a session; nil fields disable publishing.
type wiring struct {
	statePublisher    player.Publisher
	incidentPublisher incidentlog.Publisher
}

func newPlayer(cfg *models.Config, w wiring) (*incidentlog.Log, *player.Session) {
	p := cfg.Player

	logOpts := []incidentlog.Option{
		incidentlog.WithCategories(cfg.IncidentLog.Categories),
		incidentlog.WithSeed(cfg.IncidentLog.Seed),
	}
	if w.incidentPublisher != nil {
		logOpts = append(logOpts, incidentlog.WithPublisher(w.incidentPublisher, cfg.MQTT.IncidentsTopic))
	}
	incidents := incidentlog.New(logOpts...)

	ctrl := player.NewController(incidents,
		player.WithDurationCap(p.DurationCap),
		player.WithTriggerThreshold(p.TriggerThreshold),
		player.WithCannedIncident(p.Reason, p.Platform, p.SkippedSeconds),
	)

	sessionOpts := []player.SessionOption{
		player.WithTickInterval(time.Duration(p.TickIntervalMs) * time.Millisecond),
		player.WithSkipStep(p.SkipStepSeconds),
		player.WithSkipFurther(p.SkipFurtherSeconds),
		player.WithManualReason(p.ManualReason),
	}
	if w.statePublisher != nil {
		sessionOpts = append(sessionOpts, player.WithStatePublisher(w.statePublisher, cfg.MQTT.StateTopic))
	}

	return incidents, player.NewSession(ctrl, sessionOpts...)
}
