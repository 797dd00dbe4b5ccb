package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"sensor-extremes/internal/archive"
	"sensor-extremes/internal/config"
	"sensor-extremes/internal/engine"
	"sensor-extremes/internal/persist"
	"sensor-extremes/internal/scheduler"
	"sensor-extremes/internal/service"
	"sensor-extremes/internal/source"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) sourceSpecs() []engine.SourceSpec {
	specs := make([]engine.SourceSpec, 0, len(a.Config.Sources))
	for _, src := range a.Config.Sources {
		specs = append(specs, engine.SourceSpec{
			ID:              src.ID,
			Name:            src.Name,
			Unit:            src.Unit,
			DecimalPlaces:   int32(src.EffectiveDecimalPlaces()),
			AveragingWindow: time.Duration(src.AveragingWindowMinutes) * time.Minute,
		})
	}
	return specs
}

func (a *App) newEngine() *engine.Engine {
	return engine.New(a.sourceSpecs(), a.Logger)
}

// newStore returns the ledger file store, or nil when persistence is
// disabled.
func (a *App) newStore() *persist.FileStore {
	if !a.Config.Persistence.Enabled {
		return nil
	}
	return persist.NewFileStore(a.Config.Persistence.Path, a.Logger)
}

func (a *App) openRecorder() (archive.Recorder, error) {
	if !a.Config.Archive.Enabled {
		return archive.NewNoopRecorder(), nil
	}
	return archive.NewSQLiteRecorder(a.Config.Archive.Path, a.Logger)
}

func (a *App) newFeed() source.Feed {
	topics := make(map[string]string, len(a.Config.Sources))
	for _, src := range a.Config.Sources {
		topics[src.EffectiveTopic()] = src.ID
	}
	return source.NewMQTT(source.MQTTOptions{
		BrokerURL:      a.Config.MQTT.BrokerURL,
		ClientID:       a.Config.MQTT.ClientID,
		QoS:            byte(a.Config.MQTT.QoS),
		KeepAlive:      uint16(a.Config.MQTT.KeepAlive),
		ConnectTimeout: a.Config.MQTT.ConnectTimeout,
		Topics:         topics,
	}, a.Logger)
}

// Run executes the long-running tracking service.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if len(a.Config.Sources) == 0 {
		return errors.New("no sources configured")
	}

	eng := a.newEngine()

	store := a.newStore()
	if store == nil {
		a.Logger.Warn().Msg("persistence disabled; extremes will not survive a restart")
	} else {
		doc, err := store.Load()
		if err != nil {
			a.Logger.Error().Err(err).Msg("could not read persisted state; starting empty")
		} else {
			eng.ImportLedgers(doc)
		}
	}

	recorder, err := a.openRecorder()
	if err != nil {
		return err
	}
	defer recorder.Close()

	sched := scheduler.New(scheduler.Options{
		RolloverSpec: a.Config.Scheduler.RolloverCron,
		SaveSpec:     a.Config.Scheduler.SaveCron,
	}, a.Logger)

	svc := service.New(eng, store, recorder, sched, a.newFeed(), a.Logger)

	a.Logger.Info().Int("sources", len(a.Config.Sources)).Msg("starting tracking service")
	err = svc.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("service terminated with error")
		return err
	}

	a.Logger.Info().Msg("tracking service stopped")
	return nil
}

// ExportOptions hold parameters for exporting archived samples.
type ExportOptions struct {
	SourceID  string
	From      *time.Time
	To        *time.Time
	PNGPath   string
	CSVPath   string
	MaxPoints int
}

// SimulateOptions configure the simulate command.
type SimulateOptions struct {
	SourceID string
	Values   []string
	Spacing  time.Duration
}
