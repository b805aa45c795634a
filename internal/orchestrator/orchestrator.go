// Package orchestrator drives one station fetch: current observation,
// then forecast, then 24-hour history, strictly in that order. Results
// are pushed as tagged events over a per-fetch channel so the
// presentation layer can render incrementally. Only the observation
// stage is fatal; forecast and history failures degrade their own
// section and leave the rest intact.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/MrVISKman11/AppTiempo/internal/client"
	"github.com/MrVISKman11/AppTiempo/internal/conditions"
	"github.com/MrVISKman11/AppTiempo/internal/forecast"
	"github.com/MrVISKman11/AppTiempo/internal/models"
	"github.com/MrVISKman11/AppTiempo/internal/observability"
	"github.com/MrVISKman11/AppTiempo/internal/prefs"
	"github.com/MrVISKman11/AppTiempo/internal/timeseries"
)

// EventKind tags a FetchEvent variant.
type EventKind string

const (
	EventStarted           EventKind = "started"
	EventLocationUpdated   EventKind = "locationUpdated"
	EventConditionsUpdated EventKind = "conditionsUpdated"
	EventForecastUpdated   EventKind = "forecastUpdated"
	EventHistoryUpdated    EventKind = "historyUpdated"
	EventFailed            EventKind = "failed"
)

// Pipeline stage names used in events and metrics.
const (
	StageObservation = "observation"
	StageForecast    = "forecast"
	StageHistory     = "history"
)

// FetchEvent is one publication from a fetch pipeline. Only the fields
// relevant to its Kind are set.
type FetchEvent struct {
	Kind       EventKind
	Generation uint64
	Stage      string

	Location   string
	Conditions string
	Forecast   []models.ForecastDay
	History    []models.HistoryObservation
	Chart      timeseries.ChartData
	Err        string
}

// Orchestrator owns the fetch state machine. A new fetch supersedes any
// in-flight one: the generation counter makes stale pipelines drop their
// remaining events instead of overwriting newer state.
type Orchestrator struct {
	client     client.WeatherClient
	logger     *zap.Logger
	loc        *time.Location
	generation atomic.Uint64
}

// New returns an Orchestrator. loc is the wall-clock zone for chart
// labels; nil means the process-local zone.
func New(c client.WeatherClient, logger *zap.Logger, loc *time.Location) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Orchestrator{client: c, logger: logger, loc: loc}
}

// Fetch starts one fetch pipeline and returns its event channel. The
// channel is closed when the pipeline reaches its terminal state. The
// preferences snapshot is taken by the caller immediately before the
// call; the orchestrator never reads ambient settings.
func (o *Orchestrator) Fetch(ctx context.Context, stationID string, p prefs.UserPreferences) <-chan FetchEvent {
	gen := o.generation.Add(1)
	events := make(chan FetchEvent, 16)
	observability.RecordFetch(stationID)

	go func() {
		defer close(events)
		o.run(ctx, gen, events, stationID, p)
	}()
	return events
}

// emit delivers an event unless a newer fetch has superseded this
// generation, in which case the event is dropped and counted.
func (o *Orchestrator) emit(gen uint64, events chan<- FetchEvent, ev FetchEvent) {
	if o.generation.Load() != gen {
		observability.StaleEventsDroppedTotal.Inc()
		return
	}
	ev.Generation = gen
	events <- ev
}

func (o *Orchestrator) run(ctx context.Context, gen uint64, events chan<- FetchEvent, stationID string, p prefs.UserPreferences) {
	logger := o.logger.With(zap.String("station", stationID), zap.Uint64("generation", gen))
	o.emit(gen, events, FetchEvent{Kind: EventStarted})

	// Stage 1: current observation. A failure here is terminal: the
	// station has nothing to show, so forecast and history are skipped.
	obs, err := o.client.CurrentObservation(ctx, stationID)
	if err != nil {
		observability.UpstreamErrorsTotal.WithLabelValues(StageObservation, string(client.CategorizeError(err))).Inc()
		logger.Warn("observation fetch failed", zap.Error(err))
		o.emit(gen, events, FetchEvent{Kind: EventFailed, Stage: StageObservation, Err: observationErrText(err)})
		o.emit(gen, events, FetchEvent{Kind: EventConditionsUpdated, Conditions: conditions.NotFoundText})
		o.emit(gen, events, FetchEvent{Kind: EventForecastUpdated, Forecast: []models.ForecastDay{}})
		return
	}

	location := stationID
	if obs.Neighborhood != nil && *obs.Neighborhood != "" {
		location = *obs.Neighborhood
	}
	o.emit(gen, events, FetchEvent{Kind: EventLocationUpdated, Location: location})

	baseText, err := conditions.FormatCurrent(obs, p)
	if err != nil {
		// Only reachable with a nil observation; treat like not found.
		o.emit(gen, events, FetchEvent{Kind: EventConditionsUpdated, Conditions: conditions.NotFoundText})
		o.emit(gen, events, FetchEvent{Kind: EventForecastUpdated, Forecast: []models.ForecastDay{}})
		return
	}
	o.emit(gen, events, FetchEvent{Kind: EventConditionsUpdated, Conditions: baseText})

	// Stage 2: forecast, geocoded from the observation. Failure degrades
	// this section only; history still runs.
	fc, err := o.client.FiveDayForecast(ctx, obs.Latitude, obs.Longitude, ForecastLanguageTag(p.Language))
	switch {
	case err != nil:
		observability.UpstreamErrorsTotal.WithLabelValues(StageForecast, string(client.CategorizeError(err))).Inc()
		logger.Warn("forecast fetch failed", zap.Error(err))
		o.emit(gen, events, FetchEvent{Kind: EventFailed, Stage: StageForecast, Err: fmt.Sprintf("forecast: %v", err)})
		o.emit(gen, events, FetchEvent{Kind: EventForecastUpdated, Forecast: []models.ForecastDay{}})
	case len(fc.DayOfWeek) == 0:
		o.emit(gen, events, FetchEvent{Kind: EventFailed, Stage: StageForecast, Err: "forecast: empty response"})
		o.emit(gen, events, FetchEvent{Kind: EventForecastUpdated, Forecast: []models.ForecastDay{}})
	default:
		o.emit(gen, events, FetchEvent{Kind: EventForecastUpdated, Forecast: forecast.Assemble(fc, p.TempUnit)})
	}

	// Stage 3: history. Failure or an empty result leaves the stage-1
	// conditions text standing and publishes an empty chart.
	history, err := o.client.History(ctx, stationID)
	if err != nil {
		observability.UpstreamErrorsTotal.WithLabelValues(StageHistory, string(client.CategorizeError(err))).Inc()
		logger.Warn("history fetch failed", zap.Error(err))
		o.emit(gen, events, FetchEvent{Kind: EventFailed, Stage: StageHistory, Err: fmt.Sprintf("history: %v", err)})
		o.emit(gen, events, FetchEvent{Kind: EventHistoryUpdated, History: []models.HistoryObservation{}})
		return
	}
	if len(history) == 0 {
		o.emit(gen, events, FetchEvent{Kind: EventHistoryUpdated, History: []models.HistoryObservation{}})
		return
	}

	chart := timeseries.Align(history, p, o.loc)
	o.emit(gen, events, FetchEvent{Kind: EventHistoryUpdated, History: history, Chart: chart})

	// Rebuild the conditions block with the 24h aggregate; it replaces
	// the stage-1 text rather than appending to it.
	fullText, err := conditions.FormatWithHistory(obs, history, p)
	if err == nil {
		o.emit(gen, events, FetchEvent{Kind: EventConditionsUpdated, Conditions: fullText})
	}
}

// Report is the assembled terminal state of one fetch, for callers that
// want a single synchronous result instead of the event stream.
type Report struct {
	Location   string                      `json:"location"`
	Conditions string                      `json:"conditions"`
	Forecast   []models.ForecastDay        `json:"forecast"`
	History    []models.HistoryObservation `json:"history"`
	Chart      timeseries.ChartData        `json:"chart"`
	Errors     []string                    `json:"errors,omitempty"`
	NotFound   bool                        `json:"notFound"`
}

// FetchReport runs a fetch to completion and folds its events into a
// Report. Later events replace earlier ones (last writer wins).
func (o *Orchestrator) FetchReport(ctx context.Context, stationID string, p prefs.UserPreferences) Report {
	var r Report
	for ev := range o.Fetch(ctx, stationID, p) {
		switch ev.Kind {
		case EventLocationUpdated:
			r.Location = ev.Location
		case EventConditionsUpdated:
			r.Conditions = ev.Conditions
		case EventForecastUpdated:
			r.Forecast = ev.Forecast
		case EventHistoryUpdated:
			r.History = ev.History
			r.Chart = ev.Chart
		case EventFailed:
			r.Errors = append(r.Errors, ev.Err)
			if ev.Stage == StageObservation {
				r.NotFound = true
			}
		}
	}
	return r
}

// ForecastLanguageTag maps a preference language to the forecast API's
// supported tags: English gets en-US, everything else es-ES.
func ForecastLanguageTag(language string) string {
	if language == "en" {
		return "en-US"
	}
	return "es-ES"
}

func observationErrText(err error) string {
	if errors.Is(err, client.ErrStationNotFound) {
		return conditions.NotFoundText
	}
	return fmt.Sprintf("observation: %v", err)
}
