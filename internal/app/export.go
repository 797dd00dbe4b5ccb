package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"sensor-extremes/internal/archive"
)

// Export renders archived samples for one source as CSV and/or PNG.
func (a *App) Export(_ context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}
	if opts.SourceID == "" {
		return errors.New("--source is required")
	}
	if !a.Config.Archive.Enabled {
		return errors.New("archive not enabled; cannot export")
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	recorder, err := a.openRecorder()
	if err != nil {
		return err
	}
	defer recorder.Close()

	to := time.Now()
	if opts.To != nil {
		to = *opts.To
	}
	from := to.Add(-24 * time.Hour)
	if opts.From != nil {
		from = *opts.From
	}
	if !from.Before(to) {
		return errors.New("from must be before to")
	}

	samples, err := recorder.ListSamples(opts.SourceID, from, to)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		a.Logger.Info().Str("source", opts.SourceID).Msg("no samples found for export window")
		return nil
	}

	downsampled := downsample(samples, opts.MaxPoints)
	a.Logger.Info().Int("total", len(samples)).Int("exported", len(downsampled)).Msg("exporting samples")

	if opts.CSVPath != "" {
		if err := writeSamplesCSV(opts.CSVPath, downsampled); err != nil {
			return err
		}
	}
	if opts.PNGPath != "" {
		if err := a.writeSamplesPNG(opts.PNGPath, opts.SourceID, downsampled); err != nil {
			return err
		}
	}
	return nil
}

func downsample(samples []archive.Sample, max int) []archive.Sample {
	if max <= 0 || len(samples) <= max {
		return samples
	}
	if max == 1 {
		return samples[:1]
	}

	result := make([]archive.Sample, 0, max)
	step := float64(len(samples)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(samples) {
			idx = len(samples) - 1
		}
		result = append(result, samples[idx])
	}
	return result
}

func writeSamplesCSV(path string, samples []archive.Sample) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"timestamp", "source_id", "value"}); err != nil {
		return err
	}
	for _, s := range samples {
		record := []string{
			s.At.Format(time.RFC3339),
			s.SourceID,
			strconv.FormatFloat(s.Value, 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return writer.Error()
}

func (a *App) writeSamplesPNG(path, sourceID string, samples []archive.Sample) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	unit := ""
	name := sourceID
	for _, src := range a.Config.Sources {
		if src.ID == sourceID {
			unit = src.Unit
			if src.Name != "" {
				name = src.Name
			}
			break
		}
	}

	x := make([]time.Time, len(samples))
	y := make([]float64, len(samples))
	for i, s := range samples {
		x[i] = s.At
		y[i] = s.Value
	}

	yAxisName := name
	if unit != "" {
		yAxisName = fmt.Sprintf("%s (%s)", name, unit)
	}

	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: yAxisName,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    name,
				XValues: x,
				YValues: y,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
