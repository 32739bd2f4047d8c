package reports

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kienohsung/an-ninh-noi-bo-final/internal/logging"
	"github.com/kienohsung/an-ninh-noi-bo-final/internal/textnorm"
)

// archiveReadConcurrency bounds parallel partition fetches so a wide
// date range does not burst the spreadsheet API quota.
const archiveReadConcurrency = 4

// SheetReader is the slice of the spreadsheet client the engine needs.
type SheetReader interface {
	ReadRange(ctx context.Context, spreadsheetID, readRange string) ([][]string, error)
}

// Config locates the live log sheet and its archive partitions.
// ArchiveSheets maps a year to the spreadsheet holding that year's
// monthly partitions; a missing year simply has no archive.
type Config struct {
	LiveSpreadsheetID string
	LiveSheetName     string
	ArchiveSheets     map[int]string
}

type Engine struct {
	reader SheetReader
	cfg    Config
	log    logging.Logger
}

func NewEngine(reader SheetReader, cfg Config, log logging.Logger) *Engine {
	return &Engine{reader: reader, cfg: cfg, log: log}
}

// PartitionSheetName returns the archive tab holding one (year, month).
func PartitionSheetName(year int, month time.Month) string {
	return fmt.Sprintf("Thang%02d_%d", month, year)
}

type yearMonth struct {
	year  int
	month time.Month
}

// monthSpan lists every (year, month) between start and end inclusive.
// An inverted range covers no months.
func monthSpan(start, end time.Time) []yearMonth {
	if start.After(end) {
		return nil
	}
	var span []yearMonth
	y, m := start.Year(), start.Month()
	for {
		span = append(span, yearMonth{year: y, month: m})
		if y == end.Year() && m == end.Month() {
			return span
		}
		m++
		if m > time.December {
			m = time.January
			y++
		}
	}
}

// Query reads the live sheet (plus the archive partitions covering
// [start, end] when both bounds are set), filters by date range and by
// an accent-insensitive plate substring, and aggregates the result.
//
// A live-sheet read failure is surfaced: without it there is no
// meaningful partial answer. Archive partitions degrade row by row
// instead; a failed or unprovisioned partition contributes nothing.
func (e *Engine) Query(ctx context.Context, filterText string, start, end *time.Time) (*Result, error) {
	live, err := e.reader.ReadRange(ctx, e.cfg.LiveSpreadsheetID, e.rangeFor(e.cfg.LiveSheetName))
	if err != nil {
		return nil, fmt.Errorf("live sheet read: %w", err)
	}

	entries := parseRows(live)

	if start != nil && end != nil {
		archived, err := e.readArchives(ctx, *start, *end)
		if err != nil {
			return nil, err
		}
		entries = append(entries, archived...)
	}

	filtered := filterEntries(entries, filterText, start, end)

	sort.SliceStable(filtered, func(i, j int) bool {
		if !filtered[i].Date.Equal(filtered[j].Date) {
			return filtered[j].Date.Before(filtered[i].Date)
		}
		return filtered[j].Clock.Less(filtered[i].Clock)
	})

	result := aggregate(filtered)
	e.log.Info(ctx, "log query evaluated",
		"parsed", len(entries), "matched", len(filtered))
	return result, nil
}

func (e *Engine) rangeFor(sheetName string) string {
	return fmt.Sprintf("'%s'!A:C", sheetName)
}

// readArchives fetches every provisioned partition in the span
// concurrently and returns their rows in partition order.
func (e *Engine) readArchives(ctx context.Context, start, end time.Time) ([]*Entry, error) {
	span := monthSpan(start, end)
	parts := make([][]*Entry, len(span))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(archiveReadConcurrency)

	for i, ym := range span {
		i, ym := i, ym
		spreadsheetID, ok := e.cfg.ArchiveSheets[ym.year]
		if !ok {
			continue
		}
		g.Go(func() error {
			sheetName := PartitionSheetName(ym.year, ym.month)
			values, err := e.reader.ReadRange(gctx, spreadsheetID, e.rangeFor(sheetName))
			if err != nil {
				e.log.Warn(gctx, "archive partition read failed, treating as empty",
					"sheet", sheetName, "error", err)
				return nil
			}
			parts[i] = parseRows(values)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var entries []*Entry
	for _, p := range parts {
		entries = append(entries, p...)
	}
	return entries, nil
}

// parseRows converts raw sheet values to entries, dropping the header
// row and any row that does not yield plate, date and time.
func parseRows(values [][]string) []*Entry {
	if len(values) <= 1 {
		return nil
	}

	var entries []*Entry
	for _, row := range values[1:] {
		if len(row) < 3 {
			continue
		}
		plate := strings.TrimSpace(row[0])
		if plate == "" {
			continue
		}
		date, ok := textnorm.ParseDate(row[1])
		if !ok {
			continue
		}
		clock, ok := textnorm.ParseClock(row[2])
		if !ok {
			continue
		}
		entries = append(entries, &Entry{Plate: plate, Date: date, Clock: clock})
	}
	return entries
}

func filterEntries(entries []*Entry, filterText string, start, end *time.Time) []*Entry {
	needle := textnorm.Fold(filterText)

	var out []*Entry
	for _, e := range entries {
		if start != nil && e.Date.Before(*start) {
			continue
		}
		if end != nil && e.Date.After(*end) {
			continue
		}
		if needle != "" && !strings.Contains(textnorm.Fold(e.Plate), needle) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func aggregate(entries []*Entry) *Result {
	daily := map[string]int{}
	hours := map[string]int{}
	plates := map[string]int{}
	plateOrder := map[string]int{}
	heat := map[string]map[string]int{}

	for _, e := range entries {
		day := e.Date.Format("2006-01-02")
		hour := e.Clock.HourLabel()

		daily[day]++
		hours[hour]++
		if _, seen := plates[e.Plate]; !seen {
			plateOrder[e.Plate] = len(plateOrder)
		}
		plates[e.Plate]++
		if heat[day] == nil {
			heat[day] = map[string]int{}
		}
		heat[day][hour]++
	}

	dailyLabels := sortedKeys(daily)
	dailySeries := make([]int, len(dailyLabels))
	for i, d := range dailyLabels {
		dailySeries[i] = daily[d]
	}

	hourLabels := make([]string, 24)
	hourSeries := make([]int, 24)
	for i := range hourLabels {
		hourLabels[i] = fmt.Sprintf("%02d", i)
		hourSeries[i] = hours[hourLabels[i]]
	}

	topLabels, topSeries := topPlates(plates, plateOrder, 10)

	heatRows := sortedKeys(heat)
	matrix := make([][]int, len(heatRows))
	for i, day := range heatRows {
		matrix[i] = make([]int, 24)
		for j, h := range hourLabels {
			matrix[i][j] = heat[day][h]
		}
	}

	kpi := KPI{Total: len(entries)}
	if maxIdx, maxVal := maxOf(hourSeries); len(entries) > 0 && maxVal > 0 {
		kpi.PeakHour = &hourLabels[maxIdx]
	}
	if len(topLabels) > 0 {
		kpi.TopPlate = &topLabels[0]
	}
	if len(dailySeries) > 0 {
		kpi.AvgPerDay = math.Round(float64(len(entries))/float64(len(dailySeries))*10) / 10
	}

	rows := entries
	if rows == nil {
		rows = []*Entry{}
	}
	return &Result{
		Rows: rows,
		Charts: Charts{
			Daily:   Series{Labels: dailyLabels, Series: dailySeries},
			Hours:   Series{Labels: hourLabels, Series: hourSeries},
			Heatmap: Heatmap{Rows: heatRows, Cols: hourLabels, Matrix: matrix},
			Top10:   Series{Labels: topLabels, Series: topSeries},
		},
		KPI: kpi,
	}
}

// topPlates ranks plates by count descending; ties keep first-seen
// order so repeated queries over the same data rank identically.
func topPlates(counts, order map[string]int, limit int) ([]string, []int) {
	labels := make([]string, 0, len(counts))
	for p := range counts {
		labels = append(labels, p)
	}
	sort.Slice(labels, func(i, j int) bool {
		if counts[labels[i]] != counts[labels[j]] {
			return counts[labels[i]] > counts[labels[j]]
		}
		return order[labels[i]] < order[labels[j]]
	})
	if len(labels) > limit {
		labels = labels[:limit]
	}

	series := make([]int, len(labels))
	for i, p := range labels {
		series[i] = counts[p]
	}
	return labels, series
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func maxOf(values []int) (int, int) {
	maxIdx, maxVal := 0, 0
	for i, v := range values {
		if v > maxVal {
			maxIdx, maxVal = i, v
		}
	}
	return maxIdx, maxVal
}
