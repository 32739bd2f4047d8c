package reports

import (
	"time"

	"github.com/kienohsung/an-ninh-noi-bo-final/internal/textnorm"
)

// Entry is one parsed vehicle log row. Date carries only the calendar
// day (UTC midnight); the time of day lives in Clock.
type Entry struct {
	Plate string
	Date  time.Time
	Clock textnorm.Clock
}

// Series pairs chart labels with their counts, index-aligned.
type Series struct {
	Labels []string `json:"labels"`
	Series []int    `json:"series"`
}

// Heatmap is a day-by-hour count matrix. Matrix[i][j] is the count for
// Rows[i] at Cols[j].
type Heatmap struct {
	Rows   []string `json:"rows"`
	Cols   []string `json:"cols"`
	Matrix [][]int  `json:"matrix"`
}

type Charts struct {
	Daily   Series  `json:"daily"`
	Hours   Series  `json:"hours"`
	Heatmap Heatmap `json:"heatmap"`
	Top10   Series  `json:"top10"`
}

// KPI holds the headline numbers for the filtered set. PeakHour and
// TopPlate are nil when the set is empty.
type KPI struct {
	Total     int     `json:"totalInRange"`
	PeakHour  *string `json:"peakHour"`
	TopPlate  *string `json:"topPlate"`
	AvgPerDay float64 `json:"avgPerDay"`
}

type Result struct {
	Rows   []*Entry `json:"rows"`
	Charts Charts   `json:"charts"`
	KPI    KPI      `json:"kpi"`
}
