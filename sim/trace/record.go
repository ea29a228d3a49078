// Package trace provides trajectory persistence for the order book
// simulator. It stores pure data types plus their CSV/JSON codecs and has
// no dependency on the engine; sim and calib both speak this format.
package trace

// Record is one event row of a trajectory log. Depth vectors are the
// post-event state; QueueSize is the size of the targeted queue just
// before the event, which is what intensity estimation conditions on.
type Record struct {
	Time      float64
	Kind      string
	Side      string
	Level     int
	QueueSize int
	RefTick   int64
	RefShift  int
	Bids      []int
	Asks      []int
}

// Summary is the JSON-serializable digest of one completed run.
type Summary struct {
	Seed        int64            `json:"seed"`
	Levels      int              `json:"levels"`
	TickSize    float64          `json:"tick_size"`
	Events      int64            `json:"events"`
	Stop        string           `json:"stop"`
	Clock       float64          `json:"clock"`
	InitialTick int64            `json:"initial_tick"`
	FinalTick   int64            `json:"final_tick"`
	FinalMid    string           `json:"final_mid"` // decimal price string
	ShiftsUp    int64            `json:"shifts_up"`
	ShiftsDown  int64            `json:"shifts_down"`
	KindCounts  map[string]int64 `json:"kind_counts"`
}
