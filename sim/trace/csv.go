package trace

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// csvHeader is the fixed column schema of an event log.
var csvHeader = []string{
	"time", "kind", "side", "level", "queue_size", "ref_tick", "ref_shift", "bids", "asks",
}

// Writer streams trajectory records to CSV. It can be fed incrementally
// during a run; Flush before closing the underlying file.
type Writer struct {
	w *csv.Writer
}

// NewWriter writes the header and returns a record writer.
func NewWriter(out io.Writer) (*Writer, error) {
	w := csv.NewWriter(out)
	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}
	return &Writer{w: w}, nil
}

// Write appends one record. Depth vectors are encoded as JSON lists inside
// their cells, so the row count stays fixed regardless of L.
func (t *Writer) Write(r Record) error {
	bids, err := json.Marshal(r.Bids)
	if err != nil {
		return fmt.Errorf("encoding bid depths: %w", err)
	}
	asks, err := json.Marshal(r.Asks)
	if err != nil {
		return fmt.Errorf("encoding ask depths: %w", err)
	}
	row := []string{
		strconv.FormatFloat(r.Time, 'g', -1, 64),
		r.Kind,
		r.Side,
		strconv.Itoa(r.Level),
		strconv.Itoa(r.QueueSize),
		strconv.FormatInt(r.RefTick, 10),
		strconv.Itoa(r.RefShift),
		string(bids),
		string(asks),
	}
	if err := t.w.Write(row); err != nil {
		return fmt.Errorf("writing csv row: %w", err)
	}
	return nil
}

// Flush forces buffered rows out and reports any write error.
func (t *Writer) Flush() error {
	t.w.Flush()
	return t.w.Error()
}

// ReadAll parses a complete event log.
func ReadAll(in io.Reader) ([]Record, error) {
	reader := csv.NewReader(in)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	if len(header) != len(csvHeader) {
		return nil, fmt.Errorf("unexpected event log header: %v", header)
	}

	var records []Record
	for row := 1; ; row++ {
		cells, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv row %d: %w", row, err)
		}
		rec, err := parseRecord(cells)
		if err != nil {
			return nil, fmt.Errorf("csv row %d: %w", row, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRecord(cells []string) (Record, error) {
	var (
		r   Record
		err error
	)
	if r.Time, err = strconv.ParseFloat(cells[0], 64); err != nil {
		return r, fmt.Errorf("invalid time: %w", err)
	}
	r.Kind = cells[1]
	r.Side = cells[2]
	if r.Level, err = strconv.Atoi(cells[3]); err != nil {
		return r, fmt.Errorf("invalid level: %w", err)
	}
	if r.QueueSize, err = strconv.Atoi(cells[4]); err != nil {
		return r, fmt.Errorf("invalid queue_size: %w", err)
	}
	if r.RefTick, err = strconv.ParseInt(cells[5], 10, 64); err != nil {
		return r, fmt.Errorf("invalid ref_tick: %w", err)
	}
	if r.RefShift, err = strconv.Atoi(cells[6]); err != nil {
		return r, fmt.Errorf("invalid ref_shift: %w", err)
	}
	if err = json.Unmarshal([]byte(cells[7]), &r.Bids); err != nil {
		return r, fmt.Errorf("invalid bids: %w", err)
	}
	if err = json.Unmarshal([]byte(cells[8]), &r.Asks); err != nil {
		return r, fmt.Errorf("invalid asks: %w", err)
	}
	return r, nil
}
