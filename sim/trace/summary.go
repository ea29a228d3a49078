package trace

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteSummary serializes a run summary as indented JSON.
func WriteSummary(out io.Writer, s *Summary) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encoding run summary: %w", err)
	}
	return nil
}

// ReadSummary parses a run summary produced by WriteSummary.
func ReadSummary(in io.Reader) (*Summary, error) {
	var s Summary
	if err := json.NewDecoder(in).Decode(&s); err != nil {
		return nil, fmt.Errorf("decoding run summary: %w", err)
	}
	return &s, nil
}
