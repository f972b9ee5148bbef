package trace

import (
	"fmt"
	"io"
	"os"

	json "github.com/json-iterator/go"
)

// WriteJSON writes the trace as a single indented JSON document.
func (st *SimulationTrace) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(st)
}

// SaveJSON writes the trace to fileName, replacing any existing file.
func (st *SimulationTrace) SaveJSON(fileName string) error {
	f, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("creating trace file: %w", err)
	}
	if err := st.WriteJSON(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing trace file: %w", err)
	}
	return f.Close()
}

// LoadJSON reads a trace written by SaveJSON.
func LoadJSON(fileName string) (*SimulationTrace, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("reading trace file: %w", err)
	}
	var st SimulationTrace
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parsing trace file %s: %w", fileName, err)
	}
	return &st, nil
}
