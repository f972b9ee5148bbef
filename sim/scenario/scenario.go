// Package scenario reads the plain-text inputs of a run: the robot file holding the
// initial configuration and the schedule file driving the file scheduler.
//
// Robot file: the first line holds the robot count n, followed by n lines "x, y".
// Robot i is the i-th position line.
//
// Schedule file: one line per robot, "t1, t2, t3, ..." with non-decreasing
// timestamps; the k-th timestamp is the robot's k-th transition in the cycle
// START_COMPUTE, START_MOVING, END_MOVING. An empty line is a robot without
// transitions.
package scenario

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/inference-sim/swarm-sim/sim/geom"
)

func newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader
}

// ParseRobots reads a robot file.
func ParseRobots(r io.Reader) ([]geom.Vector, error) {
	reader := newReader(r)
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("robot file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("reading robot count: %w", err)
	}
	if len(header) != 1 {
		return nil, fmt.Errorf("line 1: expected the robot count, got %d fields", len(header))
	}
	n, err := strconv.Atoi(strings.TrimSpace(header[0]))
	if err != nil {
		return nil, fmt.Errorf("line 1: invalid robot count %q: %w", header[0], err)
	}
	if n < 1 {
		return nil, fmt.Errorf("line 1: robot count must be positive, got %d", n)
	}

	positions := make([]geom.Vector, 0, n)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading robot %d: %w", len(positions), err)
		}
		line, _ := reader.FieldPos(0)
		if len(positions) == n {
			return nil, fmt.Errorf("line %d: more than %d robot positions", line, n)
		}
		if len(record) != 2 {
			return nil, fmt.Errorf("line %d: expected \"x, y\", got %d fields", line, len(record))
		}
		values, err := parseFloats(record, line)
		if err != nil {
			return nil, err
		}
		positions = append(positions, geom.V(values[0], values[1]))
	}
	if len(positions) != n {
		return nil, fmt.Errorf("robot file announces %d robots but lists %d", n, len(positions))
	}
	return positions, nil
}

// LoadRobots reads the robot file at path.
func LoadRobots(path string) ([]geom.Vector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening robot file: %w", err)
	}
	defer f.Close()
	positions, err := ParseRobots(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return positions, nil
}

// WriteRobots writes positions in the robot file format. Coordinates use the
// shortest representation that parses back to the same float64.
func WriteRobots(w io.Writer, positions []geom.Vector) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", len(positions))
	for _, p := range positions {
		fmt.Fprintf(bw, "%s, %s\n", strconv.FormatFloat(p.X, 'g', -1, 64), strconv.FormatFloat(p.Y, 'g', -1, 64))
	}
	return bw.Flush()
}

// ParseSchedule reads a schedule file for robotCount robots. Lines are counted raw:
// a blank line is a robot that never acts. Blank lines past the last robot are ignored.
func ParseSchedule(r io.Reader, robotCount int) ([][]float64, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading schedule: %w", err)
	}
	for len(lines) > robotCount && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) != robotCount {
		return nil, fmt.Errorf("schedule has %d lines for %d robots", len(lines), robotCount)
	}

	times := make([][]float64, len(lines))
	for i, text := range lines {
		line := i + 1
		if strings.TrimSpace(text) == "" {
			times[i] = []float64{}
			continue
		}
		values, err := parseFloats(strings.Split(text, ","), line)
		if err != nil {
			return nil, err
		}
		for k := 1; k < len(values); k++ {
			if values[k] < values[k-1] {
				return nil, fmt.Errorf("line %d: timestamp %g after %g is not ascending", line, values[k], values[k-1])
			}
		}
		times[i] = values
	}
	return times, nil
}

// LoadSchedule reads the schedule file at path.
func LoadSchedule(path string, robotCount int) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening schedule file: %w", err)
	}
	defer f.Close()
	times, err := ParseSchedule(f, robotCount)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return times, nil
}

func parseFloats(record []string, line int) ([]float64, error) {
	values := make([]float64, len(record))
	for i, field := range record {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid number %q", line, field)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("line %d: %q is not a finite number", line, field)
		}
		values[i] = v
	}
	return values, nil
}
