// sim/metrics_utils.go
package sim

import (
	"bufio"
	"fmt"
	"os"
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// CalculatePercentile returns the p-th percentile (0-100) of data using the
// empirical quantile. data is not modified. Returns 0 for empty data.
func CalculatePercentile(data []float64, p float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	return stat.Quantile(p/100, stat.Empirical, sorted, nil)
}

// SaveDistances writes one "id, distance" line per robot, ordered by ID.
func (m *Metrics) SaveDistances(fileName string) error {
	file, err := os.OpenFile(fileName, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", fileName, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			logrus.Errorf("Error closing file %s: %v", fileName, closeErr)
		}
	}()

	writer := bufio.NewWriter(file)
	ids := make([]int, 0, len(m.Distances))
	for id := range m.Distances {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if _, err := fmt.Fprintf(writer, "%d, %.9f\n", id, m.Distances[id]); err != nil {
			return fmt.Errorf("writing %s: %w", fileName, err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flushing %s: %w", fileName, err)
	}

	logrus.Debugf("Successfully wrote to '%s'", fileName)
	return nil
}
