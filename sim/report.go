// Flat key-value reporting of a finished run's statistics, one parameter
// per line, suitable for external tooling to diff between runs.

package sim

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// ReportEntry is one named statistic of a finished run.
type ReportEntry struct {
	Key   string
	Value float64
}

// Report returns the final statistics of the last run as an ordered list
// of entries. Key order is fixed so reports from different runs diff
// cleanly line by line.
func (sim *Simulator) Report() []ReportEntry {
	m := sim.metrics
	return []ReportEntry{
		{"simulation_time", sim.clock},
		{"total_arrivals", float64(m.Arrivals)},
		{"jobs_completed", float64(m.Completions)},
		{"jobs_lost", float64(m.Losses)},
		{"avg_wait_time", m.MeanWaitTime()},
		{"wait_time_variance", m.WaitTimeVariance()},
		{"avg_system_time", m.MeanSystemTime()},
		{"system_time_variance", m.SystemTimeVariance()},
		{"server_utilization", sim.Utilization()},
		{"avg_busy_servers", sim.AvgBusyServers()},
		{"loss_probability", m.LossProbability()},
		{"avg_queue_length", sim.AvgQueueLength()},
		{"arrival_intensity", 1.0 / sim.cfg.ArrivalGen.Mean()},
		{"service_intensity", 1.0 / sim.cfg.ServiceGen.Mean()},
		{"rho", sim.Rho()},
	}
}

// WriteReport writes entries to w, one "key value" line each.
func WriteReport(w io.Writer, entries []ReportEntry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s %.6f\n", e.Key, e.Value); err != nil {
			return fmt.Errorf("writing report entry %s: %w", e.Key, err)
		}
	}
	return nil
}

// SaveReport writes entries to the named file, truncating it.
func SaveReport(path string, entries []ReportEntry) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			logrus.Errorf("closing report file %s: %v", path, cerr)
		}
	}()

	if err := WriteReport(file, entries); err != nil {
		return err
	}
	logrus.Infof("Statistics saved to %s", path)
	return nil
}
