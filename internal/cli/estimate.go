package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"PintellAPI/internal/analysis"
	"PintellAPI/internal/models"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	estimateIn     string
	estimateTarget float64
	estimateNow    string
	estimateJSON   bool
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate drying time for a recorded session",
	Long: `Fit the drying regression over the current session of a recorded
device history and extrapolate the time until the target value.

The input is YAML:

  device_id: 7
  events:
    - value: 3000
      created_at: 2025-06-01T10:00:00Z
    - session_start: true
      created_at: 2025-06-01T10:05:00Z

Examples:
  pintellctl estimate --in history.yaml
  pintellctl estimate --in history.yaml --target 250 --now 2025-06-01T12:00:00Z`,
	RunE: runEstimateCmd,
}

func init() {
	estimateCmd.Flags().StringVar(&estimateIn, "in", "", "YAML file with the device history (required)")
	estimateCmd.Flags().Float64Var(&estimateTarget, "target", 0, "Target sensor value")
	estimateCmd.Flags().StringVar(&estimateNow, "now", "", "Evaluation time (RFC 3339, defaults to the latest event)")
	estimateCmd.Flags().BoolVar(&estimateJSON, "json", false, "Print the estimate as JSON")
	estimateCmd.MarkFlagRequired("in")
}

type historyEntry struct {
	Value        float64   `yaml:"value"`
	CreatedAt    time.Time `yaml:"created_at"`
	SessionStart bool      `yaml:"session_start"`
}

type historyFile struct {
	DeviceID int            `yaml:"device_id"`
	Events   []historyEntry `yaml:"events"`
}

func (h historyFile) sessionEvents() []models.SessionEvent {
	events := make([]models.SessionEvent, 0, len(h.Events))
	for _, e := range h.Events {
		if e.SessionStart {
			events = append(events, models.SessionStart(e.CreatedAt))
			continue
		}
		events = append(events, models.Reading(models.Datapoint{Value: e.Value, CreatedAt: e.CreatedAt}))
	}
	return events
}

func (h historyFile) latest() time.Time {
	var latest time.Time
	for _, e := range h.Events {
		if e.CreatedAt.After(latest) {
			latest = e.CreatedAt
		}
	}
	return latest
}

func parseHistory(data []byte) (historyFile, error) {
	var h historyFile
	if err := yaml.Unmarshal(data, &h); err != nil {
		return h, fmt.Errorf("failed to parse history YAML: %w", err)
	}
	if len(h.Events) == 0 {
		return h, fmt.Errorf("history has no events")
	}
	return h, nil
}

func runEstimateCmd(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(estimateIn)
	if err != nil {
		return fmt.Errorf("failed to read history file: %w", err)
	}

	var now time.Time
	if estimateNow != "" {
		now, err = time.Parse(time.RFC3339, estimateNow)
		if err != nil {
			return fmt.Errorf("invalid --now: %w", err)
		}
	}

	return runEstimate(cmd.OutOrStdout(), data, estimateTarget, now, estimateJSON)
}

// runEstimate prints the estimate for the history in data. A zero now means
// the time of the latest event.
func runEstimate(w io.Writer, data []byte, target float64, now time.Time, asJSON bool) error {
	history, err := parseHistory(data)
	if err != nil {
		return err
	}
	if now.IsZero() {
		now = history.latest()
	}

	session := models.CurrentSession(history.sessionEvents())
	est := analysis.BuildDryingEstimate(history.DeviceID, session, target, now)

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(est)
	}

	fmt.Fprintf(w, "Device:      %d\n", est.DeviceID)
	fmt.Fprintf(w, "Session:     %d readings\n", est.SampleCount)
	fmt.Fprintf(w, "Moisture:    %d%%\n", est.MoisturePct)
	fmt.Fprintf(w, "Fit:         value = %.6f * t + %.2f\n", est.Slope, est.Intercept)
	fmt.Fprintf(w, "Target:      %.2f\n", est.TargetValue)
	if est.Estimable {
		fmt.Fprintf(w, "Remaining:   %v\n", time.Duration(*est.RemainingMs*float64(time.Millisecond)).Round(time.Second))
		fmt.Fprintf(w, "Done at:     %s\n", est.ExpectedDoneAt.Format(time.RFC3339))
	}
	fmt.Fprintf(w, "Estimate:    %s\n", est.Label)
	return nil
}
