package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"PintellAPI/internal/models"
	"PintellAPI/internal/notify"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var replayIn string

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay readings through the notification engine",
	Long: `Feed a recorded sequence of battery and moisture readings through a
fresh notification engine and print every notification that fires.

The input is YAML:

  settings:
    battery_notifications: true
    battery_tags: ["20%", "100%"]
    moisture_notifications: true
    moisture_tags: ["0-2%"]
  steps:
    - device: "1"
      battery: 30
    - device: "1"
      battery: 15
      moisture: 1
      advance: 10m

Examples:
  pintellctl replay --in readings.yaml
  pintellctl replay --in readings.yaml -v`,
	RunE: runReplayCmd,
}

func init() {
	replayCmd.Flags().StringVar(&replayIn, "in", "", "YAML file with settings and readings (required)")
	replayCmd.MarkFlagRequired("in")
}

const replayUser = "replay"

type replayStep struct {
	Device   string        `yaml:"device"`
	Battery  *int          `yaml:"battery"`
	Moisture *int          `yaml:"moisture"`
	Advance  time.Duration `yaml:"advance"`
}

type replayFile struct {
	Start    time.Time                   `yaml:"start"`
	Settings models.NotificationSettings `yaml:"settings"`
	Steps    []replayStep                `yaml:"steps"`
}

// fixedSettings hands every user the same settings.
type fixedSettings models.NotificationSettings

func (s fixedSettings) Lookup(username string) (models.NotificationSettings, error) {
	return models.NotificationSettings(s), nil
}

type firedCollector struct {
	fired []models.Notification
}

func (c *firedCollector) Publish(n models.Notification) {
	c.fired = append(c.fired, n)
}

func runReplayCmd(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(replayIn)
	if err != nil {
		return fmt.Errorf("failed to read replay file: %w", err)
	}
	return runReplay(cmd.OutOrStdout(), data)
}

func runReplay(w io.Writer, data []byte) error {
	var rf replayFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return fmt.Errorf("failed to parse replay YAML: %w", err)
	}
	if len(rf.Steps) == 0 {
		return fmt.Errorf("replay has no steps")
	}

	now := rf.Start
	if now.IsZero() {
		now = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	collector := &firedCollector{}
	engine := notify.NewEngine(fixedSettings(rf.Settings),
		notify.WithStore(notify.NewMemoryStore()),
		notify.WithPublisher(collector),
		notify.WithClock(func() time.Time { return now }),
		notify.WithLogger(newLogger()),
	)

	for i, step := range rf.Steps {
		if step.Device == "" {
			return fmt.Errorf("step %d: device is required", i+1)
		}
		now = now.Add(step.Advance)

		before := len(collector.fired)
		if step.Battery != nil {
			engine.HandleBatteryUpdate(replayUser, step.Device, *step.Battery)
		}
		if step.Moisture != nil {
			engine.HandleMoistureUpdate(replayUser, step.Device, *step.Moisture)
		}

		for _, n := range collector.fired[before:] {
			fmt.Fprintf(w, "step %-3d %s  %-8s %-6s %s\n",
				i+1, now.Format(time.RFC3339), n.Type, n.Threshold, n.Title)
		}
	}

	fmt.Fprintf(w, "%d notifications fired, %d unread\n", len(collector.fired), engine.UnreadCount())
	return nil
}
