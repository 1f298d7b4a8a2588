package panel

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/USA-RedDragon/arm-panel/internal/events"
	"github.com/USA-RedDragon/arm-panel/internal/rosbridge"
)

const (
	successMarker      = "✅"
	consoleClearedText = "[System] Console cleared"
	consoleTimeLayout  = "15:04:05"
)

type ConsoleEntry struct {
	Time  time.Time    `json:"time"`
	Level events.Level `json:"level"`
	Text  string       `json:"text"`
}

// Line renders the entry the way the console shows it.
func (e ConsoleEntry) Line() string {
	if e.Time.IsZero() {
		return e.Text
	}
	return "[" + e.Time.Format(consoleTimeLayout) + "] " + e.Text
}

// Classify maps a script result payload to its console level.
func Classify(payload string) events.Level {
	if strings.HasPrefix(payload, successMarker) {
		return events.LevelSuccess
	}
	return events.LevelError
}

// Console is the append-only result log. It is presentation state: clearing
// it never touches the connection.
type Console struct {
	mu         sync.Mutex
	entries    []ConsoleEntry
	maxEntries int
	notifier   Notifier
	recorder   Recorder
	metrics    Metrics
	onClear    func([]ConsoleEntry)
	now        func() time.Time
}

func NewConsole(maxEntries int, notifier Notifier, recorder Recorder, metrics Metrics) *Console {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Console{
		maxEntries: maxEntries,
		notifier:   notifier,
		recorder:   recorder,
		metrics:    metrics,
		now:        time.Now,
	}
}

// OnClear registers fn to receive the transcript that a Clear discards.
func (c *Console) OnClear(fn func([]ConsoleEntry)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onClear = fn
}

// OnResult handles one message from the script result topic.
func (c *Console) OnResult(payload string) {
	level := Classify(payload)
	c.Log(level, payload)
	c.metrics.IncrementScriptResults(string(level))
	c.recorder.Record(KindResult, payload, string(level), nil)
}

// handleResultMessage decodes a std_msgs/String frame and logs it.
func (c *Console) handleResultMessage(raw json.RawMessage) {
	var msg rosbridge.String
	if err := json.Unmarshal(raw, &msg); err != nil {
		slog.Warn("Error unmarshalling script result", "error", err)
		return
	}
	c.OnResult(msg.Data)
}

func (c *Console) Log(level events.Level, text string) {
	entry := ConsoleEntry{Time: c.now(), Level: level, Text: text}

	c.mu.Lock()
	c.entries = append(c.entries, entry)
	if c.maxEntries > 0 && len(c.entries) > c.maxEntries {
		c.entries = append([]ConsoleEntry(nil), c.entries[len(c.entries)-c.maxEntries:]...)
	}
	c.mu.Unlock()

	c.notifier.Publish(events.ConsoleEvent{
		Time:  entry.Time,
		Level: entry.Level,
		Text:  entry.Text,
		Line:  entry.Line(),
	})
}

func (c *Console) Entries() []ConsoleEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ConsoleEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Clear resets the log to a single system line.
func (c *Console) Clear() {
	c.mu.Lock()
	previous := c.entries
	c.entries = []ConsoleEntry{{Level: events.LevelSystem, Text: consoleClearedText}}
	onClear := c.onClear
	c.mu.Unlock()

	c.notifier.Publish(events.ConsoleClearedEvent{Line: consoleClearedText})

	transcript := make([]ConsoleEntry, 0, len(previous))
	for _, entry := range previous {
		if entry.Level == events.LevelSystem {
			continue
		}
		transcript = append(transcript, entry)
	}
	if onClear != nil && len(transcript) > 0 {
		onClear(transcript)
	}
}
