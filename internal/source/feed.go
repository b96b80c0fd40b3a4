package source

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/toastd/internal/model"
)

// FeedEntry is one toast in the feed input format.
type FeedEntry struct {
	Summary  string `json:"summary"`
	Body     string `json:"body,omitempty"`
	Category string `json:"category,omitempty"`
}

// Feeder reads toast entries from a reader and delivers each one as an
// org.freedesktop.Notifications Notify call on the session bus, where a
// running daemon's Monitor picks them up. Each input line is either a JSON
// FeedEntry or a plain summary.
type Feeder struct {
	reader io.Reader
	logger *slog.Logger

	// send delivers one entry; replaced in tests.
	send func(FeedEntry) error
}

// NewFeeder creates a feeder reading from r.
func NewFeeder(r io.Reader, logger *slog.Logger) *Feeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Feeder{reader: r, logger: logger}
}

// Run reads entries until EOF and sends each one, returning the number of
// entries delivered. Blank lines are skipped; a malformed JSON line is an
// error rather than silently treated as plain text.
func (f *Feeder) Run() (int, error) {
	if f.send == nil {
		conn, err := dbus.SessionBus()
		if err != nil {
			return 0, fmt.Errorf("failed to connect to session bus: %w", err)
		}
		defer conn.Close()
		f.send = func(entry FeedEntry) error {
			return sendNotify(conn, entry)
		}
	}

	scanner := bufio.NewScanner(f.reader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	sent := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		entry, err := parseFeedLine(line)
		if err != nil {
			return sent, err
		}
		if entry.Summary == "" {
			continue
		}

		if err := f.send(entry); err != nil {
			return sent, fmt.Errorf("failed to send %q: %w", entry.Summary, err)
		}
		f.logger.Debug("fed toast", "summary", entry.Summary, "category", entry.Category)
		sent++
	}
	if err := scanner.Err(); err != nil {
		return sent, fmt.Errorf("failed to read input: %w", err)
	}
	return sent, nil
}

// parseFeedLine parses one input line. Lines starting with '{' are JSON
// entries, anything else is a bare summary.
func parseFeedLine(line string) (FeedEntry, error) {
	if !strings.HasPrefix(line, "{") {
		return FeedEntry{Summary: line}, nil
	}

	var entry FeedEntry
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		return FeedEntry{}, fmt.Errorf("malformed feed entry: %w", err)
	}
	return entry, nil
}

// notifyHints builds the hint map for one entry. The category rides along as
// its own hint so the Monitor recovers it exactly; urgency is kept for
// ordinary notification daemons that only understand urgency.
func notifyHints(entry FeedEntry) map[string]dbus.Variant {
	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(byte(urgencyFromCategory(entry.Category))),
	}
	if entry.Category != "" {
		hints["category"] = dbus.MakeVariant(entry.Category)
	}
	return hints
}

// sendNotify issues the freedesktop Notify call for one entry.
func sendNotify(conn *dbus.Conn, entry FeedEntry) error {
	hints := notifyHints(entry)

	obj := conn.Object("org.freedesktop.Notifications", "/org/freedesktop/Notifications")
	call := obj.Call("org.freedesktop.Notifications.Notify", 0,
		"toastd",    // app_name
		uint32(0),   // replaces_id
		"",          // app_icon
		entry.Summary,
		entry.Body,
		[]string{},  // actions
		hints,
		int32(-1),   // expire_timeout
	)
	return call.Err
}

// urgencyFromCategory maps a toast category back to a freedesktop urgency,
// the inverse of the Monitor's mapping.
func urgencyFromCategory(cat string) int {
	if model.Category(cat) == model.CategoryError {
		return urgencyCritical
	}
	return urgencyNormal
}
