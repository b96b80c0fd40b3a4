// Package source ingests toasts from external notification systems.
package source

import (
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/toastd/internal/model"
	"github.com/jmylchreest/toastd/internal/store"
)

// Freedesktop urgency levels.
const (
	urgencyLow      = 0
	urgencyNormal   = 1
	urgencyCritical = 2
)

// Monitor passively observes org.freedesktop.Notifications traffic without
// claiming the name, so it can run alongside a regular notification daemon,
// and feeds every Notify call into the shared toast store.
type Monitor struct {
	conn   *dbus.Conn
	store  *store.Store
	logger *slog.Logger

	// defaultHeight is the declared layout height applied to ingested
	// toasts; D-Bus notifications carry no layout information.
	defaultHeight float64
}

// NewMonitor creates a notification monitor feeding the given store.
func NewMonitor(st *store.Store, defaultHeight float64, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		store:         st,
		logger:        logger,
		defaultHeight: defaultHeight,
	}
}

// Start begins monitoring D-Bus for notification traffic.
func (m *Monitor) Start() error {
	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	m.conn = conn

	rules := []string{
		"type='method_call',interface='org.freedesktop.Notifications',member='Notify'",
	}

	err = conn.BusObject().Call(
		"org.freedesktop.DBus.Monitoring.BecomeMonitor",
		0,
		rules,
		uint32(0),
	).Err
	if err != nil {
		return fmt.Errorf("BecomeMonitor failed: %w", err)
	}

	m.logger.Info("started D-Bus notification monitor")

	go m.processMessages()
	return nil
}

// processMessages reads and processes D-Bus messages.
func (m *Monitor) processMessages() {
	ch := make(chan *dbus.Message, 100)
	m.conn.Eavesdrop(ch)

	for msg := range ch {
		if msg.Type != dbus.TypeMethodCall {
			continue
		}
		if msg.Headers[dbus.FieldInterface].Value() != "org.freedesktop.Notifications" {
			continue
		}
		if msg.Headers[dbus.FieldMember].Value() != "Notify" {
			continue
		}
		m.handleNotify(msg)
	}
}

// handleNotify converts a Notify method call into a toast and shows it.
func (m *Monitor) handleNotify(msg *dbus.Message) {
	// Notify(app_name, replaces_id, app_icon, summary, body, actions, hints, expire_timeout)
	if len(msg.Body) < 8 {
		m.logger.Warn("malformed Notify call", "body_len", len(msg.Body))
		return
	}

	appName, _ := msg.Body[0].(string)
	summary, ok := msg.Body[3].(string)
	if !ok {
		m.logger.Warn("invalid summary type")
		return
	}
	body, _ := msg.Body[4].(string)
	hints, _ := msg.Body[6].(map[string]dbus.Variant)

	toast, err := model.NewToast(summary, m.defaultHeight)
	if err != nil {
		m.logger.Warn("failed to create toast", "error", err)
		return
	}
	toast.Body = body
	toast.Category = categoryFromHints(hints)

	m.logger.Debug("captured notification",
		"app", appName,
		"summary", summary,
		"category", toast.Category)

	if err := m.store.Show(*toast); err != nil {
		m.logger.Warn("failed to show toast", "error", err)
	}
}

// categoryFromHints derives a toast category from notification hints. An
// explicit category hint wins (the feeder attaches one); otherwise urgency is
// mapped, with critical surfacing as error and everything else as general.
func categoryFromHints(hints map[string]dbus.Variant) model.Category {
	if hints == nil {
		return model.CategoryGeneral
	}

	if catVariant, ok := hints["category"]; ok {
		if cat, ok := catVariant.Value().(string); ok && cat != "" {
			return model.Category(cat)
		}
	}

	urgencyVariant, ok := hints["urgency"]
	if !ok {
		return model.CategoryGeneral
	}

	var urgency int
	switch v := urgencyVariant.Value().(type) {
	case byte:
		urgency = int(v)
	case uint32:
		urgency = int(v)
	case int32:
		urgency = int(v)
	default:
		return model.CategoryGeneral
	}

	switch urgency {
	case urgencyCritical:
		return model.CategoryError
	case urgencyLow, urgencyNormal:
		return model.CategoryGeneral
	default:
		return model.CategoryGeneral
	}
}

// Stop stops the monitor.
func (m *Monitor) Stop() error {
	if m.conn != nil {
		return m.conn.Close()
	}
	return nil
}
