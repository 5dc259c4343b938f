package realtime

import "go.uber.org/zap"

// Event names pushed to clients.
const (
	EventNewApplication          = "newApplication"
	EventApplicationStatusUpdate = "applicationStatusUpdate"
	EventApplicationNoteAdded    = "applicationNoteAdded"
	EventNewJobPosted            = "newJobPosted"
	EventJobAlertMatch           = "jobAlertMatch"
)

// Hooks carries the metric callbacks injected by main. Nil fields are no-ops.
type Hooks struct {
	OnDelivered func(event string)
	OnDropped   func(event string)
}

// Notifier pushes events to live connections on a best-effort basis.
// Nothing is queued or retried: an offline user or a full send buffer
// means the event is gone.
type Notifier struct {
	registry *Registry
	conns    *ConnSet
	logger   *zap.Logger

	onDelivered func(event string)
	onDropped   func(event string)
}

func NewNotifier(registry *Registry, conns *ConnSet, logger *zap.Logger, hooks Hooks) *Notifier {
	n := &Notifier{
		registry:    registry,
		conns:       conns,
		logger:      logger,
		onDelivered: hooks.OnDelivered,
		onDropped:   hooks.OnDropped,
	}
	if n.onDelivered == nil {
		n.onDelivered = func(string) {}
	}
	if n.onDropped == nil {
		n.onDropped = func(string) {}
	}
	return n
}

// Notify sends event to userID's live connection if one is registered.
// The caller never learns whether delivery happened.
func (n *Notifier) Notify(userID, event string, payload any) {
	h, ok := n.registry.Lookup(userID)
	if !ok {
		n.onDropped(event)
		return
	}
	if !h.Send(Event{Name: event, Data: payload}) {
		n.logger.Debug("push dropped: send buffer full",
			zap.String("user_id", userID), zap.String("event", event))
		n.onDropped(event)
		return
	}
	n.onDelivered(event)
}

// NotifyMany applies Notify to each ID independently.
func (n *Notifier) NotifyMany(userIDs []string, event string, payload any) {
	for _, id := range userIDs {
		n.Notify(id, event, payload)
	}
}

// Broadcast sends event to every open connection, including anonymous ones
// that never registered a user ID. Returns the number of connections that
// accepted the event.
func (n *Notifier) Broadcast(event string, payload any) int {
	evt := Event{Name: event, Data: payload}
	sent := 0
	for _, h := range n.conns.Snapshot() {
		if h.Send(evt) {
			sent++
		}
	}
	n.logger.Debug("broadcast", zap.String("event", event), zap.Int("recipients", sent))
	return sent
}
