// internal/interactions/dispatch.go
package interactions

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/arbiter-gg/arbiter/internal/metrics"
)

// Event is one inbound interaction from the chat platform: a button press or
// command referencing a lobby announce message.
type Event struct {
	CallerID  uuid.UUID `json:"caller_id"`
	MessageID string    `json:"message_id"`

	// ActionID selects the handler. An argument may ride after a colon, e.g.
	// "invite:4171323".
	ActionID string `json:"action_id"`
}

// Arg returns the argument portion of the action id, if any.
func (ev Event) Arg() string {
	if _, arg, ok := strings.Cut(ev.ActionID, ":"); ok {
		return arg
	}
	return ""
}

// Reply is the single user-visible response to an interaction.
type Reply struct {
	Content   string `json:"content"`
	Ephemeral bool   `json:"ephemeral"`
}

// HandlerFunc handles one interaction and returns its reply. Handlers never
// return errors: every failure path is folded into the reply.
type HandlerFunc func(ctx context.Context, ev Event) Reply

// Dispatcher routes interactions by action id and guarantees exactly one
// reply per event, whatever the handler does.
type Dispatcher struct {
	handlers map[string]HandlerFunc
	logger   *logrus.Logger
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher(logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]HandlerFunc),
		logger:   logger,
	}
}

// Register binds an action id (the part before any colon) to a handler.
// Registration happens at startup; Dispatch may run concurrently afterwards.
func (d *Dispatcher) Register(actionID string, fn HandlerFunc) {
	d.handlers[actionID] = fn
}

// Dispatch resolves and runs the handler for the event. Unknown actions and
// handler panics both produce a normal failure reply: the caller always gets
// exactly one.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) (reply Reply) {
	action, _, _ := strings.Cut(ev.ActionID, ":")

	defer func() {
		if r := recover(); r != nil {
			d.logger.WithFields(logrus.Fields{
				"action": action,
				"caller": ev.CallerID,
			}).Errorf("interaction handler panicked: %v", r)
			metrics.InteractionReplies.WithLabelValues(action, "panic").Inc()
			reply = Reply{Content: "Something went wrong handling that action.", Ephemeral: true}
		}
	}()

	fn, ok := d.handlers[action]
	if !ok {
		d.logger.WithField("action", action).Warn("unknown interaction action")
		metrics.InteractionReplies.WithLabelValues(action, "unknown").Inc()
		return Reply{Content: "Unknown action.", Ephemeral: true}
	}

	return fn(ctx, ev)
}
