package provisioning

import "github.com/rs/zerolog"

// Observer receives structured progress events during provisioning.
// A no-op outcome is a normal event, reported distinctly from creates
// and updates, never as an error.
type Observer interface {
	// PlanComputed is emitted once per run with the plan tallies.
	PlanComputed(plan Plan)

	// ActionStarted is emitted before a create or update is issued.
	ActionStarted(a Action)

	// ActionCompleted is emitted after an action finishes, including
	// no-ops that were skipped because the resource already matches.
	ActionCompleted(a Action)

	// ActionFailed is emitted when an action fails; execution stops.
	ActionFailed(a Action, err error)
}

// LogObserver logs provisioning events through zerolog.
type LogObserver struct {
	log zerolog.Logger
}

// NewLogObserver creates an observer writing to the given logger.
func NewLogObserver(log zerolog.Logger) *LogObserver {
	return &LogObserver{log: log}
}

func (o *LogObserver) PlanComputed(plan Plan) {
	create, update, noop := plan.Counts()
	o.log.Info().
		Int("create", create).
		Int("update", update).
		Int("noop", noop).
		Msg("reconciliation plan computed")
}

func (o *LogObserver) ActionStarted(a Action) {
	o.log.Info().
		Str("resource", a.Target()).
		Str("op", string(a.Op)).
		Msg("applying")
}

func (o *LogObserver) ActionCompleted(a Action) {
	event := o.log.Info().Str("resource", a.Target()).Str("op", string(a.Op))
	if a.Op == OpNoOp {
		event.Msg("already matches desired state")
		return
	}
	event.Msg("applied")
}

func (o *LogObserver) ActionFailed(a Action, err error) {
	o.log.Error().
		Str("resource", a.Target()).
		Str("op", string(a.Op)).
		Err(err).
		Msg("action failed")
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) PlanComputed(Plan)         {}
func (NopObserver) ActionStarted(Action)      {}
func (NopObserver) ActionCompleted(Action)    {}
func (NopObserver) ActionFailed(Action, error) {}
