package hermes

import (
	"errors"
	"time"
)

// Publisher is the raw JSON publish surface, satisfied by *Client.
type Publisher interface {
	Publish(subject string, data any) error
}

// Events publishes reviewlens events on their fixed subjects. Missing
// timestamps are stamped at publish time.
type Events struct {
	pub Publisher
	now func() time.Time
}

func NewEvents(pub Publisher) *Events {
	return &Events{pub: pub, now: time.Now}
}

var errNoBusiness = errors.New("event has no business")

func (e *Events) stamp(ts time.Time) time.Time {
	if ts.IsZero() {
		return e.now().UTC()
	}
	return ts
}

func (e *Events) AnalysisCompleted(evt AnalysisCompleted) error {
	if evt.Business == "" {
		return errNoBusiness
	}
	if evt.TopThemes == nil {
		evt.TopThemes = []string{}
	}
	evt.Timestamp = e.stamp(evt.Timestamp)
	return e.pub.Publish(SubjectAnalysisCompleted, evt)
}

func (e *Events) RecommendationsGenerated(evt RecommendationsGenerated) error {
	if evt.Business == "" {
		return errNoBusiness
	}
	evt.Timestamp = e.stamp(evt.Timestamp)
	return e.pub.Publish(SubjectRecommendationsGenerated, evt)
}

// AgentRegistered announces this instance on startup.
func (e *Events) AgentRegistered(evt AgentRegistered) error {
	if evt.Service == "" {
		evt.Service = "reviewlens"
	}
	evt.Timestamp = e.stamp(evt.Timestamp)
	return e.pub.Publish(SubjectAgentRegistered, evt)
}
