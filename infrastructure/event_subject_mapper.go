package infrastructure

import (
	"fmt"

	"jackpot/events"
)

// NATS subjects for jackpot domain events
const (
	SubjectWagerSettled     = "jackpot.wagers.settled"
	SubjectJackpotHit       = "jackpot.jackpots.hit"
	SubjectAllowanceClaimed = "jackpot.allowance.claimed"
	SubjectAccountCreated   = "jackpot.accounts.created"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeWagerSettled:
		return SubjectWagerSettled
	case events.EventTypeJackpotHit:
		return SubjectJackpotHit
	case events.EventTypeAllowanceClaimed:
		return SubjectAllowanceClaimed
	case events.EventTypeAccountCreated:
		return SubjectAccountCreated
	default:
		return fmt.Sprintf("jackpot.unknown.%s", event.Type())
	}
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	switch subject {
	case SubjectWagerSettled:
		return events.EventTypeWagerSettled
	case SubjectJackpotHit:
		return events.EventTypeJackpotHit
	case SubjectAllowanceClaimed:
		return events.EventTypeAllowanceClaimed
	case SubjectAccountCreated:
		return events.EventTypeAccountCreated
	default:
		return events.EventType(subject)
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		SubjectWagerSettled,
		SubjectJackpotHit,
		SubjectAllowanceClaimed,
		SubjectAccountCreated,
	}
}
