package pubsub

import "medchain/internal/domain/entity"

// eventAttributes are the message attributes subscribers filter on.
func eventAttributes(event *entity.WorkflowEvent) map[string]string {
	attributes := map[string]string{
		"workflow_id": event.WorkflowID,
		"action":      event.Action.String(),
		"state":       string(event.State),
		"actor":       event.Actor,
	}
	if event.RequestID != "" {
		attributes["request_id"] = event.RequestID
	}
	if event.JournalID != "" {
		attributes["journal_id"] = event.JournalID
	}

	return attributes
}
