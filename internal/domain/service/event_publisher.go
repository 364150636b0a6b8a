package service

import (
	"context"

	"medchain/internal/domain/entity"
)

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishWorkflowEvent publishes the terminal state of a workflow instance
	PublishWorkflowEvent(ctx context.Context, event *entity.WorkflowEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
