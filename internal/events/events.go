package events

import (
	"context"
	"fmt"
)

// Notifier publishes a human-readable event message to a topic.
type Notifier interface {
	Publish(ctx context.Context, message string) error
}

// Event message constructors. The wording is part of the deployed
// topic's wire format and must not change.

// TareaCreated is the message published after a tarea is created.
func TareaCreated(id string) string {
	return fmt.Sprintf("Se ha creado una nueva tarea con el ID %s", id)
}

// TareaUpdated is the message published after a tarea is updated.
func TareaUpdated(id string) string {
	return fmt.Sprintf("Se ha actualizado la tarea con el ID %s", id)
}

// TareaDeleted is the message published after a tarea is deleted.
func TareaDeleted(id string) string {
	return fmt.Sprintf("Se ha eliminado la tarea con el ID %s", id)
}
