// Package events defines the notification contract for task mutations.
//
// Every successful create, update, or delete publishes a human-readable
// event message to a topic. Publishing is fire-and-forget: a failed
// publish is logged but never rolls back or fails the mutation that
// already committed, keeping the notifier decoupled from the
// client-visible result.
package events
