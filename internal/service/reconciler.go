package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/phrazzld/tarea-api/internal/domain"
	"github.com/phrazzld/tarea-api/internal/store"
)

// attachmentDelta is the outcome of reconciling a tarea's existing
// attachment set against the client's desired one.
type attachmentDelta struct {
	// toDelete holds the names present before but absent from the
	// desired set; their objects must be removed.
	toDelete []string
	// final is the attachment list to persist: kept names first, newly
	// uploaded names after, in their original order.
	final []string
}

// reconcileAttachments computes which objects to delete and what the
// final attachment list looks like. Pure computation; it issues no I/O.
//
// The cardinality and uniqueness invariants are checked here, before
// the caller performs any delete or upload, so a rejected update leaves
// the object store untouched.
func reconcileAttachments(existing, desired, uploaded []string) (attachmentDelta, error) {
	keep := make(map[string]struct{}, len(desired))
	for _, name := range desired {
		keep[name] = struct{}{}
	}

	var toDelete []string
	for _, name := range existing {
		if _, kept := keep[name]; !kept {
			toDelete = append(toDelete, name)
		}
	}

	final := make([]string, 0, len(desired)+len(uploaded))
	final = append(final, desired...)
	final = append(final, uploaded...)

	if err := domain.ValidateFileNames(final); err != nil {
		return attachmentDelta{}, err
	}

	return attachmentDelta{toDelete: toDelete, final: final}, nil
}

// deleteObjects removes the named objects in parallel. The keys are
// independent, but the phase as a whole is a barrier: it returns only
// once every delete has completed, and any failure fails the phase.
//
// A partial failure leaves already-deleted objects gone while the task
// record still references them; the caller must not persist the record
// in that case.
func deleteObjects(ctx context.Context, objects store.ObjectStore, names []string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, name := range names {
		g.Go(func() error {
			return objects.Delete(ctx, name)
		})
	}
	return g.Wait()
}
