package services

import (
	"context"
	"log/slog"

	"go-restobook/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type step struct {
	name string
	run  func(ctx context.Context) error
}

func (b *base) newWorkflow(kind models.WorkflowKind, reservation primitive.ObjectID, payload models.WorkflowPayload) *models.Workflow {
	t := b.now()
	return &models.Workflow{
		ID:          primitive.NewObjectID(),
		Kind:        kind,
		Reservation: reservation,
		Payload:     payload,
		StartedAt:   t,
		UpdatedAt:   t,
	}
}

// runWorkflow executes steps from wf.Cursor on, recording the cursor after
// each one. A new workflow (empty state) is inserted first. Bookkeeping
// writes ignore request cancellation so the record matches what was
// actually written.
func (b *base) runWorkflow(ctx context.Context, wf *models.Workflow, steps []step) error {
	bg := context.WithoutCancel(ctx)
	log := slog.With("workflow", wf.ID.Hex(), "kind", wf.Kind, "reservation", wf.Reservation.Hex())

	if wf.State == "" {
		wf.Steps = make([]string, len(steps))
		for i, s := range steps {
			wf.Steps[i] = s.name
		}
		wf.State = models.WorkflowRunning
		if err := b.store.InsertWorkflow(ctx, wf); err != nil {
			return err
		}
	} else {
		wf.State = models.WorkflowRunning
		if err := b.store.UpdateWorkflow(bg, wf.ID, wf.State, wf.Cursor, ""); err != nil {
			return err
		}
	}

	for i := wf.Cursor; i < len(steps); i++ {
		if err := steps[i].run(ctx); err != nil {
			workflowSteps.WithLabelValues(string(wf.Kind), steps[i].name, "failed").Inc()
			wf.State, wf.Cursor, wf.Error = models.WorkflowFailed, i, err.Error()
			if uerr := b.store.UpdateWorkflow(bg, wf.ID, wf.State, i, wf.Error); uerr != nil {
				log.Error("recording failed workflow", "step", steps[i].name, "error", uerr)
			}
			log.Error("workflow step failed", "step", steps[i].name, "cursor", i, "error", err)
			b.publish(ctx, models.Event{
				Event:       models.EventWorkflowFailed,
				Reservation: idPtr(wf.Reservation),
				Payload:     failureSummary(wf, steps[i].name),
			})
			if i == 0 {
				return err
			}
			return &models.StepError{Workflow: wf.ID.Hex(), Step: steps[i].name, Err: err}
		}
		workflowSteps.WithLabelValues(string(wf.Kind), steps[i].name, "ok").Inc()
		wf.Cursor = i + 1
		if wf.Cursor < len(steps) {
			if err := b.store.UpdateWorkflow(bg, wf.ID, models.WorkflowRunning, wf.Cursor, ""); err != nil {
				log.Warn("recording workflow cursor", "cursor", wf.Cursor, "error", err)
			}
		}
	}

	wf.State, wf.Error = models.WorkflowCompleted, ""
	if err := b.store.UpdateWorkflow(bg, wf.ID, wf.State, wf.Cursor, ""); err != nil {
		log.Warn("recording completed workflow", "error", err)
	}
	log.Debug("workflow completed")
	return nil
}

func failureSummary(wf *models.Workflow, step string) map[string]interface{} {
	return map[string]interface{}{
		"workflow": wf.ID.Hex(),
		"kind":     wf.Kind,
		"step":     step,
		"error":    wf.Error,
	}
}
