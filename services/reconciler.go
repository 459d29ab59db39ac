package services

import (
	"context"
	"log/slog"
	"time"

	"go-restobook/helpers"
	"go-restobook/models"
)

// Reconciler heals the drift a failed write sequence can leave behind:
// dangling references, counters that disagree with their reference
// arrays, stale payment amounts and statuses that do not match what is
// attached to a reservation.
type Reconciler struct {
	*base
}

type ReconcileReport struct {
	Pruned             int64     `json:"pruned"`
	Recounted          int64     `json:"recounted"`
	PaymentsRecomputed int64     `json:"paymentsRecomputed"`
	StatusesRederived  int64     `json:"statusesRederived"`
	StartedAt          time.Time `json:"startedAt"`
	FinishedAt         time.Time `json:"finishedAt"`
}

func (r *Reconciler) Run(ctx context.Context) (*ReconcileReport, error) {
	report := &ReconcileReport{StartedAt: r.now()}
	var err error

	if report.Pruned, err = r.store.PruneDanglingReferences(ctx); err != nil {
		return nil, err
	}
	if report.Recounted, err = r.store.RecountReferences(ctx); err != nil {
		return nil, err
	}
	if report.PaymentsRecomputed, err = r.recomputePayments(ctx); err != nil {
		return nil, err
	}
	if report.StatusesRederived, err = r.rederiveStatuses(ctx); err != nil {
		return nil, err
	}
	report.FinishedAt = r.now()

	reconcileTouched.WithLabelValues("prune").Add(float64(report.Pruned))
	reconcileTouched.WithLabelValues("recount").Add(float64(report.Recounted))
	reconcileTouched.WithLabelValues("payments").Add(float64(report.PaymentsRecomputed))
	reconcileTouched.WithLabelValues("statuses").Add(float64(report.StatusesRederived))
	slog.Info("reconciliation finished",
		"pruned", report.Pruned,
		"recounted", report.Recounted,
		"payments", report.PaymentsRecomputed,
		"statuses", report.StatusesRederived,
		"took", report.FinishedAt.Sub(report.StartedAt))
	return report, nil
}

func (r *Reconciler) recomputePayments(ctx context.Context) (int64, error) {
	var touched int64
	err := r.store.EachPayment(ctx, func(p *models.Payment) error {
		total, deposit := helpers.PaymentAmounts(p.GuestsCount, p.ChargePerHead, p.DepositPercentage)
		if total == p.TotalAmount && deposit == p.DepositFee {
			return nil
		}
		touched++
		return r.store.PatchPayment(ctx, p.ID, models.PaymentPatch{TotalAmount: &total, DepositFee: &deposit})
	})
	return touched, err
}

func (r *Reconciler) rederiveStatuses(ctx context.Context) (int64, error) {
	var touched int64
	err := r.store.EachReservation(ctx, func(res *models.Reservation) error {
		want := models.DeriveStatus(len(res.Tables) > 0, res.Payment != nil)
		if res.Status == want {
			return nil
		}
		touched++
		return r.store.SetReservationStatus(ctx, res.ID, want)
	})
	return touched, err
}

// Start runs a reconciliation every interval until ctx is done.
func (r *Reconciler) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := r.Run(ctx); err != nil {
					slog.Error("scheduled reconciliation failed", "error", err)
				}
			}
		}
	}()
}
