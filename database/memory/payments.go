package memory

import (
	"context"

	"go-restobook/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (s *Store) CreatePayment(ctx context.Context, p *models.Payment) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payments[p.ID]; ok {
		return false, nil
	}
	c := *p
	s.payments[p.ID] = &c
	return true, nil
}

func (s *Store) FindPayment(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payments[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (s *Store) PatchPayment(ctx context.Context, id primitive.ObjectID, patch models.PaymentPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	if !ok {
		return models.ErrNotFound
	}
	if patch.GuestsCount != nil {
		p.GuestsCount = *patch.GuestsCount
	}
	if patch.ChargePerHead != nil {
		p.ChargePerHead = *patch.ChargePerHead
	}
	if patch.DepositPercentage != nil {
		p.DepositPercentage = *patch.DepositPercentage
	}
	if patch.TotalAmount != nil {
		p.TotalAmount = *patch.TotalAmount
	}
	if patch.DepositFee != nil {
		p.DepositFee = *patch.DepositFee
	}
	if patch.PaymentMethod != nil {
		p.PaymentMethod = *patch.PaymentMethod
	}
	if patch.DateOfPayment != nil {
		p.DateOfPayment = patch.DateOfPayment
	}
	return nil
}

func (s *Store) DeletePayment(ctx context.Context, id primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.payments[id]
	delete(s.payments, id)
	return ok, nil
}
