package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/z5702god/resume-backend/internal/model"
)

// memoryOrderRepo keeps pending and paid orders in two disjoint maps.
// State is lost on restart.
type memoryOrderRepo struct {
	mu      sync.RWMutex
	pending map[string]model.Order
	paid    map[string]model.Order
}

func NewMemoryOrderRepository() OrderRepository {
	return &memoryOrderRepo{
		pending: make(map[string]model.Order),
		paid:    make(map[string]model.Order),
	}
}

func (r *memoryOrderRepo) Admit(ctx context.Context, order *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, inPending := r.pending[order.OrderID]
	_, inPaid := r.paid[order.OrderID]
	if inPending || inPaid {
		return fmt.Errorf("admit %s: %w", order.OrderID, ErrOrderExists)
	}

	now := time.Now()
	order.Status = model.OrderStatusPending
	order.PaidAt = nil
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	r.pending[order.OrderID] = *order
	return nil
}

func (r *memoryOrderRepo) Promote(ctx context.Context, orderID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.paid[orderID]; ok {
		return false, nil
	}

	order, ok := r.pending[orderID]
	if !ok {
		return false, fmt.Errorf("promote %s: %w", orderID, ErrOrderNotFound)
	}

	now := time.Now()
	order.Status = model.OrderStatusPaid
	order.PaidAt = &now
	order.UpdatedAt = now

	r.paid[orderID] = order
	delete(r.pending, orderID)
	return true, nil
}

func (r *memoryOrderRepo) Find(ctx context.Context, orderID string) (*model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if order, ok := r.paid[orderID]; ok {
		return &order, nil
	}
	if order, ok := r.pending[orderID]; ok {
		return &order, nil
	}
	return nil, fmt.Errorf("find %s: %w", orderID, ErrOrderNotFound)
}

func (r *memoryOrderRepo) FindPending(ctx context.Context, orderID string) (*model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.pending[orderID]
	if !ok {
		return nil, fmt.Errorf("find pending %s: %w", orderID, ErrOrderNotFound)
	}
	return &order, nil
}

func (r *memoryOrderRepo) IsPaid(ctx context.Context, orderID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.paid[orderID]
	return ok, nil
}

func (r *memoryOrderRepo) IsPending(ctx context.Context, orderID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.pending[orderID]
	return ok, nil
}
