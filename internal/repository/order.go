package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/z5702god/resume-backend/internal/model"

	"gorm.io/gorm"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrOrderExists   = errors.New("order already exists")
)

// OrderRepository is the two-state order store. An order id lives in at
// most one of Pending and Paid.
type OrderRepository interface {
	Admit(ctx context.Context, order *model.Order) error
	// Promote moves a pending order to paid. It reports true only to the
	// caller that performed the transition; already paid orders yield false.
	Promote(ctx context.Context, orderID string) (bool, error)
	Find(ctx context.Context, orderID string) (*model.Order, error)
	FindPending(ctx context.Context, orderID string) (*model.Order, error)
	IsPaid(ctx context.Context, orderID string) (bool, error)
	IsPending(ctx context.Context, orderID string) (bool, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Admit(ctx context.Context, order *model.Order) error {
	order.Status = model.OrderStatusPending
	order.PaidAt = nil

	err := r.db.WithContext(ctx).Create(order).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("admit %s: %w", order.OrderID, ErrOrderExists)
	}
	return err
}

func (r *orderRepoImpl) Promote(ctx context.Context, orderID string) (bool, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ? AND status = ?", orderID, model.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":     model.OrderStatusPaid,
			"paid_at":    now,
			"updated_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 1 {
		return true, nil
	}

	paid, err := r.IsPaid(ctx, orderID)
	if err != nil {
		return false, err
	}
	if !paid {
		return false, fmt.Errorf("promote %s: %w", orderID, ErrOrderNotFound)
	}
	return false, nil
}

func (r *orderRepoImpl) Find(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&order).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find %s: %w", orderID, ErrOrderNotFound)
	}
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindPending(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Where("status = ?", model.OrderStatusPending).
		First(&order).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find pending %s: %w", orderID, ErrOrderNotFound)
	}
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) IsPaid(ctx context.Context, orderID string) (bool, error) {
	return r.hasStatus(ctx, orderID, model.OrderStatusPaid)
}

func (r *orderRepoImpl) IsPending(ctx context.Context, orderID string) (bool, error) {
	return r.hasStatus(ctx, orderID, model.OrderStatusPending)
}

func (r *orderRepoImpl) hasStatus(ctx context.Context, orderID string, status model.OrderStatus) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ?", orderID).
		Where("status = ?", status).
		Count(&count).Error

	return count > 0, err
}
