package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/z5702god/resume-backend/internal/model"

	"gorm.io/gorm"
)

type NotificationRepository interface {
	Record(ctx context.Context, n *model.GatewayNotification) error
	ListByOrder(ctx context.Context, orderID string) ([]*model.GatewayNotification, error)
}

type notificationRepoImpl struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepoImpl{db: db}
}

func (r *notificationRepoImpl) Record(ctx context.Context, n *model.GatewayNotification) error {
	prepareNotification(n)
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepoImpl) ListByOrder(ctx context.Context, orderID string) ([]*model.GatewayNotification, error) {
	var notifications []*model.GatewayNotification
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at").
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}

	return notifications, nil
}

type memoryNotificationRepo struct {
	mu            sync.Mutex
	notifications []model.GatewayNotification
}

func NewMemoryNotificationRepository() NotificationRepository {
	return &memoryNotificationRepo{}
}

func (r *memoryNotificationRepo) Record(ctx context.Context, n *model.GatewayNotification) error {
	prepareNotification(n)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, *n)
	return nil
}

func (r *memoryNotificationRepo) ListByOrder(ctx context.Context, orderID string) ([]*model.GatewayNotification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*model.GatewayNotification
	for i := range r.notifications {
		if r.notifications[i].OrderID == orderID {
			n := r.notifications[i]
			out = append(out, &n)
		}
	}
	return out, nil
}

func prepareNotification(n *model.GatewayNotification) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
}
