package model

import "time"

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "PENDING"
	OrderStatusPaid    OrderStatus = "PAID"
)

type Order struct {
	OrderID     string      `gorm:"primaryKey;size:64;not null"` // merchant order no sent to newebpay
	Status      OrderStatus `gorm:"size:16;index;not null"`      // PENDING, PAID
	Result      string      `gorm:"type:text;not null"`          // raw analysis response
	SubmitterID string      `gorm:"size:255"`
	Email       string      `gorm:"size:255;not null"`
	Amount      int64       `gorm:"not null"` // base amount before discount
	ItemDesc    string      `gorm:"size:255;not null"`
	PaidAt      *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type NotificationSource string

const (
	NotificationSourceCallback NotificationSource = "CALLBACK"
	NotificationSourceReturn   NotificationSource = "RETURN"
)

type NotificationOutcome string

const (
	NotificationOutcomePromoted        NotificationOutcome = "PROMOTED"
	NotificationOutcomeAlreadyPaid     NotificationOutcome = "ALREADY_PAID"
	NotificationOutcomeIgnored         NotificationOutcome = "IGNORED"
	NotificationOutcomeUnauthenticated NotificationOutcome = "UNAUTHENTICATED"
	NotificationOutcomeRejected        NotificationOutcome = "REJECTED"
)

// GatewayNotification is the audit trail of every message newebpay posted
// back, kept for payment disputes.
type GatewayNotification struct {
	ID            string              `gorm:"primaryKey;size:36;not null"`
	Source        NotificationSource  `gorm:"size:16;index;not null"`
	OrderID       string              `gorm:"size:64;index"`
	GatewayStatus string              `gorm:"size:32"`
	TradeNo       string              `gorm:"size:64"`
	Outcome       NotificationOutcome `gorm:"size:32;index;not null"`
	Error         string              `gorm:"type:text"`
	CreatedAt     time.Time
}
