package models

import (
	"time"

	"gorm.io/datatypes"
)

// Transaction - запись попытки оплаты.
//
// OrderID уникален, назначается при создании и никогда не меняется -
// это ключ идемпотентности для сверки с уведомлениями шлюза.
// Запись мутирует только Notification Handler / Status Poller
// и никогда не удаляется.
type Transaction struct {
	BaseModel
	OrderID       string            `gorm:"uniqueIndex;not null" json:"orderId"`
	UserID        string            `gorm:"type:uuid;not null;index" json:"userId"`
	CreatorID     string            `gorm:"type:uuid;not null;index" json:"creatorId"`
	PlanID        string            `gorm:"type:uuid;not null;index" json:"planId"`
	Amount        float64           `gorm:"not null" json:"amount"`
	Status        TransactionStatus `gorm:"default:'pending';index" json:"status"`
	PaymentMethod *string           `json:"paymentMethod,omitempty"` // заполняется после подтверждения шлюзом
	PaymentDate   *time.Time        `json:"paymentDate,omitempty"`
	RawPayload    datatypes.JSON    `gorm:"type:jsonb" json:"-"` // аудит-копия последнего уведомления

	// Relations
	User    User `gorm:"foreignKey:UserID" json:"-"`
	Creator User `gorm:"foreignKey:CreatorID" json:"-"`
	Plan    Plan `gorm:"foreignKey:PlanID" json:"-"`
}
