package models

import "time"

// Subscription создается только как side effect успешной транзакции.
//
// Два инварианта держит сама база:
//   - не более одной подписки на транзакцию (uniqueIndex на TransactionID);
//   - не более одной active-подписки на пару (user, creator) -
//     частичный уникальный индекс по user_id+creator_id WHERE status='active'.
//
// Они - последняя линия защиты check-then-create в Provisioner
// при гонке дублированных вебхуков.
type Subscription struct {
	BaseModel
	UserID        string             `gorm:"type:uuid;not null;index:idx_one_active_sub,unique,where:status = 'active'" json:"userId"`
	CreatorID     string             `gorm:"type:uuid;not null;index:idx_one_active_sub,unique" json:"creatorId"`
	PlanID        string             `gorm:"type:uuid;not null;index" json:"planId"`
	TransactionID string             `gorm:"type:uuid;uniqueIndex;not null" json:"transactionId"`
	Status        SubscriptionStatus `gorm:"default:'active';index" json:"status"`
	StartDate     time.Time          `gorm:"not null" json:"startDate"`
	EndDate       time.Time          `gorm:"not null;index" json:"endDate"`
	Amount        float64            `gorm:"not null" json:"amount"` // фактически списанная шлюзом сумма
	AutoRenew     bool               `gorm:"default:true" json:"autoRenew"`
	CancelledAt   *time.Time         `json:"cancelledAt,omitempty"`

	// Relations
	Plan    Plan `gorm:"foreignKey:PlanID" json:"-"`
	Creator User `gorm:"foreignKey:CreatorID" json:"-"`
}
