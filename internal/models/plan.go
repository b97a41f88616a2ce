package models

// Plan - тарифный план создателя. Справочные данные:
// Provisioner читает интервал и цену, не изменяет их.
type Plan struct {
	BaseModel
	CreatorID   string       `gorm:"type:uuid;not null;index" json:"creatorId"`
	Name        string       `gorm:"not null" json:"name"`
	Description string       `json:"description"`
	Price       float64      `gorm:"not null" json:"price"`
	Currency    string       `gorm:"default:'IDR'" json:"currency"`
	Interval    PlanInterval `gorm:"not null" json:"interval"` // monthly, yearly
	IsActive    bool         `gorm:"default:true" json:"isActive"`

	// Relations
	Creator User `gorm:"foreignKey:CreatorID" json:"-"`
}
