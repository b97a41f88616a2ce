package models

// Post - публикация создателя. Premium-посты видны целиком
// только активным подписчикам создателя.
type Post struct {
	BaseModel
	CreatorID    string `gorm:"type:uuid;not null;index" json:"creatorId"`
	Title        string `gorm:"not null" json:"title"`
	Content      string `gorm:"type:text" json:"content"`
	IsPremium    bool   `gorm:"default:false" json:"isPremium"`
	LikeCount    int64  `gorm:"default:0" json:"likeCount"`
	CommentCount int64  `gorm:"default:0" json:"commentCount"`

	// Relations
	Creator User `gorm:"foreignKey:CreatorID" json:"-"`
}

type Comment struct {
	BaseModel
	PostID  string `gorm:"type:uuid;not null;index" json:"postId"`
	UserID  string `gorm:"type:uuid;not null;index" json:"userId"`
	Content string `gorm:"type:text;not null" json:"content"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}
