package entity

import "time"

// User 用户（编号即登录凭证，无密码）
type User struct {
	ID      string `json:"id" gorm:"primaryKey;size:32"`
	Code    string `json:"code" gorm:"size:50;uniqueIndex;not null"`
	Name    string `json:"name" gorm:"size:100;not null"`
	IsAdmin bool   `json:"is_admin" gorm:"not null;default:false"`

	// 非管理员可见的模具/零件/设备编号集合
	AllowedCodes StringList `json:"allowed_codes" gorm:"type:jsonb"`

	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
