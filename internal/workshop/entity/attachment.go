package entity

import "time"

// Attachment 附件元数据（文件内容存MinIO）
type Attachment struct {
	ID        string `json:"id" gorm:"primaryKey;size:32"`
	OwnerType string `json:"owner_type" gorm:"size:20;not null;index:idx_attachments_owner"` // mold/component/machine/event
	OwnerID   string `json:"owner_id" gorm:"size:32;not null;index:idx_attachments_owner"`

	FileName   string `json:"file_name" gorm:"size:256;not null"`
	ObjectName string `json:"object_name" gorm:"size:512;not null"` // MinIO对象名
	FileSize   int64  `json:"file_size" gorm:"not null"`
	MimeType   string `json:"mime_type" gorm:"size:128"`

	UploadedBy string    `json:"uploaded_by" gorm:"size:32"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Attachment) TableName() string {
	return "attachments"
}
