package entity

import "time"

// DeviceToken stores a push-notification token registered by a user device.
// One device keeps at most one token per push provider (fcm, apns).
type DeviceToken struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index;uniqueIndex:idx_user_provider_device,priority:1" json:"user_id"`
	Provider    string    `gorm:"size:20;not null;uniqueIndex:idx_user_provider_device,priority:2" json:"provider"`
	DeviceID    string    `gorm:"size:255;not null;uniqueIndex:idx_user_provider_device,priority:3" json:"device_id"`
	DeviceToken string    `gorm:"type:text;not null" json:"-"`
	DeviceType  string    `gorm:"size:20;not null" json:"device_type"` // ios, android, web
	DeviceName  string    `gorm:"size:255;not null;default:''" json:"device_name,omitempty"`
	AppVersion  string    `gorm:"size:50;not null;default:''" json:"app_version,omitempty"`
	OSVersion   string    `gorm:"size:50;not null;default:''" json:"os_version,omitempty"`
	IsActive    bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (DeviceToken) TableName() string {
	return "device_tokens"
}
