package domain

import (
	"time"
)

// BeautyPage — публичная страница мастера или салона: профиль и поверхность записи.
type BeautyPage struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Handle       string    `json:"handle"`
	DisplayName  string    `json:"display_name"`
	Description  string    `json:"description,omitempty"`
	Address      string    `json:"address,omitempty"`
	Timezone     string    `json:"timezone"`
	SlotInterval int       `json:"slot_interval"`
	Currency     string    `json:"currency"`
	PhotoURL     string    `json:"photo_url,omitempty"`
	IsPublished  bool      `json:"is_published"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CreateBeautyPageDTO struct {
	Handle      string `json:"handle" binding:"required,min=3,max=32"`
	DisplayName string `json:"display_name" binding:"required"`
	Description string `json:"description"`
	Address     string `json:"address"`
	Timezone    string `json:"timezone" binding:"required"`
	Currency    string `json:"currency" binding:"required,len=3"`
}

type UpdateBeautyPageDTO struct {
	DisplayName  *string `json:"display_name"`
	Description  *string `json:"description"`
	Address      *string `json:"address"`
	Timezone     *string `json:"timezone"`
	SlotInterval *int    `json:"slot_interval" binding:"omitempty,oneof=5 10 15 20 30 60"`
	Currency     *string `json:"currency" binding:"omitempty,len=3"`
	IsPublished  *bool   `json:"is_published"`
}
