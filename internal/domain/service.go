package domain

import (
	"time"
)

// BookingService — услуга из каталога страницы мастера.
type BookingService struct {
	ID              int64     `json:"id"`
	BeautyPageID    int64     `json:"beauty_page_id"`
	Name            string    `json:"name"`
	PriceCents      int64     `json:"price_cents"`
	DurationMinutes int       `json:"duration_minutes"`
	Currency        string    `json:"currency"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type CreateServiceDTO struct {
	Name            string `json:"name" binding:"required"`
	PriceCents      int64  `json:"price_cents" binding:"required,min=0"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=5,max=480"`
	Currency        string `json:"currency" binding:"required,len=3"`
}

type UpdateServiceDTO struct {
	Name            *string `json:"name"`
	PriceCents      *int64  `json:"price_cents" binding:"omitempty,min=0"`
	DurationMinutes *int    `json:"duration_minutes" binding:"omitempty,min=5,max=480"`
	Currency        *string `json:"currency" binding:"omitempty,len=3"`
	IsActive        *bool   `json:"is_active"`
}
