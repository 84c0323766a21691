package models

import (
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

// CreatePriceRequest запрос на создание правила цены
// Указывается ровно одно из полей SpecificDate и DayOfWeek
type CreatePriceRequest struct {
	UserID       int64   `json:"-"`
	CourtID      int64   `json:"-"`
	SpecificDate *string `json:"specificDate,omitempty"` // "2025-12-31"
	DayOfWeek    *int    `json:"dayOfWeek,omitempty"`    // 0 = воскресенье
	StartTime    string  `json:"startTime"`
	EndTime      string  `json:"endTime"`
	Price        int64   `json:"price"`
}

// PriceResponse данные правила цены
type PriceResponse struct {
	ID           int64     `json:"id"`
	CourtID      int64     `json:"courtId"`
	SpecificDate *string   `json:"specificDate,omitempty"`
	DayOfWeek    *int      `json:"dayOfWeek,omitempty"`
	StartTime    string    `json:"startTime"`
	EndTime      string    `json:"endTime"`
	Price        int64     `json:"price"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PriceListResponse список правил цены корта
type PriceListResponse struct {
	CourtID   int64            `json:"courtId"`
	BasePrice int64            `json:"basePrice"`
	Prices    []*PriceResponse `json:"prices"`
}

// FromDomainPrice конвертирует domain модель в DTO
func FromDomainPrice(p *domain.DynamicPrice) *PriceResponse {
	resp := &PriceResponse{
		ID:        p.ID,
		CourtID:   p.CourtID,
		DayOfWeek: p.DayOfWeek,
		StartTime: p.StartTime.String(),
		EndTime:   p.EndTime.String(),
		Price:     p.Price,
		CreatedAt: p.CreatedAt,
	}
	if p.SpecificDate != nil {
		date := p.SpecificDate.Format(domain.DateFormat)
		resp.SpecificDate = &date
	}
	return resp
}
