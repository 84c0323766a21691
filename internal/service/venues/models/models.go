package models

import (
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

// Request модели

// CreateVenueRequest запрос на создание площадки
type CreateVenueRequest struct {
	UserID      int64  `json:"-"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Description string `json:"description"`
	Phone       string `json:"phone"`
}

// UpdateVenueRequest частичное обновление площадки
type UpdateVenueRequest struct {
	UserID      int64   `json:"-"`
	Name        *string `json:"name,omitempty"`
	Address     *string `json:"address,omitempty"`
	City        *string `json:"city,omitempty"`
	Description *string `json:"description,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// CreateCourtRequest запрос на создание корта
type CreateCourtRequest struct {
	UserID              int64   `json:"-"`
	VenueID             int64   `json:"-"`
	Name                string  `json:"name"`
	Sport               string  `json:"sport"`
	OpenTime            string  `json:"openTime"`  // "08:00"
	CloseTime           string  `json:"closeTime"` // "24:00"
	SlotDurationMinutes int     `json:"slotDurationMinutes"`
	BasePrice           int64   `json:"basePrice"`
	ExternalRef         *string `json:"externalRef,omitempty"`
}

// ToDomainCourt конвертирует request в domain модель
func (r *CreateCourtRequest) ToDomainCourt() *domain.Court {
	return &domain.Court{
		VenueID:             r.VenueID,
		Name:                r.Name,
		Sport:               domain.Sport(r.Sport),
		OpenTime:            types.TimeString(r.OpenTime),
		CloseTime:           types.TimeString(r.CloseTime),
		SlotDurationMinutes: r.SlotDurationMinutes,
		BasePrice:           r.BasePrice,
		ExternalRef:         r.ExternalRef,
		IsActive:            true,
	}
}

// UpdateCourtRequest частичное обновление корта
type UpdateCourtRequest struct {
	UserID              int64   `json:"-"`
	Name                *string `json:"name,omitempty"`
	Sport               *string `json:"sport,omitempty"`
	OpenTime            *string `json:"openTime,omitempty"`
	CloseTime           *string `json:"closeTime,omitempty"`
	SlotDurationMinutes *int    `json:"slotDurationMinutes,omitempty"`
	BasePrice           *int64  `json:"basePrice,omitempty"`
	ExternalRef         *string `json:"externalRef,omitempty"` // пустая строка отвязывает корт
	IsActive            *bool   `json:"isActive,omitempty"`
}

// ApplyTo применяет изменения к корту
func (r *UpdateCourtRequest) ApplyTo(c *domain.Court) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Sport != nil {
		c.Sport = domain.Sport(*r.Sport)
	}
	if r.OpenTime != nil {
		c.OpenTime = types.TimeString(*r.OpenTime)
	}
	if r.CloseTime != nil {
		c.CloseTime = types.TimeString(*r.CloseTime)
	}
	if r.SlotDurationMinutes != nil {
		c.SlotDurationMinutes = *r.SlotDurationMinutes
	}
	if r.BasePrice != nil {
		c.BasePrice = *r.BasePrice
	}
	if r.ExternalRef != nil {
		if *r.ExternalRef == "" {
			c.ExternalRef = nil
		} else {
			ref := *r.ExternalRef
			c.ExternalRef = &ref
		}
	}
	if r.IsActive != nil {
		c.IsActive = *r.IsActive
	}
}

// CreateBlockRequest запрос на блокировку времени корта
type CreateBlockRequest struct {
	UserID    int64  `json:"-"`
	CourtID   int64  `json:"-"`
	Date      string `json:"date"` // "2025-10-15"
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Reason    string `json:"reason"`
}

// Response модели

// VenueResponse данные площадки
type VenueResponse struct {
	ID          int64            `json:"id"`
	OwnerID     int64            `json:"ownerId"`
	Name        string           `json:"name"`
	Address     string           `json:"address"`
	City        string           `json:"city"`
	Description string           `json:"description"`
	Phone       string           `json:"phone"`
	IsActive    bool             `json:"isActive"`
	ManagerIDs  []int64          `json:"managerIds,omitempty"`
	Courts      []*CourtResponse `json:"courts,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// VenueListResponse список площадок
type VenueListResponse struct {
	Venues []*VenueResponse `json:"venues"`
}

// CourtResponse данные корта
type CourtResponse struct {
	ID                  int64     `json:"id"`
	VenueID             int64     `json:"venueId"`
	Name                string    `json:"name"`
	Sport               string    `json:"sport"`
	OpenTime            string    `json:"openTime"`
	CloseTime           string    `json:"closeTime"`
	SlotDurationMinutes int       `json:"slotDurationMinutes"`
	BasePrice           int64     `json:"basePrice"`
	ExternalRef         *string   `json:"externalRef,omitempty"`
	IsActive            bool      `json:"isActive"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// CourtListResponse список кортов
type CourtListResponse struct {
	Courts []*CourtResponse `json:"courts"`
}

// BlockResponse данные блокировки
type BlockResponse struct {
	ID        int64     `json:"id"`
	CourtID   int64     `json:"courtId"`
	Date      string    `json:"date"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	Reason    string    `json:"reason"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}

// BlockListResponse список блокировок
type BlockListResponse struct {
	Blocks []*BlockResponse `json:"blocks"`
}

// FromDomainVenue конвертирует domain модель в DTO
func FromDomainVenue(v *domain.Venue) *VenueResponse {
	return &VenueResponse{
		ID:          v.ID,
		OwnerID:     v.OwnerID,
		Name:        v.Name,
		Address:     v.Address,
		City:        v.City,
		Description: v.Description,
		Phone:       v.Phone,
		IsActive:    v.IsActive,
		ManagerIDs:  v.ManagerIDs,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

// FromDomainVenueList конвертирует список площадок
func FromDomainVenueList(venues []*domain.Venue) *VenueListResponse {
	resp := &VenueListResponse{Venues: make([]*VenueResponse, 0, len(venues))}
	for _, v := range venues {
		resp.Venues = append(resp.Venues, FromDomainVenue(v))
	}
	return resp
}

// FromDomainCourt конвертирует domain модель в DTO
func FromDomainCourt(c *domain.Court) *CourtResponse {
	return &CourtResponse{
		ID:                  c.ID,
		VenueID:             c.VenueID,
		Name:                c.Name,
		Sport:               string(c.Sport),
		OpenTime:            c.OpenTime.String(),
		CloseTime:           c.CloseTime.String(),
		SlotDurationMinutes: c.SlotDurationMinutes,
		BasePrice:           c.BasePrice,
		ExternalRef:         c.ExternalRef,
		IsActive:            c.IsActive,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}
}

// FromDomainCourtList конвертирует список кортов
func FromDomainCourtList(courts []*domain.Court) *CourtListResponse {
	resp := &CourtListResponse{Courts: make([]*CourtResponse, 0, len(courts))}
	for _, c := range courts {
		resp.Courts = append(resp.Courts, FromDomainCourt(c))
	}
	return resp
}

// FromDomainBlock конвертирует domain модель в DTO
func FromDomainBlock(b *domain.CourtBlock) *BlockResponse {
	return &BlockResponse{
		ID:        b.ID,
		CourtID:   b.CourtID,
		Date:      b.BlockDate.Format(domain.DateFormat),
		StartTime: b.StartTime.String(),
		EndTime:   b.EndTime.String(),
		Reason:    b.Reason,
		Source:    string(b.Source),
		CreatedAt: b.CreatedAt,
	}
}

// FromDomainBlockList конвертирует список блокировок
func FromDomainBlockList(blocks []*domain.CourtBlock) *BlockListResponse {
	resp := &BlockListResponse{Blocks: make([]*BlockResponse, 0, len(blocks))}
	for _, b := range blocks {
		resp.Blocks = append(resp.Blocks, FromDomainBlock(b))
	}
	return resp
}
