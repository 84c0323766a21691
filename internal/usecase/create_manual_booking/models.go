package create_manual_booking

import (
	"time"

	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

// MaxCustomerNameLength ограничение длины имени клиента
const MaxCustomerNameLength = 255

// Settings параметры бронирования
type Settings struct {
	AdvanceDays     int // 0 = без ограничения
	MaxSlotsPerItem int
	Currency        string
	Location        *time.Location
}

// Request модель запроса менеджера на бронь от имени клиента
type Request struct {
	ManagerID     int64
	CourtID       int64
	Date          time.Time
	StartTime     types.TimeString
	Slots         int
	CustomerName  string
	CustomerPhone *string
	PaymentMethod string // cash | transfer
	PriceOverride *int64 // цена вместо рассчитанной по тарифам
	Notes         *string
}
