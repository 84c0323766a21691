package create_booking

import (
	"time"

	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

// MaxItemsPerOrder ограничение на число позиций в одном заказе
const MaxItemsPerOrder = 10

// Settings параметры бронирования и оплаты
type Settings struct {
	AdvanceDays      int // 0 = без ограничения
	MinNoticeMinutes int
	MaxSlotsPerItem  int
	OrderTTLMinutes  int
	Currency         string
	Location         *time.Location
}

// Item позиция заказа: несколько подряд идущих слотов одного корта
type Item struct {
	CourtID   int64
	Date      time.Time        // Дата бронирования (без времени)
	StartTime types.TimeString // Время начала первого слота
	Slots     int              // Количество слотов подряд
}

// Request модель запроса на создание заказа
type Request struct {
	UserID int64
	Items  []Item
	Notes  *string
}
