package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

// Settings ограничения окна бронирования
type Settings struct {
	AdvanceDays      int // 0 = без ограничения
	MinNoticeMinutes int
	Location         *time.Location
}

// Request модель запроса на получение сетки слотов
type Request struct {
	CourtID int64
	Date    time.Time // Дата в часовом поясе площадок (без времени)
}

// Response модель ответа с сеткой слотов корта на день
type Response struct {
	Date    time.Time
	CourtID int64
	Slots   []domain.Slot
}
