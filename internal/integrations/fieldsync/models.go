package fieldsync

// Reservation бронь площадки у внешнего провайдера
type Reservation struct {
	ID        string `json:"id"`
	Date      string `json:"date"`      // YYYY-MM-DD
	StartTime string `json:"startTime"` // HH:MM
	EndTime   string `json:"endTime"`   // HH:MM, может быть 24:00
	Status    string `json:"status"`
}

// IsCancelled возвращает true, если бронь у провайдера отменена
func (r Reservation) IsCancelled() bool {
	return r.Status == StatusCancelled
}

const StatusCancelled = "cancelled"

// ErrorResponse модель ошибки от провайдера
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
