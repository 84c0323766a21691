package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-CourtBooking/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date    string          `json:"date"`
	CourtID int64           `json:"courtId"`
	Slots   []AvailableSlot `json:"slots"`
}

// AvailableSlot модель временного слота
type AvailableSlot struct {
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	DurationMinutes int    `json:"durationMinutes"`
	Price           int64  `json:"price"`
	Status          string `json:"status"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			StartTime:       slot.StartTime.String(),
			EndTime:         slot.EndTime.String(),
			DurationMinutes: slot.DurationMinutes,
			Price:           slot.Price,
			Status:          string(slot.Status),
		}
	}

	return &AvailableSlotsResponse{
		Date:    resp.Date.Format(domain.DateFormat),
		CourtID: resp.CourtID,
		Slots:   slots,
	}
}

// ToUseCaseRequest создает запрос use case из query параметров
func ToUseCaseRequest(courtID int64, dateStr string) (*getAvailableSlots.Request, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	return &getAvailableSlots.Request{
		CourtID: courtID,
		Date:    date,
	}, nil
}
