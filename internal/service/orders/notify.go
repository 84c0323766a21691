package orders

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/mailer"
)

// sendConfirmation отправляет письмо об оплаченном заказе; ошибки только логируются
func (s *Service) sendConfirmation(ctx context.Context, order *domain.Order, bookings []*domain.Booking) {
	if order.UserID == nil {
		return
	}

	user, err := s.userRepo.GetByID(ctx, *order.UserID)
	if err != nil {
		s.logger.Error("sendConfirmation: failed to load user id=%d: %v", *order.UserID, err)
		return
	}

	venueName := ""
	if venue, err := s.venueRepo.GetByID(ctx, order.VenueID); err == nil {
		venueName = venue.Name
	}

	data := mailer.OrderMail{
		OrderPublicID: order.PublicID,
		VenueName:     venueName,
		Currency:      order.Currency,
		Total:         order.TotalAmount,
	}

	courtNames := make(map[int64]string)
	for _, b := range bookings {
		if data.CustomerName == "" {
			data.CustomerName = b.CustomerName
		}

		name, ok := courtNames[b.CourtID]
		if !ok {
			name = fmt.Sprintf("#%d", b.CourtID)
			if court, err := s.courtRepo.GetByID(ctx, b.CourtID); err == nil {
				name = court.Name
			}
			courtNames[b.CourtID] = name
		}

		data.Bookings = append(data.Bookings, mailer.BookingLine{
			CourtName: name,
			Date:      b.BookingDate.Format(domain.DateFormat),
			StartTime: b.StartTime.String(),
			EndTime:   b.EndTime().String(),
			Price:     b.Price,
		})
	}

	if err := s.mailer.SendBookingConfirmation(ctx, user.Email, data); err != nil {
		s.logger.Error("sendConfirmation: failed to send confirmation for order %s: %v", order.PublicID, err)
	}
}
