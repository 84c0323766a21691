package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/booking"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/events"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/mailer"
	"github.com/m04kA/SMC-CourtBooking/internal/service/bookings/models"
)

// cancellation итог отмены для уведомлений после коммита
type cancellation struct {
	booking  *domain.Booking
	order    *domain.Order
	venue    *domain.Venue
	status   domain.BookingStatus
	refunded bool
}

// Cancel отменяет бронирование
// Владелец может отменить бронирование не позднее чем за CancelNoticeMinutes до начала (cancelled_by_user).
// Менеджер площадки может отменить любое бронирование до его начала (cancelled_by_venue).
// Оплаченная картой бронь возвращается через платёжного провайдера; если он недоступен, отмена откатывается
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) error {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d", bookingID, req.UserID)

	reason, err := normalizeReason(req.CancellationReason)
	if err != nil {
		return err
	}

	var result cancellation
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		booking, err := s.bookingRepo.GetByID(txCtx, bookingID)
		if err != nil {
			return err
		}

		// Блокируем заказ, чтобы отмена не пересеклась с webhook и истечением заказа
		order, err := s.orderRepo.GetByID(txCtx, booking.OrderID)
		if err != nil {
			return err
		}

		// Статус мог измениться, пока мы ждали блокировку
		booking, err = s.bookingRepo.GetByID(txCtx, bookingID)
		if err != nil {
			return err
		}

		if !booking.CanBeCancelled() {
			s.logger.Warn("Cancel: booking id=%d cannot be cancelled, status=%s", bookingID, booking.Status)
			return ErrCannotCancel
		}

		status, venue, err := s.resolveCancelStatus(txCtx, booking, req.UserID)
		if err != nil {
			return err
		}

		if err := s.bookingRepo.Cancel(txCtx, bookingID, status, reason); err != nil {
			return err
		}

		refunded, err := s.settleOrder(txCtx, order, booking)
		if err != nil {
			return err
		}

		result = cancellation{booking: booking, order: order, venue: venue, status: status, refunded: refunded}
		return nil
	})
	if err != nil {
		return s.mapCancelError(bookingID, err)
	}

	s.logger.Info("Cancel: successfully cancelled booking id=%d with status=%s, refunded=%t",
		bookingID, result.status, result.refunded)

	s.publisher.Publish(ctx, events.Event{
		Type:          events.BookingCancelled,
		OrderPublicID: result.order.PublicID,
		VenueID:       result.booking.VenueID,
		BookingIDs:    []int64{result.booking.ID},
		UserID:        result.booking.UserID,
		Amount:        result.booking.Price,
		Currency:      result.order.Currency,
		Reason:        string(result.status),
		OccurredAt:    s.timeProvider.Now(),
	})

	s.notifyCancellation(ctx, result, reason)
	return nil
}

// resolveCancelStatus определяет статус отмены в зависимости от прав доступа
func (s *Service) resolveCancelStatus(ctx context.Context, booking *domain.Booking, userID int64) (domain.BookingStatus, *domain.Venue, error) {
	now := s.timeProvider.Now()
	startsAt := booking.StartsAt(s.settings.Location)

	if booking.IsOwnedBy(userID) {
		deadline := startsAt.Add(-time.Duration(s.settings.CancelNoticeMinutes) * time.Minute)
		if !now.Before(deadline) {
			s.logger.Warn("Cancel: booking id=%d starts at %s, cancellation window closed",
				booking.ID, startsAt.Format(time.RFC3339))
			return "", nil, ErrCancellationWindowClosed
		}
		venue, err := s.venueRepo.GetByID(ctx, booking.VenueID)
		if err != nil {
			return "", nil, err
		}
		return domain.StatusCancelledByUser, venue, nil
	}

	venue, err := s.checkManagerAccess(ctx, "Cancel", booking.VenueID, userID)
	if err != nil {
		return "", nil, err
	}

	if !now.Before(startsAt) {
		s.logger.Warn("Cancel: booking id=%d has already started", booking.ID)
		return "", nil, ErrCannotCancel
	}

	return domain.StatusCancelledByVenue, venue, nil
}

// settleOrder закрывает заказ, если в нём не осталось активных броней, и возвращает деньги за карту.
// Возврат выполняется последним шагом: ошибка провайдера откатывает всю транзакцию
func (s *Service) settleOrder(ctx context.Context, order *domain.Order, booking *domain.Booking) (bool, error) {
	remaining, err := s.bookingRepo.List(ctx, domain.BookingsFilter{OrderID: &order.ID})
	if err != nil {
		return false, err
	}

	refundable := order.IsPaidByCard() && booking.Status == domain.StatusConfirmed

	if len(remaining) == 0 {
		switch order.Status {
		case domain.OrderPaid:
			if err := s.orderRepo.UpdateStatus(ctx, order.ID, domain.OrderPaid, domain.OrderRefunded); err != nil {
				return false, err
			}
		case domain.OrderPending:
			if err := s.orderRepo.UpdateStatus(ctx, order.ID, domain.OrderPending, domain.OrderCancelled); err != nil {
				return false, err
			}
		}
	}

	if !refundable {
		return false, nil
	}

	payment, err := s.findCapturedPayment(ctx, order.ID)
	if err != nil {
		return false, err
	}
	if payment == nil {
		s.logger.Warn("Cancel: order id=%d is paid by card but has no captured payment", order.ID)
		return false, nil
	}

	if len(remaining) == 0 {
		if err := s.orderRepo.UpdatePaymentStatus(ctx, payment.ID, domain.PaymentRefunded, nil); err != nil {
			return false, err
		}
	}

	idempotencyKey := fmt.Sprintf("refund-booking-%d", booking.ID)
	if _, err := s.gateway.Refund(ctx, *payment.ProviderRef, booking.Price, idempotencyKey); err != nil {
		return false, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}

	return true, nil
}

func (s *Service) findCapturedPayment(ctx context.Context, orderID int64) (*domain.Payment, error) {
	payments, err := s.orderRepo.ListPayments(ctx, orderID)
	if err != nil {
		return nil, err
	}
	for i := len(payments) - 1; i >= 0; i-- {
		p := payments[i]
		if p.Provider == domain.ProviderStripe && p.Status == domain.PaymentSucceeded && p.ProviderRef != nil {
			return p, nil
		}
	}
	return nil, nil
}

func (s *Service) mapCancelError(bookingID int64, err error) error {
	switch {
	case errors.Is(err, bookingRepo.ErrBookingNotFound):
		s.logger.Warn("Cancel: booking id=%d not found", bookingID)
		return ErrBookingNotFound
	case errors.Is(err, ErrCannotCancel),
		errors.Is(err, ErrCancellationWindowClosed),
		errors.Is(err, ErrAccessDenied),
		errors.Is(err, ErrVenueNotFound):
		return err
	case errors.Is(err, ErrPaymentProvider):
		s.logger.Error("Cancel: refund failed for booking id=%d: %v", bookingID, err)
		return err
	default:
		s.logger.Error("Cancel: repository error for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}
}

// notifyCancellation отправляет письмо владельцу брони; ошибки только логируются
func (s *Service) notifyCancellation(ctx context.Context, c cancellation, reason *string) {
	if c.booking.UserID == nil {
		return
	}

	user, err := s.userRepo.GetByID(ctx, *c.booking.UserID)
	if err != nil {
		s.logger.Error("Cancel: failed to load user id=%d for email: %v", *c.booking.UserID, err)
		return
	}

	courtName := fmt.Sprintf("#%d", c.booking.CourtID)
	if court, err := s.courtRepo.GetByID(ctx, c.booking.CourtID); err == nil {
		courtName = court.Name
	}

	data := mailer.CancellationMail{
		CustomerName: c.booking.CustomerName,
		VenueName:    c.venue.Name,
		Booking: mailer.BookingLine{
			CourtName: courtName,
			Date:      c.booking.BookingDate.Format(domain.DateFormat),
			StartTime: c.booking.StartTime.String(),
			EndTime:   c.booking.EndTime().String(),
			Price:     c.booking.Price,
		},
		Refunded: c.refunded,
		Currency: c.order.Currency,
	}
	if reason != nil {
		data.Reason = *reason
	}

	if err := s.mailer.SendBookingCancellation(ctx, user.Email, data); err != nil {
		s.logger.Error("Cancel: failed to send cancellation email for booking id=%d: %v", c.booking.ID, err)
	}
}

func normalizeReason(reason *string) (*string, error) {
	if reason == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*reason)
	if trimmed == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(trimmed) > domain.MaxCancellationReason {
		return nil, fmt.Errorf("%w: cancellation reason is too long", ErrInvalidInput)
	}
	return &trimmed, nil
}
