package orders

import (
	"context"
	"errors"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	orderRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/order"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/events"
)

// expiryBatchSize максимальное число заказов за один проход
const expiryBatchSize = 200

// ExpirePendingOrders переводит неоплаченные заказы с истёкшим сроком в expired и освобождает их слоты.
// Каждый заказ обрабатывается в своей транзакции, ошибка одного заказа не останавливает остальные
func (s *Service) ExpirePendingOrders(ctx context.Context) (int, error) {
	now := s.timeProvider.Now()

	ids, err := s.orderRepo.ListExpired(ctx, now, expiryBatchSize)
	if err != nil {
		s.logger.Error("ExpirePendingOrders: failed to list expired orders: %v", err)
		return 0, err
	}

	expired := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return expired, ctx.Err()
		}

		order, err := s.expireOrder(ctx, id)
		if err != nil {
			s.logger.Error("ExpirePendingOrders: failed to expire order id=%d: %v", id, err)
			continue
		}
		if order == nil {
			continue
		}

		expired++
		s.metrics.IncOrderFinished(string(domain.OrderExpired))
		s.publisher.Publish(ctx, events.Event{
			Type:          events.OrderExpired,
			OrderPublicID: order.PublicID,
			VenueID:       order.VenueID,
			UserID:        order.UserID,
			Amount:        order.TotalAmount,
			Currency:      order.Currency,
			OccurredAt:    now,
		})
	}

	if expired > 0 {
		s.logger.Info("ExpirePendingOrders: expired %d of %d orders", expired, len(ids))
	}
	return expired, nil
}

// expireOrder возвращает nil, если заказ успели оплатить или отменить
func (s *Service) expireOrder(ctx context.Context, id int64) (*domain.Order, error) {
	now := s.timeProvider.Now()

	var result *domain.Order
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		order, err := s.orderRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if !order.IsExpiredAt(now) {
			return nil
		}

		if err := s.orderRepo.UpdateStatus(txCtx, id, domain.OrderPending, domain.OrderExpired); err != nil {
			return err
		}
		if _, err := s.bookingRepo.UpdateStatusByOrder(txCtx, id,
			[]domain.BookingStatus{domain.StatusPending}, domain.StatusExpired); err != nil {
			return err
		}

		result = order
		return nil
	})
	if errors.Is(err, orderRepo.ErrStatusConflict) {
		return nil, nil
	}
	return result, err
}
