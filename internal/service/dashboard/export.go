package dashboard

import (
	"context"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/service/dashboard/models"
	"github.com/m04kA/SMC-CourtBooking/pkg/ptr"
)

const (
	exportSheet       = "Бронирования"
	exportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportHeaders = []string{
	"ID", "Заказ", "Дата", "Начало", "Конец", "Корт", "Клиент", "Телефон",
	"Цена", "Статус", "Источник", "Комментарий", "Причина отмены",
}

// ExportVenueBookings выгружает брони площадки за период в XLSX, одна строка на бронь
func (s *Service) ExportVenueBookings(ctx context.Context, req *models.PeriodRequest) (*models.ExportFile, error) {
	s.logger.Info("ExportVenueBookings: venue=%d user=%d period=%s..%s", req.VenueID, req.UserID, req.StartDate, req.EndDate)

	p, err := s.parsePeriod(req)
	if err != nil {
		s.logger.Warn("ExportVenueBookings: invalid period %s..%s: %v", req.StartDate, req.EndDate, err)
		return nil, err
	}

	if err := s.checkManagerAccess(ctx, "ExportVenueBookings", req.VenueID, req.UserID); err != nil {
		return nil, err
	}

	courts, bookings, err := s.load(ctx, "ExportVenueBookings", req.VenueID, p)
	if err != nil {
		return nil, err
	}

	content, err := buildWorkbook(courts, bookings)
	if err != nil {
		s.logger.Error("ExportVenueBookings: failed to build workbook for venue=%d: %v", req.VenueID, err)
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	s.logger.Info("ExportVenueBookings: exported %d bookings of venue=%d", len(bookings), req.VenueID)
	return &models.ExportFile{
		Name: fmt.Sprintf("bookings_%d_%s_%s.xlsx", req.VenueID,
			p.from.Format(domain.DateFormat), p.to.Format(domain.DateFormat)),
		ContentType: exportContentType,
		Content:     content,
	}, nil
}

func buildWorkbook(courts []*domain.Court, bookings []*domain.Booking) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for col, title := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(exportSheet, cell, title); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err := f.SetCellStyle(exportSheet, "A1", lastHeader, headerStyle); err != nil {
		return nil, fmt.Errorf("apply header style: %w", err)
	}

	courtNames := make(map[int64]string, len(courts))
	for _, c := range courts {
		courtNames[c.ID] = c.Name
	}

	// В файле брони идут по времени, а не в порядке выборки
	sorted := make([]*domain.Booking, len(bookings))
	copy(sorted, bookings)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].BookingDate.Equal(sorted[j].BookingDate) {
			return sorted[i].BookingDate.Before(sorted[j].BookingDate)
		}
		if sorted[i].StartTime != sorted[j].StartTime {
			return sorted[i].StartTime.IsBefore(sorted[j].StartTime)
		}
		return sorted[i].CourtID < sorted[j].CourtID
	})

	for i, b := range sorted {
		row := []interface{}{
			b.ID,
			b.OrderPublicID,
			b.BookingDate.Format(domain.DateFormat),
			b.StartTime.String(),
			b.EndTime().String(),
			courtNames[b.CourtID],
			b.CustomerName,
			ptr.Value(b.CustomerPhone),
			float64(b.Price) / 100,
			string(b.Status),
			string(b.Source),
			ptr.Value(b.Notes),
			ptr.Value(b.CancellationReason),
		}

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(exportSheet, "A", "M", 16); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
