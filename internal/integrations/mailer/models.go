package mailer

import "fmt"

// Config параметры SMTP
type Config struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// MagicLinkMail данные письма со ссылкой для входа
type MagicLinkMail struct {
	Link       string
	TTLMinutes int
}

// BookingLine строка брони в письме
type BookingLine struct {
	CourtName string
	Date      string
	StartTime string
	EndTime   string
	Price     int64
}

// OrderMail данные письма о подтверждении заказа
type OrderMail struct {
	CustomerName  string
	OrderPublicID string
	VenueName     string
	Currency      string
	Total         int64
	Bookings      []BookingLine
}

// CancellationMail данные письма об отмене брони
type CancellationMail struct {
	CustomerName string
	VenueName    string
	Booking      BookingLine
	Reason       string
	Refunded     bool
	Currency     string
}

// FormatMoney форматирует сумму в минимальных единицах: 150050 -> "1500.50"
func FormatMoney(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
}
