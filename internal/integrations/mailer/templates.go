package mailer

import (
	"strings"
	"text/template"
)

const (
	tplMagicLink    = "magic_link"
	tplConfirmation = "confirmation"
	tplCancellation = "cancellation"
)

var subjects = map[string]string{
	tplMagicLink:    "Вход в аккаунт",
	tplConfirmation: "Бронирование подтверждено",
	tplCancellation: "Бронирование отменено",
}

var templates = template.Must(template.New("mail").Funcs(template.FuncMap{
	"money": FormatMoney,
	"upper": strings.ToUpper,
}).Parse(`
{{define "magic_link"}}Здравствуйте!

Чтобы войти, перейдите по ссылке:
{{.Link}}

Ссылка действует {{.TTLMinutes}} мин. и может быть использована один раз.
Если вы не запрашивали вход, просто проигнорируйте это письмо.
{{end}}

{{define "confirmation"}}Здравствуйте, {{.CustomerName}}!

Оплата заказа {{.OrderPublicID}} получена, бронирование в «{{.VenueName}}» подтверждено.
{{range .Bookings}}
- {{.CourtName}}: {{.Date}} {{.StartTime}}-{{.EndTime}}, {{money .Price}} {{upper $.Currency}}{{end}}

Итого: {{money .Total}} {{upper .Currency}}
{{end}}

{{define "cancellation"}}Здравствуйте, {{.CustomerName}}!

Бронирование в «{{.VenueName}}» отменено:
- {{.Booking.CourtName}}: {{.Booking.Date}} {{.Booking.StartTime}}-{{.Booking.EndTime}}
{{if .Reason}}
Причина: {{.Reason}}
{{end}}{{if .Refunded}}
Сумма {{money .Booking.Price}} {{upper .Currency}} будет возвращена на карту.
{{end}}{{end}}
`))
