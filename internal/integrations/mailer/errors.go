package mailer

import "errors"

var (
	// ErrTemplate возвращается при ошибке рендера шаблона письма
	ErrTemplate = errors.New("mailer: template error")

	// ErrSend возвращается при ошибке отправки через SMTP
	ErrSend = errors.New("mailer: send failed")
)
