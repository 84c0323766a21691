package fieldsync

import "errors"

var (
	// ErrFieldNotFound возвращается, когда провайдер не знает площадку
	ErrFieldNotFound = errors.New("fieldsync client: field not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("fieldsync client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от провайдера
	ErrInvalidResponse = errors.New("fieldsync client: invalid response")
)
