package user

import "errors"

var (
	// ErrUserNotFound возвращается, когда пользователь не найден
	ErrUserNotFound = errors.New("user.repository: user not found")

	// ErrEmailTaken возвращается при попытке создать второго пользователя с тем же email
	ErrEmailTaken = errors.New("user.repository: email already registered")

	// ErrMagicLinkNotFound возвращается, если ссылка не существует, просрочена или уже использована
	ErrMagicLinkNotFound = errors.New("user.repository: magic link not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("user.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("user.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("user.repository: failed to scan row")
)
