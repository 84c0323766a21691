package sync_external_blocks

import "errors"

var (
	// ErrInternal возвращается, когда не удалось получить список кортов
	ErrInternal = errors.New("sync_external_blocks: internal error")

	// ErrCourtSyncFailed возвращается, когда синхронизация хотя бы одного корта не удалась
	ErrCourtSyncFailed = errors.New("sync_external_blocks: some courts failed to sync")
)
