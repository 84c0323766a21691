package sync_external_blocks

import "time"

// ExternalBlockReason причина блокировки, созданной синхронизацией
const ExternalBlockReason = "Бронь у внешнего провайдера"

// Settings параметры синхронизации
type Settings struct {
	DaysAhead int
	Location  *time.Location
}

// Result итог одного прогона синхронизации
type Result struct {
	Courts   int
	Upserted int
	Removed  int64
	Skipped  int // некорректные или отменённые брони провайдера
	Failed   int // корты, которые не удалось синхронизировать
}
