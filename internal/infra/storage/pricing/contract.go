package pricing

import (
	"github.com/m04kA/SMC-CourtBooking/pkg/dbmetrics"
)

type DBExecutor = dbmetrics.DBExecutor
