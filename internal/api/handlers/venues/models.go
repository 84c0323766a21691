package venues

// AddManagerRequest назначение менеджера площадки
type AddManagerRequest struct {
	UserID int64 `json:"userId"`
}
