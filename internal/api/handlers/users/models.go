package users

// MagicLinkRequest запрос ссылки для входа
type MagicLinkRequest struct {
	Email string `json:"email"`
}

// VerifyMagicLinkRequest обмен ссылки на токен
type VerifyMagicLinkRequest struct {
	Token string `json:"token"`
}
