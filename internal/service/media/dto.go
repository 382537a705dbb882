package media

import "time"

type UploadURLResult struct {
	UploadURL string    `json:"uploadUrl"`
	URL       string    `json:"url"`
	PublicID  string    `json:"publicId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type DeleteImageRequest struct {
	PublicID string `json:"publicId" validate:"required,max=512"`
}

type DeleteImageResult struct {
	Message string `json:"message"`
}
