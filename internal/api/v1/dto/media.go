package dto

// PresignUploadRequest asks for a presigned cover image upload URL.
type PresignUploadRequest struct {
	Filename string `json:"filename" validate:"required,max=255"`
}

// PresignUploadResponse carries the presigned URL and the object key.
type PresignUploadResponse struct {
	UploadURL string `json:"upload_url"`
	Key       string `json:"key"`
	PublicURL string `json:"public_url"`
}
