package dto

// UploadResponse carries the public URL of a stored upload
type UploadResponse struct {
	FileURL string `json:"fileUrl" example:"http://localhost:8080/uploads/chat/7f1c3c5e.png"`
}
