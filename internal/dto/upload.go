package dto

// UploadResponse relays the backend's acknowledgement of an upload.
type UploadResponse struct {
	Kind     string                 `json:"kind"`
	Filename string                 `json:"filename"`
	Rows     int                    `json:"rows"`
	Upstream map[string]interface{} `json:"upstream"`
}
