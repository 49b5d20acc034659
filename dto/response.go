package dto

// ErrorResponse is the JSON envelope for failed requests.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Code    int      `json:"code"`
	Missing []string `json:"missing_columns,omitempty"`
}

// UploadResponse summarizes a processed statement upload.
type UploadResponse struct {
	Years     []string  `json:"years"`
	Rows      int       `json:"rows"`
	KPIsFound int       `json:"kpis_found"`
	Warnings  []Warning `json:"warnings"`
}
