package models

// ErrorMessageResponse returns the error message response struct written by
// config.ErrorStatus on HTTP error paths.
type ErrorMessageResponse struct {
	Response MessageError `json:"response"`
}

// MessageError contains the inner details for the error message response
type MessageError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
