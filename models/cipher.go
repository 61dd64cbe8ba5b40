package models

// CipherRequest is the body of POST /encrypt and POST /decrypt calls to the
// vault service.
type CipherRequest struct {
	Values []string `json:"values"`
}

// CipherResponse is the body returned by the vault service. Values is
// index-aligned with the request.
type CipherResponse struct {
	OK      bool     `json:"ok"`
	Values  []string `json:"values"`
	Error   string   `json:"error,omitempty"`
	Message string   `json:"message,omitempty"`
}
