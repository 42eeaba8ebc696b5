package dto

import "github.com/cwilkins507/my-portfolio/internal/domain"

// ContactRequest is the general contact form.
type ContactRequest struct {
	Name    string `json:"name"    validate:"notempty,max=100"`
	Email   string `json:"email"   validate:"required,email,max=254"`
	Service string `json:"service" validate:"service"`
	Message string `json:"message" validate:"max=5000"`
}

// ToDomain converts the form.
func (r ContactRequest) ToDomain() domain.ContactRequest {
	return domain.ContactRequest{Name: r.Name, Email: r.Email, Service: r.Service, Message: r.Message}
}

// AcceptedResponse acknowledges a relayed form.
type AcceptedResponse struct {
	Status string `json:"status"`
}
