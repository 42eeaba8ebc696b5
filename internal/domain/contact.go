package domain

import "strings"

// ServiceOption is a selectable service on the general contact form.
type ServiceOption struct {
	Value string
	Label string
}

// ServiceOptions lists the services offered on the contact form.
var ServiceOptions = []ServiceOption{
	{Value: "ai-automation", Label: "AI & Automation Consulting"},
	{Value: "python-scripting", Label: "Python Scripting & API Integration"},
	{Value: "aws-serverless", Label: "AWS & Serverless Architecture"},
}

const (
	defaultContactMessage = "No message provided"
	defaultServiceLabel   = "Not specified"
	generalInquiry        = "General Inquiry"
)

// ServiceLabel resolves a service value to its label.
func ServiceLabel(value string) (string, bool) {
	for _, o := range ServiceOptions {
		if o.Value == value {
			return o.Label, true
		}
	}

	return "", false
}

// ContactRequest is a general inquiry from the contact form.
type ContactRequest struct {
	Name    string
	Email   string
	Service string
	Message string
}

// NewContactLead validates req and builds its relay lead.
func NewContactLead(req ContactRequest) (Lead, error) {
	var errs FieldErrors

	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)

	if name == "" {
		errs = append(errs, &ValidationError{Field: "name", Message: "is required"})
	}

	if email == "" {
		errs = append(errs, &ValidationError{Field: "email", Message: "is required"})
	}

	label, known := ServiceLabel(req.Service)
	if req.Service != "" && !known {
		errs = append(errs, &ValidationError{Field: "service", Message: "unknown service", Value: req.Service})
	}

	if err := errs.OrNil(); err != nil {
		return Lead{}, err
	}

	subject := generalInquiry
	service := defaultServiceLabel

	if known {
		subject = label
		service = label
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		message = defaultContactMessage
	}

	return Lead{
		Name:    name,
		Email:   email,
		Subject: "Portfolio Contact: " + subject,
		Message: message,
		Service: service,
	}, nil
}
