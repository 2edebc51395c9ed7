package services

import (
	"context"
	"fmt"
	"strings"

	"gnsons/internal/metrics"
	"gnsons/internal/models"
	"gnsons/internal/repositories"

	"go.uber.org/zap"
)

const defaultContactSubject = "General Inquiry"

// ContactInput is a contact-form submission.
type ContactInput struct {
	Name    string `json:"name" validate:"required,min=2"`
	Email   string `json:"email" validate:"required"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message" validate:"required,min=10"`
}

// ContactResult is the stored submission and the outcome of both emails.
type ContactResult struct {
	Contact      *models.Contact `json:"contact"`
	Confirmation SideEffect      `json:"confirmation"`
	AdminNotice  SideEffect      `json:"adminNotice"`
}

// ContactService stores contact-form submissions.
type ContactService struct {
	contacts   repositories.ContactRepository
	notifier   Notifier
	adminEmail string
	log        *zap.Logger
}

// NewContactService creates a ContactService. adminEmail may be empty, in
// which case no admin notice is sent.
func NewContactService(contacts repositories.ContactRepository, notifier Notifier, adminEmail string, log *zap.Logger) *ContactService {
	return &ContactService{contacts: contacts, notifier: notifier, adminEmail: adminEmail, log: log}
}

// Submit validates and stores a submission, then attempts a confirmation to
// the sender and a notice to the store.
func (s *ContactService) Submit(ctx context.Context, in ContactInput) (*ContactResult, error) {
	name := strings.TrimSpace(in.Name)
	message := strings.TrimSpace(in.Message)
	email := strings.TrimSpace(in.Email)
	if len(name) < 2 {
		return nil, fmt.Errorf("%w: name must be at least 2 characters", ErrValidation)
	}
	if !validEmail(email) {
		return nil, fmt.Errorf("%w: a valid email is required", ErrValidation)
	}
	if len(message) < 10 {
		return nil, fmt.Errorf("%w: message must be at least 10 characters", ErrValidation)
	}

	contact := &models.Contact{
		Name:    name,
		Email:   email,
		Phone:   strings.TrimSpace(in.Phone),
		Subject: strings.TrimSpace(in.Subject),
		Message: message,
		Status:  models.ContactNew,
	}
	if contact.Subject == "" {
		contact.Subject = defaultContactSubject
	}
	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, err
	}

	result := &ContactResult{Contact: contact}
	result.Confirmation = attempt(func() error {
		return s.notifier.Notify(ctx, contactConfirmationEmail(contact))
	})
	if s.adminEmail != "" {
		result.AdminNotice = attempt(func() error {
			return s.notifier.Notify(ctx, contactAdminEmail(s.adminEmail, contact))
		})
	}
	for kind, effect := range map[string]SideEffect{"contact_confirmation": result.Confirmation, "contact_admin_notice": result.AdminNotice} {
		if effect.Err != nil {
			metrics.SideEffectFailures.WithLabelValues(kind).Inc()
			s.log.Warn("Contact email failed", zap.String("kind", kind), zap.String("contact_id", contact.ID), zap.Error(effect.Err))
		}
	}
	return result, nil
}

// List returns every submission, newest first.
func (s *ContactService) List(ctx context.Context) ([]models.Contact, error) {
	return s.contacts.ListAll(ctx)
}

// UpdateStatus sets the handling status of a submission.
func (s *ContactService) UpdateStatus(ctx context.Context, id string, status models.ContactStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.contacts.UpdateStatus(ctx, id, status)
}
