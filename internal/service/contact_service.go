package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/orgcms-api/internal/models"
	appErrors "github.com/noah-isme/orgcms-api/pkg/errors"
)

var simpleEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var contactReasons = map[string]string{
	"name":    "name must be at least 3 characters",
	"email":   "email format is invalid",
	"subject": "subject must be at most 200 characters",
	"message": "message must be at least 10 characters",
}

type contactStore interface {
	documentFinder
	Create(ctx context.Context, collection string, data models.Document) (models.Document, error)
}

type rateGuard interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type contactMetrics interface {
	RecordContactSubmission(outcome string)
}

// ContactConfig limits submissions per client.
type ContactConfig struct {
	RateLimit  int
	RateWindow time.Duration
}

// ContactService validates and stores public contact submissions.
type ContactService struct {
	store     contactStore
	guard     rateGuard
	metrics   contactMetrics
	validator *validator.Validate
	cfg       ContactConfig
	logger    *zap.Logger
}

// NewContactService creates the contact intake service. guard and metrics may be nil.
func NewContactService(store contactStore, guard rateGuard, metrics contactMetrics, validate *validator.Validate, cfg ContactConfig, logger *zap.Logger) *ContactService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := validate.RegisterValidation("simple_email", func(fl validator.FieldLevel) bool {
		return simpleEmail.MatchString(fl.Field().String())
	}); err != nil {
		logger.Error("register contact validation", zap.Error(err))
	}
	return &ContactService{store: store, guard: guard, metrics: metrics, validator: validate, cfg: cfg, logger: logger}
}

func normalizeSubmission(sub models.ContactSubmission) models.ContactSubmission {
	return models.ContactSubmission{
		Name:    strings.TrimSpace(sub.Name),
		Email:   strings.TrimSpace(sub.Email),
		Subject: strings.TrimSpace(sub.Subject),
		Message: strings.TrimSpace(sub.Message),
	}
}

// Validate checks every field and reports all failures in name, email, subject, message order.
func (s *ContactService) Validate(sub models.ContactSubmission) []appErrors.FieldError {
	err := s.validator.Struct(normalizeSubmission(sub))
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []appErrors.FieldError{{Field: "form", Reason: err.Error()}}
	}
	fields := make([]appErrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		reason, ok := contactReasons[field]
		if !ok {
			reason = fe.Error()
		}
		fields = append(fields, appErrors.FieldError{Field: field, Reason: reason})
	}
	return fields
}

// Submit validates, throttles and stores a submission.
func (s *ContactService) Submit(ctx context.Context, sub models.ContactSubmission, clientIP string) (*models.ContactMessage, error) {
	if fields := s.Validate(sub); len(fields) > 0 {
		s.observe("invalid")
		return nil, appErrors.Validation("invalid contact submission", fields)
	}

	if s.guard != nil && clientIP != "" {
		allowed, err := s.guard.Allow(ctx, "orgcms:contact:"+clientIP, s.cfg.RateLimit, s.cfg.RateWindow)
		if err != nil {
			s.logger.Warn("contact rate guard unavailable", zap.Error(err))
		} else if !allowed {
			s.observe("throttled")
			return nil, appErrors.Clone(appErrors.ErrTooManyRequests, "too many contact submissions, try again later")
		}
	}

	clean := normalizeSubmission(sub)
	doc, err := s.store.Create(ctx, models.CollectionContactMessages, models.Document{
		"name":      clean.Name,
		"email":     clean.Email,
		"subject":   clean.Subject,
		"message":   clean.Message,
		"ipAddress": clientIP,
	})
	if err != nil {
		return nil, storeFailure(s.logger, "store contact message", err)
	}

	var msg models.ContactMessage
	if err := decodeDocument(doc, &msg); err != nil {
		return nil, storeFailure(s.logger, "decode contact message", err)
	}
	s.observe("accepted")
	return &msg, nil
}

// List returns stored submissions, newest first.
func (s *ContactService) List(ctx context.Context, page, size int) ([]models.ContactMessage, *models.Pagination, error) {
	if size <= 0 || size > maxListLimit {
		size = 20
	}
	res, err := s.store.Find(ctx, models.CollectionContactMessages, models.FindOptions{Sort: "-createdAt", Limit: size, Page: page})
	if err != nil {
		return nil, nil, storeFailure(s.logger, "list contact messages", err)
	}
	messages, err := decodeDocuments[models.ContactMessage](res.Docs)
	if err != nil {
		return nil, nil, storeFailure(s.logger, "decode contact messages", err)
	}
	pagination := res.Pagination
	return messages, &pagination, nil
}

func (s *ContactService) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordContactSubmission(outcome)
	}
}
