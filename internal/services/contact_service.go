package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Yusuf-Siddiqui-08/portfolio/internal/cache"
	"github.com/Yusuf-Siddiqui-08/portfolio/internal/captcha"
	"github.com/Yusuf-Siddiqui-08/portfolio/internal/hostutil"
	"github.com/Yusuf-Siddiqui-08/portfolio/internal/models"
	"github.com/Yusuf-Siddiqui-08/portfolio/pkg/crypto"
	appErrors "github.com/Yusuf-Siddiqui-08/portfolio/pkg/errors"
	"github.com/Yusuf-Siddiqui-08/portfolio/pkg/logger"
	"github.com/Yusuf-Siddiqui-08/portfolio/pkg/mail"
	"github.com/Yusuf-Siddiqui-08/portfolio/pkg/metrics"
	"github.com/Yusuf-Siddiqui-08/portfolio/pkg/validator"
)

const (
	// DefaultMinMessageLength is the shortest accepted message body.
	DefaultMinMessageLength = 20
	minNameLength           = 2
	clientKeyLength         = 32
	notifyTimeout           = 15 * time.Second
)

// ContactSettings configures the submission pipeline.
type ContactSettings struct {
	MinMessageLength int
	Limits           ContactLimits
	Dev              DevLimits
	CanonicalHost    string
	NotifyTo         []string
	FingerprintKey   []byte
}

// ContactSubmission is a single contact form post together with the request
// metadata used for abuse mitigation.
type ContactSubmission struct {
	Name         string
	Email        string
	Message      string
	Website      string
	CaptchaToken string
	IP           string
	UserAgent    string
	Host         string
}

// ContactResult describes an accepted submission. Stored is false when the
// submission was silently discarded.
type ContactResult struct {
	ID        string
	CreatedAt time.Time
	Stored    bool
}

// ContactOption customises a ContactService.
type ContactOption func(*ContactService)

// WithContactClock overrides the clock used for server timestamps.
func WithContactClock(now func() time.Time) ContactOption {
	return func(s *ContactService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSyncNotify delivers notification email before Submit returns instead
// of in the background.
func WithSyncNotify() ContactOption {
	return func(s *ContactService) {
		s.syncNotify = true
	}
}

// ContactService validates, rate limits, verifies and stores contact messages.
type ContactService struct {
	db         *gorm.DB
	limiter    *ContactLimiter
	verifier   captcha.Verifier
	mailer     mail.Mailer
	cfg        ContactSettings
	now        func() time.Time
	syncNotify bool
	pending    sync.WaitGroup
	log        *zap.Logger
}

// NewContactService constructs a ContactService. A nil verifier disables
// CAPTCHA and a nil mailer disables notifications.
func NewContactService(db *gorm.DB, store cache.Store, verifier captcha.Verifier, mailer mail.Mailer, cfg ContactSettings, opts ...ContactOption) (*ContactService, error) {
	if db == nil {
		return nil, errors.New("contact service: db is required")
	}
	if store == nil {
		return nil, cache.ErrStoreUnavailable
	}
	if verifier == nil {
		verifier = captcha.None{}
	}
	if cfg.MinMessageLength <= 0 {
		cfg.MinMessageLength = DefaultMinMessageLength
	}
	cfg.NotifyTo = normaliseAddresses(cfg.NotifyTo)

	s := &ContactService{
		db:       db,
		limiter:  NewContactLimiter(store, cfg.Limits, cfg.Dev),
		verifier: verifier,
		mailer:   mailer,
		cfg:      cfg,
		now:      time.Now,
		log:      logger.WithModule("contact"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Submit runs sub through the honeypot, validation, rate limiting, CAPTCHA or
// development counters, and persistence. Notification failures never fail
// the submission.
func (s *ContactService) Submit(ctx context.Context, sub ContactSubmission) (*ContactResult, error) {
	if strings.TrimSpace(sub.Website) != "" {
		metrics.ContactSubmissions.WithLabelValues("honeypot").Inc()
		s.log.Info("honeypot triggered", zap.String("ip", sub.IP))
		return &ContactResult{}, nil
	}

	sub.Name = strings.TrimSpace(sub.Name)
	sub.Email = strings.TrimSpace(sub.Email)
	sub.Message = strings.TrimSpace(sub.Message)

	if err := s.validate(sub); err != nil {
		metrics.ContactSubmissions.WithLabelValues(appErrors.CodeValidation).Inc()
		return nil, err
	}

	clientKey := crypto.ShortFingerprint(s.cfg.FingerprintKey, clientKeyLength, sub.IP, sub.UserAgent)
	if err := s.limiter.CheckGlobal(ctx, clientKey); err != nil {
		return nil, s.reject(err)
	}

	if s.bypassCaptcha(sub.Host) {
		fingerprint := crypto.Fingerprint(s.cfg.FingerprintKey, strings.ToLower(sub.Email), sub.Name, sub.Message)
		if err := s.limiter.CheckDev(ctx, clientKey, fingerprint); err != nil {
			return nil, s.reject(err)
		}
	} else if err := s.verifier.Verify(ctx, sub.CaptchaToken, sub.IP); err != nil {
		return nil, s.reject(err)
	}

	msg := &models.ContactMessage{
		Name:      sub.Name,
		Email:     sub.Email,
		Message:   sub.Message,
		CreatedAt: s.now().UTC(),
		IP:        sub.IP,
		UserAgent: sub.UserAgent,
	}
	if err := s.persist(ctx, msg); err != nil {
		metrics.ContactSubmissions.WithLabelValues(appErrors.CodeServerError).Inc()
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}

	metrics.ContactSubmissions.WithLabelValues("accepted").Inc()
	s.log.Info("contact message stored", zap.String("id", msg.ID))

	if s.syncNotify {
		s.notify(ctx, *msg)
	} else {
		s.pending.Add(1)
		go func(msg models.ContactMessage) {
			defer s.pending.Done()
			s.notify(context.WithoutCancel(ctx), msg)
		}(*msg)
	}

	return &ContactResult{ID: msg.ID, CreatedAt: msg.CreatedAt, Stored: true}, nil
}

// Drain blocks until background notifications finish or ctx is done.
func (s *ContactService) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// bypassCaptcha reports whether development counters replace CAPTCHA for
// host. Without a configured provider every host takes the counter path.
func (s *ContactService) bypassCaptcha(host string) bool {
	return !s.verifier.Enabled() || hostutil.IsDevelopment(host, s.cfg.CanonicalHost)
}

func (s *ContactService) validate(sub ContactSubmission) error {
	var fields []string
	if utf8.RuneCountInString(sub.Name) < minNameLength {
		fields = append(fields, "name")
	}
	if err := validator.ValidateVar("email", sub.Email, "required,simple_email"); err != nil {
		fields = append(fields, "email")
	}
	if err := validator.ValidateVar("message", sub.Message, fmt.Sprintf("required,min=%d", s.cfg.MinMessageLength)); err != nil {
		fields = append(fields, "message")
	}
	if len(fields) == 0 {
		return nil
	}
	return appErrors.ErrValidation.WithDetail("fields", fields)
}

func (s *ContactService) reject(err error) error {
	metrics.ContactSubmissions.WithLabelValues(appErrors.FromError(err).Code).Inc()
	return err
}

// persist inserts msg, regenerating the identifier once on a key collision.
func (s *ContactService) persist(ctx context.Context, msg *models.ContactMessage) error {
	err := s.db.WithContext(ctx).Create(msg).Error
	if err != nil && isUniqueConstraintError(err) {
		s.log.Warn("contact id collision, retrying", zap.String("id", msg.ID))
		msg.ID = ""
		err = s.db.WithContext(ctx).Create(msg).Error
	}
	return err
}

func (s *ContactService) notify(ctx context.Context, msg models.ContactMessage) {
	if s.mailer == nil || len(s.cfg.NotifyTo) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	err := s.mailer.Send(ctx, mail.Message{
		To:      s.cfg.NotifyTo,
		ReplyTo: msg.Email,
		Subject: fmt.Sprintf("New contact message from %s", msg.Name),
		Body: fmt.Sprintf("Name: %s\nEmail: %s\nIP: %s\nUser-Agent: %s\nReceived: %s\nID: %s\n\n%s\n",
			msg.Name, msg.Email, msg.IP, msg.UserAgent, msg.CreatedAt.Format(time.RFC3339), msg.ID, msg.Message),
	})
	switch {
	case err == nil:
		s.log.Info("contact notification sent", zap.String("id", msg.ID))
	case errors.Is(err, mail.ErrSMTPDisabled):
		s.log.Debug("contact notification skipped, smtp disabled", zap.String("id", msg.ID))
	default:
		metrics.NotificationFailures.Inc()
		s.log.Warn("contact notification failed", zap.String("id", msg.ID), zap.Error(err))
	}
}
