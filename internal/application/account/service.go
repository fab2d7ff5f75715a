package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/herbal-remedy-api/internal/domain"
	pkgtoken "github.com/herbal-remedy-api/internal/pkg/token"
	"github.com/herbal-remedy-api/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

// VerificationTTL is how long a verification token stays valid after issuance.
const VerificationTTL = 24 * time.Hour

type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) error
	VerifyEmail(ctx context.Context, token string) (*domain.Account, error)
	ResendVerification(ctx context.Context, email string) error
	Login(ctx context.Context, req domain.LoginRequest) (string, error)
	MaskedEmail(ctx context.Context, username string) (string, error)
}

// pendingStore must treat an expired-but-unswept record as absent for Create and RotateToken.
type pendingStore interface {
	Create(ctx context.Context, p *domain.PendingAccount, now time.Time) error
	GetByEmail(ctx context.Context, email string) (*domain.PendingAccount, error)
	GetByUsername(ctx context.Context, username string) (*domain.PendingAccount, error)
	GetByToken(ctx context.Context, token string) (*domain.PendingAccount, error)
	RotateToken(ctx context.Context, email, token string, expiresAt int64, now time.Time) error
	Delete(ctx context.Context, email string) error
}

type accountStore interface {
	Create(ctx context.Context, a *domain.Account) error
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}

type mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type tokenIssuer interface {
	Issue(subject string) (string, error)
}

type ServiceDeps struct {
	Pending  pendingStore
	Accounts accountStore
	Mailer   mailer
	Tokens   tokenIssuer
	// VerifyURLBase is the link target in verification mails; the token is appended as ?token=.
	VerifyURLBase   string
	VerificationTTL time.Duration
	MailTimeout     time.Duration
	BcryptCost      int
	Now             func() time.Time
}

type service struct {
	pending     pendingStore
	accounts    accountStore
	mailer      mailer
	tokens      tokenIssuer
	verifyURL   string
	ttl         time.Duration
	mailTimeout time.Duration
	cost        int
	now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		pending:     deps.Pending,
		accounts:    deps.Accounts,
		mailer:      deps.Mailer,
		tokens:      deps.Tokens,
		verifyURL:   deps.VerifyURLBase,
		ttl:         deps.VerificationTTL,
		mailTimeout: deps.MailTimeout,
		cost:        deps.BcryptCost,
		now:         deps.Now,
	}
	if s.ttl <= 0 {
		s.ttl = VerificationTTL
	}
	if s.mailTimeout <= 0 {
		s.mailTimeout = 10 * time.Second
	}
	if s.cost == 0 {
		s.cost = bcrypt.DefaultCost
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) error {
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), domain.ErrValidation)
	}
	now := s.now()

	if err := s.checkAvailable(ctx, req.Email, req.Username, now); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return fmt.Errorf("password exceeds %d bytes: %w", validate.MaxPasswordBytes, domain.ErrValidation)
	}
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	token, err := pkgtoken.NewVerificationToken()
	if err != nil {
		return err
	}
	p := &domain.PendingAccount{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hash),
		Token:        token,
		ExpiresAt:    now.Add(s.ttl).Unix(),
		CreatedAt:    now.UTC(),
	}
	if err := s.pending.Create(ctx, p, now); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return fmt.Errorf("email already registered: %w", domain.ErrConflict)
		}
		return fmt.Errorf("create pending account: %w: %w", domain.ErrPersistence, err)
	}

	if err := s.sendVerification(ctx, p.Email, token); err != nil {
		if derr := s.pending.Delete(ctx, p.Email); derr != nil {
			slog.Error("failed to roll back pending account", "email", p.Email, "err", derr)
		}
		return fmt.Errorf("send verification email: %w: %w", domain.ErrDispatch, err)
	}
	return nil
}

// checkAvailable rejects an email or username held by an Account or a live PendingAccount.
func (s *service) checkAvailable(ctx context.Context, email, username string, now time.Time) error {
	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return fmt.Errorf("email already registered: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("lookup account: %w: %w", domain.ErrPersistence, err)
	}
	if _, err := s.accounts.GetByUsername(ctx, username); err == nil {
		return fmt.Errorf("username already taken: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("lookup account: %w: %w", domain.ErrPersistence, err)
	}
	if p, err := s.livePending(ctx, s.pending.GetByEmail, email, now); err != nil {
		return err
	} else if p != nil {
		return fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	if p, err := s.livePending(ctx, s.pending.GetByUsername, username, now); err != nil {
		return err
	} else if p != nil {
		return fmt.Errorf("username already taken: %w", domain.ErrConflict)
	}
	return nil
}

// livePending returns the pending record found by get, or nil when it is absent or expired.
func (s *service) livePending(
	ctx context.Context,
	get func(context.Context, string) (*domain.PendingAccount, error),
	key string,
	now time.Time,
) (*domain.PendingAccount, error) {
	p, err := get(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup pending account: %w: %w", domain.ErrPersistence, err)
	}
	if p.Expired(now) {
		return nil, nil
	}
	return p, nil
}

func (s *service) VerifyEmail(ctx context.Context, token string) (*domain.Account, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("verification token required: %w", domain.ErrInvalidToken)
	}
	p, err := s.pending.GetByToken(ctx, token)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("unknown verification token: %w", domain.ErrInvalidToken)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup pending account: %w: %w", domain.ErrPersistence, err)
	}
	now := s.now()
	if p.Expired(now) {
		return nil, fmt.Errorf("verification link expired, register again: %w", domain.ErrExpired)
	}

	a := &domain.Account{
		Username:     p.Username,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		Verified:     true,
		CreatedAt:    p.CreatedAt,
		VerifiedAt:   now.UTC(),
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("promote pending account: %w: %w", domain.ErrPersistence, err)
	}
	if err := s.pending.Delete(ctx, p.Email); err != nil {
		slog.Warn("failed to delete promoted pending account", "email", p.Email, "err", err)
	}
	return a, nil
}

func (s *service) ResendVerification(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if !validate.Email(email) {
		return fmt.Errorf("a valid email is required: %w", domain.ErrValidation)
	}
	a, err := s.accounts.GetByEmail(ctx, email)
	if err == nil && a.Verified {
		return fmt.Errorf("account already verified: %w", domain.ErrAlreadyVerified)
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("lookup account: %w: %w", domain.ErrPersistence, err)
	}

	now := s.now()
	p, err := s.livePending(ctx, s.pending.GetByEmail, email, now)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("no pending registration for email: %w", domain.ErrNotFound)
	}

	token, err := pkgtoken.NewVerificationToken()
	if err != nil {
		return err
	}
	if err := s.pending.RotateToken(ctx, p.Email, token, now.Add(s.ttl).Unix(), now); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no pending registration for email: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("rotate verification token: %w: %w", domain.ErrPersistence, err)
	}
	if err := s.sendVerification(ctx, p.Email, token); err != nil {
		return fmt.Errorf("send verification email: %w: %w", domain.ErrDispatch, err)
	}
	return nil
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (string, error) {
	if err := validate.Struct(req); err != nil {
		return "", fmt.Errorf("%s: %w", err.Error(), domain.ErrValidation)
	}
	a, err := s.accounts.GetByUsername(ctx, req.Username)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("lookup account: %w: %w", domain.ErrPersistence, err)
		}
		p, perr := s.livePending(ctx, s.pending.GetByUsername, req.Username, s.now())
		if perr != nil {
			return "", perr
		}
		if p != nil {
			return "", fmt.Errorf("email not verified: %w", domain.ErrUnverified)
		}
		return "", fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	if !a.Verified {
		return "", fmt.Errorf("account %q stored unverified: %w", a.Username, domain.ErrIntegrity)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(req.Password)); err != nil {
		return "", fmt.Errorf("wrong password: %w", domain.ErrInvalidCredentials)
	}
	return s.tokens.Issue(a.Username)
}

func (s *service) MaskedEmail(ctx context.Context, username string) (string, error) {
	a, err := s.accounts.GetByUsername(ctx, username)
	if err == nil {
		return MaskEmail(a.Email), nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("lookup account: %w: %w", domain.ErrPersistence, err)
	}
	p, err := s.livePending(ctx, s.pending.GetByUsername, username, s.now())
	if err != nil {
		return "", err
	}
	if p == nil {
		return "", fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return MaskEmail(p.Email), nil
}

func (s *service) sendVerification(ctx context.Context, email, token string) error {
	cctx, cancel := context.WithTimeout(ctx, s.mailTimeout)
	defer cancel()
	link := s.verifyURL + "?token=" + url.QueryEscape(token)
	body := fmt.Sprintf("Confirm your email address by opening the link below. It expires in %d hours.\n\n%s\n",
		int(s.ttl.Hours()), link)
	return s.mailer.SendEmail(cctx, email, "Verify your email", body)
}

// MaskEmail keeps the first rune of the local part and stars the rest: alice@b.com -> a****@b.com.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	local, domainPart := email[:at], email[at:]
	n := utf8.RuneCountInString(local)
	if n <= 1 {
		return "*" + domainPart
	}
	first, _ := utf8.DecodeRuneInString(local)
	return string(first) + strings.Repeat("*", n-1) + domainPart
}
