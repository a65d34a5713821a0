// Package account keeps the local account registry used by the sign-in
// screens. Passwords are stored as bcrypt hashes.
package account

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/nhle/smartnote/internal/model"
)

// MinPasswordLength is enforced at registration.
const MinPasswordLength = 6

var (
	ErrAccountExists      = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
)

// Registry persists accounts. store.Repository satisfies it.
type Registry interface {
	LoadAccounts(ctx context.Context) ([]model.Account, error)
	SaveAccounts(ctx context.Context, accounts []model.Account) error
}

// Option configures a Service.
type Option func(*Service)

// WithCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service registers and authenticates local accounts.
type Service struct {
	reg  Registry
	cost int
	now  func() time.Time
}

// NewService creates a Service over reg.
func NewService(reg Registry, opts ...Option) *Service {
	s := &Service{reg: reg, cost: bcrypt.DefaultCost, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UsernameFromEmail is the local part of email, or "User" when empty.
func UsernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local = strings.TrimSpace(local); local != "" {
		return local
	}
	return "User"
}

// ValidateEmail checks the address shape.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil || addr.Address != strings.TrimSpace(email) || !strings.Contains(addr.Address, "@") {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword checks the minimum length.
func ValidatePassword(pw string) error {
	if len([]rune(pw)) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and returns the signed-in user. An empty
// username is derived from the email.
func (s *Service) Register(ctx context.Context, username, email, password string) (model.User, error) {
	if err := ValidateEmail(email); err != nil {
		return model.User{}, err
	}
	if err := ValidatePassword(password); err != nil {
		return model.User{}, err
	}

	accounts, err := s.reg.LoadAccounts(ctx)
	if err != nil {
		return model.User{}, fmt.Errorf("loading accounts: %w", err)
	}
	key := normalizeEmail(email)
	for _, a := range accounts {
		if normalizeEmail(a.Email) == key {
			return model.User{}, ErrAccountExists
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return model.User{}, fmt.Errorf("hashing password: %w", err)
	}

	username = strings.TrimSpace(username)
	if username == "" {
		username = UsernameFromEmail(email)
	}
	acc := model.Account{
		Username:     username,
		Email:        strings.TrimSpace(email),
		PasswordHash: string(hash),
		Tier:         model.TierFree,
		CreatedAt:    s.now(),
	}
	if err := s.reg.SaveAccounts(ctx, append(accounts, acc)); err != nil {
		return model.User{}, err
	}
	return userFor(acc), nil
}

// Login verifies the password for email.
func (s *Service) Login(ctx context.Context, email, password string) (model.User, error) {
	acc, _, err := s.find(ctx, email)
	if err != nil {
		return model.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)) != nil {
		return model.User{}, ErrInvalidCredentials
	}
	return userFor(acc), nil
}

// RequestReset returns the notice shown after a reset request. No mail is
// sent, and the notice does not reveal whether the account exists.
func (s *Service) RequestReset(email string) (string, error) {
	if err := ValidateEmail(email); err != nil {
		return "", err
	}
	return "Reset link sent to " + strings.TrimSpace(email), nil
}

// Upgrade moves the user's account to the premium tier and returns the
// updated user. Users without a local account are upgraded in the session
// only.
func (s *Service) Upgrade(ctx context.Context, u model.User) (model.User, error) {
	u.SubscriptionTier = model.TierPremium

	_, idx, err := s.find(ctx, u.Email)
	if errors.Is(err, ErrInvalidCredentials) {
		return u, nil
	}
	if err != nil {
		return u, err
	}

	accounts, err := s.reg.LoadAccounts(ctx)
	if err != nil {
		return u, fmt.Errorf("loading accounts: %w", err)
	}
	accounts[idx].Tier = model.TierPremium
	if err := s.reg.SaveAccounts(ctx, accounts); err != nil {
		return u, err
	}
	return u, nil
}

// Accounts lists registered accounts without their hashes.
func (s *Service) Accounts(ctx context.Context) ([]model.Account, error) {
	accounts, err := s.reg.LoadAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}
	for i := range accounts {
		accounts[i].PasswordHash = ""
	}
	return accounts, nil
}

func (s *Service) find(ctx context.Context, email string) (model.Account, int, error) {
	accounts, err := s.reg.LoadAccounts(ctx)
	if err != nil {
		return model.Account{}, -1, fmt.Errorf("loading accounts: %w", err)
	}
	key := normalizeEmail(email)
	for i, a := range accounts {
		if normalizeEmail(a.Email) == key {
			return a, i, nil
		}
	}
	return model.Account{}, -1, ErrInvalidCredentials
}

func userFor(a model.Account) model.User {
	tier := a.Tier
	if tier == "" {
		tier = model.TierFree
	}
	return model.User{
		Username:         a.Username,
		Email:            a.Email,
		IsAuthenticated:  true,
		SubscriptionTier: tier,
	}
}
