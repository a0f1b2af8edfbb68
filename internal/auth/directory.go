package auth

import (
	"fmt"
	"strings"
	"sync"

	"mcq-service/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Directory is the in-memory account registry behind login and signup.
type Directory struct {
	mu      sync.RWMutex
	byEmail map[string]domain.Account
	byID    map[string]string
	cost    int
}

// NewDirectory returns an empty directory hashing new passwords with cost
// (bcrypt.DefaultCost when cost is 0).
func NewDirectory(cost int) *Directory {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Directory{
		byEmail: make(map[string]domain.Account),
		byID:    make(map[string]string),
		cost:    cost,
	}
}

// Add registers an account whose PasswordHash is already a bcrypt hash.
func (d *Directory) Add(account domain.Account) error {
	account.Email = normalizeEmail(account.Email)
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if !account.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, account.Role)
	}
	if account.Email == "" || account.PasswordHash == "" {
		return fmt.Errorf("%w: email and password hash are required", domain.ErrInvalidInput)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.byEmail[account.Email]; ok {
		return domain.ErrAccountExists
	}
	if _, ok := d.byID[account.ID]; ok {
		return domain.ErrAccountExists
	}
	d.byEmail[account.Email] = account
	d.byID[account.ID] = account.Email
	return nil
}

// AddWithPassword hashes password and registers the account.
func (d *Directory) AddWithPassword(account domain.Account, password string) (domain.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.cost)
	if err != nil {
		return domain.Account{}, fmt.Errorf("hash password: %w", err)
	}
	account.PasswordHash = string(hash)
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if err := d.Add(account); err != nil {
		return domain.Account{}, err
	}
	account.Email = normalizeEmail(account.Email)
	return account, nil
}

// Register creates a self-service account; signups always get the user role.
func (d *Directory) Register(req SignupRequest) (domain.Account, error) {
	if err := req.Validate(); err != nil {
		return domain.Account{}, err
	}
	return d.AddWithPassword(domain.Account{
		Name:  strings.TrimSpace(req.Name),
		Email: req.Email,
		Role:  domain.RoleUser,
	}, req.Password)
}

// Authenticate checks credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (d *Directory) Authenticate(req LoginRequest) (domain.Account, error) {
	if err := req.Validate(); err != nil {
		return domain.Account{}, err
	}

	d.mu.RLock()
	account, ok := d.byEmail[normalizeEmail(req.Email)]
	d.mu.RUnlock()
	if !ok {
		return domain.Account{}, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)) != nil {
		return domain.Account{}, domain.ErrInvalidCredentials
	}
	return account, nil
}

// Lookup resolves an account by id.
func (d *Directory) Lookup(id string) (domain.Account, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	email, ok := d.byID[id]
	if !ok {
		return domain.Account{}, false
	}
	account, ok := d.byEmail[email]
	return account, ok
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
