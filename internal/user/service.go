package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Demo PIN shared by all seeded accounts. No attempt limit is enforced; this
// is documented demo behaviour, not an oversight to harden.
const demoPIN = "1234"

var (
	// ErrInvalidPIN indicates the supplied PIN does not match the stored hash.
	ErrInvalidPIN = errors.New("invalid PIN")

	// ErrSelfPayment indicates the resolved recipient is the payer.
	ErrSelfPayment = errors.New("cannot pay yourself")
)

// Reassigner moves ledger rows from one user to another when phone-only
// accounts are merged into a signed-up account.
type Reassigner interface {
	Reassign(ctx context.Context, fromUserID, toUserID uint) error
}

// Service manages users, demo seeding and voice-friendly recipient resolution.
type Service struct {
	repo        Repository
	reassigners []Reassigner
	logger      *slog.Logger
}

// NewService builds a user service. Reassigners are invoked in order when two
// accounts are linked.
func NewService(repo Repository, logger *slog.Logger, reassigners ...Reassigner) *Service {
	return &Service{repo: repo, reassigners: reassigners, logger: logger}
}

// Get fetches a user by identifier.
func (s *Service) Get(ctx context.Context, id uint) (User, error) {
	return s.repo.ByID(ctx, id)
}

// All lists every user.
func (s *Service) All(ctx context.Context) ([]User, error) {
	return s.repo.All(ctx)
}

// ByPhone fetches a user by 10-digit phone number.
func (s *Service) ByPhone(ctx context.Context, phone string) (User, error) {
	return s.repo.ByPhone(ctx, phone)
}

// VerifyPIN checks the supplied PIN against the stored hash.
func (s *Service) VerifyPIN(ctx context.Context, id uint, pin string) error {
	u, err := s.repo.ByID(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword(u.PINHash, []byte(pin)) != nil {
		return ErrInvalidPIN
	}
	return nil
}

// Resolve maps a free-text recipient string, as heard by the transcriber, to
// at most one known user. Matching ladder, in order: exact name, substring,
// fuzzy full name, fuzzy first name. Devanagari input is transliterated and
// retried before the fuzzy stages.
func (s *Service) Resolve(ctx context.Context, name string) (User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return User{}, ErrNotFound
	}

	if u, err := s.repo.ByName(ctx, name); err == nil {
		return u, nil
	}

	if roman := TransliterateDevanagari(name); roman != name {
		if u, err := s.repo.ByName(ctx, roman); err == nil {
			return u, nil
		}
		name = roman
	}

	if u, err := s.repo.ByNameSubstring(ctx, name); err == nil {
		return u, nil
	}

	all, err := s.repo.All(ctx)
	if err != nil {
		return User{}, err
	}
	if len(all) == 0 {
		return User{}, ErrNotFound
	}

	// Fuzzy full-name pass. 65% catches transcriber spellings such as
	// "Neeraj Namjoshi" for "Niraj Namjoshi".
	best, score := User{}, 0
	for _, u := range all {
		if sc := tokenSortRatio(name, u.Name); sc > score {
			best, score = u, sc
		}
	}
	if score >= 65 {
		s.logger.Debug("fuzzy recipient match", "heard", name, "matched", best.Name, "score", score)
		return best, nil
	}

	// Fuzzy first-name pass with a lower bar; voice commands usually carry
	// first names only.
	best, score = User{}, 0
	for _, u := range all {
		first := strings.Fields(u.Name)[0]
		sc := ratio(name, first)
		if p := partialRatio(name, first); p > sc {
			sc = p
		}
		if sc > score {
			best, score = u, sc
		}
	}
	if score >= 60 {
		s.logger.Debug("fuzzy first-name match", "heard", name, "matched", best.Name, "score", score)
		return best, nil
	}

	return User{}, ErrNotFound
}

// CreatePhoneUser provisions a zero-balance account keyed by phone number.
// The placeholder name is replaced when the owner signs up.
func (s *Service) CreatePhoneUser(ctx context.Context, name, phone string) (User, error) {
	if name == "" {
		name = fmt.Sprintf("User %s", lastDigits(phone, 4))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(demoPIN), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	u := User{
		Name:        name,
		PhoneNumber: &phone,
		Balance:     0,
		PINHash:     hash,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, &u); err != nil {
		return User{}, err
	}
	s.logger.Info("created phone-only user", "name", u.Name, "user_id", u.ID)
	return u, nil
}

// SavePhoneResult reports what happened when a phone number was attached.
type SavePhoneResult struct {
	Linked     bool
	Phone      string
	NewBalance float64
}

// SavePhone attaches a phone number to a user. If the number already belongs
// to a phone-only account, the two accounts are merged: the balance moves,
// ledger rows are reassigned and the orphan record is deleted.
func (s *Service) SavePhone(ctx context.Context, userID uint, phone string) (SavePhoneResult, error) {
	clean := digitsOnly(phone)
	if len(clean) != 10 {
		return SavePhoneResult{}, fmt.Errorf("phone number must be 10 digits")
	}

	u, err := s.repo.ByID(ctx, userID)
	if err != nil {
		return SavePhoneResult{}, err
	}

	existing, err := s.repo.ByPhone(ctx, clean)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return SavePhoneResult{}, err
	}

	if err == nil && existing.ID != userID {
		combined := u.Balance + existing.Balance
		if err := s.repo.UpdateBalance(ctx, userID, combined); err != nil {
			return SavePhoneResult{}, err
		}
		for _, r := range s.reassigners {
			if err := r.Reassign(ctx, existing.ID, userID); err != nil {
				return SavePhoneResult{}, err
			}
		}
		if err := s.repo.Delete(ctx, existing.ID); err != nil {
			return SavePhoneResult{}, err
		}
		if err := s.repo.UpdatePhone(ctx, userID, clean); err != nil {
			return SavePhoneResult{}, err
		}
		s.logger.Info("linked phone account", "phone_user_id", existing.ID, "user_id", userID)
		return SavePhoneResult{Linked: true, Phone: clean, NewBalance: combined}, nil
	}

	if err := s.repo.UpdatePhone(ctx, userID, clean); err != nil {
		return SavePhoneResult{}, err
	}
	return SavePhoneResult{Linked: false, Phone: clean, NewBalance: u.Balance}, nil
}

// Seed inserts the demo users when the store is empty.
func (s *Service) Seed(ctx context.Context) error {
	all, err := s.repo.All(ctx)
	if err != nil {
		return err
	}
	if len(all) > 0 {
		return nil
	}

	seed := []struct {
		name    string
		balance float64
	}{
		{"Niraj", 10000},
		{"Rahul", 15000},
		{"Priya", 20000},
		{"Amit", 12000},
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(demoPIN), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	for _, entry := range seed {
		u := User{Name: entry.name, Balance: entry.balance, PINHash: hash, CreatedAt: time.Now().UTC()}
		if err := s.repo.Create(ctx, &u); err != nil {
			return err
		}
	}
	s.logger.Info("seeded demo users", "count", len(seed))
	return nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func lastDigits(s string, n int) string {
	d := digitsOnly(s)
	if len(d) <= n {
		return d
	}
	return d[len(d)-n:]
}
