package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"chat-demo/internal/domain"
	"chat-demo/internal/repository"
)

var (
	ErrContactServiceNotConfigured = errors.New("contact service not configured")
	ErrContactInvalidInput         = errors.New("contact invalid input")
	ErrUnknownCountry              = errors.New("unknown country code")
)

// dialCodes mapea codigos ISO a prefijos telefonicos internacionales.
var dialCodes = map[string]string{
	"AR": "54",
	"BR": "55",
	"CL": "56",
	"CO": "57",
	"DE": "49",
	"ES": "34",
	"FR": "33",
	"GB": "44",
	"IN": "91",
	"IT": "39",
	"MX": "52",
	"PE": "51",
	"US": "1",
	"UY": "598",
}

var avatarPalette = []string{
	"#1abc9c", "#2ecc71", "#3498db", "#9b59b6",
	"#e67e22", "#e74c3c", "#16a085", "#34495e",
}

var phoneDigits = regexp.MustCompile(`^[0-9]{4,15}$`)

// ContactInput son los datos que ingresa el usuario al crear un contacto.
type ContactInput struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone" binding:"required"`
	Country   string `json:"country" binding:"required"`
}

// ContactService compone y persiste contactos.
type ContactService struct {
	repo  repository.ContactRepository
	now   func() time.Time
	newID func() string
}

func NewContactService(repo repository.ContactRepository) *ContactService {
	return &ContactService{
		repo:  repo,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// ComposeContact arma el registro completo a partir del input del usuario.
func ComposeContact(input ContactInput, id string, now time.Time) (domain.Contact, error) {
	first := strings.TrimSpace(input.FirstName)
	last := strings.TrimSpace(input.LastName)
	country := strings.ToUpper(strings.TrimSpace(input.Country))
	if first == "" {
		return domain.Contact{}, ErrContactInvalidInput
	}
	dial, ok := dialCodes[country]
	if !ok {
		return domain.Contact{}, fmt.Errorf("%w: %q", ErrUnknownCountry, input.Country)
	}
	phone, err := prefixPhone(input.Phone, dial)
	if err != nil {
		return domain.Contact{}, err
	}

	fullName := strings.TrimSpace(first + " " + last)
	return domain.Contact{
		ID:          id,
		FirstName:   first,
		LastName:    last,
		FullName:    fullName,
		Phone:       phone,
		CountryCode: country,
		Avatar:      avatarFor(first, last, fullName),
		CreatedAt:   now,
	}, nil
}

func prefixPhone(raw, dial string) (string, error) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		case r == '+' && b.Len() == 0:
		default:
			return "", ErrContactInvalidInput
		}
	}
	digits := b.String()
	prefixed := strings.HasPrefix(strings.TrimSpace(raw), "+")
	if prefixed && strings.HasPrefix(digits, dial) {
		digits = strings.TrimPrefix(digits, dial)
	}
	if !phoneDigits.MatchString(digits) {
		return "", ErrContactInvalidInput
	}
	return "+" + dial + digits, nil
}

func avatarFor(first, last, fullName string) domain.Avatar {
	initials := string([]rune(first)[:1])
	if last != "" {
		initials += string([]rune(last)[:1])
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(fullName)))
	return domain.Avatar{
		Initials: strings.ToUpper(initials),
		Color:    avatarPalette[h.Sum32()%uint32(len(avatarPalette))],
	}
}

func (s *ContactService) Create(ctx context.Context, input ContactInput) (domain.Contact, error) {
	if s == nil || s.repo == nil {
		return domain.Contact{}, ErrContactServiceNotConfigured
	}
	contact, err := ComposeContact(input, s.newID(), s.now())
	if err != nil {
		return domain.Contact{}, err
	}
	if err := s.repo.Create(ctx, contact); err != nil {
		return domain.Contact{}, err
	}
	return contact, nil
}

func (s *ContactService) List(ctx context.Context) ([]domain.Contact, error) {
	if s == nil || s.repo == nil {
		return nil, ErrContactServiceNotConfigured
	}
	return s.repo.List(ctx)
}

// Get devuelve el contacto por id; repository.ErrNotFound si no existe.
func (s *ContactService) Get(ctx context.Context, id string) (domain.Contact, error) {
	if s == nil || s.repo == nil {
		return domain.Contact{}, ErrContactServiceNotConfigured
	}
	return s.repo.GetByID(ctx, strings.TrimSpace(id))
}
