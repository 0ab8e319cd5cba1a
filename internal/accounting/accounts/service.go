package accounts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// Store persists chart of accounts rows. GetByID and GetByCode return an
// error matching shared.ErrNotFound on a miss.
type Store interface {
	Insert(ctx context.Context, account Account) (Account, error)
	List(ctx context.Context) ([]Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (Account, error)
	GetByCode(ctx context.Context, code string) (Account, error)
}

// Service is the account registry.
type Service struct {
	store    Store
	validate *validator.Validate
	newID    func() uuid.UUID
	now      func() time.Time
}

// NewService constructs the registry.
func NewService(store Store) *Service {
	return &Service{store: store, validate: validator.New(), newID: uuid.New, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create validates spec and inserts a new account.
func (s *Service) Create(ctx context.Context, spec Spec) (Account, error) {
	spec.Code = strings.TrimSpace(spec.Code)
	spec.Name = strings.TrimSpace(spec.Name)
	spec.Type = AccountType(strings.ToUpper(string(spec.Type)))
	if err := s.validate.Struct(spec); err != nil {
		return Account{}, validationFailure(err)
	}
	if _, err := s.store.GetByCode(ctx, spec.Code); err == nil {
		return Account{}, shared.Invalid("code", "account code "+spec.Code+" already exists")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return Account{}, shared.Source("get account by code", err)
	}
	if spec.ParentID != nil {
		if _, err := s.store.GetByID(ctx, *spec.ParentID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return Account{}, shared.Invalid("parent_id", "parent account "+spec.ParentID.String()+" does not exist")
			}
			return Account{}, shared.Source("get parent account", err)
		}
	}
	account := Account{
		ID:        s.newID(),
		Code:      spec.Code,
		Name:      spec.Name,
		Type:      spec.Type,
		ParentID:  spec.ParentID,
		CreatedAt: s.now().UTC(),
	}
	inserted, err := s.store.Insert(ctx, account)
	if err != nil {
		return Account{}, shared.Source("insert account", err)
	}
	return inserted, nil
}

// List returns the chart ordered by code.
func (s *Service) List(ctx context.Context) ([]Account, error) {
	accounts, err := s.store.List(ctx)
	if err != nil {
		return nil, shared.Source("list accounts", err)
	}
	SortByCode(accounts)
	return accounts, nil
}

// Get loads a single account.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Account, error) {
	account, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Account{}, shared.NotFound("account", id.String())
		}
		return Account{}, shared.Source("get account", err)
	}
	return account, nil
}

// Index maps the chart by id.
func (s *Service) Index(ctx context.Context) (map[uuid.UUID]Account, error) {
	accounts, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[uuid.UUID]Account, len(accounts))
	for _, acc := range accounts {
		index[acc.ID] = acc
	}
	return index, nil
}

// SeedResult reports what Seed did with each spec.
type SeedResult struct {
	Created []Account
	Skipped []string
}

// Seed creates specs in order, resolving ParentCode against accounts
// created earlier or already present. Existing codes are skipped.
func (s *Service) Seed(ctx context.Context, specs []Spec) (SeedResult, error) {
	var result SeedResult
	for _, spec := range specs {
		if existing, err := s.store.GetByCode(ctx, strings.TrimSpace(spec.Code)); err == nil {
			result.Skipped = append(result.Skipped, existing.Code)
			continue
		} else if !errors.Is(err, shared.ErrNotFound) {
			return result, shared.Source("get account by code", err)
		}
		if spec.ParentCode != "" && spec.ParentID == nil {
			parent, err := s.store.GetByCode(ctx, spec.ParentCode)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return result, shared.Invalid("parent", "parent code "+spec.ParentCode+" does not exist")
				}
				return result, shared.Source("get parent account", err)
			}
			spec.ParentID = &parent.ID
		}
		created, err := s.Create(ctx, spec)
		if err != nil {
			return result, err
		}
		result.Created = append(result.Created, created)
	}
	return result, nil
}

func validationFailure(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return shared.Invalid(strings.ToLower(fe.Field()), "failed "+fe.Tag()+" rule")
	}
	return shared.Invalid("", err.Error())
}
