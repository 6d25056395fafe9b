package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes customer records to the back office.
type Service interface {
	List(ctx context.Context, search string, params pagination.Params) (*ListResult, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*CustomerDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type UpdateInput struct {
	Name    *string
	Phone   *string
	Email   *string
	Address *string
}

type service struct {
	repo *Repository
}

// NewService constructs a customer service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, search string, params pagination.Params) (*ListResult, error) {
	rows, meta, err := s.repo.List(ctx, search, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers")
	}
	items := make([]CustomerDTO, 0, len(rows))
	for i := range rows {
		items = append(items, NewCustomerDTO(&rows[i]))
	}
	return &ListResult{Items: items, Pagination: meta}, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*CustomerDTO, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}

	var fields []pkgerrors.FieldError
	apply := func(name string, value *string, target *string) {
		if value == nil {
			return
		}
		trimmed := strings.TrimSpace(*value)
		if trimmed == "" {
			fields = append(fields, pkgerrors.Field(name, name+" cannot be blank"))
			return
		}
		*target = trimmed
	}
	apply("name", input.Name, &customer.Name)
	apply("phone", input.Phone, &customer.Phone)
	apply("address", input.Address, &customer.Address)
	if len(fields) > 0 {
		return nil, pkgerrors.Validation("invalid customer", fields...)
	}
	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if email == "" {
			customer.Email = nil
		} else {
			customer.Email = &email
		}
	}

	if err := s.repo.Save(ctx, customer); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "phone already belongs to another customer").
				WithDetails([]pkgerrors.FieldError{pkgerrors.Field("phone", "phone already belongs to another customer")})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update customer")
	}
	dto := NewCustomerDTO(customer)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	orders, err := s.repo.CountOrders(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count customer orders")
	}
	if orders > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "customer has orders").
			WithDetails(map[string]any{"orders": orders})
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete customer")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	return nil
}
