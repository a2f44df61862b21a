package produccion

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/produccion/internal/domain"
)

// ProductInput - продукт и его шаблон.
//
// При обновлении шаги с ID обновляются, шаги без ID создаются,
// сохранённые шаги, отсутствующие во вводе, удаляются.
type ProductInput struct {
	Name     string
	Code     string
	HasSizes bool
	Template []domain.TemplateStep
}

func (in *ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return validationf("product name is required")
	}
	if strings.TrimSpace(in.Code) == "" {
		return validationf("product code is required")
	}
	for i, step := range in.Template {
		if strings.TrimSpace(step.Name) == "" {
			return validationf("template step %d: name is required", i+1)
		}
		if step.Order <= 0 {
			return validationf("template step %s: order must be positive, got %d", step.Name, step.Order)
		}
		if d := step.EstimatedDurationDays; d != nil && (*d < 0 || math.IsNaN(*d) || math.IsInf(*d, 0)) {
			return validationf("template step %s: invalid duration %v", step.Name, *d)
		}
		if step.Price.Valid && step.Price.Decimal.IsNegative() {
			return validationf("template step %s: price must not be negative", step.Name)
		}
	}
	return nil
}

// CreateProduct создаёт продукт с шаблоном.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (product *domain.Product, err error) {
	start := time.Now()
	defer func() { s.observe(ctx, opCreateProduct, start, err) }()

	if err := in.validate(); err != nil {
		return nil, err
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, q domain.Queries) error {
		p := &domain.Product{
			Name:     strings.TrimSpace(in.Name),
			Code:     strings.TrimSpace(in.Code),
			HasSizes: in.HasSizes,
		}
		if err := q.CreateProduct(ctx, p); err != nil {
			return err
		}

		for _, step := range in.Template {
			step.ID = uuid.Nil
			step.ProductID = p.ID
			step.Name = strings.TrimSpace(step.Name)
			if err := q.CreateTemplateStep(ctx, &step); err != nil {
				return err
			}
		}

		var err error
		product, err = q.GetProduct(ctx, p.ID)
		return err
	})
	if err != nil {
		return nil, storageErr(err)
	}
	return product, nil
}

// UpdateProduct обновляет продукт и сливает его шаблон с переданным.
func (s *Service) UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput) (product *domain.Product, err error) {
	start := time.Now()
	defer func() { s.observe(ctx, opUpdateProduct, start, err) }()

	if err := in.validate(); err != nil {
		return nil, err
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, q domain.Queries) error {
		p, err := q.GetProduct(ctx, id)
		if err != nil {
			return fmt.Errorf("product %s: %w", id, err)
		}

		p.Name = strings.TrimSpace(in.Name)
		p.Code = strings.TrimSpace(in.Code)
		p.HasSizes = in.HasSizes
		if err := q.UpdateProduct(ctx, p); err != nil {
			return err
		}

		stored := make(map[uuid.UUID]struct{}, len(p.Template))
		for _, step := range p.Template {
			stored[step.ID] = struct{}{}
		}

		kept := make(map[uuid.UUID]struct{}, len(in.Template))
		for _, step := range in.Template {
			step.ProductID = id
			step.Name = strings.TrimSpace(step.Name)

			if step.ID == uuid.Nil {
				if err := q.CreateTemplateStep(ctx, &step); err != nil {
					return err
				}
				continue
			}

			if _, ok := stored[step.ID]; !ok {
				return fmt.Errorf("%w: template step %s of product %s", domain.ErrNotFound, step.ID, p.Code)
			}
			if err := q.UpdateTemplateStep(ctx, &step); err != nil {
				return err
			}
			kept[step.ID] = struct{}{}
		}

		var removed []uuid.UUID
		for stepID := range stored {
			if _, ok := kept[stepID]; !ok {
				removed = append(removed, stepID)
			}
		}
		if err := q.DeleteTemplateSteps(ctx, removed); err != nil {
			return err
		}

		product, err = q.GetProduct(ctx, id)
		return err
	})
	if err != nil {
		return nil, storageErr(err)
	}
	return product, nil
}

// GetProduct возвращает продукт с шаблоном.
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var product *domain.Product
	err := s.store.WithinTx(ctx, func(ctx context.Context, q domain.Queries) error {
		p, err := q.GetProduct(ctx, id)
		if err != nil {
			return fmt.Errorf("product %s: %w", id, err)
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}
	return product, nil
}
