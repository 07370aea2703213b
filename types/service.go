// Package types implements the top-level catalog groupings ("types" in
// storefront parlance: grocery, clothing, furniture...). Types are few, so
// the listing is not paginated.
package types

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/bazaar-go/apperror"
	"github.com/user/bazaar-go/products"
)

const (
	pgUniqueViolation = "23505"

	typeColumns = `id, name, slug, language, translated_languages, icon, settings,
	               banners, promotional_sliders, created_at`
)

// Type is one top-level catalog grouping.
type Type struct {
	ID                  int             `json:"id"`
	Name                string          `json:"name"`
	Slug                string          `json:"slug"`
	Language            string          `json:"language"`
	TranslatedLanguages []string        `json:"translated_languages"`
	Icon                *string         `json:"icon,omitempty"`
	Settings            json.RawMessage `json:"settings,omitempty"`
	Banners             json.RawMessage `json:"banners,omitempty"`
	PromotionalSliders  json.RawMessage `json:"promotional_sliders"`
	CreatedAt           time.Time       `json:"created_at"`
}

// TypeDetail is a type together with its published products.
type TypeDetail struct {
	Type
	Products []products.Product `json:"products"`
}

// CreateTypeRequest is the body for POST /types. Language defaults to "en"
// and promotional sliders to an empty list when omitted.
type CreateTypeRequest struct {
	Name               string          `json:"name" validate:"required"`
	Slug               string          `json:"slug" validate:"required"`
	Language           string          `json:"language"`
	Icon               *string         `json:"icon"`
	Settings           json.RawMessage `json:"settings"`
	Banners            json.RawMessage `json:"banners"`
	PromotionalSliders json.RawMessage `json:"promotional_sliders"`
}

// UpdateTypeRequest is the body for PUT /types/{id}.
type UpdateTypeRequest CreateTypeRequest

// TypeService provides catalog type operations.
type TypeService struct {
	dbPool *pgxpool.Pool
}

// NewTypeService creates a new TypeService.
func NewTypeService(dbPool *pgxpool.Pool) *TypeService {
	return &TypeService{dbPool: dbPool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanType(row rowScanner, t *Type) error {
	return row.Scan(
		&t.ID, &t.Name, &t.Slug, &t.Language, &t.TranslatedLanguages,
		&t.Icon, &t.Settings, &t.Banners, &t.PromotionalSliders, &t.CreatedAt,
	)
}

// List returns all types, optionally narrowed by a free-text match against
// name and slug. Recognized search filter key: language (exact).
func (s *TypeService) List(ctx context.Context, text string, search map[string]string) ([]Type, error) {
	clauses := []string{}
	args := []any{}

	if text != "" {
		args = append(args, "%"+text+"%")
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR slug ILIKE $%d)", len(args), len(args)))
	}
	if v, ok := search["language"]; ok && v != "" {
		args = append(args, v)
		clauses = append(clauses, fmt.Sprintf("language = $%d", len(args)))
	}

	query := `SELECT ` + typeColumns + ` FROM types`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY name`

	rows, err := s.dbPool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list types", err)
	}
	defer rows.Close()

	data := []Type{}
	for rows.Next() {
		var t Type
		if err := scanType(rows, &t); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan type", err)
		}
		data = append(data, t)
	}
	return data, rows.Err()
}

// GetBySlug returns one type together with its published products.
func (s *TypeService) GetBySlug(ctx context.Context, slug string) (*TypeDetail, error) {
	var detail TypeDetail
	row := s.dbPool.QueryRow(ctx, `SELECT `+typeColumns+` FROM types WHERE slug = $1`, slug)
	if err := scanType(row, &detail.Type); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("type not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get type", err)
	}

	rows, err := s.dbPool.Query(ctx,
		`SELECT id, name, slug, description, type_id, shop_id, price, sale_price,
		        min_price, max_price, sku, quantity, sold_quantity, ratings,
		        in_stock, status, product_type, unit, image, gallery, created_at
		 FROM products WHERE type_id = $1 AND status = 'publish'
		 ORDER BY created_at DESC`, detail.ID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list products for type", err)
	}
	defer rows.Close()

	detail.Products = []products.Product{}
	for rows.Next() {
		var p products.Product
		err := rows.Scan(
			&p.ID, &p.Name, &p.Slug, &p.Description, &p.TypeID, &p.ShopID,
			&p.Price, &p.SalePrice, &p.MinPrice, &p.MaxPrice, &p.SKU,
			&p.Quantity, &p.SoldQuantity, &p.Ratings, &p.InStock, &p.Status,
			&p.ProductType, &p.Unit, &p.Image, &p.Gallery, &p.CreatedAt,
		)
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to scan product", err)
		}
		detail.Products = append(detail.Products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to read products for type", err)
	}
	return &detail, nil
}

// Create inserts a new type, applying the storefront defaults for omitted
// fields.
func (s *TypeService) Create(ctx context.Context, req CreateTypeRequest) (*Type, error) {
	language := req.Language
	if language == "" {
		language = "en"
	}
	sliders := req.PromotionalSliders
	if sliders == nil {
		sliders = json.RawMessage("[]")
	}

	query := `INSERT INTO types
	            (name, slug, language, translated_languages, icon, settings, banners, promotional_sliders)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING ` + typeColumns

	var t Type
	row := s.dbPool.QueryRow(ctx, query,
		req.Name, req.Slug, language, []string{language},
		req.Icon, req.Settings, req.Banners, sliders)
	if err := scanType(row, &t); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, apperror.NewConflictError("type slug already exists", nil)
		}
		return nil, apperror.NewDatabaseError("failed to create type", err)
	}
	return &t, nil
}

// Update replaces a type row wholesale, with the same defaults as Create.
func (s *TypeService) Update(ctx context.Context, id int, req UpdateTypeRequest) (*Type, error) {
	language := req.Language
	if language == "" {
		language = "en"
	}
	sliders := req.PromotionalSliders
	if sliders == nil {
		sliders = json.RawMessage("[]")
	}

	query := `UPDATE types
	          SET name = $1, slug = $2, language = $3, icon = $4,
	              settings = $5, banners = $6, promotional_sliders = $7
	          WHERE id = $8
	          RETURNING ` + typeColumns

	var t Type
	row := s.dbPool.QueryRow(ctx, query,
		req.Name, req.Slug, language, req.Icon, req.Settings, req.Banners, sliders, id)
	if err := scanType(row, &t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("type not found", nil)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, apperror.NewConflictError("type slug already exists", nil)
		}
		return nil, apperror.NewDatabaseError("failed to update type", err)
	}
	return &t, nil
}

// Delete removes a type. Products keep their rows; their type reference
// becomes dangling-free NULL via the schema.
func (s *TypeService) Delete(ctx context.Context, id int) error {
	tag, err := s.dbPool.Exec(ctx, `DELETE FROM types WHERE id = $1`, id)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete type", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError("type not found", nil)
	}
	return nil
}
