// Package products implements the product side of the catalog: creation,
// filtered listings, popularity/best-seller/stock views, slug lookup with
// related products, and deletion.
package products

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/bazaar-go/apperror"
	"github.com/user/bazaar-go/pagination"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	// lowStockThreshold marks products the stock view reports as running out.
	lowStockThreshold = 9

	// relatedLimit caps the related-products list on the slug endpoint.
	relatedLimit = 20

	productColumns = `id, name, slug, description, type_id, shop_id, price, sale_price,
	                  min_price, max_price, sku, quantity, sold_quantity, ratings,
	                  in_stock, status, product_type, unit, image, gallery, created_at`
)

// ProductService provides product catalog operations.
type ProductService struct {
	dbPool *pgxpool.Pool
}

// NewProductService creates a new ProductService.
func NewProductService(dbPool *pgxpool.Pool) *ProductService {
	return &ProductService{dbPool: dbPool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner, p *Product) error {
	return row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.TypeID, &p.ShopID,
		&p.Price, &p.SalePrice, &p.MinPrice, &p.MaxPrice, &p.SKU,
		&p.Quantity, &p.SoldQuantity, &p.Ratings, &p.InStock, &p.Status,
		&p.ProductType, &p.Unit, &p.Image, &p.Gallery, &p.CreatedAt,
	)
}

// Create inserts a new product. A duplicate slug is a conflict; a reference to
// a type that does not exist is a bad request.
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*Product, error) {
	status := req.Status
	if status == "" {
		status = "publish"
	}
	inStock := true
	if req.InStock != nil {
		inStock = *req.InStock
	}

	query := `INSERT INTO products
	            (name, slug, description, type_id, shop_id, price, sale_price,
	             sku, quantity, in_stock, status, product_type, unit, image, gallery)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	          RETURNING ` + productColumns

	var product Product
	row := s.dbPool.QueryRow(ctx, query,
		req.Name, req.Slug, req.Description, req.TypeID, req.ShopID,
		req.Price, req.SalePrice, req.SKU, req.Quantity, inStock,
		status, req.ProductType, req.Unit, req.Image, req.Gallery,
	)
	if err := scanProduct(row, &product); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return nil, apperror.NewConflictError("product slug already exists", nil)
			case pgForeignKeyViolation:
				return nil, apperror.NewBadRequestError("referenced type does not exist", nil)
			}
		}
		return nil, apperror.NewDatabaseError("failed to create product", err)
	}
	return &product, nil
}

// List returns one page of products matching the search filters, newest first.
// Recognized filter keys: shop_id (exact), name (substring), status (exact).
func (s *ProductService) List(ctx context.Context, params ListParams) (*ProductPaginator, error) {
	return s.listWhere(ctx, params, "")
}

// LowStock lists published products whose quantity has fallen to the
// low-stock threshold or below.
func (s *ProductService) LowStock(ctx context.Context, params ListParams) (*ProductPaginator, error) {
	return s.listWhere(ctx, params, fmt.Sprintf("quantity <= %d", lowStockThreshold))
}

// Drafts lists products still in draft status.
func (s *ProductService) Drafts(ctx context.Context, params ListParams) (*ProductPaginator, error) {
	return s.listWhere(ctx, params, "status = 'draft'")
}

// listWhere is the shared engine behind the paginated listings: search
// filters plus an optional fixed clause, one count query and one page query.
func (s *ProductService) listWhere(ctx context.Context, params ListParams, extraClause string) (*ProductPaginator, error) {
	clauses, args, err := buildFilters(params.Search)
	if err != nil {
		return nil, err
	}
	if extraClause != "" {
		clauses = append(clauses, extraClause)
	}

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := s.dbPool.QueryRow(ctx, `SELECT count(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, apperror.NewDatabaseError("failed to count products", err)
	}

	offset := (params.Page - 1) * params.Limit
	query := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		productColumns, where, len(args)+1, len(args)+2)

	rows, err := s.dbPool.Query(ctx, query, append(args, params.Limit, offset)...)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list products", err)
	}
	defer rows.Close()

	data := make([]Product, 0, params.Limit)
	for rows.Next() {
		var p Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan product", err)
		}
		data = append(data, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to read products", err)
	}

	return &ProductPaginator{
		Data:      data,
		Paginator: pagination.Paginate(total, params.Page, params.Limit, len(data), params.BaseURL),
	}, nil
}

// Popular returns published products ranked by rating, optionally narrowed to
// one type by its slug.
func (s *ProductService) Popular(ctx context.Context, limit int, typeSlug string) ([]Product, error) {
	return s.rankedList(ctx, limit, typeSlug, "ratings DESC, sold_quantity DESC")
}

// BestSelling returns published products ranked by units sold, optionally
// narrowed to one type by its slug.
func (s *ProductService) BestSelling(ctx context.Context, limit int, typeSlug string) ([]Product, error) {
	return s.rankedList(ctx, limit, typeSlug, "sold_quantity DESC, ratings DESC")
}

func (s *ProductService) rankedList(ctx context.Context, limit int, typeSlug, orderBy string) ([]Product, error) {
	if limit <= 0 {
		limit = 10
	}

	query := fmt.Sprintf(`SELECT %s FROM products WHERE status = 'publish'`, productColumns)
	args := []any{}
	if typeSlug != "" {
		// An unknown slug makes the subquery empty, which simply matches
		// nothing.
		query += ` AND type_id = (SELECT id FROM types WHERE slug = $1)`
		args = append(args, typeSlug)
	}
	query += fmt.Sprintf(` ORDER BY %s LIMIT $%d`, orderBy, len(args)+1)
	args = append(args, limit)

	rows, err := s.dbPool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list products", err)
	}
	defer rows.Close()

	data := make([]Product, 0, limit)
	for rows.Next() {
		var p Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan product", err)
		}
		data = append(data, p)
	}
	return data, rows.Err()
}

// GetBySlug returns one product and up to twenty other products of the same
// type.
func (s *ProductService) GetBySlug(ctx context.Context, slug string) (*ProductDetail, error) {
	var detail ProductDetail
	row := s.dbPool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE slug = $1`, slug)
	if err := scanProduct(row, &detail.Product); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("product not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get product", err)
	}

	detail.RelatedProducts = []Product{}
	if detail.TypeID == nil {
		return &detail, nil
	}

	rows, err := s.dbPool.Query(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE type_id = $1 AND id <> $2 AND status = 'publish'
		 ORDER BY created_at DESC LIMIT $3`,
		*detail.TypeID, detail.ID, relatedLimit)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list related products", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan product", err)
		}
		detail.RelatedProducts = append(detail.RelatedProducts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to read related products", err)
	}
	return &detail, nil
}

// Delete removes a product by id.
func (s *ProductService) Delete(ctx context.Context, id int) error {
	tag, err := s.dbPool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete product", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError("product not found", nil)
	}
	return nil
}

// buildFilters translates the recognized search keys into WHERE clauses with
// positional arguments. Unknown keys are ignored rather than rejected, so the
// storefront can send filters this backend does not index.
func buildFilters(search map[string]string) ([]string, []any, error) {
	clauses := []string{}
	args := []any{}

	if v, ok := search["shop_id"]; ok {
		id, err := strconv.Atoi(v)
		if err != nil {
			return nil, nil, apperror.NewValidationError("shop_id filter must be an integer", nil)
		}
		args = append(args, id)
		clauses = append(clauses, fmt.Sprintf("shop_id = $%d", len(args)))
	}
	if v, ok := search["name"]; ok && v != "" {
		args = append(args, "%"+v+"%")
		clauses = append(clauses, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if v, ok := search["status"]; ok && v != "" {
		args = append(args, v)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}

	return clauses, args, nil
}
