// Package categories implements the category tree of the catalog: CRUD over
// a single-parent hierarchy, with listings that carry each category's parent
// and immediate children.
package categories

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

	categoryColumns = `id, name, slug, type, icon, image, details, parent_id, created_at`
)

// CategoryService provides category tree operations.
type CategoryService struct {
	dbPool *pgxpool.Pool
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(dbPool *pgxpool.Pool) *CategoryService {
	return &CategoryService{dbPool: dbPool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner, c *Category) error {
	return row.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Type, &c.Icon,
		&c.Image, &c.Details, &c.ParentID, &c.CreatedAt,
	)
}

// Create inserts a new category. A duplicate slug is a conflict; a parent
// that does not exist is a bad request.
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*Category, error) {
	query := `INSERT INTO categories (name, slug, type, icon, image, details, parent_id)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING ` + categoryColumns

	var category Category
	row := s.dbPool.QueryRow(ctx, query,
		req.Name, req.Slug, req.Type, req.Icon, req.Image, req.Details, req.ParentID)
	if err := scanCategory(row, &category); err != nil {
		return nil, mapWriteError(err, "failed to create category")
	}
	return &category, nil
}

// List returns one page of categories with their parents and immediate
// children attached. Recognized filter keys: name (substring), type (exact).
func (s *CategoryService) List(ctx context.Context, params ListParams) (*CategoryPaginator, error) {
	clauses := []string{}
	args := []any{}

	if params.RootsOnly {
		clauses = append(clauses, "parent_id IS NULL")
	}
	if v, ok := params.Search["name"]; ok && v != "" {
		args = append(args, "%"+v+"%")
		clauses = append(clauses, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if v, ok := params.Search["type"]; ok && v != "" {
		args = append(args, v)
		clauses = append(clauses, fmt.Sprintf("type = $%d", len(args)))
	}

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := s.dbPool.QueryRow(ctx, `SELECT count(*) FROM categories`+where, args...).Scan(&total); err != nil {
		return nil, apperror.NewDatabaseError("failed to count categories", err)
	}

	offset := (params.Page - 1) * params.Limit
	query := fmt.Sprintf(`SELECT %s FROM categories%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		categoryColumns, where, len(args)+1, len(args)+2)

	rows, err := s.dbPool.Query(ctx, query, append(args, params.Limit, offset)...)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list categories", err)
	}
	defer rows.Close()

	page := make([]Category, 0, params.Limit)
	for rows.Next() {
		var c Category
		if err := scanCategory(rows, &c); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan category", err)
		}
		page = append(page, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to read categories", err)
	}

	views, err := s.attachNeighborhood(ctx, page)
	if err != nil {
		return nil, err
	}

	return &CategoryPaginator{
		Data:      views,
		Paginator: pagination.Paginate(total, params.Page, params.Limit, len(views), params.BaseURL),
	}, nil
}

// GetByIDOrSlug looks a category up by numeric id when the reference parses
// as an integer, by slug otherwise, and attaches its parent and children.
func (s *CategoryService) GetByIDOrSlug(ctx context.Context, ref string) (*CategoryView, error) {
	var (
		query = `SELECT ` + categoryColumns + ` FROM categories WHERE slug = $1`
		arg   any = ref
	)
	if id, err := strconv.Atoi(ref); err == nil {
		query = `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
		arg = id
	}

	var category Category
	if err := scanCategory(s.dbPool.QueryRow(ctx, query, arg), &category); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("category not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get category", err)
	}

	views, err := s.attachNeighborhood(ctx, []Category{category})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Update replaces a category row wholesale.
func (s *CategoryService) Update(ctx context.Context, id int, req UpdateCategoryRequest) (*Category, error) {
	query := `UPDATE categories
	          SET name = $1, slug = $2, type = $3, icon = $4, image = $5, details = $6, parent_id = $7
	          WHERE id = $8
	          RETURNING ` + categoryColumns

	var category Category
	row := s.dbPool.QueryRow(ctx, query,
		req.Name, req.Slug, req.Type, req.Icon, req.Image, req.Details, req.ParentID, id)
	if err := scanCategory(row, &category); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("category not found", nil)
		}
		return nil, mapWriteError(err, "failed to update category")
	}
	return &category, nil
}

// Delete removes a category. Children are re-rooted, not deleted: the schema
// sets their parent_id to NULL.
func (s *CategoryService) Delete(ctx context.Context, id int) error {
	tag, err := s.dbPool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete category", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError("category not found", nil)
	}
	return nil
}

// attachNeighborhood loads the parents and children of a page of categories
// with two batched queries instead of one pair per row.
func (s *CategoryService) attachNeighborhood(ctx context.Context, page []Category) ([]CategoryView, error) {
	ids := make([]int, 0, len(page))
	parentIDs := make([]int, 0, len(page))
	for _, c := range page {
		ids = append(ids, c.ID)
		if c.ParentID != nil {
			parentIDs = append(parentIDs, *c.ParentID)
		}
	}

	parents := map[int]Category{}
	if len(parentIDs) > 0 {
		rows, err := s.dbPool.Query(ctx,
			`SELECT `+categoryColumns+` FROM categories WHERE id = ANY($1)`, parentIDs)
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to load parent categories", err)
		}
		defer rows.Close()
		for rows.Next() {
			var c Category
			if err := scanCategory(rows, &c); err != nil {
				return nil, apperror.NewDatabaseError("failed to scan category", err)
			}
			parents[c.ID] = c
		}
		if err := rows.Err(); err != nil {
			return nil, apperror.NewDatabaseError("failed to read parent categories", err)
		}
	}

	children := map[int][]Category{}
	if len(ids) > 0 {
		rows, err := s.dbPool.Query(ctx,
			`SELECT `+categoryColumns+` FROM categories WHERE parent_id = ANY($1) ORDER BY created_at`, ids)
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to load child categories", err)
		}
		defer rows.Close()
		for rows.Next() {
			var c Category
			if err := scanCategory(rows, &c); err != nil {
				return nil, apperror.NewDatabaseError("failed to scan category", err)
			}
			children[*c.ParentID] = append(children[*c.ParentID], c)
		}
		if err := rows.Err(); err != nil {
			return nil, apperror.NewDatabaseError("failed to read child categories", err)
		}
	}

	views := make([]CategoryView, 0, len(page))
	for _, c := range page {
		view := CategoryView{Category: c, Children: children[c.ID]}
		if view.Children == nil {
			view.Children = []Category{}
		}
		if c.ParentID != nil {
			if parent, ok := parents[*c.ParentID]; ok {
				view.Parent = &parent
			}
		}
		views = append(views, view)
	}
	return views, nil
}

func mapWriteError(err error, fallback string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperror.NewConflictError("category slug already exists", nil)
		case pgForeignKeyViolation:
			return apperror.NewBadRequestError("parent category does not exist", nil)
		}
	}
	return apperror.NewDatabaseError(fallback, err)
}
