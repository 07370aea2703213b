// Package users implements account administration: fuzzy-searchable listings,
// profile reads and upserts, activation toggles, and role-scoped lists. The
// fuzzy search runs on live rows through the pg_trgm extension instead of any
// in-process snapshot, so results always reflect the current table.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/bazaar-go/apperror"
	"github.com/user/bazaar-go/auth"
	"github.com/user/bazaar-go/pagination"
)

const userColumns = `u.id, u.name, u.email, u.permissions, u.is_active, u.created_at`

// UserService provides account administration operations.
type UserService struct {
	dbPool *pgxpool.Pool
}

// NewUserService creates a new UserService.
func NewUserService(dbPool *pgxpool.Pool) *UserService {
	return &UserService{dbPool: dbPool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner, u *UserView) error {
	return row.Scan(&u.ID, &u.Name, &u.Email, &u.Permissions, &u.IsActive, &u.CreatedAt)
}

// List returns one page of accounts. When Text is set, names are matched
// fuzzily (trigram similarity or substring) and ordered by similarity, so
// near-misses like "jhon" still find "John".
func (s *UserService) List(ctx context.Context, params ListParams) (*UserPaginator, error) {
	return s.listWhere(ctx, params, "", nil)
}

// ListByPermission returns one page of accounts holding the given permission
// label.
func (s *UserService) ListByPermission(ctx context.Context, params ListParams, permission string) (*UserPaginator, error) {
	return s.listWhere(ctx, params, "u.permissions @> $%d", []any{[]string{permission}})
}

// listWhere runs the shared count+page query pair. extraClause, when set,
// must contain one $%d placeholder for its single argument.
func (s *UserService) listWhere(ctx context.Context, params ListParams, extraClause string, extraArgs []any) (*UserPaginator, error) {
	clauses := []string{}
	args := []any{}
	orderBy := "u.created_at DESC"

	if params.Text != "" {
		args = append(args, params.Text)
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(u.name %% $%d OR u.name ILIKE '%%' || $%d || '%%')", n, n))
		orderBy = fmt.Sprintf("similarity(u.name, $%d) DESC, u.created_at DESC", n)
	}
	if extraClause != "" {
		for _, arg := range extraArgs {
			args = append(args, arg)
		}
		clauses = append(clauses, fmt.Sprintf(extraClause, len(args)))
	}

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := s.dbPool.QueryRow(ctx, `SELECT count(*) FROM users u`+where, args...).Scan(&total); err != nil {
		return nil, apperror.NewDatabaseError("failed to count users", err)
	}

	offset := (params.Page - 1) * params.Limit
	query := fmt.Sprintf(`SELECT %s FROM users u%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		userColumns, where, orderBy, len(args)+1, len(args)+2)

	rows, err := s.dbPool.Query(ctx, query, append(args, params.Limit, offset)...)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list users", err)
	}
	defer rows.Close()

	data := make([]UserView, 0, params.Limit)
	for rows.Next() {
		var u UserView
		if err := scanUser(rows, &u); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan user", err)
		}
		data = append(data, u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to read users", err)
	}

	return &UserPaginator{
		Data:      data,
		Paginator: pagination.Paginate(total, params.Page, params.Limit, len(data), params.BaseURL),
	}, nil
}

// Get returns one account with its profile, if any, attached.
func (s *UserService) Get(ctx context.Context, id int) (*UserView, error) {
	var (
		u                  UserView
		profileID          *int
		bio, contact       *string
		avatarID           *string
		avatarThumb        *string
		avatarOriginal     *string
		notificationEmail  *string
		notificationEnable *bool
	)

	query := `SELECT ` + userColumns + `,
	                 p.id, p.bio, p.contact, p.avatar_id, p.avatar_thumbnail,
	                 p.avatar_original, p.notification_email, p.notification_enable
	          FROM users u
	          LEFT JOIN profiles p ON p.user_id = u.id
	          WHERE u.id = $1`
	err := s.dbPool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Name, &u.Email, &u.Permissions, &u.IsActive, &u.CreatedAt,
		&profileID, &bio, &contact, &avatarID, &avatarThumb, &avatarOriginal,
		&notificationEmail, &notificationEnable,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("user not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}

	if profileID != nil {
		profile := &Profile{
			ID:      *profileID,
			Bio:     bio,
			Contact: contact,
		}
		if avatarID != nil || avatarThumb != nil || avatarOriginal != nil {
			profile.Avatar = &Avatar{ID: avatarID, Thumbnail: avatarThumb, Original: avatarOriginal}
		}
		profile.NotificationEmail = notificationEmail
		if notificationEnable != nil {
			profile.NotificationEnable = *notificationEnable
		}
		u.Profile = profile
	}
	return &u, nil
}

// UpdateProfile renames the account and upserts its profile row in one
// transaction, so a failed upsert never leaves a half-applied rename.
func (s *UserService) UpdateProfile(ctx context.Context, userID int, req UpdateProfileRequest) (*UserView, error) {
	err := pgx.BeginFunc(ctx, s.dbPool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE users SET name = $1 WHERE id = $2`, req.Name, userID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}

		var avatarID, avatarThumb, avatarOriginal *string
		if req.Avatar != nil {
			avatarID = req.Avatar.ID
			avatarThumb = req.Avatar.Thumbnail
			avatarOriginal = req.Avatar.Original
		}
		enable := false
		if req.NotificationEnable != nil {
			enable = *req.NotificationEnable
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO profiles
			  (user_id, bio, contact, avatar_id, avatar_thumbnail, avatar_original,
			   notification_email, notification_enable)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (user_id) DO UPDATE SET
			  bio = EXCLUDED.bio,
			  contact = EXCLUDED.contact,
			  avatar_id = EXCLUDED.avatar_id,
			  avatar_thumbnail = EXCLUDED.avatar_thumbnail,
			  avatar_original = EXCLUDED.avatar_original,
			  notification_email = EXCLUDED.notification_email,
			  notification_enable = EXCLUDED.notification_enable`,
			userID, req.Bio, req.Contact, avatarID, avatarThumb, avatarOriginal,
			req.NotificationEmail, enable)
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("user not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to update profile", err)
	}

	return s.Get(ctx, userID)
}

// DeleteProfile removes the profile row of an account, leaving the account
// itself intact.
func (s *UserService) DeleteProfile(ctx context.Context, userID int) error {
	tag, err := s.dbPool.Exec(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete profile", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError("profile not found", nil)
	}
	return nil
}

// SetActive blocks or unblocks an account and returns the updated view.
func (s *UserService) SetActive(ctx context.Context, id int, active bool) (*UserView, error) {
	var u UserView
	query := `UPDATE users u SET is_active = $1 WHERE id = $2
	          RETURNING ` + userColumns
	if err := scanUser(s.dbPool.QueryRow(ctx, query, active, id), &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("user not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to update user", err)
	}
	return &u, nil
}

// Permission labels reused by the role-scoped lists.
const (
	permissionSuperAdmin = auth.PermissionSuperAdmin
	permissionStoreOwner = auth.PermissionStoreOwner
	permissionCustomer   = auth.PermissionCustomer
)
