package service

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const (
	ctxUserIDKey      ctxKey = "userID"
	ctxDisplayNameKey ctxKey = "displayName"
	ctxRoleKey        ctxKey = "role"
	ctxShopIDKey      ctxKey = "shopID"
)

type Role string

const (
	RoleStudent Role = "ROLE_STUDENT"
	RoleVendor  Role = "ROLE_VENDOR"
	RoleAdmin   Role = "ROLE_ADMIN"
)

func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxUserIDKey, id)
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	v, ok := ctx.Value(ctxUserIDKey).(uuid.UUID)
	return v, ok
}

func WithDisplayName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ctxDisplayNameKey, name)
}

func DisplayNameFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxDisplayNameKey).(string)
	return v, ok
}

func WithRole(ctx context.Context, r Role) context.Context {
	return context.WithValue(ctx, ctxRoleKey, r)
}

func RoleFromContext(ctx context.Context) (Role, bool) {
	v, ok := ctx.Value(ctxRoleKey).(Role)
	return v, ok
}

// WithShopID — для продавцов: к какой точке привязан аккаунт.
func WithShopID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxShopIDKey, id)
}

func ShopIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	v, ok := ctx.Value(ctxShopIDKey).(uuid.UUID)
	return v, ok
}

// requireAuth достаёт актора из контекста. Авторизация по ролям — на границе
// транспорта; объектные инварианты сервисы проверяют сами независимо от роли.
func requireAuth(ctx context.Context) (uuid.UUID, Role, error) {
	uid, ok := UserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, "", ErrUnauthorized
	}

	role, ok := RoleFromContext(ctx)
	if !ok {
		return uuid.Nil, "", ErrUnauthorized
	}

	return uid, role, nil
}
