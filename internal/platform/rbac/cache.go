package rbac

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	roledomain "employee-management/backend/internal/role/domain"
)

// CachedRoles is a RoleGetter that keeps recently read roles for ttl. Missing roles are not cached.
type CachedRoles struct {
	next  RoleGetter
	cache *expirable.LRU[string, *roledomain.Role]
}

// NewCachedRoles wraps next with an LRU of size entries expiring after ttl.
func NewCachedRoles(next RoleGetter, size int, ttl time.Duration) *CachedRoles {
	return &CachedRoles{
		next:  next,
		cache: expirable.NewLRU[string, *roledomain.Role](size, nil, ttl),
	}
}

// GetByID returns the cached role for id, loading it from the wrapped getter on a miss.
func (c *CachedRoles) GetByID(ctx context.Context, id string) (*roledomain.Role, error) {
	if r, ok := c.cache.Get(id); ok {
		return r, nil
	}
	r, err := c.next.GetByID(ctx, id)
	if err != nil || r == nil {
		return r, err
	}
	c.cache.Add(id, r)
	return r, nil
}
