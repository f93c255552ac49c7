package auth

import (
	"errors"
	"time"

	"github.com/polkiloo/procuremart/internal/domain/model"
)

var ErrInvalidToken = errors.New("invalid auth token")

// Claims is the identity an auth token carries. Role is the role at issue
// time; callers re-resolve it against the user store on every request.
type Claims struct {
	UserID    int64
	Role      model.Role
	ExpiresAt time.Time
}

type Strategy interface {
	IssueToken(userID int64, role model.Role) (string, error)
	ParseToken(token string) (Claims, error)
	Name() string
}

type Options struct {
	TTL time.Duration
	Now func() time.Time
}

const defaultTTL = 24 * time.Hour

func (o Options) normalized() Options {
	if o.TTL <= 0 {
		o.TTL = defaultTTL
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
