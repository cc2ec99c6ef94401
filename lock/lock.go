package lock

import (
	"strings"

	"github.com/google/uuid"
)

type Scope string

const (
	ScopeExclusive Scope = "exclusive"
	ScopeShared    Scope = "shared"
)

const tokenScheme = "opaquelocktoken:"

// Lock is a lock granted by a server. It never changes once built, a refresh
// yields a new Lock.
type Lock struct {
	token   string
	path    string
	owner   string
	scope   Scope
	depth   Depth
	timeout int64
}

type Option func(l *Lock)

func WithPath(p string) Option {
	return func(l *Lock) {
		l.path = p
	}
}

func WithOwner(o string) Option {
	return func(l *Lock) {
		l.owner = o
	}
}

func WithScope(s Scope) Option {
	return func(l *Lock) {
		l.scope = s
	}
}

func WithDepth(d Depth) Option {
	return func(l *Lock) {
		l.depth = d
	}
}

func WithTimeout(sec int64) Option {
	return func(l *Lock) {
		l.timeout = sec
	}
}

// New builds an exclusive, shallow lock with infinite timeout unless told otherwise.
func New(token string, opts ...Option) *Lock {
	l := &Lock{
		token:   stripToken(token),
		scope:   ScopeExclusive,
		depth:   DepthZero,
		timeout: TimeoutInfinite,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewToken creates a fresh opaquelocktoken uri.
func NewToken() string {
	return tokenScheme + uuid.NewString()
}

func (l *Lock) Token() string {
	return l.token
}

// UUID extracts the uuid of an opaquelocktoken (or urn:uuid) token.
func (l *Lock) UUID() (uuid.UUID, bool) {
	raw := l.token
	if len(raw) > len(tokenScheme) && strings.EqualFold(raw[:len(tokenScheme)], tokenScheme) {
		raw = raw[len(tokenScheme):]
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (l *Lock) Path() string {
	return l.path
}

func (l *Lock) Owner() string {
	return l.owner
}

func (l *Lock) Scope() Scope {
	return l.scope
}

func (l *Lock) IsExclusive() bool {
	return l.scope == ScopeExclusive
}

func (l *Lock) Depth() Depth {
	return l.depth
}

func (l *Lock) IsDeep() bool {
	return l.depth == DepthInfinity
}

// Timeout is the number of seconds granted by the server, TimeoutInfinite
// when the lock does not expire.
func (l *Lock) Timeout() int64 {
	return l.timeout
}

func (l *Lock) IsInfinite() bool {
	return l.timeout < 0
}

func (l *Lock) IfHeader() string {
	return IfHeader(l.token)
}

func (l *Lock) TokenHeader() string {
	return LockTokenHeader(l.token)
}
