package lock

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/xxxsen/davc/daverr"
	"github.com/xxxsen/davc/davxml"
)

var (
	ErrNoActiveLock = errors.New("no active lock found")
	ErrNoToken      = errors.New("no lock token found")
)

// FromDiscovery builds the single lock described by a lockdiscovery element.
// requestPath is used when the server reports no lockroot, fallbackToken when
// the body holds no locktoken (a refresh answer may omit it).
func FromDiscovery(ld *davxml.LockDiscovery, requestPath string, fallbackToken string) (*Lock, error) {
	switch n := len(ld.ActiveLocks); {
	case n == 0:
		return nil, ErrNoActiveLock
	case n > 1:
		return nil, &daverr.AmbiguousLockError{Path: requestPath, Count: n}
	}
	al := ld.ActiveLocks[0]
	token := stripToken(al.LockToken.First())
	if len(token) == 0 {
		token = stripToken(fallbackToken)
	}
	if len(token) == 0 {
		return nil, ErrNoToken
	}
	opts := []Option{
		WithPath(lockPath(al.LockRoot.First(), requestPath)),
		WithOwner(al.Owner.Value()),
		WithScope(ScopeExclusive),
	}
	if al.LockScope.Shared != nil {
		opts = append(opts, WithScope(ScopeShared))
	}
	if len(al.Depth) > 0 {
		depth, err := ParseDepth(al.Depth)
		if err != nil {
			return nil, fmt.Errorf("parse lock depth:%w", err)
		}
		opts = append(opts, WithDepth(depth))
	}
	if len(al.Timeout) > 0 {
		timeout, err := ParseTimeout(al.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse lock timeout:%w", err)
		}
		opts = append(opts, WithTimeout(timeout))
	}
	return New(token, opts...), nil
}

// Decode reads a LOCK response body.
func Decode(body []byte, requestPath string, fallbackToken string) (*Lock, error) {
	ld, err := davxml.DecodeLockDiscovery(body)
	if err != nil {
		return nil, err
	}
	return FromDiscovery(ld, requestPath, fallbackToken)
}

func lockPath(root string, requestPath string) string {
	if len(root) == 0 {
		return requestPath
	}
	u, err := url.Parse(root)
	if err != nil || len(u.Scheme) == 0 {
		return root
	}
	return u.Path
}
