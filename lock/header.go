package lock

import (
	"fmt"
	"strconv"
	"strings"
)

type Depth int

const (
	DepthZero Depth = iota
	DepthOne
	DepthInfinity
)

func (d Depth) String() string {
	switch d {
	case DepthOne:
		return "1"
	case DepthInfinity:
		return "Infinity"
	}
	return "0"
}

// ParseDepth reads a Depth header value, case-insensitive.
func ParseDepth(v string) (Depth, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "0":
		return DepthZero, nil
	case "1":
		return DepthOne, nil
	case "infinity":
		return DepthInfinity, nil
	}
	return DepthZero, fmt.Errorf("invalid depth:%s", v)
}

// TimeoutInfinite is the sentinel for a lock that never expires.
const TimeoutInfinite int64 = -1

// TimeoutHeader renders seconds as a Timeout header value. Negative means infinite.
func TimeoutHeader(sec int64) string {
	if sec < 0 {
		return "Infinite"
	}
	return "Second-" + strconv.FormatInt(sec, 10)
}

// ParseTimeout reads a Timeout value. When several comma separated values are
// given only the first one is used.
func ParseTimeout(v string) (int64, error) {
	first, _, _ := strings.Cut(v, ",")
	first = strings.TrimSpace(first)
	if strings.EqualFold(first, "Infinite") {
		return TimeoutInfinite, nil
	}
	if len(first) > 7 && strings.EqualFold(first[:7], "Second-") {
		sec, err := strconv.ParseInt(first[7:], 10, 64)
		if err == nil && sec >= 0 {
			return sec, nil
		}
	}
	return 0, fmt.Errorf("invalid timeout:%s", v)
}

func stripToken(token string) string {
	token = strings.TrimSpace(token)
	token = strings.TrimPrefix(token, "<")
	return strings.TrimSuffix(token, ">")
}

// IfHeader renders "(<t1>) (<t2>)" keeping the order of tokens. Empty tokens
// are skipped, no tokens gives an empty string.
func IfHeader(tokens ...string) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = stripToken(t)
		if len(t) == 0 {
			continue
		}
		parts = append(parts, "(<"+t+">)")
	}
	return strings.Join(parts, " ")
}

func LockTokenHeader(token string) string {
	return "<" + stripToken(token) + ">"
}

// ParseLockTokenHeader reads the Lock-Token response header.
func ParseLockTokenHeader(v string) string {
	return stripToken(v)
}
