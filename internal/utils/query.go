package utils

import (
	"net/url"
	"strconv"
	"strings"
)

// QueryBool parses a boolean flag such as ?isAdmin=true. Missing or
// unparsable values yield def.
func QueryBool(q url.Values, key string, def bool) bool {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
