package pagination

import (
	"fmt"
	"net/url"
	"strconv"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// Page is a limit/offset window. Zero values mean "use the defaults".
type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Normalize clamps the window: limit <= 0 falls back to def, limit above
// max is capped, negative offsets become 0.
func (p Page) Normalize(def, max int) Page {
	if def <= 0 {
		def = DefaultLimit
	}
	if max <= 0 {
		max = MaxLimit
	}
	if p.Limit <= 0 {
		p.Limit = def
	}
	if p.Limit > max {
		p.Limit = max
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// FromQuery reads ?limit= and ?offset=. Missing values stay zero.
func FromQuery(q url.Values) (Page, error) {
	var p Page
	var err error
	if p.Limit, err = intParam(q, "limit"); err != nil {
		return Page{}, err
	}
	if p.Offset, err = intParam(q, "offset"); err != nil {
		return Page{}, err
	}
	return p, nil
}

func intParam(q url.Values, key string) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
