package bestseller

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/storeline/bestsellers/pkg/rank"
	"github.com/storeline/bestsellers/pkg/segment"
	"github.com/storeline/bestsellers/pkg/shop"
)

// Params is the raw query input as the hosting application hands it over.
// Zero values mean "use the default": empty segments is no filter, zero limit
// is the configured default, empty dates select the rolling window.
type Params struct {
	// Segments is a comma-separated list of vocabulary tokens ("man,kids").
	Segments string

	// Limit is the requested list length (capped at the configured maximum).
	Limit int

	// From and To are "2006-01-02" dates; both or neither must be set.
	From string
	To   string

	// Channel optionally restricts the sales channel: "online" excludes
	// point-of-sale orders, any other value matches the source label exactly.
	Channel string

	// NoSnapshot skips the snapshot layer (spec default is snapshot-first).
	NoSnapshot bool

	// NoCache bypasses the local and shared layers, forcing live computation.
	NoCache bool

	// Debug attaches provenance and scan counters to the result.
	Debug bool
}

// ParamsFromQuery maps HTTP query values onto Params. Boolean parameters
// accept their strconv forms; `snapshot` defaults to true.
func ParamsFromQuery(q url.Values) Params {
	p := Params{
		Segments: q.Get("segments"),
		From:     q.Get("from"),
		To:       q.Get("to"),
		Channel:  q.Get("channel"),
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.Limit = n
		}
	}
	if v := q.Get("snapshot"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			p.NoSnapshot = !b
		}
	}
	if v := q.Get("nocache"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			p.NoCache = b
		}
	}
	if v := q.Get("debug"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			p.Debug = b
		}
	}
	return p
}

// query is the validated, defaulted form of Params.
type query struct {
	segments segment.Set
	limit    int
	window   shop.Window
	channel  rank.ChannelFilter
	// channelLabel feeds the cache key; "" when unfiltered.
	channelLabel string
	useSnapshot  bool
	bypassCaches bool
	debug        bool
}

// resolve validates Params and applies defaults. It performs no I/O; a
// ValidationError here is rejected before any cache lookup or upstream call.
func (s *Service) resolve(p Params) (query, error) {
	segs, err := segment.ParseSet(p.Segments)
	if err != nil {
		return query{}, &ValidationError{Field: "segments", Msg: err.Error()}
	}

	limit := p.Limit
	switch {
	case limit == 0:
		limit = s.cfg.DefaultLimit
	case limit < 0:
		return query{}, &ValidationError{Field: "limit", Msg: "must be positive"}
	case limit > s.cfg.MaxLimit:
		limit = s.cfg.MaxLimit
	}

	var window shop.Window
	switch {
	case p.From == "" && p.To == "":
		window = shop.LastDays(s.cfg.WindowDays)
	case p.From == "" || p.To == "":
		return query{}, &ValidationError{Field: "from/to", Msg: "both dates are required"}
	default:
		window, err = shop.ParseWindow(p.From, p.To)
		if err != nil {
			return query{}, &ValidationError{Field: "from/to", Msg: err.Error()}
		}
	}

	q := query{
		segments:     segs,
		limit:        limit,
		window:       window,
		useSnapshot:  !p.NoSnapshot,
		bypassCaches: p.NoCache,
		debug:        p.Debug,
	}

	if label := strings.ToLower(strings.TrimSpace(p.Channel)); label != "" {
		q.channelLabel = label
		if label == "online" {
			q.channel = rank.ExcludeSources("pos")
		} else {
			q.channel = func(source string) bool {
				return strings.EqualFold(source, label)
			}
		}
	}

	return q, nil
}
