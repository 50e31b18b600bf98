package plan

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"alcyxob/plan-compiler/internal/domain"
)

var (
	identPattern     = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
	paceRangePattern = regexp.MustCompile(`^(\d{1,2}:\d{1,2})\s*-\s*(\d{1,2}:\d{1,2})$`)
	percentPattern   = regexp.MustCompile(`^(\d+(?:\.\d+)?)(?:\s*-\s*(\d+(?:\.\d+)?))?%\s*(.+)$`)
	hrValuePattern   = regexp.MustCompile(`^\d{1,3}$`)
	hrRangePattern   = regexp.MustCompile(`^(\d{1,3})\s*-\s*(\d{1,3})$`)
)

// resolvedRange is a zone resolved to numeric bounds, before margins.
// point marks single-value zones; only those get widened by margins, an
// explicit or percentage-derived range is taken as already expressing its
// own tolerance.
type resolvedRange struct {
	low, high float64
	point     bool
}

// Resolver resolves symbolic zone expressions against one plan's zone
// tables, memoizing identifier lookups for the duration of a compile pass.
// A Resolver is not safe for concurrent use; compile passes are sequential.
type Resolver struct {
	cfg       *domain.PlanConfig
	paceCache map[string]resolvedRange
	hrCache   map[string]resolvedRange
}

// NewResolver creates a resolver over cfg's pace and heart-rate tables.
func NewResolver(cfg *domain.PlanConfig) *Resolver {
	return &Resolver{
		cfg:       cfg,
		paceCache: make(map[string]resolvedRange),
		hrCache:   make(map[string]resolvedRange),
	}
}

// Pace resolves a pace reference (identifier or raw expression) into a
// concrete range of seconds per kilometer, Low being the faster bound.
func (r *Resolver) Pace(ref string) (domain.Target, error) {
	ref = strings.TrimSpace(ref)
	if identPattern.MatchString(ref) {
		if _, ok := r.cfg.Paces[ref]; !ok {
			return domain.Target{}, &UnknownZoneReferenceError{Ref: ref}
		}
	}
	res, err := r.resolvePace(ref, nil)
	if err != nil {
		return domain.Target{}, err
	}
	low, high := res.low, res.high
	if res.point {
		low, high = r.applyPaceMargins(low)
	}
	return domain.Target{Type: domain.TargetPace, Low: low, High: high}, nil
}

// HeartRate resolves a heart-rate reference into a concrete bpm range.
func (r *Resolver) HeartRate(ref string) (domain.Target, error) {
	ref = strings.TrimSpace(ref)
	if identPattern.MatchString(ref) {
		if !r.hrDefined(ref) {
			return domain.Target{}, &UnknownZoneReferenceError{Ref: ref, HeartRate: true}
		}
	}
	res, err := r.resolveHeartRate(ref, nil)
	if err != nil {
		return domain.Target{}, err
	}
	low, high := res.low, res.high
	if res.point {
		low = math.Round(low * (1 - float64(r.cfg.Margins.HRDown)/100))
		high = math.Round(high * (1 + float64(r.cfg.Margins.HRUp)/100))
	}
	return domain.Target{Type: domain.TargetHeartRate, Low: low, High: high}, nil
}

func (r *Resolver) applyPaceMargins(secPerKm float64) (low, high float64) {
	low, high = secPerKm, secPerKm
	if r.cfg.Margins.Faster != "" {
		if d, err := ParseDuration(r.cfg.Margins.Faster); err == nil {
			low -= float64(d)
		}
	}
	if r.cfg.Margins.Slower != "" {
		if d, err := ParseDuration(r.cfg.Margins.Slower); err == nil {
			high += float64(d)
		}
	}
	return low, high
}

// resolvePace resolves a pace expression. visiting is the chain of zone
// identifiers already being resolved; revisiting one means the zone table
// contains a cycle.
func (r *Resolver) resolvePace(expr string, visiting []string) (resolvedRange, error) {
	expr = strings.TrimSpace(expr)

	if identPattern.MatchString(expr) {
		if cached, ok := r.paceCache[expr]; ok {
			return cached, nil
		}
		for _, seen := range visiting {
			if seen == expr {
				return resolvedRange{}, &UnresolvedZoneError{Zone: expr, Chain: visiting, Cycle: true}
			}
		}
		def, ok := r.cfg.Paces[expr]
		if !ok {
			return resolvedRange{}, &UnresolvedZoneError{Zone: expr, Chain: visiting}
		}
		res, err := r.resolvePace(def, append(visiting, expr))
		if err != nil {
			return resolvedRange{}, err
		}
		r.paceCache[expr] = res
		return res, nil
	}

	if m := paceRangePattern.FindStringSubmatch(expr); m != nil {
		a, err := ParseDuration(m[1])
		if err != nil {
			return resolvedRange{}, &MalformedZoneExpressionError{Expr: expr}
		}
		b, err := ParseDuration(m[2])
		if err != nil {
			return resolvedRange{}, &MalformedZoneExpressionError{Expr: expr}
		}
		low, high := float64(a), float64(b)
		if low > high {
			low, high = high, low
		}
		return resolvedRange{low: low, high: high}, nil
	}

	if clockPattern.MatchString(expr) {
		secs, err := ParseDuration(expr)
		if err != nil {
			return resolvedRange{}, &MalformedZoneExpressionError{Expr: expr}
		}
		return resolvedRange{low: float64(secs), high: float64(secs), point: true}, nil
	}

	if strings.Contains(expr, " in ") {
		secPerKm, err := PaceFromDistTime(expr)
		if err != nil {
			return resolvedRange{}, &MalformedZoneExpressionError{Expr: expr}
		}
		return resolvedRange{low: secPerKm, high: secPerKm, point: true}, nil
	}

	if m := percentPattern.FindStringSubmatch(expr); m != nil {
		p1, p2, err := parsePercents(m[1], m[2])
		if err != nil {
			return resolvedRange{}, &MalformedZoneExpressionError{Expr: expr}
		}
		base, err := r.resolvePace(m[3], visiting)
		if err != nil {
			return resolvedRange{}, err
		}
		return scaleRange(base, p1, p2), nil
	}

	return resolvedRange{}, &MalformedZoneExpressionError{Expr: expr}
}

func (r *Resolver) resolveHeartRate(expr string, visiting []string) (resolvedRange, error) {
	expr = strings.TrimSpace(expr)

	if identPattern.MatchString(expr) {
		if cached, ok := r.hrCache[expr]; ok {
			return cached, nil
		}
		for _, seen := range visiting {
			if seen == expr {
				return resolvedRange{}, &UnresolvedZoneError{Zone: expr, Chain: visiting, Cycle: true}
			}
		}
		def, ok := r.hrLookup(expr)
		if !ok {
			return resolvedRange{}, &UnresolvedZoneError{Zone: expr, Chain: visiting}
		}
		res, err := r.resolveHeartRate(def, append(visiting, expr))
		if err != nil {
			return resolvedRange{}, err
		}
		r.hrCache[expr] = res
		return res, nil
	}

	if hrValuePattern.MatchString(expr) {
		v, err := strconv.ParseFloat(expr, 64)
		if err != nil {
			return resolvedRange{}, &MalformedZoneExpressionError{Expr: expr}
		}
		return resolvedRange{low: v, high: v, point: true}, nil
	}

	if m := hrRangePattern.FindStringSubmatch(expr); m != nil {
		a, _ := strconv.ParseFloat(m[1], 64)
		b, _ := strconv.ParseFloat(m[2], 64)
		if a > b {
			a, b = b, a
		}
		return resolvedRange{low: a, high: b}, nil
	}

	if m := percentPattern.FindStringSubmatch(expr); m != nil {
		p1, p2, err := parsePercents(m[1], m[2])
		if err != nil {
			return resolvedRange{}, &MalformedZoneExpressionError{Expr: expr}
		}
		base, err := r.resolveHeartRate(m[3], visiting)
		if err != nil {
			return resolvedRange{}, err
		}
		scaled := scaleRange(base, p1, p2)
		scaled.low = math.Round(scaled.low)
		scaled.high = math.Round(scaled.high)
		return scaled, nil
	}

	return resolvedRange{}, &MalformedZoneExpressionError{Expr: expr}
}

// hrLookup finds a heart-rate definition, tolerating the _HR suffix
// convention in either the reference or the table key.
func (r *Resolver) hrLookup(name string) (string, bool) {
	if def, ok := r.cfg.HeartRates[name]; ok {
		return def, true
	}
	if def, ok := r.cfg.HeartRates[strings.TrimSuffix(name, "_HR")]; ok {
		return def, true
	}
	if def, ok := r.cfg.HeartRates[name+"_HR"]; ok {
		return def, true
	}
	return "", false
}

func (r *Resolver) hrDefined(name string) bool {
	_, ok := r.hrLookup(name)
	return ok
}

func parsePercents(first, second string) (float64, float64, error) {
	p1, err := strconv.ParseFloat(first, 64)
	if err != nil {
		return 0, 0, err
	}
	p2 := p1
	if second != "" {
		p2, err = strconv.ParseFloat(second, 64)
		if err != nil {
			return 0, 0, err
		}
	}
	return p1 / 100, p2 / 100, nil
}

func scaleRange(base resolvedRange, p1, p2 float64) resolvedRange {
	low := base.low * p1
	high := base.high * p2
	if low > high {
		low, high = high, low
	}
	return resolvedRange{low: low, high: high, point: base.point && p1 == p2}
}
