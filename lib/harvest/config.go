package harvest

import "time"

// EmptyPolicy decides what a zero-candidate completion means.
type EmptyPolicy string

const (
	EmptyIsSuccess  EmptyPolicy = "success"
	EmptyIsDegraded EmptyPolicy = "degraded"
)

// Config is constructed once at startup and threaded explicitly into
// every component. Nothing in this package reads the environment.
type Config struct {
	BaseUrl string `json:"base_url"`
	Output  string `json:"output"`

	Headless      bool `json:"headless"`
	OpTimeoutMs   int  `json:"op_timeout_ms"`
	NavTimeoutMs  int  `json:"nav_timeout_ms"`
	MaxCandidates int  `json:"max_candidates"`
	// when > 0, only the first N candidates are processed
	DebugLimit int `json:"debug_limit"`

	AnchorSelector    string `json:"anchor_selector"`
	SurfaceSelector   string `json:"surface_selector"`
	CandidateSelector string `json:"candidate_selector"`

	SettleDelayMs int `json:"settle_delay_ms"`
	GracePeriodMs int `json:"grace_period_ms"`
	MaxAncestors  int `json:"max_ancestors"`

	// ordered heuristics for recognizing the subject region, data not code
	RegionTags     []string `json:"region_tags"`
	RegionPatterns []string `json:"region_patterns"`

	PreferredFields []string `json:"preferred_fields"`
	PrimaryField    string   `json:"primary_field"`
	IdentifierField string   `json:"identifier_field"`
	// when set, a candidate's display text is recorded under this field
	// if the harvest did not produce it
	DisplayField string `json:"display_field"`

	GroupField     string `json:"group_field"`
	MemberField    string `json:"member_field"`
	CompositeField string `json:"composite_field"`

	CellSeparator  string      `json:"cell_separator"`
	FallbackHeader []string    `json:"fallback_header"`
	EmptyPolicy    EmptyPolicy `json:"empty_policy"`
}

func (c Config) WithDefaults() Config {
	if c.OpTimeoutMs <= 0 {
		c.OpTimeoutMs = 10_000
	}
	if c.NavTimeoutMs <= 0 {
		c.NavTimeoutMs = 30_000
	}
	if c.MaxCandidates <= 0 {
		c.MaxCandidates = 200
	}
	if c.SettleDelayMs <= 0 {
		c.SettleDelayMs = 400
	}
	if c.GracePeriodMs <= 0 {
		c.GracePeriodMs = 500
	}
	if c.MaxAncestors <= 0 {
		c.MaxAncestors = 8
	}
	if len(c.RegionTags) == 0 {
		c.RegionTags = []string{"section", "article", "fieldset", "form", "main", "aside"}
	}
	if len(c.RegionPatterns) == 0 {
		c.RegionPatterns = []string{"card", "panel", "container", "row", "column", "member", "area", "block"}
	}
	if c.PrimaryField == "" {
		c.PrimaryField = "name"
	}
	if c.CellSeparator == "" {
		c.CellSeparator = " | "
	}
	if c.EmptyPolicy == "" {
		c.EmptyPolicy = EmptyIsSuccess
	}
	return c
}

func (c Config) OpTimeout() time.Duration {
	return time.Duration(c.OpTimeoutMs) * time.Millisecond
}

func (c Config) NavTimeout() time.Duration {
	return time.Duration(c.NavTimeoutMs) * time.Millisecond
}

func (c Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMs) * time.Millisecond
}

func (c Config) GracePeriod() time.Duration {
	return time.Duration(c.GracePeriodMs) * time.Millisecond
}

// the composite field, when configured, leads the emitted schema
func (c Config) effectivePreferred() []string {
	if c.CompositeField == "" {
		return c.PreferredFields
	}
	for _, f := range c.PreferredFields {
		if f == c.CompositeField {
			return c.PreferredFields
		}
	}
	out := make([]string, 0, len(c.PreferredFields)+1)
	out = append(out, c.CompositeField)
	return append(out, c.PreferredFields...)
}

// fallbackHeader is the header of the artifact written when the run
// produced nothing, or aborted.
func (c Config) fallbackHeader() []string {
	if len(c.FallbackHeader) > 0 {
		return c.FallbackHeader
	}
	if len(c.PreferredFields) > 0 {
		return c.effectivePreferred()
	}
	return []string{c.PrimaryField}
}

func (c Config) extractOptions() ExtractOptions {
	return ExtractOptions{
		CellSeparator:  c.CellSeparator,
		GroupField:     c.GroupField,
		MemberField:    c.MemberField,
		CompositeField: c.CompositeField,
	}
}
