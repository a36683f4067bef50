package domain

import "time"

// RunState tracks a scan job through its lifecycle. Every terminal state
// yields a valid (possibly partial) RunResult.
type RunState string

const (
	StateInitialized RunState = "initialized"
	StateRunning     RunState = "running"
	StateCompleted   RunState = "completed"
	StateCapped      RunState = "capped"
	StateAborted     RunState = "aborted"
	StateFailed      RunState = "failed"
)

// Filter keys select which inspection engines run during a scan.
const (
	FilterUIElements     = "ui_elements"
	FilterFormValidation = "form_validation"
	FilterFunctional     = "functional"
	FilterAccessibility  = "accessibility"
	FilterPerformance    = "performance"
	FilterSecurity       = "security"
)

var validFilters = map[string]bool{
	FilterUIElements:     true,
	FilterFormValidation: true,
	FilterFunctional:     true,
	FilterAccessibility:  true,
	FilterPerformance:    true,
	FilterSecurity:       true,
}

// AllFilters returns the six filter keys in a stable order.
func AllFilters() []string {
	return []string{
		FilterUIElements, FilterFormValidation, FilterFunctional,
		FilterAccessibility, FilterPerformance, FilterSecurity,
	}
}

// FilterSet is the capability set of active inspection engines for one job.
// An empty set means all engines are active.
type FilterSet struct {
	keys map[string]bool
}

// NewFilterSet builds a FilterSet from raw filter names, dropping unknown keys.
func NewFilterSet(names []string) FilterSet {
	keys := make(map[string]bool)
	for _, n := range names {
		if validFilters[n] {
			keys[n] = true
		}
	}
	return FilterSet{keys: keys}
}

// Active reports whether the given engine should run. Empty set = run all.
func (fs FilterSet) Active(key string) bool {
	if len(fs.keys) == 0 {
		return true
	}
	return fs.keys[key]
}

// Empty reports whether no explicit filters were selected.
func (fs FilterSet) Empty() bool { return len(fs.keys) == 0 }

// Names returns the selected filter keys, or all keys when empty.
func (fs FilterSet) Names() []string {
	if len(fs.keys) == 0 {
		return AllFilters()
	}
	out := make([]string, 0, len(fs.keys))
	for _, k := range AllFilters() {
		if fs.keys[k] {
			out = append(out, k)
		}
	}
	return out
}

// ScanJob is one crawl invocation. Immutable once started; owned exclusively
// by a single orchestrator execution.
type ScanJob struct {
	RunID     string    `json:"run_id"`
	TargetURL string    `json:"target_url"`
	PageLimit int       `json:"page_limit"` // 0 = unbounded
	Filters   FilterSet `json:"-"`
}

// ScanRequest is the API payload for submitting a scan.
type ScanRequest struct {
	URL       string   `json:"url"`
	PageLimit int      `json:"page_limit,omitempty"`
	Filters   []string `json:"filters,omitempty"`
	Force     bool     `json:"force,omitempty"`
}

// Progress is delivered synchronously after each page, in BFS order.
type Progress struct {
	Scanned       int      `json:"scanned"`
	Discovered    int      `json:"discovered"`
	TotalEstimate int      `json:"total_estimate"`
	AvgPageMS     float64  `json:"avg_page_time_ms"`
	ETASeconds    *float64 `json:"eta_seconds"`
}

// ProgressFunc receives progress updates; errors inside it must not abort the crawl.
type ProgressFunc func(Progress)

// UISummary holds element counts from the DOM capture. The link count also
// feeds the link-integrity confidence factor as the estimated nav-link total.
type UISummary struct {
	Buttons    int `json:"buttons"`
	Links      int `json:"links"`
	Inputs     int `json:"inputs"`
	Selects    int `json:"selects"`
	Textareas  int `json:"textareas"`
	Images     int `json:"images"`
	Videos     int `json:"videos"`
	Iframes    int `json:"iframes"`
	NavMenus   int `json:"nav_menus"`
	Modals     int `json:"modals"`
	TabLists   int `json:"tab_lists"`
	Accordions int `json:"accordions"`
}

// UIElement is one interactive element found on the page.
type UIElement struct {
	Tag        string            `json:"tag"`
	Type       string            `json:"type"`
	Text       string            `json:"text"`
	ID         string            `json:"id"`
	Visible    bool              `json:"visible"`
	Enabled    bool              `json:"enabled"`
	Required   bool              `json:"required"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// FormField is one visible input inside a form.
type FormField struct {
	Tag         string `json:"tag"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Required    bool   `json:"required"`
	Placeholder string `json:"placeholder"`
}

// FormIssue is a single finding from the form analyzer.
type FormIssue struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Field    string `json:"field,omitempty"`
	Detail   string `json:"detail"`
}

// Form is a visible, deduplicated form plus its analysis results.
type Form struct {
	Action      string      `json:"action"`
	Method      string      `json:"method"`
	Fields      []FormField `json:"fields"`
	FieldsCount int         `json:"fields_count"`

	HealthScore *float64    `json:"form_health_score"`
	IssueCount  int         `json:"form_issue_count"`
	Issues      []FormIssue `json:"form_issues"`
}

// Dropdown describes a native select or an aria-expanded trigger.
type Dropdown struct {
	Type          string `json:"type"`
	TriggerTag    string `json:"trigger_tag"`
	Name          string `json:"name,omitempty"`
	OptionsCount  int    `json:"options_count,omitempty"`
	Expanded      bool   `json:"expanded,omitempty"`
	HasContainer  bool   `json:"has_container,omitempty"`
	ContainerRole string `json:"container_role,omitempty"`
	Visible       bool   `json:"visible"`
	Accessibility string `json:"accessibility,omitempty"`
}

// NavLink is one anchor inside a navigation container.
type NavLink struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// NavMenu is a nav/header region with its links.
type NavMenu struct {
	Tag       string    `json:"tag"`
	LinkCount int       `json:"link_count"`
	Links     []NavLink `json:"links"`
}

// TabList summarizes a role=tablist widget.
type TabList struct {
	TabCount  int      `json:"tab_count"`
	ActiveTab string   `json:"active_tab"`
	Items     []string `json:"items"`
}

// Modal summarizes a dialog element.
type Modal struct {
	Visible          bool `json:"visible"`
	HasClose         bool `json:"has_close"`
	HasAriaModal     bool `json:"has_aria_modal"`
	HasAriaLabelled  bool `json:"has_aria_labelledby"`
}

// Accordion summarizes a details/collapse element.
type Accordion struct {
	Tag        string `json:"tag"`
	Open       bool   `json:"open"`
	HasSummary bool   `json:"has_summary"`
}

// Breadcrumbs reports breadcrumb presence.
type Breadcrumbs struct {
	Found     bool `json:"found"`
	ItemCount int  `json:"item_count"`
}

// Sidebar reports sidebar presence.
type Sidebar struct {
	Found   bool `json:"found"`
	Visible bool `json:"visible"`
}

// Pagination is a detected pagination control.
type Pagination struct {
	Type  string    `json:"type"`
	Links []NavLink `json:"links"`
}

// DOMData is the full DOM/UI capture for one page.
type DOMData struct {
	UIElements  []UIElement  `json:"ui_elements"`
	UISummary   UISummary    `json:"ui_summary"`
	Forms       []Form       `json:"forms"`
	Dropdowns   []Dropdown   `json:"dropdowns"`
	Pagination  []Pagination `json:"pagination"`
	NavMenus    []NavMenu    `json:"nav_menus"`
	Tabs        []TabList    `json:"tabs"`
	Modals      []Modal      `json:"modals"`
	Accordions  []Accordion  `json:"accordions"`
	Breadcrumbs Breadcrumbs  `json:"breadcrumbs"`
	Sidebar     Sidebar      `json:"sidebar"`
}

// ResourceCounts breaks down loaded resources by initiator.
type ResourceCounts struct {
	Total              int   `json:"total"`
	JSCount            int   `json:"js_count"`
	CSSCount           int   `json:"css_count"`
	ImgCount           int   `json:"img_count"`
	TotalTransferBytes int64 `json:"total_transfer_bytes"`
}

// RenderBlocking counts synchronous head scripts and stylesheets.
type RenderBlocking struct {
	Scripts     int `json:"scripts"`
	Stylesheets int `json:"stylesheets"`
}

// PerformanceMetrics come straight from the browser Performance API.
// Missing entries are nil, never estimated.
type PerformanceMetrics struct {
	TTFBMs             *float64        `json:"ttfb_ms"`
	DOMInteractiveMs   *float64        `json:"dom_interactive_ms"`
	DOMCompleteMs      *float64        `json:"dom_complete_ms"`
	LoadEventEndMs     *float64        `json:"load_event_end_ms"`
	DOMContentLoadedMs *float64        `json:"dom_content_loaded_ms"`
	FCPMs              *float64        `json:"fcp_ms"`
	LCPMs              *float64        `json:"lcp_ms"`
	Resources          *ResourceCounts `json:"resources"`
	RenderBlocking     *RenderBlocking `json:"render_blocking"`
}

// AccessibilityIssue is one finding from the accessibility battery.
type AccessibilityIssue struct {
	Category string `json:"category"`
	Severity string `json:"severity"`
	Element  string `json:"element"`
	Message  string `json:"message"`
}

// SeverityCounts buckets issue counts by severity.
type SeverityCounts struct {
	Critical int `json:"critical,omitempty"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// AccessibilityChecks holds per-check counters from the DOM audit.
type AccessibilityChecks struct {
	MissingAlt       int `json:"missing_alt"`
	UnlabeledInputs  int `json:"unlabeled_inputs"`
	UnnamedButtons   int `json:"unnamed_buttons"`
	HeadingIssues    int `json:"heading_issues"`
	EmptyLinks       int `json:"empty_links"`
	NegativeTabindex int `json:"negative_tabindex"`
	SmallTargets     int `json:"small_targets"`
}

// AccessibilityData is the structured output of the accessibility inspector.
type AccessibilityData struct {
	TotalIssues     int                  `json:"total_issues"`
	SeverityCounts  SeverityCounts       `json:"severity_counts"`
	Issues          []AccessibilityIssue `json:"issues"`
	Checks          AccessibilityChecks  `json:"checks"`
	HasSkipNav      bool                 `json:"has_skip_nav"`
	HasLangAttr     bool                 `json:"has_lang_attr"`
	HasMainLandmark bool                 `json:"has_main_landmark"`
}

// SecurityFinding is one security issue with severity and remediation hint.
type SecurityFinding struct {
	Category       string `json:"category"`
	Severity       string `json:"severity"`
	Detail         string `json:"detail"`
	Element        string `json:"element,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`
}

// SecurityData is the structured output of the security inspector.
type SecurityData struct {
	IsHTTPS         bool              `json:"is_https"`
	HeadersAnalyzed []string          `json:"headers_analyzed"`
	Findings        []SecurityFinding `json:"findings"`
	PassedChecks    []string          `json:"passed_checks"`
	TotalIssues     int               `json:"total_issues"`
	SeverityCounts  SeverityCounts    `json:"severity_counts"`
}

// LinkFailure is one broken navigation link. Status is nil when the failure
// was a timeout or network-level error rather than an HTTP status.
type LinkFailure struct {
	URL    string `json:"url"`
	Status *int   `json:"status"`
	Error  string `json:"error,omitempty"`
}

// LinkReport is the link classifier's output: the deduplicated internal link
// set plus the three failure buckets. Only BrokenNavigation affects scoring;
// the other two buckets are informational.
type LinkReport struct {
	InternalLinks      []string      `json:"internal_links"`
	BrokenNavigation   []LinkFailure `json:"broken_navigation_links"`
	FailedAssets       []string      `json:"failed_assets"`
	ThirdPartyFailures []string      `json:"third_party_failures"`
}

// DeductionDetail records one scoring deduction for the breakdown.
type DeductionDetail struct {
	Value     float64 `json:"value,omitempty"`
	Count     int     `json:"count,omitempty"`
	Deduction float64 `json:"deduction"`
}

// HealthBreakdown explains a composite page health score.
type HealthBreakdown struct {
	HealthScore     *float64            `json:"health_score"`
	RiskCategory    *string             `json:"risk_category"`
	ComponentScores map[string]*float64 `json:"component_scores"`
	WeightsUsed     map[string]float64  `json:"weights_used"`
}

// PageRecord is the complete per-page result bundle. Created once per visit,
// immutable thereafter, appended to the job's results in BFS order.
type PageRecord struct {
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Result    string    `json:"result"` // "pass" iff status == 200

	// DOM & UI
	UIElements  []UIElement  `json:"ui_elements"`
	UISummary   UISummary    `json:"ui_summary"`
	Forms       []Form       `json:"forms"`
	Dropdowns   []Dropdown   `json:"dropdowns"`
	Pagination  []Pagination `json:"pagination"`
	NavMenus    []NavMenu    `json:"nav_menus"`
	Tabs        []TabList    `json:"tabs"`
	Modals      []Modal      `json:"modals"`
	Accordions  []Accordion  `json:"accordions"`
	Breadcrumbs Breadcrumbs  `json:"breadcrumbs"`
	Sidebar     Sidebar      `json:"sidebar"`

	// Links & functional signals
	BrokenNavigationLinks []LinkFailure `json:"broken_navigation_links"`
	FailedAssets          []string      `json:"failed_assets"`
	ThirdPartyFailures    []string      `json:"third_party_failures"`
	ConnectedPages        []string      `json:"connected_pages"`
	JSErrors              []string      `json:"js_errors"`
	RedirectChainLength   int           `json:"redirect_chain_length"`

	// Performance
	PerformanceMetrics *PerformanceMetrics `json:"performance_metrics"`
	PerformanceScore   *float64            `json:"performance_score"`
	PerformanceGrade   *string             `json:"performance_grade"`
	LoadTime           *float64            `json:"load_time"` // seconds
	FCPMs              *float64            `json:"fcp_ms"`
	LCPMs              *float64            `json:"lcp_ms"`
	TTFBMs             *float64            `json:"ttfb_ms"`
	SlowIndicators     []string            `json:"slow_indicators"`

	// Accessibility
	AccessibilityData   *AccessibilityData `json:"accessibility_data"`
	AccessibilityScore  *float64           `json:"accessibility_score"`
	AccessibilityRisk   *string            `json:"accessibility_risk"`
	AccessibilityIssues *int               `json:"accessibility_issues"`
	WCAGViolations      []string           `json:"wcag_violations"`

	// Security
	SecurityData  *SecurityData `json:"security_data"`
	SecurityScore *float64      `json:"security_score"`
	SecurityRisk  *string       `json:"security_risk"`
	IsHTTPS       *bool         `json:"is_https"`

	// Functional & UI/Form
	FunctionalScore     *float64                   `json:"functional_score"`
	FunctionalBreakdown map[string]DeductionDetail `json:"functional_breakdown,omitempty"`
	UIFormScore         *float64                   `json:"ui_form_score"`

	// Composite
	HealthScore     *float64         `json:"health_score"`
	RiskCategory    *string          `json:"risk_category"`
	HealthBreakdown *HealthBreakdown `json:"health_breakdown"`

	// Confidence
	ConfidenceScore   *float64 `json:"confidence_score"`
	ChecksExecuted    int      `json:"checks_executed"`
	ChecksNull        int      `json:"checks_null"`
	CompletenessRatio float64  `json:"completeness_ratio"`

	// Learning fields, all deterministic
	FailurePatternID      *string `json:"failure_pattern_id"`
	RootCauseTag          *string `json:"root_cause_tag"`
	SelfHealingSuggestion *string `json:"self_healing_suggestion"`

	Screenshot    *string  `json:"screenshot"`
	Viewport      string   `json:"viewport"`
	ActiveFilters []string `json:"active_filters"`
}

// SiteHealth is the run-level aggregate of page health scores.
type SiteHealth struct {
	SiteHealthScore   *float64            `json:"site_health_score"`
	RiskCategory      *string             `json:"risk_category"`
	PageCount         int                 `json:"page_count"`
	ScoredPages       int                 `json:"scored_pages"`
	ComponentAverages map[string]*float64 `json:"component_averages"`
	ScoreDistribution map[string]int      `json:"score_distribution"`
	MinPageScore      *float64            `json:"min_page_score,omitempty"`
	MaxPageScore      *float64            `json:"max_page_score,omitempty"`
	ConfidenceScore   float64             `json:"confidence_score"`
}

// ConfidenceFactors carries the six normalized [0,1] factors plus the raw
// counts behind them, so the explanation path reuses the same numbers.
type ConfidenceFactors struct {
	CrawlCoverage     float64 `json:"crawl_coverage"`
	Completeness      float64 `json:"completeness"`
	ErrorStability    float64 `json:"error_stability"`
	LinkIntegrity     float64 `json:"link_integrity"`
	JSCleanliness     float64 `json:"js_cleanliness"`
	RedirectStability float64 `json:"redirect_stability"`

	PagesScanned      int     `json:"pages_scanned"`
	PagesDiscovered   int     `json:"pages_discovered"`
	CrawlCoveragePct  float64 `json:"crawl_coverage_pct"`
	BrokenNavLinks    int     `json:"broken_nav_links"`
	EstimatedNavLinks int     `json:"estimated_nav_links"`
	JSErrorsTotal     int     `json:"js_errors_total"`
	UnstableRedirects int     `json:"unstable_redirects"`
	HealthScoreStddev float64 `json:"health_score_stddev"`
}

// RunResult is everything a completed (or partially completed) job produces.
type RunResult struct {
	RunID         string   `json:"run_id"`
	TargetURL     string   `json:"target_url"`
	State         RunState `json:"state"`
	ActiveFilters []string `json:"active_filters"`

	Pages  []*PageRecord `json:"pages"`
	Total  int           `json:"total"`
	Passed int           `json:"passed"`
	Failed int           `json:"failed"`

	SiteHealth            *SiteHealth       `json:"site_health"`
	ConfidenceScore       float64           `json:"confidence_score"`
	ConfidenceFactors     ConfidenceFactors `json:"confidence_factors"`
	ConfidenceExplanation []string          `json:"confidence_explanation"`
	Narrative             string            `json:"narrative"`

	ReportFile      string `json:"report_file,omitempty"`
	RawFile         string `json:"raw_file,omitempty"`
	SummaryFile     string `json:"summary_file,omitempty"`
	SiteSummaryFile string `json:"site_summary_file,omitempty"`

	AnomalyCount int       `json:"anomaly_count"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

// Float64Ptr returns a pointer to v. Score fields are pointers so that a
// missing component is nil rather than zero.
func Float64Ptr(v float64) *float64 { return &v }

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool { return &b }
