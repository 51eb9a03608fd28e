// Package scanspec holds the immutable configuration value that drives a
// classgraph scan: whitelist/blacklist path prefixes, archive name patterns,
// traversal flags and the registered match subscriptions. It also implements
// the Path Filter state machine used by the walker to decide what to
// traverse and what to scan.
package scanspec

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ArchivePattern is a compiled glob (anchored, '.' literal, '*' -> '.*') over
// an archive's leaf name, e.g. "*.jar".
type ArchivePattern struct {
	Raw string `yaml:"pattern"`
	re  *regexp.Regexp
}

func compileArchivePattern(raw string) (ArchivePattern, error) {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range raw {
		switch r {
		case '*':
			b.WriteString(".*")
		case '.':
			b.WriteString(`\.`)
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	re, err := regexp.Compile(b.String())
	if err != nil {
		return ArchivePattern{}, fmt.Errorf("scanspec: invalid archive pattern %q: %w", raw, err)
	}
	return ArchivePattern{Raw: raw, re: re}, nil
}

// Matches reports whether leaf (an archive's base file name) matches the pattern.
func (p ArchivePattern) Matches(leaf string) bool {
	if p.re == nil {
		return false
	}
	return p.re.MatchString(leaf)
}

// FileMatchSubscription is a registered file-path-regex match callback,
// described abstractly here; scanspec only stores the compiled pattern and
// an opaque handle the match package resolves back to a callback.
type FileMatchSubscription struct {
	Pattern *regexp.Regexp
	Handle  int
}

// ScanSpec is the immutable configuration for one scan. Construct it with
// NewScanSpec; do not mutate a ScanSpec shared across scans.
type ScanSpec struct {
	WhitelistPackages []string `yaml:"whitelistPackages,omitempty"`
	BlacklistPackages []string `yaml:"blacklistPackages,omitempty"`
	WhitelistClasses  []string `yaml:"whitelistClasses,omitempty"`
	BlacklistClasses  []string `yaml:"blacklistClasses,omitempty"`

	WhitelistArchives []ArchivePattern `yaml:"whitelistArchives,omitempty"`
	BlacklistArchives []ArchivePattern `yaml:"blacklistArchives,omitempty"`

	ScanDirectories         bool `yaml:"scanDirectories"`
	ScanArchives            bool `yaml:"scanArchives"`
	ScanModules             bool `yaml:"scanModules"`
	BlacklistSystemArchives bool `yaml:"blacklistSystemArchives"`

	EnableFieldInfo             bool `yaml:"enableFieldInfo"`
	EnableStaticFinalConstants  bool `yaml:"enableStaticFinalConstants"`
	EnableAnnotationInfo        bool `yaml:"enableAnnotationInfo"`
	EnableSourceAssetInspection bool `yaml:"enableSourceAssetInspection"`

	// FileMatchSubscriptions is populated by the match package when a
	// caller registers match_file_path(regex); kept here because the walker
	// needs to know which file regexes exist in order to decide, per §4.5,
	// whether a non-class file is worth reading at all.
	FileMatchSubscriptions []FileMatchSubscription `yaml:"-"`

	// SubclassSubscriptions records which FQNs were subscribed to via
	// match_subclasses_of and InterfaceFQNs which FQNs are known interfaces,
	// purely for the ConfigurationError validation pass in NewScanSpec; the
	// match package owns the actual dispatch.
	SubclassSubscriptions []string `yaml:"subclassSubscriptions,omitempty"`
	InterfaceFQNs         []string `yaml:"interfaceFqns,omitempty"`

	whitelistPrefixes       []string
	blacklistPrefixes       []string
	whitelistClassPackages  []string
	whitelistedClassPaths   map[string]bool
	blacklistedClassPaths   map[string]bool
}

// Option configures a ScanSpec under construction, following the
// functional-options idiom.
type Option func(*ScanSpec)

// WithWhitelistPackages adds whitelisted package path prefixes (dotted or
// slash form; normalized internally).
func WithWhitelistPackages(pkgs ...string) Option {
	return func(s *ScanSpec) { s.WhitelistPackages = append(s.WhitelistPackages, pkgs...) }
}

// WithBlacklistPackages adds blacklisted package path prefixes.
func WithBlacklistPackages(pkgs ...string) Option {
	return func(s *ScanSpec) { s.BlacklistPackages = append(s.BlacklistPackages, pkgs...) }
}

// WithWhitelistClasses adds specific whitelisted class relative paths.
func WithWhitelistClasses(classes ...string) Option {
	return func(s *ScanSpec) { s.WhitelistClasses = append(s.WhitelistClasses, classes...) }
}

// WithBlacklistClasses adds specific blacklisted class relative paths.
func WithBlacklistClasses(classes ...string) Option {
	return func(s *ScanSpec) { s.BlacklistClasses = append(s.BlacklistClasses, classes...) }
}

// WithWhitelistArchives adds archive leaf-name glob patterns to the whitelist.
func WithWhitelistArchives(patterns ...string) Option {
	return func(s *ScanSpec) {
		for _, p := range patterns {
			compiled, err := compileArchivePattern(p)
			if err == nil {
				s.WhitelistArchives = append(s.WhitelistArchives, compiled)
			}
		}
	}
}

// WithBlacklistArchives adds archive leaf-name glob patterns to the blacklist.
func WithBlacklistArchives(patterns ...string) Option {
	return func(s *ScanSpec) {
		for _, p := range patterns {
			compiled, err := compileArchivePattern(p)
			if err == nil {
				s.BlacklistArchives = append(s.BlacklistArchives, compiled)
			}
		}
	}
}

// WithScanDirectories toggles directory traversal (default true).
func WithScanDirectories(v bool) Option { return func(s *ScanSpec) { s.ScanDirectories = v } }

// WithScanArchives toggles archive traversal (default true).
func WithScanArchives(v bool) Option { return func(s *ScanSpec) { s.ScanArchives = v } }

// WithScanModules toggles module-path traversal (default false).
func WithScanModules(v bool) Option { return func(s *ScanSpec) { s.ScanModules = v } }

// WithBlacklistSystemArchives toggles skipping JDK/system archives (default true).
func WithBlacklistSystemArchives(v bool) Option {
	return func(s *ScanSpec) { s.BlacklistSystemArchives = v }
}

// WithFieldInfo toggles field parsing depth.
func WithFieldInfo(v bool) Option { return func(s *ScanSpec) { s.EnableFieldInfo = v } }

// WithStaticFinalConstants toggles static-final constant extraction.
func WithStaticFinalConstants(v bool) Option {
	return func(s *ScanSpec) { s.EnableStaticFinalConstants = v }
}

// WithAnnotationInfo toggles annotation extraction.
func WithAnnotationInfo(v bool) Option { return func(s *ScanSpec) { s.EnableAnnotationInfo = v } }

// WithSourceAssetInspection toggles the supplemental source-asset enrichment
// of non-class file matches (see SPEC_FULL.md); off by default.
func WithSourceAssetInspection(v bool) Option {
	return func(s *ScanSpec) { s.EnableSourceAssetInspection = v }
}

// WithFileMatchSubscriptions registers the compiled match_file_path regexes
// the walker must test non-class entries against (§4.7).
func WithFileMatchSubscriptions(subs ...FileMatchSubscription) Option {
	return func(s *ScanSpec) { s.FileMatchSubscriptions = append(s.FileMatchSubscriptions, subs...) }
}

// WithSubclassSubscriptions records the FQNs subscribed via
// match_subclasses_of, so NewScanSpec can reject one that names an
// interface (§9 "Open questions": interface-as-subclass-target is a
// ConfigurationError).
func WithSubclassSubscriptions(fqns ...string) Option {
	return func(s *ScanSpec) { s.SubclassSubscriptions = append(s.SubclassSubscriptions, fqns...) }
}

// WithInterfaceFQNs records every FQN known to be an interface, purely so
// NewScanSpec's subclass-subscription validation can recognize one.
func WithInterfaceFQNs(fqns ...string) Option {
	return func(s *ScanSpec) { s.InterfaceFQNs = append(s.InterfaceFQNs, fqns...) }
}

// ConfigurationError reports an illegal ScanSpec; it fails construction, not
// a running scan (§7).
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string { return "scanspec: configuration error: " + e.Reason }

// NewScanSpec builds a validated, immutable ScanSpec. Sorting of whitelist
// and blacklist prefixes happens here once so downstream Classify calls are
// deterministic (§4.1).
func NewScanSpec(opts ...Option) (*ScanSpec, error) {
	s := &ScanSpec{
		ScanDirectories:         true,
		ScanArchives:            true,
		BlacklistSystemArchives: true,
		EnableStaticFinalConstants: true,
		EnableAnnotationInfo:       true,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.whitelistPrefixes = normalizePrefixes(s.WhitelistPackages)
	s.blacklistPrefixes = normalizePrefixes(s.BlacklistPackages)
	sort.Strings(s.whitelistPrefixes)
	sort.Strings(s.blacklistPrefixes)

	s.whitelistedClassPaths = make(map[string]bool, len(s.WhitelistClasses))
	for _, c := range s.WhitelistClasses {
		s.whitelistedClassPaths[normalizeClassPath(c)] = true
	}
	s.blacklistedClassPaths = make(map[string]bool, len(s.BlacklistClasses))
	for _, c := range s.BlacklistClasses {
		s.blacklistedClassPaths[normalizeClassPath(c)] = true
	}

	s.whitelistClassPackages = make([]string, 0, len(s.whitelistedClassPaths))
	for path := range s.whitelistedClassPaths {
		if idx := strings.LastIndex(path, "/"); idx >= 0 {
			s.whitelistClassPackages = append(s.whitelistClassPackages, path[:idx+1])
		}
	}
	sort.Strings(s.whitelistClassPackages)

	for _, name := range s.SubclassSubscriptions {
		for _, iface := range s.InterfaceFQNs {
			if iface == name {
				return nil, &ConfigurationError{Reason: fmt.Sprintf(
					"match_subclasses_of(%q) names an interface; subscribe match_classes_implementing instead", name)}
			}
		}
	}

	return s, nil
}

func normalizePrefixes(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.ReplaceAll(p, ".", "/")
		p = strings.Trim(p, "/")
		if p == "" {
			continue
		}
		out = append(out, p+"/")
	}
	return out
}

func normalizeClassPath(raw string) string {
	raw = strings.TrimPrefix(raw, "/")
	stem := strings.TrimSuffix(raw, ".class")
	stem = strings.ReplaceAll(stem, ".", "/")
	return stem + ".class"
}

// Dump renders the spec as YAML for logging/debugging; never used to reload
// configuration (configuration input stays programmatic, per the spec's
// External Interfaces section).
func (s *ScanSpec) Dump() string {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Sprintf("scanspec: dump failed: %v", err)
	}
	return string(data)
}

// MatchesWhitelistedArchive reports whether leaf is allowed by the archive
// whitelist/blacklist (blacklist wins).
func (s *ScanSpec) MatchesWhitelistedArchive(leaf string) bool {
	for _, p := range s.BlacklistArchives {
		if p.Matches(leaf) {
			return false
		}
	}
	if len(s.WhitelistArchives) == 0 {
		return true
	}
	for _, p := range s.WhitelistArchives {
		if p.Matches(leaf) {
			return true
		}
	}
	return false
}
