package scanspec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/classgraph/scanspec"
)

func TestScanSpec_Classify(t *testing.T) {
	tests := []struct {
		name string
		opts []scanspec.Option
		path string
		want scanspec.Classification
	}{
		{
			name: "empty whitelist scans everything",
			path: "com/x/Y.class",
			want: scanspec.HasWhitelistPrefix,
		},
		{
			name: "default package is ancestor",
			opts: []scanspec.Option{scanspec.WithWhitelistPackages("com/x")},
			path: "/",
			want: scanspec.AncestorOfWhitelist,
		},
		{
			name: "strict ancestor of whitelist",
			opts: []scanspec.Option{scanspec.WithWhitelistPackages("com/x/y")},
			path: "com/",
			want: scanspec.AncestorOfWhitelist,
		},
		{
			name: "at whitelist",
			opts: []scanspec.Option{scanspec.WithWhitelistPackages("com/x")},
			path: "com/x/",
			want: scanspec.AtWhitelist,
		},
		{
			name: "has whitelist prefix",
			opts: []scanspec.Option{scanspec.WithWhitelistPackages("com/x")},
			path: "com/x/y/",
			want: scanspec.HasWhitelistPrefix,
		},
		{
			name: "not within whitelist",
			opts: []scanspec.Option{scanspec.WithWhitelistPackages("com/x")},
			path: "org/z/",
			want: scanspec.NotWithinWhitelist,
		},
		{
			name: "blacklist wins over whitelist",
			opts: []scanspec.Option{
				scanspec.WithWhitelistPackages("com/x"),
				scanspec.WithBlacklistPackages("com/x/internal"),
			},
			path: "com/x/internal/",
			want: scanspec.Blacklisted,
		},
		{
			name: "specifically whitelisted class package",
			opts: []scanspec.Option{
				scanspec.WithWhitelistClasses("com/other/Single.class"),
			},
			path: "com/other/Single.class",
			want: scanspec.AtWhitelistedClassPackage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := scanspec.NewScanSpec(tt.opts...)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, spec.Classify(tt.path))
		})
	}
}

func TestScanSpec_ClassifyDescendAndScan(t *testing.T) {
	spec, err := scanspec.NewScanSpec(scanspec.WithWhitelistPackages("com/x"))
	assert.NoError(t, err)

	assert.True(t, spec.Classify("/").ShouldDescend())
	assert.False(t, spec.Classify("/").ShouldScanFiles())

	assert.True(t, spec.Classify("com/x/").ShouldDescend())
	assert.True(t, spec.Classify("com/x/").ShouldScanFiles())

	assert.False(t, spec.Classify("org/").ShouldDescend())
}

func TestArchivePatternGlob(t *testing.T) {
	spec, err := scanspec.NewScanSpec(scanspec.WithWhitelistArchives("app-*.jar"))
	assert.NoError(t, err)
	assert.True(t, spec.MatchesWhitelistedArchive("app-1.2.3.jar"))
	assert.False(t, spec.MatchesWhitelistedArchive("other.jar"))
}

func TestNewScanSpec_RejectsInterfaceAsSubclassSubscription(t *testing.T) {
	_, err := scanspec.NewScanSpec(func(s *scanspec.ScanSpec) {
		s.SubclassSubscriptions = []string{"com.x.I"}
		s.InterfaceFQNs = []string{"com.x.I"}
	})
	assert.Error(t, err)
	var cfgErr *scanspec.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}
