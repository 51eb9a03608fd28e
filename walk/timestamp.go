package walk

import (
	"context"
	"io"
	"os"
	"path"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/classgraph/classpath"
	"github.com/viant/classgraph/scanspec"
)

// TimestampScanner is the reduced Walker of §4.8: it descends exactly the
// same tree under exactly the same Path Filter, classifying every
// directory, but never opens a file body. Its only output is the maximum
// observed modification time.
type TimestampScanner struct {
	FS   afs.Service
	Spec *scanspec.ScanSpec
}

// Scan walks elements and returns the maximum modification time observed,
// in Unix milliseconds. An empty classpath yields 0 (§8 "Empty classpath").
func (t *TimestampScanner) Scan(ctx context.Context, elements []classpath.Element) (int64, error) {
	var maxMillis int64
	observe := func(millis int64) {
		if millis > maxMillis {
			maxMillis = millis
		}
	}

	for _, el := range elements {
		if err := ctx.Err(); err != nil {
			return maxMillis, err
		}

		var err error
		switch el.Kind {
		case classpath.Directory:
			if t.Spec.ScanDirectories {
				err = t.scanDirectory(ctx, el, observe)
			}
		case classpath.Archive:
			if t.Spec.ScanArchives {
				err = t.scanArchive(ctx, el, observe)
			}
		case classpath.PlainFile:
			if info, statErr := os.Stat(el.Path); statErr == nil {
				observe(info.ModTime().UnixMilli())
			}
		}
		if err != nil {
			return maxMillis, &IOError{Element: el, Cause: err}
		}
	}
	return maxMillis, nil
}

func (t *TimestampScanner) scanDirectory(ctx context.Context, el classpath.Element, observe func(int64)) error {
	visitor := storage.OnVisit(func(ctx context.Context, baseURL, parent string, info os.FileInfo, reader io.Reader) (bool, error) {
		rel := normalizeRelPath(parent, info.Name())
		if info.IsDir() {
			return t.Spec.Classify(rel + "/").ShouldDescend(), nil
		}
		observe(info.ModTime().UnixMilli())
		return true, nil
	})
	return t.FS.Walk(ctx, el.Path, visitor)
}

func (t *TimestampScanner) scanArchive(ctx context.Context, el classpath.Element, observe func(int64)) error {
	if !t.Spec.MatchesWhitelistedArchive(path.Base(el.Path)) {
		return nil
	}
	archiveURL := "zip://" + el.Path
	visitor := storage.OnVisit(func(ctx context.Context, baseURL, parent string, info os.FileInfo, reader io.Reader) (bool, error) {
		if info.IsDir() {
			return true, nil
		}
		observe(info.ModTime().UnixMilli())
		return true, nil
	})
	return t.FS.Walk(ctx, archiveURL, visitor)
}

// IsModifiedSince reports whether a fresh timestamp scan's maximum exceeds
// previousMax, implementing is_classpath_modified_since_last_scan (§4.8). A
// previousMax of 0 (no prior full scan) always reports modified.
func IsModifiedSince(ctx context.Context, t *TimestampScanner, elements []classpath.Element, previousMax int64) (bool, int64, error) {
	current, err := t.Scan(ctx, elements)
	if err != nil {
		return false, current, err
	}
	return previousMax == 0 || current > previousMax, current, nil
}
