// Package walk implements the Classpath Walker (§4.5): one ordered pass
// over a classpath's elements that classifies every path with the Path
// Filter, hands ".class" entries to the Parser, and evaluates file-match
// predicates against everything else — plus the Timestamp Scanner (§4.8), a
// reduced walk that never opens a file.
package walk

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/classgraph/classfile"
	"github.com/viant/classgraph/classpath"
	"github.com/viant/classgraph/scanspec"
)

var logWriter io.Writer = os.Stderr

// ClassSink receives every parsed classfile record that survives shadowing,
// in classpath-element order (§4.5 "Shadowing"). hierarchy.Graph implements
// this.
type ClassSink interface {
	AddClassfile(rec *classfile.ClassfileRecord) error
}

// ModTimeSink folds an observed modification time into a running maximum
// (§5 "a monotonic maximum that can be updated from any worker via a
// max-reduce"). hierarchy.Graph implements this.
type ModTimeSink interface {
	ObserveModTime(millis int64)
}

// FileMatchFunc is invoked synchronously on the walker's own goroutine for
// every non-".class" entry whose relative path matches at least one of the
// spec's FileMatchSubscriptions patterns (§4.7 match_file_path, delivered
// "during walking"). body is only valid for the call's duration.
type FileMatchFunc func(absPath, relPath string, body io.Reader) error

// ConstantMatchFunc is invoked once per extracted static-final constant,
// immediately after its classfile is parsed and before the walker moves on
// to the next entry (§4.7 match_static_final_constant, "delivered during
// parsing ... not after finalization").
type ConstantMatchFunc func(classFQN string, field classfile.ConstantField)

// Walker drives one pass over an ordered []classpath.Element, the same way
// the teacher's package analyzer drives afs.Service.Walk with a
// storage.OnVisit callback (inspector/../analyzer/package.go), generalized
// here from a Go-source tree to a Java classpath.
type Walker struct {
	FS   afs.Service
	Spec *scanspec.ScanSpec

	Classes         ClassSink
	ModTimes        ModTimeSink
	OnFileMatch     FileMatchFunc
	OnConstantMatch ConstantMatchFunc

	encountered map[string]bool
}

// IOError reports that a classpath element could not be read. Whether it
// stops the walk is decided by the onElementError callback passed to
// Walk; with a nil callback Walk returns it at once. scanner.Scan passes a
// nil callback, so an unreadable element fails the whole Scan, and
// TimestampScanner.Scan also returns it at once.
type IOError struct {
	Element classpath.Element
	Cause   error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("walk: reading %s element %s: %v", e.Element.Kind, e.Element.Path, e.Cause)
}

func (e *IOError) Unwrap() error { return e.Cause }

// Walk visits every element in order, parsing classfiles and evaluating
// file-match predicates. A per-element I/O failure is wrapped as *IOError
// and passed to onElementError (if non-nil); returning a non-nil error from
// onElementError aborts the whole walk, matching the "only a structural
// contradiction ... fails the scan globally" policy of §7 — callers that
// want IOError to stay local should simply log it and return nil.
func (w *Walker) Walk(ctx context.Context, elements []classpath.Element, onElementError func(*IOError) error) error {
	if w.encountered == nil {
		w.encountered = make(map[string]bool)
	}

	for _, el := range elements {
		if err := ctx.Err(); err != nil {
			return err
		}

		var err error
		switch el.Kind {
		case classpath.Directory:
			err = w.walkDirectory(ctx, el)
		case classpath.Archive:
			err = w.walkArchive(ctx, el)
		case classpath.PlainFile:
			err = w.walkPlainFile(ctx, el)
		}

		if err != nil {
			ioErr := &IOError{Element: el, Cause: err}
			if onElementError == nil {
				return ioErr
			}
			if cbErr := onElementError(ioErr); cbErr != nil {
				return cbErr
			}
		}
	}
	return nil
}

func (w *Walker) walkDirectory(ctx context.Context, el classpath.Element) error {
	if !w.Spec.ScanDirectories {
		return nil
	}
	visitor := storage.OnVisit(func(ctx context.Context, baseURL, parent string, info os.FileInfo, reader io.Reader) (bool, error) {
		rel := normalizeRelPath(parent, info.Name())
		if info.IsDir() {
			classification := w.Spec.Classify(rel + "/")
			return classification.ShouldDescend(), nil
		}

		if millis := info.ModTime().UnixMilli(); w.ModTimes != nil {
			w.ModTimes.ObserveModTime(millis)
		}

		dirClassification := w.Spec.Classify(dirOf(rel) + "/")
		return true, w.handleFileEntry(el.Path, rel, dirClassification, info.Name(), reader)
	})
	return w.FS.Walk(ctx, el.Path, visitor)
}

// walkArchive enumerates a zip-format archive by re-basing its path under
// the afs zip:// scheme and reusing the exact same visitor shape the
// directory walk uses — an archive is, from afs's perspective, just another
// walkable container (§6 "Archive format").
func (w *Walker) walkArchive(ctx context.Context, el classpath.Element) error {
	if !w.Spec.ScanArchives {
		return nil
	}
	leaf := path.Base(el.Path)
	if !w.Spec.MatchesWhitelistedArchive(leaf) {
		return nil
	}

	archiveURL := "zip://" + el.Path

	warnedFuture := false
	nowMillis := time.Now().UnixMilli()

	visitor := storage.OnVisit(func(ctx context.Context, baseURL, parent string, info os.FileInfo, reader io.Reader) (bool, error) {
		if info.IsDir() {
			return true, nil
		}
		rel := normalizeRelPath(parent, info.Name())

		millis := info.ModTime().UnixMilli()
		if millis > nowMillis && !warnedFuture {
			warnedFuture = true
			// archives occasionally carry entry timestamps past the wall
			// clock (clock skew at build time); warn once per archive.
			fmt.Fprintf(logWriter, "walk: archive %s entry %s has a future timestamp\n", el.Path, rel)
		}
		if w.ModTimes != nil {
			w.ModTimes.ObserveModTime(millis)
		}

		classification := w.Spec.Classify(dirOf(rel) + "/")
		if !classification.ShouldDescend() {
			return true, nil
		}
		return true, w.handleFileEntry(el.Path, rel, classification, info.Name(), reader)
	})
	return w.FS.Walk(ctx, archiveURL, visitor)
}

func (w *Walker) walkPlainFile(ctx context.Context, el classpath.Element) error {
	leaf := path.Base(el.Path)
	if strings.HasSuffix(leaf, ".class") {
		return nil // a lone .class file on the classpath is neither parsed nor file-matched
	}
	if w.OnFileMatch == nil || !w.hasMatchingSubscription(leaf) {
		return nil
	}
	content, err := w.FS.DownloadWithURL(ctx, el.Path)
	if err != nil {
		return err
	}
	return w.dispatchFileMatch(el.Path, leaf, bytes.NewReader(content))
}

// handleFileEntry is the common tail of directory and archive traversal:
// decide class-parse vs file-match and act. A directory verdict of
// ShouldScanFiles() scans every ".class" entry in it; otherwise the file's
// own path is classified, so a class specifically whitelisted by exact path
// (§4.3 "at-class-package") is still scanned even though its enclosing
// package directory is only AtWhitelistedClassPackage, not itself scanned
// wholesale.
func (w *Walker) handleFileEntry(elementPath, rel string, classification scanspec.Classification, name string, body io.Reader) error {
	if strings.HasSuffix(name, ".class") {
		if classification.ShouldScanFiles() || w.Spec.Classify(rel) == scanspec.AtWhitelistedClassPackage {
			return w.parseAndEmit(rel, body)
		}
		return nil
	}
	return w.dispatchFileMatch(elementPath, rel, body)
}

func (w *Walker) parseAndEmit(rel string, body io.Reader) error {
	rec, err := classfile.Parse(body, w.Spec)
	if err != nil {
		switch err.(type) {
		case *classfile.NotAClassfileError:
			return nil // skipped without logging (§7)
		case *classfile.FormatError:
			fmt.Fprintf(logWriter, "walk: skipping %s: %v\n", rel, err)
			return nil // logged and skipped (§7)
		default:
			return err
		}
	}

	if w.encountered[rec.FQN] {
		return nil // first occurrence wins (§4.5 "Shadowing")
	}
	w.encountered[rec.FQN] = true

	if w.OnConstantMatch != nil {
		for _, c := range rec.StaticFinalConstants {
			w.OnConstantMatch(rec.FQN, c)
		}
	}

	if w.Classes != nil {
		return w.Classes.AddClassfile(rec)
	}
	return nil
}

func (w *Walker) dispatchFileMatch(elementPath, rel string, body io.Reader) error {
	if w.OnFileMatch == nil {
		return nil
	}
	for _, sub := range w.Spec.FileMatchSubscriptions {
		if sub.Pattern != nil && sub.Pattern.MatchString(rel) {
			return w.OnFileMatch(elementPath, rel, body)
		}
	}
	return nil
}

func (w *Walker) hasMatchingSubscription(rel string) bool {
	for _, sub := range w.Spec.FileMatchSubscriptions {
		if sub.Pattern != nil && sub.Pattern.MatchString(rel) {
			return true
		}
	}
	return false
}

func normalizeRelPath(parent, name string) string {
	rel := path.Join(filepathToSlash(parent), name)
	return strings.TrimPrefix(rel, "/")
}

func dirOf(rel string) string {
	idx := strings.LastIndex(rel, "/")
	if idx < 0 {
		return ""
	}
	return rel[:idx]
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
