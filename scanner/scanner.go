// Package scanner is the orchestration layer §2's data-flow line describes
// but spec.md never names as a module of its own: Classpath Source → Walker
// → {Parser | file-match} → Resolver → Dispatcher, wired together behind a
// bounded worker pool (§5).
package scanner

import (
	"bytes"
	"context"
	"io"
	"regexp"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/viant/afs"
	"github.com/viant/classgraph/classfile"
	"github.com/viant/classgraph/classpath"
	"github.com/viant/classgraph/hierarchy"
	"github.com/viant/classgraph/match"
	"github.com/viant/classgraph/scanspec"
	"github.com/viant/classgraph/sourceasset"
	"github.com/viant/classgraph/walk"
)

// javaSourcePattern is the synthetic match_file_path regex the scanner
// registers on behalf of EnableSourceAssetInspection, so the walker opens
// ".java" entries even when the caller never subscribed to them explicitly.
var javaSourcePattern = regexp.MustCompile(`\.java$`)

// Result is what a finished scan hands back to the caller (§9 "scan
// results live in a dedicated result object owned by the caller").
type Result struct {
	Graph              *hierarchy.Graph
	LastModifiedMillis int64

	// SourceAssets holds the structural summaries produced for every
	// ".java" entry, when Spec.EnableSourceAssetInspection is set. Empty
	// otherwise.
	SourceAssets []*sourceasset.Asset
}

// Scanner is the sole owner of state during one scan (§9 "Global state").
// Construct one per scan (or reuse across Scan/Rescan calls that share a
// Spec and Dispatcher); it holds no process-wide singletons.
type Scanner struct {
	FS         afs.Service
	Spec       *scanspec.ScanSpec
	Dispatcher *match.Dispatcher

	// Concurrency bounds how many classpath elements are processed at once
	// (§5 "a bounded thread pool that processes classpath elements in
	// parallel"). Defaults to runtime.NumCPU() when <= 0.
	Concurrency int
}

// New creates a Scanner. dispatcher may be nil if the caller only wants the
// hierarchy graph and has no subscriptions.
func New(fs afs.Service, spec *scanspec.ScanSpec, dispatcher *match.Dispatcher) *Scanner {
	return &Scanner{FS: fs, Spec: spec, Dispatcher: dispatcher}
}

// elementRecords is one worker's output: every classfile record it parsed,
// in walk (within-element) order, carrying enough to let the merge step
// resolve the shadowing rule in classpath order (§5 "parallel work units
// must carry their source-order index").
type elementRecords struct {
	index   int
	records []*classfile.ClassfileRecord
}

// recordCollector is a walk.ClassSink that buffers records instead of
// folding them into the graph directly, so the scanner can merge across
// concurrently-processed elements before anything touches the graph.
type recordCollector struct {
	records []*classfile.ClassfileRecord
}

func (c *recordCollector) AddClassfile(rec *classfile.ClassfileRecord) error {
	c.records = append(c.records, rec)
	return nil
}

// elementAssets is one worker's source-asset output, carrying the same
// source-order index discipline as elementRecords (§5).
type elementAssets struct {
	index  int
	assets []*sourceasset.Asset
}

// effectiveSpec returns spec unchanged unless EnableSourceAssetInspection is
// set, in which case it returns a shallow copy carrying one extra
// FileMatchSubscription for ".java" entries -- letting the walker open
// source files for inspection even when no caller ever registered a
// match_file_path subscription for them. ScanSpec itself stays immutable;
// this never mutates the caller's spec.
func effectiveSpec(spec *scanspec.ScanSpec) *scanspec.ScanSpec {
	if spec == nil || !spec.EnableSourceAssetInspection {
		return spec
	}
	clone := *spec
	clone.FileMatchSubscriptions = append(
		append([]scanspec.FileMatchSubscription{}, spec.FileMatchSubscriptions...),
		scanspec.FileMatchSubscription{Pattern: javaSourcePattern, Handle: -1},
	)
	return &clone
}

// Scan runs one full scan over elements (already merged/ordered by the
// classpath package) and returns the finished Result.
func (s *Scanner) Scan(ctx context.Context, elements []classpath.Element) (*Result, error) {
	graph := hierarchy.NewGraph()

	concurrency := s.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	if concurrency > len(elements) && len(elements) > 0 {
		concurrency = len(elements)
	}

	spec := effectiveSpec(s.Spec)
	inspectSource := s.Spec != nil && s.Spec.EnableSourceAssetInspection

	perElement := make([]elementRecords, len(elements))
	perElementAssets := make([]elementAssets, len(elements))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, el := range elements {
		i, el := i, el
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			collector := &recordCollector{}
			var assets []*sourceasset.Asset

			w := &walk.Walker{
				FS:       s.FS,
				Spec:     spec,
				Classes:  collector,
				ModTimes: graph,
			}
			w.OnFileMatch = func(absPath, relPath string, body io.Reader) error {
				var buffered []byte
				if inspectSource && javaSourcePattern.MatchString(relPath) {
					data, err := io.ReadAll(body)
					if err != nil {
						return err
					}
					buffered = data
					asset, err := sourceasset.InspectSource(relPath, buffered)
					if err != nil {
						return err
					}
					assets = append(assets, asset)
				}
				if s.Dispatcher != nil {
					if buffered != nil {
						body = bytes.NewReader(buffered)
					}
					return s.Dispatcher.HandleFile(absPath, relPath, body)
				}
				return nil
			}
			if err := w.Walk(gctx, []classpath.Element{el}, nil); err != nil {
				return err
			}
			perElement[i] = elementRecords{index: i, records: collector.records}
			perElementAssets[i] = elementAssets{index: i, assets: assets}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var sourceAssets []*sourceasset.Asset
	for _, ea := range perElementAssets {
		sourceAssets = append(sourceAssets, ea.assets...)
	}

	// Sequential merge: classpath-element order, then within-element
	// (directory-walk / archive-entry) order, resolving "first occurrence
	// wins" and feeding winners into the graph one at a time so
	// classOrder/interfaceOrder (and thus classes_by_annotation /
	// classes_by_interface) stay deterministic (§5 "Ordering guarantees").
	seen := make(map[string]bool)
	for _, er := range perElement {
		for _, rec := range er.records {
			if seen[rec.FQN] {
				continue
			}
			seen[rec.FQN] = true

			if s.Dispatcher != nil {
				for _, c := range rec.StaticFinalConstants {
					s.Dispatcher.HandleConstant(rec.FQN, c)
				}
			}
			if err := graph.AddClassfile(rec); err != nil {
				return nil, err // StructuralConflictError is fatal (§7)
			}
		}
	}

	if err := graph.Finalize(); err != nil {
		return nil, err
	}
	if s.Dispatcher != nil {
		if err := s.Dispatcher.Run(graph); err != nil {
			return nil, err
		}
	}

	return &Result{Graph: graph, LastModifiedMillis: graph.LastModifiedMillis(), SourceAssets: sourceAssets}, nil
}

// Rescan is Scan again; the spec carries no incremental-update machinery
// (§1 Non-goals), so a rescan simply produces a fresh Result from scratch.
func (s *Scanner) Rescan(ctx context.Context, elements []classpath.Element) (*Result, error) {
	return s.Scan(ctx, elements)
}

// IsModifiedSince runs the Timestamp Scanner (§4.8) and reports whether the
// classpath changed since previousMax.
func (s *Scanner) IsModifiedSince(ctx context.Context, elements []classpath.Element, previousMax int64) (bool, int64, error) {
	ts := &walk.TimestampScanner{FS: s.FS, Spec: s.Spec}
	return walk.IsModifiedSince(ctx, ts, elements, previousMax)
}
