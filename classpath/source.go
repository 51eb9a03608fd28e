package classpath

import (
	"context"
	"os"
)

// MergeSources implements the Classpath Source contract (§4.2): it asks each
// Source, in order, for its elements, concatenates them preserving
// first-occurrence order, drops any path already seen, and drops any path
// that does not exist on disk at merge time.
//
// A later Source can never resurrect a path a earlier Source already
// contributed — first occurrence wins, matching the shadowing rule the
// Classpath Walker applies one level up to fully-qualified class names
// (§4.5).
func MergeSources(ctx context.Context, sources ...Source) ([]Element, error) {
	seen := make(map[string]bool)
	var merged []Element

	for _, src := range sources {
		elements, err := src.Elements(ctx)
		if err != nil {
			return nil, err
		}
		for _, el := range elements {
			if seen[el.Path] {
				continue
			}
			seen[el.Path] = true
			if !exists(el.Path) {
				continue
			}
			merged = append(merged, el)
		}
	}
	return merged, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
