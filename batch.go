// Copyright 2024-2025 The COWEL Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cowel

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Batch generates many independent documents with bounded parallelism.
// Each document gets its own context, call stack, and section store, so
// running them concurrently is safe; no state is shared between runs
// except the (immutable) option template.
type Batch struct {
	// Options is the template applied to every document; its Source field
	// is replaced per document.
	Options Options
	// MaxParallelism bounds concurrent generations. If unset or
	// non-positive, min(runtime.NumCPU(), runtime.GOMAXPROCS(-1)) is used.
	MaxParallelism int
}

// GenerateAll compiles all sources and returns one result per source, in
// order. Generation stops early only if ctx is cancelled, in which case
// the context error is returned alongside the results produced so far.
func (b *Batch) GenerateAll(ctx context.Context, sources ...string) ([]Result, error) {
	parallelism := b.MaxParallelism
	if parallelism <= 0 {
		parallelism = min(runtime.NumCPU(), runtime.GOMAXPROCS(-1))
	}

	results := make([]Result, len(sources))
	sem := semaphore.NewWeighted(int64(parallelism))
	var wg sync.WaitGroup

	for i, source := range sources {
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return results, err
		}
		wg.Add(1)
		go func(i int, source string) {
			defer wg.Done()
			defer sem.Release(1)
			options := b.Options
			options.Source = source
			results[i] = GenerateHTML(options)
		}(i, source)
	}
	wg.Wait()
	return results, nil
}
