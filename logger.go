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

import "github.com/eisenwave/cowel/reporter"

// CollectingLogger stores every received diagnostic. It is mainly useful
// in tests that assert on diagnostic IDs.
type CollectingLogger struct {
	Diagnostics []reporter.Diagnostic
}

func (l *CollectingLogger) Log(d reporter.Diagnostic) {
	l.Diagnostics = append(l.Diagnostics, d)
}

// Has reports whether a diagnostic with the given ID was collected.
func (l *CollectingLogger) Has(id string) bool {
	for _, d := range l.Diagnostics {
		if d.ID == id {
			return true
		}
	}
	return false
}

// Clear discards all collected diagnostics.
func (l *CollectingLogger) Clear() {
	l.Diagnostics = l.Diagnostics[:0]
}
