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
	"os"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/require"

	"github.com/eisenwave/cowel/reporter"
)

func TestMain(m *testing.M) {
	v := m.Run()
	snaps.Clean(m)
	os.Exit(v)
}

func TestDocumentSnapshots(t *testing.T) {
	cases := []struct {
		name   string
		source string
		mode   Mode
	}{
		{
			name:   "full document",
			source: "first paragraph\n\nsecond paragraph with \\{braces\\}\n",
			mode:   ModeDocument,
		},
		{
			name: "macro expansion",
			source: `\cowel_macro(greet){Hello, \cowel_put!}` +
				`\greet{World}` + "\n\n" + `\greet{again}`,
			mode: ModeMinimal,
		},
		{
			name: "sections out of order",
			source: `\cowel_there(footnotes){fn1}` +
				`Text\cowel_here(footnotes)End`,
			mode: ModeMinimal,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			logger := &CollectingLogger{}
			result := GenerateHTML(Options{
				Source:         c.source,
				Mode:           c.mode,
				MinLogSeverity: reporter.SeverityMin,
				Logger:         logger,
			})
			require.Equal(t, ProcessingOK, result.Status,
				"diagnostics: %v", logger.Diagnostics)
			snaps.MatchSnapshot(t, string(result.Output))
		})
	}
}
