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

package ast

// Visitor receives the nodes of a tree in document order. A method returning
// false prunes the subtree below that node.
type Visitor interface {
	VisitPrimary(p *Primary) bool
	VisitDirective(d *Directive) bool
}

// Walk traverses elements in document order, descending into block and
// quoted string children, directive arguments and content, and group member
// values.
func Walk(elements []Element, v Visitor) {
	for _, e := range elements {
		walkElement(e, v)
	}
}

func walkElement(e Element, v Visitor) {
	switch n := e.(type) {
	case *Primary:
		walkPrimary(n, v)
	case *Directive:
		walkDirective(n, v)
	}
}

func walkPrimary(p *Primary, v Visitor) {
	if !v.VisitPrimary(p) {
		return
	}
	switch p.Kind() {
	case PrimaryBlock, PrimaryQuotedString:
		Walk(p.Elements(), v)
	case PrimaryGroup:
		for i := range p.Members() {
			m := &p.Members()[i]
			if m.Value() != nil {
				walkElement(m.Value(), v)
			}
		}
	}
}

func walkDirective(d *Directive, v Visitor) {
	if !v.VisitDirective(d) {
		return
	}
	if d.Arguments() != nil {
		walkPrimary(d.Arguments(), v)
	}
	if d.Content() != nil {
		walkPrimary(d.Content(), v)
	}
}
