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

// Package sections implements the document section store: named HTML
// buffers that are written out of order and composed during final assembly.
//
// Sections are ordered by insertion; the empty name denotes the default
// section, which always exists and comes first. A section can reference
// another section by embedding an encoded marker in its output; references
// are substituted by Resolve once generation is done.
package sections

import (
	"unicode/utf8"

	"github.com/eisenwave/cowel/policy"
)

// Section is a named buffer of generated HTML with its own content policy.
type Section struct {
	name   string
	data   []byte
	policy policy.ContentPolicy
}

func newSection(name string) *Section {
	s := &Section{name: name}
	sink := policy.NewCapturingSink(&s.data, policy.LanguageHTML)
	s.policy = policy.NewHTMLPolicy(sink)
	return s
}

// Name returns the section's name; the default section is named "".
func (s *Section) Name() string { return s.name }

// Text returns the section's accumulated output.
func (s *Section) Text() string { return string(s.data) }

// Bytes returns the section's accumulated output.
func (s *Section) Bytes() []byte { return s.data }

// Policy returns the content policy writing into the section.
func (s *Section) Policy() policy.ContentPolicy { return s.policy }

// Sections is the store of named sections with a current pointer.
// It is not safe for concurrent use; each generation run owns one.
type Sections struct {
	byName  map[string]*Section
	order   []*Section
	current *Section
}

// New creates a store containing only the default section, which is
// current.
func New() *Sections {
	s := &Sections{byName: make(map[string]*Section)}
	s.current = s.Make("")
	return s
}

// Find returns the section with the given name, or nil. No section is
// created.
func (s *Sections) Find(name string) *Section {
	return s.byName[name]
}

// Make returns the section with the given name, creating it if absent.
func (s *Sections) Make(name string) *Section {
	if existing := s.byName[name]; existing != nil {
		return existing
	}
	section := newSection(name)
	s.byName[name] = section
	s.order = append(s.order, section)
	return section
}

// TryGoTo makes the named section current if it exists and returns it;
// otherwise it returns nil and the current section is unchanged.
func (s *Sections) TryGoTo(name string) *Section {
	section := s.byName[name]
	if section != nil {
		s.current = section
	}
	return section
}

// GoTo makes the named section current, creating it if absent.
func (s *Sections) GoTo(name string) *Section {
	section := s.Make(name)
	s.current = section
	return section
}

// GoToScoped calls GoTo and returns a restore function that makes the
// previously current section current again; callers defer it.
func (s *Sections) GoToScoped(name string) (section *Section, restore func()) {
	old := s.current
	section = s.GoTo(name)
	return section, func() { s.current = old }
}

// Current returns the current section.
func (s *Sections) Current() *Section { return s.current }

// InOrder returns all sections in insertion order, the default section
// first.
func (s *Sections) InOrder() []*Section { return s.order }

// referenceBase is the first code point of Supplementary Private Use
// Area-A. A section reference is one code point whose offset from this
// base encodes the length of the section name in UTF-8 code units,
// followed verbatim by the name.
const referenceBase = 0xF0000

// MaxReferenceNameLength is the longest section name encodable as a
// reference.
const MaxReferenceNameLength = 65535

// WriteReference appends a reference to the named section to out. It
// reports false if the name is too long to encode.
func WriteReference(out policy.TextSink, name string) bool {
	if len(name) > MaxReferenceNameLength {
		return false
	}
	marker := rune(referenceBase + len(name))
	out.Write(string(marker)+name, policy.LanguageHTML)
	return true
}

// RefErrorKind classifies reference resolution failures.
type RefErrorKind uint8

const (
	// RefNotFound means the referenced section does not exist.
	RefNotFound RefErrorKind = iota
	// RefCircular means resolution would recurse into a section that is
	// already being resolved.
	RefCircular
)

// Resolve returns the output of the named section with all section
// references recursively substituted. Failed references are reported
// through onError and dropped from the output.
func (s *Sections) Resolve(name string, onError func(kind RefErrorKind, name string)) []byte {
	r := &refResolver{
		sections:   s,
		resolved:   make(map[string][]byte),
		active:     make(map[string]bool),
		referenced: make(map[string]bool),
		onError:    onError,
	}
	return r.resolve(name)
}

// Flatten assembles the final document: every section is resolved, and
// the output is the default section followed by all sections that were
// never referenced, in insertion order. Referenced sections appear only at
// their reference points.
func (s *Sections) Flatten(onError func(kind RefErrorKind, name string)) []byte {
	r := &refResolver{
		sections:   s,
		resolved:   make(map[string][]byte),
		active:     make(map[string]bool),
		referenced: make(map[string]bool),
		onError:    onError,
	}
	for _, section := range s.order {
		r.resolve(section.Name())
	}
	var out []byte
	out = append(out, r.resolved[""]...)
	for _, section := range s.order {
		if section.Name() != "" && !r.referenced[section.Name()] {
			out = append(out, r.resolved[section.Name()]...)
		}
	}
	return out
}

type refResolver struct {
	sections   *Sections
	resolved   map[string][]byte
	active     map[string]bool
	referenced map[string]bool
	onError    func(kind RefErrorKind, name string)
}

func (r *refResolver) fail(kind RefErrorKind, name string) {
	if r.onError != nil {
		r.onError(kind, name)
	}
}

func (r *refResolver) resolve(name string) []byte {
	if done, ok := r.resolved[name]; ok {
		return done
	}
	section := r.sections.Find(name)
	if section == nil {
		r.fail(RefNotFound, name)
		return nil
	}
	r.active[name] = true
	result := r.substitute(section.Bytes())
	delete(r.active, name)
	r.resolved[name] = result
	return result
}

func (r *refResolver) substitute(data []byte) []byte {
	var out []byte
	for i := 0; i < len(data); {
		c, size := utf8.DecodeRune(data[i:])
		if c < referenceBase || c > referenceBase+MaxReferenceNameLength {
			out = append(out, data[i:i+size]...)
			i += size
			continue
		}
		nameLength := int(c - referenceBase)
		i += size
		if i+nameLength > len(data) {
			// Truncated reference; drop the marker.
			break
		}
		target := string(data[i : i+nameLength])
		i += nameLength
		r.referenced[target] = true
		if r.active[target] {
			r.fail(RefCircular, target)
			continue
		}
		out = append(out, r.resolve(target)...)
	}
	return out
}
