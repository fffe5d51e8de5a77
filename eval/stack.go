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

package eval

import "github.com/eisenwave/cowel/ast"

// FrameIndex is a plain index into the call stack. Indices, not pointers,
// identify frames: the stack is append/pop only within evaluation, so an
// index stays valid for the lifetime of a value's evaluation.
type FrameIndex int

// FrameRoot denotes top-level document content, outside any invocation.
const FrameRoot FrameIndex = -1

// Invocation describes one directive invocation.
type Invocation struct {
	// Name names the invoked directive. For `\x` this is simply `x`, but a
	// directive like `\cowel_invoke(x)` invokes `x` programmatically while
	// Directive still refers to the invoke directive itself.
	Name string
	// Directive is the directive responsible for the invocation.
	Directive *ast.Directive
	// Arguments is the group the directive is invoked with, or nil.
	Arguments *ast.Primary
	// Content is the block the directive is invoked with, or nil.
	Content *ast.Primary
	// ContentFrame is the frame in which the arguments and content were
	// written. All content inside a macro definition shares the macro's
	// frame, like locals share a function's scope.
	ContentFrame FrameIndex
	// CallFrame is the new frame formed by this invocation.
	CallFrame FrameIndex
}

// HasArguments reports whether the invocation has a non-empty argument
// group.
func (inv *Invocation) HasArguments() bool {
	return inv.Arguments != nil && len(inv.Arguments.Members()) != 0
}

// ArgumentMembers returns the members of the argument group, or nil.
func (inv *Invocation) ArgumentMembers() []ast.GroupMember {
	if inv.Arguments == nil {
		return nil
	}
	return inv.Arguments.Members()
}

// ArgumentsSourceSpan locates the argument group, falling back to the
// directive name.
func (inv *Invocation) ArgumentsSourceSpan() ast.FileSourceSpan {
	if inv.Arguments != nil {
		return inv.Arguments.Span()
	}
	return inv.Directive.NameSpan()
}

// ContentElements returns the markup elements of the content block, or nil.
func (inv *Invocation) ContentElements() []ast.Element {
	if inv.Content == nil {
		return nil
	}
	return inv.Content.Elements()
}

// ContentSourceSpan locates the content block, falling back to the whole
// directive.
func (inv *Invocation) ContentSourceSpan() ast.FileSourceSpan {
	if inv.Content != nil {
		return inv.Content.Span()
	}
	return inv.Directive.Span()
}

// MakeInvocation creates an Invocation for a direct call of d.
func MakeInvocation(d *ast.Directive, contentFrame, callFrame FrameIndex) Invocation {
	return Invocation{
		Name:         d.Name(),
		Directive:    d,
		Arguments:    d.Arguments(),
		Content:      d.Content(),
		ContentFrame: contentFrame,
		CallFrame:    callFrame,
	}
}

// StackFrame is one entry on the call stack.
type StackFrame struct {
	Behavior   DirectiveBehavior
	Invocation Invocation
}

// CallStack is the stack of active invocations, indexed by FrameIndex.
type CallStack struct {
	frames []StackFrame
}

// Push appends a frame and returns its index.
func (s *CallStack) Push(frame StackFrame) FrameIndex {
	s.frames = append(s.frames, frame)
	return FrameIndex(len(s.frames) - 1)
}

// Pop removes the top frame.
func (s *CallStack) Pop() {
	s.frames = s.frames[:len(s.frames)-1]
}

// At returns the frame with the given index.
func (s *CallStack) At(index FrameIndex) *StackFrame {
	return &s.frames[index]
}

// Empty reports whether the stack has no frames.
func (s *CallStack) Empty() bool {
	return len(s.frames) == 0
}

// Size returns the number of frames.
func (s *CallStack) Size() int {
	return len(s.frames)
}

// TopIndex returns the index of the topmost frame, or FrameRoot if the
// stack is empty.
func (s *CallStack) TopIndex() FrameIndex {
	return FrameIndex(len(s.frames) - 1)
}

// Top returns the top frame; the stack must not be empty.
func (s *CallStack) Top() *StackFrame {
	return &s.frames[len(s.frames)-1]
}
