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

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eisenwave/cowel/ast"
	"github.com/eisenwave/cowel/parser"
	"github.com/eisenwave/cowel/reporter"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a COWEL file and dump its AST",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Lex a COWEL file and dump its tokens",
	Args:  cobra.ExactArgs(1),
	RunE:  runLex,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(lexCmd)
}

func reportParseError(file string) parser.ErrorConsumer {
	return func(id string, span ast.SourceSpan, message string) {
		fmt.Fprintf(os.Stderr, "%s:%d:%d: %s [%s]\n",
			file, span.Line+1, span.Column+1, message, id)
	}
}

func runParse(cmd *cobra.Command, args []string) error {
	source, err := os.ReadFile(args[0])
	if err != nil {
		exitWithError("cannot read %s: %v", args[0], err)
	}
	elements, ok := parser.Parse(string(source), ast.FileMain, reportParseError(args[0]))
	fmt.Print(ast.Dump(elements, ast.DefaultFormattingOptions))
	if !ok {
		return reporter.ErrInvalidSource
	}
	return nil
}

func runLex(cmd *cobra.Command, args []string) error {
	source, err := os.ReadFile(args[0])
	if err != nil {
		exitWithError("cannot read %s: %v", args[0], err)
	}
	tokens, ok := parser.Lex(string(source), reportParseError(args[0]))
	for _, tok := range tokens {
		fmt.Printf("%4d:%-3d %-28s %q\n",
			tok.Span.Line+1, tok.Span.Column+1, tok.Kind,
			string(source[tok.Span.Begin:tok.Span.End()]))
	}
	if !ok {
		return reporter.ErrInvalidSource
	}
	return nil
}
