package parser

import (
	"fmt"
	"strings"

	"github.com/benbjohnson/cssvet/ast"
	"github.com/benbjohnson/cssvet/scanner"
	"github.com/benbjohnson/cssvet/token"
)

// Parse tokenizes and builds a stylesheet from CSS text.
func Parse(src string) *ast.StyleSheet {
	return Build(scanner.Tokenize(src))
}

// Build constructs the structural model from a token stream.
//
// Build never fails. Structural defects are recorded as diagnostics on the
// returned stylesheet: an unmatched "}" is reported at its position and the
// content after it is treated as top-level; blocks still open at the end of
// input are kept in the model and marked Unclosed.
func Build(tokens []token.Token) *ast.StyleSheet {
	p := &parser{ss: &ast.StyleSheet{}}
	for _, tok := range tokens {
		p.consume(tok)
	}
	p.finish()
	return p.ss
}

// parser holds the state of a single Build call.
type parser struct {
	ss *ast.StyleSheet

	stack   []*frame    // open blocks, innermost last
	pending token.Token // selector or at-keyword waiting for "{" or ";"
}

// frame is an open block.
type frame struct {
	block  *ast.Block
	owner  ast.Node // *ast.Rule or *ast.AtRule; nil if the block is discarded
	lbrace token.Span
}

// consume adds a single token to the model.
func (p *parser) consume(tok token.Token) {
	switch tok := tok.(type) {
	case *token.Whitespace, *token.EOF:
		// nop

	case *token.Comment:
		p.flush()
		if !tok.Terminated {
			p.diagnose(ast.UnterminatedComment, tok.Pos, "comment is not closed before end of input")
		}
		p.add(&ast.Comment{Text: tok.Text, Pos: tok.Pos})

	case *token.Selector:
		p.flush()
		p.runaway(tok.Runaway, tok.Pos)
		p.pending = tok

	case *token.AtKeyword:
		p.flush()
		p.runaway(tok.Runaway, tok.Pos)
		p.pending = tok

	case *token.Declaration:
		p.flush()
		p.runaway(tok.Runaway, tok.Pos)
		p.consumeDeclaration(tok)

	case *token.Semicolon:
		p.flush()

	case *token.LBrace:
		p.consumeBlockStart(tok)

	case *token.RBrace:
		p.flush()
		p.consumeBlockEnd(tok)
	}
}

// consumeDeclaration adds a declaration to the innermost open block.
func (p *parser) consumeDeclaration(tok *token.Declaration) {
	if len(p.stack) == 0 {
		p.diagnose(ast.StrayDeclaration, tok.Pos, fmt.Sprintf("declaration %q outside of a rule block", tok.Property))
		return
	}
	if tok.Property == "" {
		p.diagnose(ast.EmptyProperty, tok.Pos, "declaration without property name")
		return
	}

	d := &ast.Declaration{
		Property:  tok.Property,
		Value:     tok.Value,
		Important: tok.Important,
		Pos:       tok.Pos,
		ValuePos:  tok.ValueSpan,
	}
	switch {
	case !tok.HasColon:
		d.Invalid, d.Raw = true, tok.Property
		p.diagnose(ast.InvalidDeclaration, tok.Pos, fmt.Sprintf("declaration %q has no colon", tok.Property))
	case tok.Value == "":
		d.Invalid, d.Raw = true, tok.Property+":"
		if tok.Important {
			d.Raw += " !important"
		}
		p.diagnose(ast.InvalidDeclaration, tok.Pos, fmt.Sprintf("declaration %q has no value", tok.Property))
	}
	p.add(d)
}

// consumeBlockStart opens a block for the pending selector or at-keyword.
func (p *parser) consumeBlockStart(tok *token.LBrace) {
	f := &frame{block: &ast.Block{Pos: tok.Pos}, lbrace: tok.Pos}

	switch pending := p.pending.(type) {
	case *token.Selector:
		var selectors []string
		var empty int
		for _, sel := range scanner.SplitTopLevel(pending.Text, ',') {
			if sel == "" {
				empty++
				continue
			}
			selectors = append(selectors, sel)
		}
		if len(selectors) == 0 {
			p.diagnose(ast.MissingSelector, pending.Pos, "rule has an empty selector list")
			break
		}
		// A list with an empty entry is invalid as a whole. It is kept as
		// a single selector so it is written back unchanged.
		if empty > 0 {
			text := strings.TrimSpace(pending.Text)
			p.diagnose(ast.InvalidSelector, pending.Pos, fmt.Sprintf("selector list %q has an empty entry", text))
			selectors = []string{text}
		}
		f.owner = &ast.Rule{
			Selectors: selectors,
			Block:     f.block,
			Pos:       token.Span{Start: pending.Pos.Start, End: tok.Pos.End},
		}
	case *token.AtKeyword:
		f.owner = &ast.AtRule{
			Name:    pending.Name,
			Prelude: pending.Prelude,
			Block:   f.block,
			Pos:     token.Span{Start: pending.Pos.Start, End: tok.Pos.End},
		}
	default:
		p.diagnose(ast.MissingSelector, tok.Pos, "block without selector")
	}
	p.pending = nil

	if f.owner != nil {
		p.add(f.owner)
	}
	p.stack = append(p.stack, f)
}

// consumeBlockEnd closes the innermost open block.
// A close brace with no open block is recorded and ignored.
func (p *parser) consumeBlockEnd(tok *token.RBrace) {
	if len(p.stack) == 0 {
		p.diagnose(ast.UnmatchedClose, tok.Pos, "closing brace without matching opening brace")
		return
	}
	f := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]

	f.block.Pos.End = tok.Pos.End
	switch owner := f.owner.(type) {
	case *ast.Rule:
		owner.Pos.End = tok.Pos.End
	case *ast.AtRule:
		owner.Pos.End = tok.Pos.End
	}
}

// finish flushes pending state at the end of input and marks the blocks
// that were never closed.
func (p *parser) finish() {
	p.flush()
	for i := len(p.stack) - 1; i >= 0; i-- {
		f := p.stack[i]
		f.block.Unclosed = true
		p.diagnose(ast.Unclosed, f.lbrace, "block is not closed before end of input")
	}
	p.stack = nil
}

// flush turns a pending at-keyword into a statement at-rule.
func (p *parser) flush() {
	if kw, ok := p.pending.(*token.AtKeyword); ok {
		p.add(&ast.AtRule{Name: kw.Name, Prelude: kw.Prelude, Pos: kw.Pos})
	}
	p.pending = nil
}

// add appends n to the innermost open block or to the stylesheet.
func (p *parser) add(n ast.Node) {
	if len(p.stack) == 0 {
		p.ss.Nodes = append(p.ss.Nodes, n)
		return
	}
	b := p.stack[len(p.stack)-1].block
	b.Nodes = append(b.Nodes, n)
}

// runaway records a construct that was closed by the end of input.
func (p *parser) runaway(r token.Runaway, span token.Span) {
	switch r {
	case token.RunawayString:
		p.diagnose(ast.UnterminatedString, span, "string is not closed before end of input")
	case token.RunawayComment:
		p.diagnose(ast.UnterminatedComment, span, "comment is not closed before end of input")
	case token.RunawayURL:
		p.diagnose(ast.UnterminatedURL, span, "url( is not closed before end of input")
	}
}

func (p *parser) diagnose(kind ast.DiagnosticKind, span token.Span, msg string) {
	p.ss.Diagnostics = append(p.ss.Diagnostics, ast.Diagnostic{Kind: kind, Message: msg, Pos: span})
}
