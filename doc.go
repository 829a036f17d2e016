/*
Package cssvet implements a CSS transformation and validation engine. It
parses a stylesheet once into a structural model and then runs size-reducing
transform passes and correctness checks over that same model.

This package can be used for building tools to minify, repair and lint CSS
text without resorting to regular expressions.


Basics

Processing occurs in three steps. First the scanner breaks the text up into
structural tokens: comments, selectors, declarations, at-rule keywords,
braces, semicolons and whitespace. The scanner tracks when it is inside a
string, a comment or a url() so that braces and semicolons in those places
never count as structure. Every token records its byte span and the spans
cover the input without gaps, so unmodified text can be reconstructed exactly.

The second step feeds the tokens to the parser which builds a tree of rules,
at-rules, declarations and comments using a stack of open blocks. The parser
never fails. A closing brace without an opening brace, a block left open at
the end of input or a declaration outside of any rule is recorded as a
diagnostic with its exact location. Nothing is silently deleted.

The third step either transforms the model and prints it back to text, or
validates it and produces a report, or both.


Transform Passes

A pass takes a stylesheet and returns a new one. The default pipeline strips
comments, except the ones selected by a retention predicate such as the
leading file header, and then removes rules left without declarations.
Optional passes remove duplicate declarations, shorten colors and zero
lengths, and close blocks left open at the end of input. Passes never consult
validation results and applying the default pipeline twice gives the same
model as applying it once.


Validation

The validator runs independent checks over the model: brace balance, syntax,
custom property definitions against var() references, fallback coverage of
var() references, selector depth, expensive property counts and feature
usage. Each check produces findings with a severity, a category, a message
and an optional source span. Findings are collected in an immutable report.


Printing

The Printer renders a model as CSS text. Output is deterministic for a given
model and Style. A Style controls indentation, brace placement, compaction and
an optional header comment. Whitespace is normalized only while printing.

*/
package cssvet
