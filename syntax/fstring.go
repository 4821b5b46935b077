package syntax

import "fmt"

// This file is the f-string "delegated collaborator" of spec.md §6:
// `parse_fstring(text) -> StringGroup`, whose failure bubbles up as a
// grammar-level parse error (§7, error kind 3). Its split between
// lexer-detected literal text and AST-held replacement fields mirrors
// mcgru-funxy's own string-interpolation split: the lexer
// (readStringWithInterpolation) just detects `${...}` spans, and
// internal/ast.InterpolatedString holds the parsed pieces. We adapt that
// shape to Python's `{expr[!conv][:spec]}` replacement-field syntax.
//
// ParseFString is exposed as a package-level function variable rather than
// a hard-wired call so tests (and, in principle, callers embedding this
// grammar) can substitute an alternate inner parser without touching
// parse.go — the same "swap the collaborator" boundary spec.md §6
// describes, made concrete without introducing an import cycle with a
// separate package. It is assigned in init because parseFString reaches
// back to ParseFString through ParseExpr, which a variable initializer
// cannot do.
var ParseFString func(filename string, pos Position, text string) (StringGroup, error)

func init() { ParseFString = parseFString }

// parseFString splits text into literal runs and `{...}` replacement
// fields, recursively parsing each field's expression with ParseExpr, and
// assembles the result into a StringGroup as described in §3/§4.4/§9.
func parseFString(filename string, pos Position, text string) (StringGroup, error) {
	var parts []StringGroup
	var lit []byte

	flush := func() {
		if len(lit) > 0 {
			parts = append(parts, &Constant{Value: string(lit)})
			lit = nil
		}
	}

	i := 0
	for i < len(text) {
		c := text[i]
		switch c {
		case '{':
			if i+1 < len(text) && text[i+1] == '{' {
				lit = append(lit, '{')
				i += 2
				continue
			}
			flush()
			fv, n, err := parseReplacementField(filename, pos, text[i:])
			if err != nil {
				return nil, err
			}
			parts = append(parts, fv)
			i += n
		case '}':
			if i+1 < len(text) && text[i+1] == '}' {
				lit = append(lit, '}')
				i += 2
				continue
			}
			return nil, &Error{Pos: pos, Msg: "single '}' is not allowed in f-string"}
		default:
			lit = append(lit, c)
			i++
		}
	}
	flush()

	switch len(parts) {
	case 0:
		return &Constant{Value: ""}, nil
	case 1:
		return parts[0], nil
	default:
		return &Joined{Children: parts}, nil
	}
}

// parseReplacementField parses one `{expr[!conv][:spec]}` field starting
// at text[0] == '{' and returns the node plus the number of bytes consumed.
func parseReplacementField(filename string, pos Position, text string) (StringGroup, int, error) {
	depth := 0
	end := -1
	convIdx, specIdx := -1, -1
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '{', '(', '[':
			depth++
		case '}':
			if depth == 1 {
				end = i
			}
			depth--
		case ')', ']':
			depth--
		case '!':
			if depth == 1 && convIdx == -1 && specIdx == -1 && i+1 < len(text) && text[i+1] != '=' {
				convIdx = i
			}
		case ':':
			if depth == 1 && specIdx == -1 {
				specIdx = i
			}
		}
		if end != -1 {
			break
		}
	}
	if end == -1 {
		return nil, 0, &Error{Pos: pos, Msg: "unterminated replacement field in f-string"}
	}

	exprEnd := end
	var conv rune
	var spec string
	if specIdx != -1 {
		spec = text[specIdx+1 : end]
		exprEnd = specIdx
	}
	if convIdx != -1 && convIdx < exprEnd {
		conv = rune(text[convIdx+1])
		exprEnd = convIdx
	}
	exprText := text[1:exprEnd]

	expr, err := ParseExpr(filename, exprText)
	if err != nil {
		return nil, 0, fmt.Errorf("f-string expression: %w", err)
	}

	return &FormattedValue{Value: expr, Conversion: conv, FormatSpec: spec}, end + 1, nil
}
