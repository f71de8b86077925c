package parser

import (
	"strconv"
	"strings"

	"github.com/dorktype/lice/pkg/ast"
	"github.com/dorktype/lice/pkg/types"
)

// parseNumberLiteral classifies and decodes a NUMBER token's raw text,
// deferred by the lexer to exactly this point. Grounded on
// _examples/original_source/lexer.c's numeric scanning, which accepts the
// same radix prefixes and suffix letters.
func parseNumberLiteral(text string, p *Parser) (ast.Node, error) {
	if strings.ContainsAny(text, ".") || hasFloatExponent(text) {
		return parseFloatLiteral(text, p)
	}

	body, isFloatSuffix := text, false
	isHex := strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X")
	var unsigned bool
	longCount := 0
	for len(body) > 0 {
		c := body[len(body)-1]
		switch c {
		case 'u', 'U':
			unsigned = true
		case 'l', 'L':
			longCount++
		case 'f', 'F':
			if isHex {
				goto doneSuffix // a hex digit, not a float suffix
			}
			isFloatSuffix = true
		default:
			goto doneSuffix
		}
		body = body[:len(body)-1]
	}
doneSuffix:
	if isFloatSuffix {
		return parseFloatLiteral(text, p)
	}

	base := 10
	switch {
	case strings.HasPrefix(body, "0x") || strings.HasPrefix(body, "0X"):
		base = 16
		body = body[2:]
	case len(body) > 1 && body[0] == '0':
		base = 8
		body = body[1:]
	}

	value, err := strconv.ParseUint(body, base, 64)
	if err != nil {
		return nil, p.errf("invalid integer literal '%s'", text)
	}

	ty := integerLiteralType(value, unsigned, longCount)
	return ast.NewLiteral(ty, int64(value)), nil
}

func hasFloatExponent(text string) bool {
	lower := strings.ToLower(text)
	if strings.HasPrefix(lower, "0x") {
		return strings.Contains(lower, "p")
	}
	return strings.Contains(lower, "e")
}

// integerLiteralType applies C's "smallest type that fits, widening through
// the unsigned/long ladder" rule for an integer-constant's suffix-less type.
func integerLiteralType(value uint64, unsigned bool, longCount int) *types.Type {
	switch {
	case longCount >= 2:
		if unsigned || value > 1<<63-1 {
			return types.ULLong
		}
		return types.SLLong
	case longCount == 1:
		if unsigned || value > 1<<63-1 {
			return types.ULong
		}
		return types.SLong
	default:
		if unsigned {
			if value > 1<<32-1 {
				return types.ULong
			}
			return types.UInt
		}
		if value > 1<<63-1 {
			return types.ULong
		}
		if value > 1<<31-1 {
			return types.SLong
		}
		return types.SInt
	}
}

func parseFloatLiteral(text string, p *Parser) (ast.Node, error) {
	body := text
	isFloat := false
	if len(body) > 0 {
		switch body[len(body)-1] {
		case 'f', 'F':
			isFloat = true
			body = body[:len(body)-1]
		case 'l', 'L':
			body = body[:len(body)-1]
		}
	}
	v, err := strconv.ParseFloat(body, 64)
	if err != nil {
		return nil, p.errf("invalid floating constant '%s'", text)
	}
	ty := types.Double
	if isFloat {
		ty = types.Float
	}
	label := p.tables.NewLabel()
	lit := ast.NewFloatLiteral(ty, v, label)
	p.tables.Floats = append(p.tables.Floats, lit)
	return lit, nil
}
