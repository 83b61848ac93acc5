// Package services implements the query pipeline: SQL generation, execution,
// answer synthesis, and session orchestration.
package services

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/quipu-ai/quipu-engine/pkg/apperrors"
	"github.com/quipu-ai/quipu-engine/pkg/models"
)

// dataMarker introduces the structured block appended by the synthesis
// prompt: DATA:[("category1",number1),("category2",number2),...]
const dataMarker = "DATA:"

// minVisualizationPairs is the chart threshold; a single category has
// nothing to compare against.
const minVisualizationPairs = 2

// ExtractStructuredData mines the structured block out of a model answer.
// On a well-formed block it returns the answer with the block removed plus
// the parsed points; points are withheld below the visualization threshold.
// Anything malformed leaves the answer untouched and returns no points
// alongside a parse error; callers log the error but never surface it.
// The payload is parsed with a strict tokenizer, never evaluated.
func ExtractStructuredData(response string) (string, []models.DataPoint, error) {
	idx := strings.Index(response, dataMarker)
	if idx < 0 {
		return response, nil, nil
	}

	payload := strings.TrimSpace(response[idx+len(dataMarker):])
	points, err := parsePairs(payload)
	if err != nil {
		return response, nil, apperrors.Parse(err)
	}

	clean := response[:idx]
	if len(points) < minVisualizationPairs {
		return clean, nil, nil
	}
	return clean, points, nil
}

// parsePairs parses the literal list-of-pairs grammar:
//
//	[("label",number),("label",number),...]
//
// Labels may use single or double quotes. The whole payload must be one
// list; trailing text is rejected.
func parsePairs(payload string) ([]models.DataPoint, error) {
	p := &pairParser{input: payload}

	p.skipSpace()
	if !p.consume('[') {
		return nil, fmt.Errorf("expected '[' at position %d", p.pos)
	}

	var points []models.DataPoint
	p.skipSpace()
	if !p.consume(']') {
		for {
			point, err := p.parsePair()
			if err != nil {
				return nil, err
			}
			points = append(points, point)

			p.skipSpace()
			if p.consume(',') {
				p.skipSpace()
				// A trailing comma before the closing bracket is tolerated.
				if p.consume(']') {
					break
				}
				continue
			}
			if p.consume(']') {
				break
			}
			return nil, fmt.Errorf("expected ',' or ']' at position %d", p.pos)
		}
	}

	p.skipSpace()
	if p.pos != len(p.input) {
		return nil, fmt.Errorf("unexpected trailing text at position %d", p.pos)
	}

	return points, nil
}

type pairParser struct {
	input string
	pos   int
}

func (p *pairParser) skipSpace() {
	for p.pos < len(p.input) && unicode.IsSpace(rune(p.input[p.pos])) {
		p.pos++
	}
}

func (p *pairParser) consume(c byte) bool {
	if p.pos < len(p.input) && p.input[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *pairParser) parsePair() (models.DataPoint, error) {
	p.skipSpace()
	if !p.consume('(') {
		return models.DataPoint{}, fmt.Errorf("expected '(' at position %d", p.pos)
	}

	p.skipSpace()
	label, err := p.parseQuotedString()
	if err != nil {
		return models.DataPoint{}, err
	}

	p.skipSpace()
	if !p.consume(',') {
		return models.DataPoint{}, fmt.Errorf("expected ',' at position %d", p.pos)
	}

	p.skipSpace()
	value, err := p.parseNumber()
	if err != nil {
		return models.DataPoint{}, err
	}

	p.skipSpace()
	if !p.consume(')') {
		return models.DataPoint{}, fmt.Errorf("expected ')' at position %d", p.pos)
	}

	return models.DataPoint{Category: label, Value: value}, nil
}

func (p *pairParser) parseQuotedString() (string, error) {
	if p.pos >= len(p.input) {
		return "", fmt.Errorf("unexpected end of payload at position %d", p.pos)
	}

	quote := p.input[p.pos]
	if quote != '"' && quote != '\'' {
		return "", fmt.Errorf("expected quoted label at position %d", p.pos)
	}
	p.pos++

	start := p.pos
	for p.pos < len(p.input) && p.input[p.pos] != quote {
		p.pos++
	}
	if p.pos >= len(p.input) {
		return "", fmt.Errorf("unterminated label starting at position %d", start)
	}

	label := p.input[start:p.pos]
	p.pos++
	return label, nil
}

func (p *pairParser) parseNumber() (float64, error) {
	start := p.pos
	var digits strings.Builder
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+' || c == 'e' || c == 'E' {
			digits.WriteByte(c)
			p.pos++
			continue
		}
		// A thousands separator: a comma flanked by digits belongs to the
		// number and is dropped, not treated as the pair delimiter.
		if c == ',' && p.pos > start && isDigit(p.input[p.pos-1]) &&
			p.pos+1 < len(p.input) && isDigit(p.input[p.pos+1]) {
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		return 0, fmt.Errorf("expected number at position %d", start)
	}

	value, err := strconv.ParseFloat(digits.String(), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number at position %d: %w", start, err)
	}
	return value, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
