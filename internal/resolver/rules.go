package resolver

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/diogo/chatbot/internal/responses"
)

// mathPattern matches a binary expression anywhere in the input, e.g.
// "what is 2 + 3" or "4x5". Division is not supported.
var mathPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*([+\-*x])\s*(\d+(?:\.\d+)?)`)

// rule pairs an intent with its predicate over lowercased input
type rule struct {
	category responses.Category
	match    func(string) bool
}

func pattern(expr string) func(string) bool {
	return regexp.MustCompile(expr).MatchString
}

func contains(substr string) func(string) bool {
	return func(s string) bool {
		return strings.Contains(s, substr)
	}
}

// rules is evaluated in order; the first match wins.
var rules = []rule{
	{responses.Greeting, pattern(`\b(hi|hello|hey|greetings)\b`)},
	{responses.Farewell, pattern(`\b(bye|goodbye|see you|farewell)\b`)},
	{responses.Thanks, pattern(`\b(thanks|thank you|appreciate)\b`)},
	{responses.Help, pattern(`\b(help|assist|support|what.?can.?you.?do)\b`)},
	{responses.Name, pattern(`\b(your name|who are you)\b`)},
	{responses.Emotions, pattern(`\b(how are you|feeling|mood)\b`)},
	{responses.Jokes, pattern(`\b(tell.*joke|know.*joke|another joke|make me laugh)\b`)},
	{responses.Hobbies, pattern(`\b(hobby|hobbies|what do you like|what do you do)\b`)},
	{responses.Time, pattern(`\b(time|what.*time|current time)\b`)},
	{responses.Compliments, pattern(`\b(you.*smart|you.*cool|you.*good|you.*great|you.*awesome)\b`)},
	{responses.About, contains("about you")},
}

// expression is a parsed binary arithmetic expression
type expression struct {
	left, right float64
	op          byte
}

// parseExpression finds the first arithmetic expression in s
func parseExpression(s string) (expression, bool) {
	m := mathPattern.FindStringSubmatch(s)
	if m == nil {
		return expression{}, false
	}

	left, ok := parseNumber(m[1])
	if !ok {
		return expression{}, false
	}
	right, ok := parseNumber(m[3])
	if !ok {
		return expression{}, false
	}

	return expression{left: left, right: right, op: m[2][0]}, true
}

// parseNumber parses a matched operand. Out of range values keep the ±Inf
// that ParseFloat returns, so huge numbers still take the arithmetic path.
func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return v, true
}

// answer formats the result sentence for e
func (e expression) answer() string {
	switch e.op {
	case '+':
		return responses.Addition(e.left, e.right)
	case '-':
		return responses.Subtraction(e.left, e.right)
	default: // '*' or 'x'
		return responses.Multiplication(e.left, e.right)
	}
}

// matchIntent returns the first intent whose predicate accepts lowered
func matchIntent(lowered string) (responses.Category, bool) {
	for _, r := range rules {
		if r.match(lowered) {
			return r.category, true
		}
	}
	return "", false
}
