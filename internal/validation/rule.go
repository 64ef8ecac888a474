// Package validation checks registration and login input before anything is
// sent to the API. Each field has an explicit list of rules; every rule runs
// and all failures are reported, in rule order.
package validation

// Violation is a single failed rule, addressed by field path.
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Rule is one named predicate over a field value.
type Rule[T any] struct {
	Message string
	Test    func(T) bool
}

// Check runs every rule against value and returns one violation per failed
// rule. It never stops at the first failure.
func Check[T any](path string, value T, rules []Rule[T]) []Violation {
	var out []Violation
	for _, r := range rules {
		if !r.Test(value) {
			out = append(out, Violation{Path: path, Message: r.Message})
		}
	}
	return out
}

// Collect concatenates per-field violations into one ordered list.
func Collect(groups ...[]Violation) []Violation {
	var out []Violation
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// Result is the outcome of validating an input. The input is accepted when
// there are no violations, in which case Value holds the normalized input.
type Result[T any] struct {
	Value      T
	Violations []Violation
}

// Accepted reports whether the input passed every rule.
func (r Result[T]) Accepted() bool {
	return len(r.Violations) == 0
}

// Messages returns the violation messages for path, in order.
func (r Result[T]) Messages(path string) []string {
	var out []string
	for _, v := range r.Violations {
		if v.Path == path {
			out = append(out, v.Message)
		}
	}
	return out
}

func newResult[T any](value T, violations []Violation) Result[T] {
	if len(violations) > 0 {
		return Result[T]{Violations: violations}
	}
	return Result[T]{Value: value}
}
