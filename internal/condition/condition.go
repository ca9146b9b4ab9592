// Package condition evaluates named boolean predicates that gate wizard
// navigation and reports a human-readable reason for the first failure.
package condition

// Predicate is a zero-argument check. It may read mutable state owned by the
// page but must not mutate it.
type Predicate func() bool

// Condition is a predicate with an optional name and failure message.
type Condition struct {
	Name      string
	Message   string
	predicate Predicate
	explain   func() string
}

// New wraps a predicate with a name and the message reported when it fails.
func New(name string, predicate Predicate, message string) Condition {
	return Condition{Name: name, Message: message, predicate: predicate}
}

// Func wraps a predicate with no name and no message.
func Func(predicate Predicate) Condition {
	return Condition{predicate: predicate}
}

// Evaluate invokes the predicate. On failure the condition's message, if any,
// is returned as the failure reason. A panicking predicate is not recovered.
func Evaluate(c Condition) (bool, string) {
	if c.predicate == nil || c.predicate() {
		return true, ""
	}
	if c.Message == "" && c.explain != nil {
		return false, c.explain()
	}
	return false, c.Message
}

// Result is the outcome of evaluating a group of conditions.
type Result struct {
	OK      bool
	Message string // First failure message, empty when OK
	Failed  []string
}

// EvaluateAll evaluates every condition in order. The result is the logical
// AND of all of them and the first failing condition supplies Result.Message.
// All predicates run even after a failure.
func EvaluateAll(conds []Condition) Result {
	res := Result{OK: true}
	for _, c := range conds {
		ok, msg := Evaluate(c)
		if ok {
			continue
		}
		if res.OK {
			res.Message = msg
		}
		res.OK = false
		name := c.Name
		if name == "" {
			name = "unnamed"
		}
		res.Failed = append(res.Failed, name)
	}
	return res
}

// And is true when all of conds are true. With an empty message it reports
// the message of the first failing member.
func And(name string, message string, conds ...Condition) Condition {
	members := append([]Condition(nil), conds...)
	return Condition{
		Name:    name,
		Message: message,
		predicate: func() bool {
			return EvaluateAll(members).OK
		},
		explain: func() string {
			return EvaluateAll(members).Message
		},
	}
}

// Or is true when at least one of conds is true, so an Or with no members
// is false. Evaluation stops at the first passing member.
func Or(name string, message string, conds ...Condition) Condition {
	members := append([]Condition(nil), conds...)
	return Condition{
		Name:    name,
		Message: message,
		predicate: func() bool {
			for _, m := range members {
				if ok, _ := Evaluate(m); ok {
					return true
				}
			}
			return false
		},
	}
}

// Not inverts c.
func Not(name string, c Condition, message string) Condition {
	return Condition{
		Name:    name,
		Message: message,
		predicate: func() bool {
			ok, _ := Evaluate(c)
			return !ok
		},
	}
}

// Set holds the conditions a page registers, split into two buckets:
// required conditions gate forward navigation, advisory conditions only
// produce display hints.
type Set struct {
	required []Condition
	advisory []Condition
}

// Require registers conditions that must be true to proceed.
func (s *Set) Require(conds ...Condition) {
	s.required = append(s.required, conds...)
}

// Advise registers non-blocking conditions.
func (s *Set) Advise(conds ...Condition) {
	s.advisory = append(s.advisory, conds...)
}

// Check evaluates the required bucket.
func (s *Set) Check() Result {
	return EvaluateAll(s.required)
}

// Advisories returns the messages of failing advisory conditions in
// registration order.
func (s *Set) Advisories() []string {
	var out []string
	for _, c := range s.advisory {
		if ok, msg := Evaluate(c); !ok && msg != "" {
			out = append(out, msg)
		}
	}
	return out
}

// Len returns the number of registered conditions across both buckets.
func (s *Set) Len() int {
	return len(s.required) + len(s.advisory)
}
