package quiz

import (
	"fmt"
	"strings"

	"github.com/abhisek/prava/internal/api"
)

// Validator checks a quiz item fetched from the API before it is shown.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier for error messages and logging.
	Name() string

	// Validate returns nil if the item passes.
	Validate(q api.QuizItem) *ValidationError
}

// ValidationError describes why an item was rejected.
type ValidationError struct {
	Validator string
	Item      string // item key
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: item %s: %s", e.Validator, e.Item, e.Message)
}

// StructuralValidator checks that the item carries the payload its qtype
// needs.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q api.QuizItem) *ValidationError {
	fail := func(msg string) *ValidationError {
		return &ValidationError{Validator: v.Name(), Item: q.Key(), Message: msg}
	}

	if strings.TrimSpace(q.Prompt) == "" {
		return fail("prompt is empty")
	}
	if !q.QType.Valid() {
		return fail(fmt.Sprintf("unknown qtype %q", q.QType))
	}
	switch q.QType {
	case api.QTypeMCQ:
		if len(q.Options) < 2 {
			return fail("mcq needs at least 2 options")
		}
	case api.QTypeBuild:
		if len(q.Tokens) == 0 {
			return fail("build needs at least 1 token")
		}
	case api.QTypeFill:
		if q.Blanks < 0 {
			return fail("blanks must not be negative")
		}
	}
	return nil
}

// DefaultValidators returns the validators applied by Prepare.
func DefaultValidators() []Validator {
	return []Validator{&StructuralValidator{}}
}

// Prepare normalizes items (fill blanks default to 1) and splits off the
// ones no input widget could answer. Order is preserved.
func Prepare(items []api.QuizItem, validators ...Validator) ([]api.QuizItem, []*ValidationError) {
	if len(validators) == 0 {
		validators = DefaultValidators()
	}

	var (
		ok       []api.QuizItem
		rejected []*ValidationError
	)
next:
	for _, q := range items {
		for _, v := range validators {
			if verr := v.Validate(q); verr != nil {
				rejected = append(rejected, verr)
				continue next
			}
		}
		if q.QType == api.QTypeFill && q.Blanks == 0 {
			q.Blanks = 1
		}
		ok = append(ok, q)
	}
	return ok, rejected
}
