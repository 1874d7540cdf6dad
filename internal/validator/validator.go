package validator

import (
	"fmt"

	"github.com/goliatone/go-crossref/internal/logging"
	"github.com/goliatone/go-crossref/pkg/interfaces"
)

// maxSuggestions bounds the similarity search output.
const maxSuggestions = 3

// Override is a partial verdict produced by a caller-supplied rule. Nil
// fields leave the base verdict untouched; later rules win on conflict.
type Override struct {
	Valid       *bool
	Exists      *bool
	Error       *string
	Severity    *interfaces.Severity
	Suggestions []string
	Metadata    map[string]any
}

// Rule lets the host layer plug custom policy on top of the base registry
// verdict without changing the engine. Each rule receives the reference with
// the verdict computed so far.
type Rule func(ref interfaces.Reference) Override

// Validator checks reference targets against per-kind registries.
type Validator struct {
	registries interfaces.RegistrySet
	rules      []Rule
	pool       []string
	logger     interfaces.Logger
}

// Option customises validator behaviour.
type Option func(*Validator)

// WithRules appends caller-supplied validation rules, applied in order after
// the base registry verdict.
func WithRules(rules ...Rule) Option {
	return func(v *Validator) {
		v.rules = append(v.rules, rules...)
	}
}

// WithComparisonSet replaces the registry's known-target pool as the
// suggestion candidate source, e.g. for cross-document analysis.
func WithComparisonSet(targets []string) Option {
	return func(v *Validator) {
		v.pool = targets
	}
}

// WithLogger attaches a logger used for structured diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// New constructs a validator over the supplied registry set. A nil set is
// accepted; every known kind then validates permissively.
func New(registries interfaces.RegistrySet, opts ...Option) *Validator {
	v := &Validator{
		registries: registries,
		logger:     logging.NoOp(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate returns a copy of the reference annotated with the validation
// verdict. It never fails: unknown kinds yield an invalid verdict, a missing
// registry degrades to a permissive pass.
func (v *Validator) Validate(ref interfaces.Reference) interfaces.Reference {
	out := v.base(ref)
	for _, rule := range v.rules {
		if rule == nil {
			continue
		}
		out = applyOverride(out, rule(out))
	}
	return out
}

// ValidateAll validates every reference and assembles a fresh report.
func (v *Validator) ValidateAll(refs []interfaces.Reference) ([]interfaces.Reference, *interfaces.ValidationReport) {
	validated := make([]interfaces.Reference, len(refs))
	for i, ref := range refs {
		validated[i] = v.Validate(ref)
	}
	report := BuildReport(validated)
	return validated, report
}

func (v *Validator) base(ref interfaces.Reference) interfaces.Reference {
	out := ref

	if !ref.Kind.Known() {
		return markInvalid(out, "unknown cross-reference kind", nil)
	}

	var reg interfaces.Registry
	if v.registries != nil {
		reg = v.registries[ref.Kind]
	}
	if reg == nil {
		// No catalog to consult for this kind: pass rather than flagging
		// every reference, and leave Exists unset.
		valid := true
		out.Valid = &valid
		return out
	}

	if reg.Exists(ref.Target) {
		valid, exists := true, true
		out.Valid = &valid
		out.Exists = &exists
		if describer, ok := reg.(interfaces.RegistryDescriber); ok {
			if meta, found := describer.Describe(ref.Target); found {
				out.Metadata = meta
			}
		}
		return out
	}

	logging.WithReferenceContext(v.logger, "", ref.Kind, ref.Target).
		Debug("validator.target_missing")

	pool := v.pool
	if pool == nil {
		pool = reg.Targets()
	}
	message := fmt.Sprintf("%s %q not found", kindLabel(ref.Kind), ref.Target)
	return markInvalid(out, message, Suggest(ref.Target, pool, maxSuggestions))
}

// BuildReport aggregates validated references into a fresh report.
func BuildReport(refs []interfaces.Reference) *interfaces.ValidationReport {
	report := &interfaces.ValidationReport{
		TotalCount: len(refs),
		Entries:    refs,
	}
	for _, ref := range refs {
		if ref.IsValid() {
			report.ValidCount++
		} else {
			report.InvalidCount++
		}
	}
	report.HasErrors = report.InvalidCount > 0
	return report
}

func markInvalid(ref interfaces.Reference, message string, suggestions []string) interfaces.Reference {
	valid, exists := false, false
	ref.Valid = &valid
	ref.Exists = &exists
	ref.Error = message
	ref.Severity = interfaces.SeverityError
	ref.Suggestions = suggestions
	return ref
}

func applyOverride(ref interfaces.Reference, override Override) interfaces.Reference {
	if override.Valid != nil {
		ref.Valid = override.Valid
	}
	if override.Exists != nil {
		ref.Exists = override.Exists
	}
	if override.Error != nil {
		ref.Error = *override.Error
	}
	if override.Severity != nil {
		ref.Severity = *override.Severity
	}
	if override.Suggestions != nil {
		ref.Suggestions = override.Suggestions
	}
	if override.Metadata != nil {
		ref.Metadata = override.Metadata
	}
	return ref
}

func kindLabel(kind interfaces.Kind) string {
	switch kind {
	case interfaces.KindResource:
		return "resource"
	case interfaces.KindModule:
		return "module"
	case interfaces.KindDevDoc:
		return "dev doc"
	case interfaces.KindUserDoc:
		return "user doc"
	}
	return "reference"
}
