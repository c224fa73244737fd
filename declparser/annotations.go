package declparser

import (
	"regexp"
	"strings"
)

// scalarTypes is the case-insensitive set of type names the annotation
// reader treats as noise: dependency extraction must not turn a scalar
// hint into a spurious class reference.
var scalarTypes = map[string]bool{
	"bool": true, "boolean": true, "int": true, "integer": true,
	"float": true, "double": true, "real": true, "string": true,
	"array": true, "resource": true, "object": true, "mixed": true,
	"void": true, "null": true, "number": true, "numeric": true,
	"callback": true, "unknown_type": true,
}

var (
	packageRe    = regexp.MustCompile(`@package\s+([^\s*]+)`)
	subpackageRe = regexp.MustCompile(`@subpackage\s+([^\s*]+)`)
	varRe        = regexp.MustCompile(`@var\s+([^\s*]+)`)
	returnRe     = regexp.MustCompile(`@return\s+([^\s*]+)`)
	throwsRe     = regexp.MustCompile(`@throws\s+([^\s*]+)`)
	inlineVarRe  = regexp.MustCompile(`(?m)^\s*/\*\s*@var\s+(\$[A-Za-z_][A-Za-z0-9_]*)\s+([^\s*]+)\s*\*/\s*$`)
)

// annotationReader extracts typed references from doc-comment text. It
// is precompiled state-free: every method operates on the comment text
// passed in, so one instance can be shared by every parser invocation.
type annotationReader struct{}

func newAnnotationReader() *annotationReader { return &annotationReader{} }

// packageName returns the @package/@subpackage name, or DEFAULT_PACKAGE
// when no @package annotation is present.
func (annotationReader) packageName(doc string, defaultPackage string) string {
	m := packageRe.FindStringSubmatch(doc)
	if m == nil {
		return defaultPackage
	}
	pkg := m[1]
	if sm := subpackageRe.FindStringSubmatch(doc); sm != nil {
		return pkg + "::" + sm[1]
	}
	return pkg
}

// firstNonScalar returns the first non-scalar type in a pipe-separated
// union, or "" and false when the union is empty or entirely scalar.
func firstNonScalar(union string) (string, bool) {
	union = strings.TrimSpace(stripArrayWrapper(union))
	for _, part := range strings.Split(union, "|") {
		part = strings.TrimSpace(stripArrayWrapper(part))
		if part == "" {
			continue
		}
		if !scalarTypes[strings.ToLower(part)] {
			return part, true
		}
	}
	return "", false
}

// stripArrayWrapper unwraps array(Key=>T) and array(T) to T, leaving
// anything else untouched.
func stripArrayWrapper(s string) string {
	if !strings.HasPrefix(strings.ToLower(s), "array(") || !strings.HasSuffix(s, ")") {
		return s
	}
	inner := s[len("array(") : len(s)-1]
	if idx := strings.Index(inner, "=>"); idx >= 0 {
		inner = inner[idx+2:]
	}
	return inner
}

// varType extracts a non-scalar @var type, if any.
func (annotationReader) varType(doc string) (string, bool) {
	m := varRe.FindStringSubmatch(doc)
	if m == nil {
		return "", false
	}
	return firstNonScalar(m[1])
}

// returnType extracts a non-scalar @return type, if any.
func (annotationReader) returnType(doc string) (string, bool) {
	m := returnRe.FindStringSubmatch(doc)
	if m == nil {
		return "", false
	}
	return firstNonScalar(m[1])
}

// throwsTypes returns every @throws X occurrence, no scalar filter.
func (annotationReader) throwsTypes(doc string) []string {
	matches := throwsRe.FindAllStringSubmatch(doc, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// inlineVar matches a standalone /* @var $name T */ comment and returns
// the type name.
func (annotationReader) inlineVar(comment string) (string, bool) {
	m := inlineVarRe.FindStringSubmatch(comment)
	if m == nil {
		return "", false
	}
	return m[2], true
}
