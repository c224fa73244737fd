package declparser

import "github.com/dhamidi/declscan/model"

// parserState is the reset-on-boundary mutable state threaded through
// parsing: the pending doc comment, the accumulated modifier bitset, the
// current namespace, the current @package, the file-global package, and
// whether the current qualified name came from a namespace\ prefix.
type parserState struct {
	docComment              string
	modifiers               model.Modifier
	namespaceName           string
	hasNamespace            bool
	packageName             string
	globalPackageName       string
	namespacePrefixReplaced bool
}

func newParserState() *parserState {
	return &parserState{packageName: model.DefaultPackage, globalPackageName: model.DefaultPackage}
}

// reset clears the pending doc comment, resets @package to the default,
// and sets the modifier accumulator, per §4.5.
func (s *parserState) reset(modifiers model.Modifier) {
	s.docComment = ""
	s.packageName = model.DefaultPackage
	s.modifiers = modifiers
	s.namespacePrefixReplaced = false
}

// takeDocComment returns and clears the pending doc comment.
func (s *parserState) takeDocComment() string {
	doc := s.docComment
	s.docComment = ""
	return doc
}

// effectivePackage selects the package a new top-level declaration is
// attached to: namespace > file @package > file-global package.
func (s *parserState) effectivePackage() string {
	if s.hasNamespace {
		return s.namespaceName
	}
	if s.packageName != "" && s.packageName != model.DefaultPackage {
		return s.packageName
	}
	return s.globalPackageName
}
