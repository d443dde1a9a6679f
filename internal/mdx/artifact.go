package mdx

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ArtifactFormat identifies a compiled body produced by Compiler.
const (
	ArtifactFormat  = "mdx-tree"
	ArtifactVersion = 1
)

// Op is a single instruction kind in a compiled body.
type Op string

const (
	OpText     Op = "text"
	OpElement  Op = "jsx"
	OpElements Op = "jsxs"
	OpFragment Op = "fragment"
)

// Instruction is one node of the compiled tree. Element instructions map onto
// the Runtime primitive of the same name; text instructions are literals.
type Instruction struct {
	Op       Op                `json:"op"`
	Tag      string            `json:"tag,omitempty"`
	Props    map[string]string `json:"props,omitempty"`
	Text     string            `json:"text,omitempty"`
	Children []Instruction     `json:"children,omitempty"`
}

// Artifact is the serialized form stored in a collection entry's body.
type Artifact struct {
	Format  string      `json:"format"`
	Version int         `json:"version"`
	Root    Instruction `json:"root"`
}

var (
	ErrBadFormat   = errors.New("mdx: unknown artifact format")
	ErrBadVersion  = errors.New("mdx: unsupported artifact version")
	ErrBadOp       = errors.New("mdx: unknown instruction")
	ErrBadTag      = errors.New("mdx: tag not allowed")
	ErrBadProp     = errors.New("mdx: prop not allowed")
	ErrBadChildren = errors.New("mdx: invalid children")
)

var (
	tagPattern  = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)
	propPattern = regexp.MustCompile(`^[a-zA-Z_:][a-zA-Z0-9_:.-]*$`)

	// Tags that could reach past the display tree into the hosting page.
	forbiddenTags = map[string]struct{}{
		"script": {}, "style": {}, "iframe": {}, "frame": {}, "frameset": {},
		"object": {}, "embed": {}, "link": {}, "meta": {}, "base": {}, "form": {},
	}
	urlProps = map[string]struct{}{"href": {}, "src": {}, "action": {}, "formaction": {}, "xlink:href": {}}
)

// encodeArtifact serializes root as a compiled body string.
func encodeArtifact(root Instruction) (string, error) {
	b, err := json.Marshal(Artifact{Format: ArtifactFormat, Version: ArtifactVersion, Root: root})
	if err != nil {
		return "", fmt.Errorf("mdx: encode artifact: %w", err)
	}
	return string(b), nil
}

// DecodeArtifact parses and validates a compiled body.
func DecodeArtifact(body string) (*Artifact, error) {
	var a Artifact
	dec := json.NewDecoder(strings.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("mdx: decode artifact: %w", err)
	}
	if a.Format != ArtifactFormat {
		return nil, fmt.Errorf("%w: %q", ErrBadFormat, a.Format)
	}
	if a.Version != ArtifactVersion {
		return nil, fmt.Errorf("%w: %d", ErrBadVersion, a.Version)
	}
	if err := validateInstruction(a.Root, "root"); err != nil {
		return nil, err
	}
	return &a, nil
}

func validateInstruction(in Instruction, at string) error {
	switch in.Op {
	case OpText:
		if in.Tag != "" || len(in.Props) > 0 || len(in.Children) > 0 {
			return fmt.Errorf("%w: text node at %s carries element fields", ErrBadChildren, at)
		}
		return nil
	case OpFragment:
		if in.Tag != "" || len(in.Props) > 0 {
			return fmt.Errorf("%w: fragment at %s carries element fields", ErrBadChildren, at)
		}
	case OpElement, OpElements:
		if err := validateTag(in.Tag); err != nil {
			return fmt.Errorf("%w at %s", err, at)
		}
		for k, v := range in.Props {
			if err := validateProp(k, v); err != nil {
				return fmt.Errorf("%w at %s", err, at)
			}
		}
		if in.Op == OpElement && len(in.Children) > 1 {
			return fmt.Errorf("%w: %s at %s has %d children", ErrBadChildren, in.Op, at, len(in.Children))
		}
	default:
		return fmt.Errorf("%w: %q at %s", ErrBadOp, in.Op, at)
	}

	for i, c := range in.Children {
		if err := validateInstruction(c, fmt.Sprintf("%s/%d", at, i)); err != nil {
			return err
		}
	}
	return nil
}

func validateTag(tag string) error {
	if !tagPattern.MatchString(tag) {
		return fmt.Errorf("%w: %q", ErrBadTag, tag)
	}
	if _, bad := forbiddenTags[tag]; bad {
		return fmt.Errorf("%w: %q", ErrBadTag, tag)
	}
	return nil
}

func validateProp(key, value string) error {
	if !propPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrBadProp, key)
	}
	lower := strings.ToLower(key)
	if strings.HasPrefix(lower, "on") || lower == "style" {
		return fmt.Errorf("%w: %q", ErrBadProp, key)
	}
	if _, isURL := urlProps[lower]; isURL {
		v := strings.ToLower(strings.TrimSpace(value))
		if strings.HasPrefix(v, "javascript:") || strings.HasPrefix(v, "vbscript:") || strings.HasPrefix(v, "data:text/html") {
			return fmt.Errorf("%w: %s=%q", ErrBadProp, key, value)
		}
	}
	return nil
}
