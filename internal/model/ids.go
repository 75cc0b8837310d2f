package model

import (
	"fmt"
	"strings"
)

// ModuleID returns the canonical id for a package, using the sentinel
// for files with no package declaration.
func ModuleID(packageName string) string {
	if packageName == "" {
		packageName = DefaultPackage
	}
	return fmt.Sprintf("module:%s", packageName)
}

// ClassID returns the canonical id of a class given its FQN.
func ClassID(fqn string) string {
	return fmt.Sprintf("class:%s", fqn)
}

// InterfaceID returns the canonical id of an interface given its FQN.
func InterfaceID(fqn string) string {
	return fmt.Sprintf("interface:%s", fqn)
}

// MethodID returns the canonical id of a method.
func MethodID(ownerFQN, simpleName, signature string) string {
	return fmt.Sprintf("method:%s#%s(%s)", ownerFQN, simpleName, signature)
}

// ConstructorID returns the canonical id of a constructor.
func ConstructorID(ownerFQN, signature string) string {
	return fmt.Sprintf("constructor:%s::<init>(%s)", ownerFQN, signature)
}

// StaticInitID returns the synthetic constructor id standing in for a
// class's static field initializers (§11.6 of SPEC_FULL.md).
func StaticInitID(ownerFQN string) string {
	return fmt.Sprintf("constructor:%s::<clinit>()", ownerFQN)
}

// InstanceInitID returns the synthetic constructor id standing in for a
// class's instance field initializers when no explicit constructor
// contains the field initializer.
func InstanceInitID(ownerFQN string) string {
	return fmt.Sprintf("constructor:%s::<init>()", ownerFQN)
}

// FieldID returns the canonical id of a field.
func FieldID(ownerFQN, simpleName string) string {
	return fmt.Sprintf("field:%s#%s", ownerFQN, simpleName)
}

// UnresolvedMethodID returns the synthetic dst id for an unresolved call,
// per §4.E step 4: method:<best-guess-owner>#<name>(?)
func UnresolvedMethodID(bestGuessOwner, name string) string {
	if bestGuessOwner == "" {
		bestGuessOwner = "?"
	}
	return fmt.Sprintf("method:%s#%s(?)", bestGuessOwner, name)
}

// Signature erases generics, collapses whitespace, normalizes array and
// varargs types to a "[]"-suffixed element type, and joins the result
// with commas. An empty parameter list yields "()" content, i.e. "".
func Signature(paramTypes []string) string {
	erased := make([]string, len(paramTypes))
	for i, t := range paramTypes {
		erased[i] = EraseType(t)
	}
	return strings.Join(erased, ",")
}

// EraseType strips generic type arguments, collapses internal
// whitespace, and normalizes "T..." varargs to "T[]".
func EraseType(t string) string {
	t = strings.TrimSpace(t)
	t = strings.Join(strings.Fields(t), " ")

	if strings.HasSuffix(t, "...") {
		t = strings.TrimSpace(strings.TrimSuffix(t, "...")) + "[]"
	}

	// Strip one or more generic argument lists: Foo<Bar<Baz>> -> Foo
	for {
		start := strings.IndexByte(t, '<')
		if start < 0 {
			break
		}
		depth := 0
		end := -1
		for i := start; i < len(t); i++ {
			switch t[i] {
			case '<':
				depth++
			case '>':
				depth--
				if depth == 0 {
					end = i
				}
			}
			if end >= 0 {
				break
			}
		}
		if end < 0 {
			break
		}
		t = t[:start] + t[end+1:]
	}
	t = strings.TrimSpace(t)

	// Normalize "T []" / "T[ ]" spacing produced by the generic strip.
	t = strings.ReplaceAll(t, " [", "[")
	t = strings.ReplaceAll(t, "[ ]", "[]")
	return t
}
