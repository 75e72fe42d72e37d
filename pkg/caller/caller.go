package caller

import (
	"runtime"
	"strings"
)

// Name returns the name of the function or method that calls Name, or of a
// function further up the stack when an offset is given. Package paths, receiver pointers and generic type arguments are
// stripped, so a call from (*worker[...]).mapPhase yields "worker.mapPhase".
//
//	func Bar() {
//		fmt.Println(caller.Name()) // Bar
//	}
//
// With an offset the name is taken further up the stack:
//
//	func Foo() {
//		Bar()
//	}
//
//	func Bar() {
//		fmt.Println(caller.Name(1)) // Foo
//	}
func Name(offsetOpt ...int) string {
	offset := 1
	if len(offsetOpt) > 0 {
		offset += offsetOpt[0]
	}

	pc, _, _, ok := runtime.Caller(offset)
	if !ok {
		return ""
	}

	details := runtime.FuncForPC(pc)
	if details == nil {
		return ""
	}

	return clean(details.Name())
}

func clean(fullName string) string {
	// drop the import path, dots in it would confuse the split below
	if i := strings.LastIndex(fullName, "/"); i >= 0 {
		fullName = fullName[i+1:]
	}
	fullName = stripTypeArgs(fullName)

	parts := strings.Split(fullName, ".")

	// anonymous functions end with "func1", "func2" and so on
	for len(parts) > 1 && isAnonymous(parts[len(parts)-1]) {
		parts = parts[:len(parts)-1]
	}

	switch len(parts) {
	case 0, 1:
		return strings.Join(parts, "")
	case 2:
		return parts[1]
	default:
		return strings.Trim(parts[1], "(*)") + "." + parts[2]
	}
}

// isAnonymous reports whether part is "funcN" or a bare number, which is how
// nested closures are named.
func isAnonymous(part string) bool {
	digits := strings.TrimPrefix(part, "func")
	return digits != "" && strings.Trim(digits, "0123456789") == ""
}

func stripTypeArgs(name string) string {
	var b strings.Builder
	depth := 0

	for _, r := range name {
		switch {
		case r == '[':
			depth++
		case r == ']':
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}

	return b.String()
}
