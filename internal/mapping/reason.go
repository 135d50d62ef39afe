package mapping

import (
	"regexp"
	"strconv"
)

var (
	// %2$-10s
	positionalVerb = regexp.MustCompile(`%(\d+)\$([-+# 0]*)(\d*)((?:\.\d+)?)([a-zA-Z])`)
	// %%, %s, %-10[2]s
	formatVerb = regexp.MustCompile(`%%|%[-+# 0]*\d*(?:\.\d+)?(?:\[(\d+)\])?[a-zA-Z]`)
)

// reasonFormat is a reason pattern ready for fmt.Sprintf
type reasonFormat struct {
	pattern string
	args    int
}

// parseReasonPattern rewrites positional verbs such as %1$s into the fmt
// form %[1]s and counts how many of the code and description arguments the
// pattern consumes. Unused arguments are dropped so they don't render as
// %!(EXTRA ...).
func parseReasonPattern(pattern string) reasonFormat {
	pattern = positionalVerb.ReplaceAllString(pattern, "%${2}${3}${4}[${1}]${5}")

	used, next := 0, 1
	for _, m := range formatVerb.FindAllStringSubmatch(pattern, -1) {
		if m[0] == "%%" {
			continue
		}
		if m[1] != "" {
			next, _ = strconv.Atoi(m[1])
		}
		if next > used {
			used = next
		}
		next++
	}
	if used > 2 {
		used = 2
	}
	return reasonFormat{pattern: pattern, args: used}
}
