package classfile

import "strings"

var baseTypes = map[byte]string{
	'B': "byte",
	'C': "char",
	'D': "double",
	'F': "float",
	'I': "int",
	'J': "long",
	'S': "short",
	'Z': "boolean",
	'V': "void",
}

// TypeName renders a field descriptor as Java source, using simple names
// for classes: "[Ljava/lang/String;" becomes "String[]".
func TypeName(desc string) string {
	name, n := parseType(desc, 0)
	if n != len(desc) {
		return desc
	}
	return name
}

// MethodSignature renders the parameter and result types of a method
// descriptor. ok is false if desc is malformed.
func MethodSignature(desc string) (params []string, result string, ok bool) {
	if len(desc) == 0 || desc[0] != '(' {
		return nil, "", false
	}
	i := 1
	for i < len(desc) && desc[i] != ')' {
		name, n := parseType(desc, i)
		if n == 0 {
			return nil, "", false
		}
		params = append(params, name)
		i += n
	}
	if i >= len(desc) {
		return nil, "", false
	}
	result, n := parseType(desc, i+1)
	if n == 0 || i+1+n != len(desc) {
		return nil, "", false
	}
	return params, result, true
}

// parseType returns the rendered type starting at desc[start] and the
// number of bytes consumed, or 0 if there is no valid type there.
func parseType(desc string, start int) (string, int) {
	i := start
	dims := 0
	for i < len(desc) && desc[i] == '[' {
		dims++
		i++
	}
	if i >= len(desc) {
		return "", 0
	}
	var name string
	if desc[i] == 'L' {
		end := strings.IndexByte(desc[i:], ';')
		if end < 0 {
			return "", 0
		}
		internal := desc[i+1 : i+end]
		name = internal[strings.LastIndexByte(internal, '/')+1:]
		name = strings.ReplaceAll(name, "$", ".")
		i += end + 1
	} else {
		base, ok := baseTypes[desc[i]]
		if !ok || (base == "void" && dims > 0) {
			return "", 0
		}
		name = base
		i++
	}
	return name + strings.Repeat("[]", dims), i - start
}
