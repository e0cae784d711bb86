package javac

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dhamidi/codeonline/classfile"
	"github.com/dhamidi/codeonline/compiler"
	"github.com/dhamidi/codeonline/files"
	"github.com/dhamidi/codeonline/java/fragment"
)

var javaKeywords = []string{
	"abstract", "assert", "boolean", "break", "byte", "case", "catch", "char",
	"class", "const", "continue", "default", "do", "double", "else", "enum",
	"extends", "false", "final", "finally", "float", "for", "goto", "if",
	"implements", "import", "instanceof", "int", "interface", "long", "native",
	"new", "null", "package", "private", "protected", "public", "return",
	"short", "static", "strictfp", "super", "switch", "synchronized", "this",
	"throw", "throws", "transient", "true", "try", "var", "void", "volatile",
	"while",
}

var isKeyword = func() map[string]bool {
	m := make(map[string]bool, len(javaKeywords))
	for _, k := range javaKeywords {
		m[k] = true
	}
	return m
}()

var importRe = regexp.MustCompile(`(?m)^[ \t]*import[ \t]+(static[ \t]+)?([\w$.]+?)(\.\*)?[ \t]*;`)

// imports lists what a compilation unit imports. java.lang is always
// imported on demand.
type imports struct {
	classes  map[string]string // simple name to binary name
	packages []string
}

func parseImports(text string) imports {
	imp := imports{classes: make(map[string]string), packages: []string{"java.lang"}}
	for _, m := range importRe.FindAllStringSubmatch(text, -1) {
		if m[1] != "" {
			continue
		}
		if m[3] != "" {
			imp.packages = append(imp.packages, m[2])
			continue
		}
		imp.classes[m[2][strings.LastIndexByte(m[2], '.')+1:]] = m[2]
	}
	return imp
}

var classLocations = []files.Location{files.PlatformClassPath, files.ClassPath}

// Complete proposes completions for the identifier ending at offset. After
// a dot it lists the classes and subpackages of a package, or the
// accessible members of a class; otherwise keywords, identifiers of the
// source, imported classes and top level packages.
func (c *Compiler) Complete(ctx context.Context, fm *files.Manager, file *files.File, offset int) ([]compiler.CompletionItem, error) {
	text := []rune(file.CharContent())
	if offset < 0 || offset > len(text) {
		return nil, fmt.Errorf("completion offset %d outside source of length %d", offset, len(text))
	}
	start := offset
	for start > 0 && isWordChar(text[start-1]) {
		start--
	}
	prefix := string(text[start:offset])
	imp := parseImports(string(text))

	var items []compiler.CompletionItem
	var err error
	if start > 0 && text[start-1] == '.' {
		items, err = memberItems(fm, imp, qualifierBefore(text, start-1), prefix)
	} else {
		items, err = scopeItems(fm, imp, text, start, offset, prefix)
	}
	if err != nil {
		return nil, err
	}
	return sortItems(items), nil
}

// qualifierBefore returns the dotted name ending just before text[dot].
func qualifierBefore(text []rune, dot int) string {
	start := dot
	for start > 0 && (isWordChar(text[start-1]) || text[start-1] == '.') {
		start--
	}
	return strings.Trim(string(text[start:dot]), ".")
}

func memberItems(fm *files.Manager, imp imports, qualifier, prefix string) ([]compiler.CompletionItem, error) {
	if qualifier == "" {
		return nil, nil
	}
	if pkgItems, ok, err := packageItems(fm, qualifier, prefix); ok || err != nil {
		return pkgItems, err
	}
	cls, err := resolveClass(fm, imp, qualifier)
	if err != nil || cls == nil {
		return nil, err
	}

	var items []compiler.CompletionItem
	for _, f := range cls.Fields {
		if f.Accessible() && strings.HasPrefix(f.Name, prefix) {
			items = append(items, compiler.CompletionItem{
				Text:        f.Name,
				DisplayText: f.Name + " : " + classfile.TypeName(f.Descriptor),
				ClassName:   compiler.ClassField,
			})
		}
	}
	for _, m := range cls.Methods {
		if !m.Accessible() || !strings.HasPrefix(m.Name, prefix) {
			continue
		}
		params, result, ok := classfile.MethodSignature(m.Descriptor)
		if !ok {
			continue
		}
		items = append(items, compiler.CompletionItem{
			Text:        m.Name,
			DisplayText: m.Name + "(" + strings.Join(params, ", ") + ") : " + result,
			ClassName:   compiler.ClassMethod,
		})
	}
	return items, nil
}

// packageItems lists the classes and direct subpackages of pkg. ok is
// false if pkg is not a known package.
func packageItems(fm *files.Manager, pkg, prefix string) (items []compiler.CompletionItem, ok bool, err error) {
	for _, loc := range classLocations {
		for _, p := range fm.Packages(loc) {
			if p == pkg {
				ok = true
				classes, err := classItems(fm, loc, pkg, prefix)
				if err != nil {
					return nil, true, err
				}
				items = append(items, classes...)
				continue
			}
			rest, found := strings.CutPrefix(p, pkg+".")
			if !found {
				continue
			}
			ok = true
			name, _, _ := strings.Cut(rest, ".")
			if strings.HasPrefix(name, prefix) {
				items = append(items, packageItem(name, pkg+"."+name))
			}
		}
	}
	return items, ok, nil
}

func packageItem(name, full string) compiler.CompletionItem {
	return compiler.CompletionItem{Text: name, DisplayText: full, ClassName: compiler.ClassPackage}
}

// classItems lists the top level classes of pkg in loc.
func classItems(fm *files.Manager, loc files.Location, pkg, prefix string) ([]compiler.CompletionItem, error) {
	classes, err := fm.List(loc, pkg, []files.Kind{files.KindClass}, false)
	if err != nil {
		return nil, err
	}
	var items []compiler.CompletionItem
	for _, f := range classes {
		name := fm.InferBinaryName(f)
		simple := name[strings.LastIndexByte(name, '.')+1:]
		if strings.Contains(simple, "$") || !strings.HasPrefix(simple, prefix) {
			continue
		}
		items = append(items, classItem(simple, pkg))
	}
	return items, nil
}

func classItem(simple, pkg string) compiler.CompletionItem {
	display := simple
	if pkg != "" {
		display += " - " + pkg
	}
	return compiler.CompletionItem{Text: simple, DisplayText: display, ClassName: compiler.ClassClass}
}

// resolveClass finds the class a name refers to: a fully qualified name,
// a single type import, or a class in an on demand import. It returns nil
// if the name does not resolve.
func resolveClass(fm *files.Manager, imp imports, name string) (*classfile.Class, error) {
	candidates := []string{name}
	if !strings.Contains(name, ".") {
		if full, ok := imp.classes[name]; ok {
			candidates = append(candidates, full)
		}
		for _, pkg := range imp.packages {
			candidates = append(candidates, pkg+"."+name)
		}
	}
	for _, candidate := range candidates {
		for _, loc := range classLocations {
			f, err := fm.FileForInput(loc, candidate, files.KindClass)
			if err != nil {
				continue
			}
			cls, err := classfile.ParseBytes(f.Contents())
			if err != nil {
				return nil, fmt.Errorf("class %s: %w", candidate, err)
			}
			return cls, nil
		}
	}
	return nil, nil
}

func scopeItems(fm *files.Manager, imp imports, text []rune, start, offset int, prefix string) ([]compiler.CompletionItem, error) {
	var items []compiler.CompletionItem
	for _, k := range javaKeywords {
		if strings.HasPrefix(k, prefix) {
			items = append(items, compiler.CompletionItem{Text: k, DisplayText: k, ClassName: compiler.ClassKeyword})
		}
	}

	rest := make([]rune, 0, len(text)-(offset-start))
	rest = append(append(rest, text[:start]...), text[offset:]...)
	for _, w := range fragment.Identifiers(rest) {
		if isKeyword[w] || w == fragment.WrapperClass || !strings.HasPrefix(w, prefix) {
			continue
		}
		items = append(items, compiler.CompletionItem{Text: w, DisplayText: w, ClassName: compiler.ClassIdentifier})
	}

	for simple, full := range imp.classes {
		if strings.HasPrefix(simple, prefix) {
			items = append(items, classItem(simple, full[:max(strings.LastIndexByte(full, '.'), 0)]))
		}
	}
	for _, pkg := range imp.packages {
		for _, loc := range classLocations {
			classes, err := classItems(fm, loc, pkg, prefix)
			if err != nil {
				return nil, err
			}
			items = append(items, classes...)
		}
	}

	if prefix != "" {
		for _, loc := range classLocations {
			for _, p := range fm.Packages(loc) {
				top, _, _ := strings.Cut(p, ".")
				if strings.HasPrefix(top, prefix) {
					items = append(items, packageItem(top, top))
				}
			}
		}
	}
	return items, nil
}

// sortItems orders items by text and category and drops duplicates.
func sortItems(items []compiler.CompletionItem) []compiler.CompletionItem {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Text != items[j].Text {
			return items[i].Text < items[j].Text
		}
		return items[i].ClassName < items[j].ClassName
	})
	out := items[:0]
	for i, item := range items {
		if i > 0 && item == items[i-1] {
			continue
		}
		out = append(out, item)
	}
	return out
}
