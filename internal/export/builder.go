package export

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// CommandBuilder accumulates ExtendScript statements and serializes them
// into a single editing-tool command. The builder is single-owner and
// mutable; every append returns the receiver so calls chain. The script
// include directive is held in a dedicated terminal field so it always
// lands after every other statement, no matter when it was appended.
type CommandBuilder struct {
	base            string
	stmts           []statement
	scriptToInclude string
	err             error
}

func NewCommandBuilder(base string) *CommandBuilder {
	return &CommandBuilder{base: base}
}

type stmtKind int

const (
	stmtOpenDocument stmtKind = iota
	stmtStringConst
	stmtConstArray
	stmtBoolValue
	stmtDict
	stmtEvalFile
)

type dictEntry struct {
	key    string
	scalar float64
	list   []float64
}

type statement struct {
	kind       stmtKind
	name       string
	value      string
	values     []string
	flag       bool
	entries    []dictEntry
	listValued bool
}

// OpenDocument appends an instruction to open a template project file.
func (b *CommandBuilder) OpenDocument(path string) *CommandBuilder {
	b.stmts = append(b.stmts, statement{kind: stmtOpenDocument, value: path})
	return b
}

// StringConst appends a named string-constant declaration.
func (b *CommandBuilder) StringConst(name, value string) *CommandBuilder {
	b.stmts = append(b.stmts, statement{kind: stmtStringConst, name: name, value: value})
	return b
}

// ConstArray appends a named array-constant declaration. An empty slice
// serializes to an explicit empty-array literal.
func (b *CommandBuilder) ConstArray(name string, values []string) *CommandBuilder {
	b.stmts = append(b.stmts, statement{kind: stmtConstArray, name: name, values: values})
	return b
}

// BoolValue appends a named boolean-variable declaration.
func (b *CommandBuilder) BoolValue(name string, value bool) *CommandBuilder {
	b.stmts = append(b.stmts, statement{kind: stmtBoolValue, name: name, flag: value})
	return b
}

// Dict appends an object-literal declaration with scalar values. Keys
// are serialized in sorted order so the built command is deterministic.
func (b *CommandBuilder) Dict(name string, source map[string]float64) *CommandBuilder {
	entries := make([]dictEntry, 0, len(source))
	for key, value := range source {
		entries = append(entries, dictEntry{key: key, scalar: value})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })
	b.stmts = append(b.stmts, statement{kind: stmtDict, name: name, entries: entries})
	return b
}

// ListDict appends an object-literal declaration whose values serialize
// as array literals, in sorted key order.
func (b *CommandBuilder) ListDict(name string, source map[string][]float64) *CommandBuilder {
	entries := make([]dictEntry, 0, len(source))
	for key, values := range source {
		entries = append(entries, dictEntry{key: key, list: values})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })
	b.stmts = append(b.stmts, statement{kind: stmtDict, name: name, entries: entries, listValued: true})
	return b
}

// EvalFile appends an instruction to execute a detached script file.
// Use IncludeScript for the assembly script that needs the declared
// variables in scope.
func (b *CommandBuilder) EvalFile(path string) *CommandBuilder {
	b.stmts = append(b.stmts, statement{kind: stmtEvalFile, value: path})
	return b
}

// IncludeScript records the deferred include directive. The directive is
// emitted strictly after all other statements; recording it twice is a
// contract violation surfaced by Build.
func (b *CommandBuilder) IncludeScript(path string) *CommandBuilder {
	if b.scriptToInclude != "" {
		b.err = errors.New("command already contains a script include")
		return b
	}
	b.scriptToInclude = path
	return b
}

// Build serializes the accumulated statements into the final command
// text, appending the include directive last.
func (b *CommandBuilder) Build() (string, error) {
	if b.err != nil {
		return "", b.err
	}

	var sb strings.Builder
	sb.WriteString(b.base)
	sb.WriteString(" \"")
	for i, stmt := range b.stmts {
		sb.WriteString(serialize(stmt, i == 0))
	}
	if b.scriptToInclude != "" {
		sb.WriteString(" //@include " + quote(b.scriptToInclude))
	}
	sb.WriteString("\"")
	return sb.String(), nil
}

// serialize renders one statement in the editing tool's scripting
// dialect. All string interpolation funnels through quote so embedded
// quotes and backslashes can't break the script.
func serialize(stmt statement, first bool) string {
	var body string
	switch stmt.kind {
	case stmtOpenDocument:
		body = "app.openDocument(" + quote(stmt.value) + ");"
	case stmtStringConst:
		body = "const " + stmt.name + " = " + quote(stmt.value) + ";"
	case stmtConstArray:
		body = "const " + stmt.name + " = " + arrayLiteral(stmt.values) + ";"
	case stmtBoolValue:
		body = "var " + stmt.name + " = Boolean(" + strconv.FormatBool(stmt.flag) + ");"
	case stmtDict:
		body = "var " + stmt.name + " = {" + dictLiteral(stmt.entries, stmt.listValued) + "};"
	case stmtEvalFile:
		body = "$.evalFile(" + quote(stmt.value) + ");"
	}

	if first {
		return body
	}
	return " " + body
}

var scriptEscaper = strings.NewReplacer("\\", "\\\\", "'", "\\'")

func quote(s string) string {
	return "'" + scriptEscaper.Replace(s) + "'"
}

func arrayLiteral(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = quote(v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func floatToken(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func floatArrayLiteral(values []float64) string {
	if len(values) == 0 {
		return "[]"
	}
	tokens := make([]string, len(values))
	for i, v := range values {
		tokens[i] = floatToken(v)
	}
	return "[" + strings.Join(tokens, ", ") + "]"
}

func dictLiteral(entries []dictEntry, listValued bool) string {
	pairs := make([]string, len(entries))
	for i, entry := range entries {
		if listValued {
			pairs[i] = quote(entry.key) + ": " + floatArrayLiteral(entry.list)
		} else {
			pairs[i] = quote(entry.key) + ": " + floatToken(entry.scalar)
		}
	}
	return strings.Join(pairs, ", ")
}
