package extract

import (
	"regexp"
	"strings"

	"github.com/carn181/mlsp/model"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

var symsIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z_0-9]*$`)

// commandCapture handles MATLAB's command-syntax statements: `load`,
// `import`, `clear`/`clearvars`, `syms`, and falls back to treating an
// unrecognized command name as either a script or a function call.
// Grounded on original_source/src/extractors/symbols.rs's
// command_capture_impl.
func (e *Extractor) commandCapture(name string, ws *model.Workspace, scopeChain []uint, scopes map[uint]*scope, node tree_sitter.Node, pf *model.ParsedFile) {
	parent := node.Parent()
	args := commandArguments(parent)

	switch strings.ToLower(name) {
	case "load":
		for _, arg := range args[min(1, len(args)):] {
			defVar(textOf(arg, pf.Contents), ws, scopeChain, scopes, arg, pf)
		}
	case "import":
		for _, arg := range args {
			e.importCapture(ws, arg, pf)
		}
	case "clear", "clearvars":
		e.clearCapture(strings.ToLower(name), ws, scopeChain, scopes, args, node, pf)
	case "syms":
		for i, arg := range args {
			text := textOf(arg, pf.Contents)
			if i == len(args)-1 && (text == "matrix" || text == "clear" || text == "real" || text == "positive") {
				break
			}
			if !symsIdentifier.MatchString(text) {
				break
			}
			defVar(text, ws, scopeChain, scopes, arg, pf)
		}
	default:
		if path, ok := e.Lookup.Script(name); ok {
			ws.References = append(ws.References, &model.Reference{
				Loc: model.RangeFromNode(node), Name: name, Target: model.ScriptTarget(path),
			})
			return
		}
		fs := e.refToFn(name, ws, scopeChain, scopes, node, false)
		if len(fs) > 0 {
			ws.References = append(ws.References, &fs[0])
		}
	}
}

func commandArguments(parent tree_sitter.Node) []tree_sitter.Node {
	if parent.IsNull() {
		return nil
	}
	var args []tree_sitter.Node
	for i := 0; i < int(parent.NamedChildCount()); i++ {
		c := parent.NamedChild(i)
		if c.GrammarName() == "command_argument" {
			args = append(args, c)
		}
	}
	return args
}

// importCapture handles one `import` argument: either a fully
// qualified single function (`import pkg.fn`) or a wildcard package
// import (`import pkg.*`), both resolved against the global function
// set. Grounded on
// original_source/src/extractors/symbols.rs's import_capture_impl.
func (e *Extractor) importCapture(ws *model.Workspace, arg tree_sitter.Node, pf *model.ParsedFile) {
	path := textOf(arg, pf.Contents)
	if e.Lookup == nil {
		return
	}
	if base, ok := strings.CutSuffix(path, ".*"); ok {
		for qname, def := range e.Lookup.AllFunctions() {
			pkg, name := pkgBasename(qname)
			if pkg == base {
				ws.Functions[name] = def
			}
		}
		return
	}
	if def, ok := e.Lookup.Function(path); ok {
		_, name := pkgBasename(path)
		ws.Functions[name] = def
	}
}

// clearCapture implements `clear`/`clearvars` with optional name and
// `-except` arguments, matched via the same naive glob-to-regex
// translation as the original (only `*` is rewritten, to `.*`; nothing
// is escaped, per spec.md §9, rather than hardening it, since MATLAB
// variable names can't contain the other regex metacharacters anyway).
// Grounded on
// original_source/src/extractors/symbols.rs's command_capture_impl's
// "clear" | "clearvars" arm.
func (e *Extractor) clearCapture(cmd string, ws *model.Workspace, scopeChain []uint, scopes map[uint]*scope, args []tree_sitter.Node, node tree_sitter.Node, pf *model.ParsedFile) {
	row := node.StartPosition().Row

	if len(args) == 0 {
		clearAll := func(vars []*model.VariableDefinition) {
			for _, v := range vars {
				if v.Cleared == 0 && !v.IsGlobal {
					v.Cleared = row
				}
			}
		}
		for _, id := range scopeChain {
			if sc, ok := scopes[id]; ok {
				clearAll(sc.ws.Variables)
			}
		}
		if len(scopeChain) == 0 {
			clearAll(ws.Variables)
		}
		return
	}

	var delete, keep []string
	except := false
	globals := false
	for _, arg := range args {
		text := textOf(arg, pf.Contents)
		lower := strings.ToLower(text)
		if lower == "global" {
			globals = true
			continue
		}
		if lower == "-except" && cmd == "clearvars" {
			except = true
			continue
		}
		if strings.HasPrefix(text, "-") {
			break
		}
		if !except {
			delete = append(delete, text)
		} else {
			keep = append(keep, text)
		}
	}
	if len(delete) == 0 {
		delete = append(delete, "*")
	}

	var workspaces []*model.Workspace
	for _, id := range scopeChain {
		if sc, ok := scopes[id]; ok {
			workspaces = append(workspaces, sc.ws)
		}
	}
	if len(workspaces) == 0 {
		workspaces = append(workspaces, ws)
	}

	for _, w := range workspaces {
	varLoop:
		for _, v := range w.Variables {
			for _, d := range delete {
				re, err := globToRegexp(d)
				if err != nil || !re.MatchString(v.Name) {
					continue
				}
				for _, k := range keep {
					kre, err := globToRegexp(k)
					if err == nil && kre.MatchString(v.Name) {
						continue varLoop
					}
				}
				if v.Cleared == 0 && (!v.IsGlobal || globals) {
					v.Cleared = row
				}
			}
		}
	}
}

func globToRegexp(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("^" + strings.ReplaceAll(pattern, "*", ".*") + "$")
}

func pkgBasename(s string) (pkg, name string) {
	idx := strings.LastIndex(s, ".")
	if idx < 0 {
		return "", s
	}
	return s[:idx], s[idx+1:]
}
