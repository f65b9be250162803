// Package initialism reports identifiers that spell a common initialism in
// mixed case, like userId or parseUrl, and renames package-local ones.
package initialism

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"strings"
	"unicode"

	"github.com/fatih/camelcase"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

const doc = `initialism reports identifiers that spell initialisms in mixed case

Go names keep initialisms in a consistent case: userID, not userId;
ServeHTTP, not ServeHttp. Unexported identifiers and locals are renamed
together with every reference in the package. Exported names and
methods are reported without a fix since other packages may use them.`

var Analyzer = &analysis.Analyzer{
	Name:     "initialism",
	Doc:      doc,
	Run:      run,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
}

var initialisms = map[string]bool{
	"ACL": true, "API": true, "ASCII": true, "CPU": true, "CSS": true,
	"DNS": true, "EOF": true, "GUID": true, "HTML": true, "HTTP": true,
	"HTTPS": true, "ID": true, "IP": true, "JSON": true, "QPS": true,
	"RAM": true, "RPC": true, "SQL": true, "SSH": true, "TCP": true,
	"TLS": true, "TTL": true, "UDP": true, "UI": true, "UID": true,
	"UUID": true, "URI": true, "URL": true, "XML": true, "XSRF": true,
	"XSS": true,
}

func run(pass *analysis.Pass) (any, error) {
	in := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	refs := make(map[types.Object][]*ast.Ident)
	var decls []*ast.Ident
	in.Preorder([]ast.Node{(*ast.Ident)(nil)}, func(n ast.Node) {
		id := n.(*ast.Ident)
		if obj := pass.TypesInfo.Defs[id]; obj != nil {
			refs[obj] = append(refs[obj], id)
			if obj.Pos() == id.Pos() {
				decls = append(decls, id)
			}
			return
		}
		if obj := pass.TypesInfo.Uses[id]; obj != nil {
			refs[obj] = append(refs[obj], id)
		}
	})

	for _, id := range decls {
		obj := pass.TypesInfo.Defs[id]
		switch obj.(type) {
		case *types.Label, *types.PkgName:
			continue
		}
		name, ok := Fix(id.Name)
		if !ok {
			continue
		}
		d := analysis.Diagnostic{
			Pos:     id.Pos(),
			End:     id.End(),
			Message: fmt.Sprintf("%s should be %s", id.Name, name),
		}
		if renamable(pass, obj, refs[obj], name) {
			edits := make([]analysis.TextEdit, 0, len(refs[obj]))
			for _, ref := range refs[obj] {
				edits = append(edits, analysis.TextEdit{Pos: ref.Pos(), End: ref.End(), NewText: []byte(name)})
			}
			d.SuggestedFixes = []analysis.SuggestedFix{{
				Message:   fmt.Sprintf("Rename %s to %s", id.Name, name),
				TextEdits: edits,
			}}
		}
		pass.Report(d)
	}
	return nil, nil
}

// Fix returns name with every mixed-case initialism word upper-cased. ok is
// false when name needs no change.
func Fix(name string) (string, bool) {
	words := camelcase.Split(name)
	changed := false
	for i, w := range words {
		if !unicode.IsUpper(rune(w[0])) {
			continue
		}
		upper := strings.ToUpper(w)
		switch {
		case initialisms[upper] && w != upper:
			words[i] = upper
			changed = true
		case len(w) > 2 && strings.HasSuffix(w, "s") && initialisms[upper[:len(upper)-1]] && w != upper[:len(upper)-1]+"s":
			words[i] = upper[:len(upper)-1] + "s"
			changed = true
		}
	}
	if !changed {
		return name, false
	}
	return strings.Join(words, ""), true
}

// renamable reports whether obj can be renamed without touching other
// packages or capturing another object.
func renamable(pass *analysis.Pass, obj types.Object, refs []*ast.Ident, name string) bool {
	switch o := obj.(type) {
	case *types.Func:
		if o.Type().(*types.Signature).Recv() != nil {
			return false
		}
	case *types.Var:
		if o.IsField() {
			return false
		}
	}
	if obj.Parent() == nil {
		return false
	}
	if obj.Exported() && obj.Parent() == pass.Pkg.Scope() {
		return false
	}
	if obj.Parent().Lookup(name) != nil {
		return false
	}
	for _, ref := range refs {
		if taken(pass.Pkg.Scope(), ref.Pos(), name) {
			return false
		}
	}
	return true
}

func taken(pkg *types.Scope, pos token.Pos, name string) bool {
	scope := pkg.Innermost(pos)
	if scope == nil {
		scope = pkg
	}
	_, obj := scope.LookupParent(name, pos)
	return obj != nil
}
