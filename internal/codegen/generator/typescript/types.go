package typescript

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/stubdex/stubdex/catalog"
	"github.com/stubdex/stubdex/internal/codegen/meta"
)

const declTemplate = `{{writeFileHeaderTS}}
// Scripting-API type declarations

{{range .Decls}}{{if .Doc}}{{.Doc}}
{{end}}export interface {{.Name}}{{if .Extends}} extends {{.Extends}}{{end}} {
{{range .Members}}{{.}}
{{end}}}

{{end}}`

// tsDecl is the render model for one interface. Members arrive
// preformatted (indent, JSDoc and trailing semicolon included).
type tsDecl struct {
	Doc     string
	Name    string
	Extends string
	Members []string
}

func generateTypes(logger *slog.Logger, outputDir string, md *meta.Metadata) error {
	logger.Debug("Generating declaration interfaces (TypeScript)")
	outputFile := filepath.Join(outputDir, "index.d.ts")

	var decls []tsDecl
	err := md.Catalog.Walk(func(d *catalog.Declaration) error {
		decls = append(decls, declModel(d))
		return nil
	})
	if err != nil {
		return err
	}

	funcMap := template.FuncMap{
		"writeFileHeaderTS": writeFileHeaderTS,
	}
	tmpl, err := template.New("decls").Funcs(funcMap).Parse(declTemplate)
	if err != nil {
		return fmt.Errorf("parse template: %w", err)
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()
	data := struct{ Decls []tsDecl }{Decls: decls}
	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("execute template: %w", err)
	}
	logger.Info("Generated declaration interfaces", "file", outputFile, "types", len(decls))
	return nil
}

func declModel(d *catalog.Declaration) tsDecl {
	model := tsDecl{
		Doc:     jsdoc(d.Doc, ""),
		Name:    d.Name,
		Extends: strings.Join(d.Supertypes, ", "),
	}

	for _, attrName := range d.AttrNames() {
		attr := d.Attrs[attrName]
		model.Members = append(model.Members, attrMember(attrName, attr))
	}
	for i := range d.Methods {
		model.Members = append(model.Members, methodMember(&d.Methods[i]))
	}
	return model
}

func attrMember(name string, attr catalog.Attribute) string {
	var b strings.Builder
	if doc := jsdoc(attr.Doc, "  "); doc != "" {
		b.WriteString(doc)
		b.WriteString("\n")
	}
	b.WriteString("  ")
	if attr.ReadOnly {
		b.WriteString("readonly ")
	}
	b.WriteString(name)
	b.WriteString(": ")
	b.WriteString(tsType(attr.Type))
	b.WriteString(";")
	return b.String()
}

func methodMember(m *catalog.Method) string {
	var b strings.Builder
	if doc := jsdoc(m.Doc, "  "); doc != "" {
		b.WriteString(doc)
		b.WriteString("\n")
	}
	b.WriteString("  ")
	b.WriteString(m.Name)
	b.WriteString("(")
	sawOptional := false
	for i, p := range m.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		// Defaulted parameters may be omitted by callers. A required
		// parameter cannot follow an optional one in TypeScript, so
		// optionality is sticky.
		if p.Default != "" || sawOptional {
			sawOptional = true
			b.WriteString("?")
		}
		b.WriteString(": ")
		b.WriteString(tsType(p.Type))
	}
	b.WriteString("): ")
	if m.Return.IsNone() {
		b.WriteString("void")
	} else {
		b.WriteString(tsType(m.Return))
	}
	b.WriteString(";")
	return b.String()
}
