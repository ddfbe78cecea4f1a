package golang

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/dave/jennifer/jen"

	"github.com/stubdex/stubdex/catalog"
	"github.com/stubdex/stubdex/internal/codegen/common"
	"github.com/stubdex/stubdex/internal/codegen/meta"
)

// generateDoc writes doc.go with the package comment.
func generateDoc(pkgDir, version string, md *meta.Metadata) error {
	f := jen.NewFile(packageName)
	f.HeaderComment(common.GeneratedBanner("go"))
	f.PackageComment(fmt.Sprintf("Package %s mirrors the type declarations of a scripting-API stub catalog as Go interfaces.", packageName))
	f.PackageComment("")
	f.PackageComment(fmt.Sprintf("Source: %s (%d types), stubdex %s.", md.SourceDir, md.Catalog.Len(), version))

	if err := f.Save(filepath.Join(pkgDir, "doc.go")); err != nil {
		return fmt.Errorf("write doc.go: %w", err)
	}
	return nil
}

// generateDecl writes one file holding the declaration's interface.
func generateDecl(logger *slog.Logger, pkgDir string, d *catalog.Declaration) error {
	f := jen.NewFile(packageName)
	f.HeaderComment(common.GeneratedBanner("go"))

	name := common.ExportName(d.Name)
	if name != d.Name {
		f.Comment(fmt.Sprintf("%s corresponds to %s.", name, d.Name))
	}
	docComment(f.Group, d.Doc)

	f.Type().Id(name).InterfaceFunc(func(g *jen.Group) {
		// Embedded interfaces, accessors and methods share one
		// namespace; later same-name members are dropped.
		used := make(map[string]bool)

		for _, super := range d.Supertypes {
			g.Id(common.ExportName(super))
			used[common.ExportName(super)] = true
		}

		for _, attrName := range d.AttrNames() {
			attr := d.Attrs[attrName]
			getter := common.ExportName(attrName)
			if used[getter] {
				logger.Debug("Skipping attribute, name taken", "type", d.Name, "attr", attrName)
				continue
			}
			used[getter] = true

			docComment(g, attr.Doc)
			enumComment(g, attr.Type)
			g.Id(getter).Params().Add(goType(attr.Type))
			if !attr.ReadOnly && !used["Set"+getter] {
				used["Set"+getter] = true
				g.Id("Set" + getter).Params(jen.Id("v").Add(goType(attr.Type)))
			}
		}

		for i := range d.Methods {
			m := &d.Methods[i]
			mName := common.ExportName(m.Name)
			if used[mName] {
				// Overloads collapse onto the first signature.
				logger.Debug("Skipping method, name taken", "type", d.Name, "method", m.Name)
				continue
			}
			used[mName] = true

			docComment(g, m.Doc)
			params := make([]jen.Code, 0, len(m.Params))
			for _, p := range m.Params {
				params = append(params, jen.Id(paramName(p.Name)).Add(goType(p.Type)))
			}
			stmt := g.Id(mName).Params(params...)
			if !m.Return.IsNone() {
				stmt.Add(goType(m.Return))
			}
		}
	})

	path := filepath.Join(pkgDir, common.ToSnakeCase(d.Name)+".go")
	if err := f.Save(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
