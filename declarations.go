package managed

import (
	"embed"
	"io/fs"
)

//go:embed declarations/*.yaml
var embeddedDeclarations embed.FS

// DeclarationsFS exposes the bundled example declarations (Named, Person and
// Address) so tools can demonstrate extraction without a declaration file.
//
// Typical use:
//
//	registry, err := typedesc.LoadFS(managed.DeclarationsFS())
func DeclarationsFS() fs.FS {
	sub, err := fs.Sub(embeddedDeclarations, "declarations")
	if err != nil {
		return embeddedDeclarations
	}
	return sub
}
