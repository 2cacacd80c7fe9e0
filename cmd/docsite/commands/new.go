package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

const starterIndex = `# Engineering Standards

Welcome. Start with the Golden Path choices for new services.
`

// NewCmd implements the 'new' command.
type NewCmd struct {
	Dir   string `arg:"" optional:"" default:"." help:"Project directory" type:"path"`
	Force bool   `help:"Overwrite an existing configuration file"`
}

func (n *NewCmd) Run(g *Global, _ *CLI) error {
	out := g.out()
	cfgPath := filepath.Join(n.Dir, config.DefaultFileName)
	_, _ = fmt.Fprintf(out, "Writing configuration to %s\n", cfgPath)
	if err := config.Init(cfgPath, n.Force); err != nil {
		return err
	}

	index := filepath.Join(n.Dir, config.DefaultDocsDir, "index.md")
	if _, err := os.Stat(index); err == nil {
		_, _ = fmt.Fprintf(out, "Keeping existing %s\n", index)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(index), 0o755); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "create docs directory").Build()
	}
	if err := os.WriteFile(index, []byte(starterIndex), 0o644); err != nil { // #nosec G306 -- documentation source
		return errors.WrapError(err, errors.CategoryFileSystem, "write starter page").
			WithContext("path", index).Build()
	}
	_, _ = fmt.Fprintf(out, "Created %s\n", index)
	return nil
}
