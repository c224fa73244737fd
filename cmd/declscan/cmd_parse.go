package main

import (
	"fmt"
	"os"

	"github.com/dhamidi/declscan/builder"
	"github.com/dhamidi/declscan/declparser"
	"github.com/dhamidi/declscan/format"
	"github.com/dhamidi/declscan/lexer"
	"github.com/dhamidi/declscan/model"
	"github.com/spf13/cobra"
)

func newParseCmd() *cobra.Command {
	var ignoreAnnotations bool

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a single source file and dump its declarations as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]
			content, err := os.ReadFile(filename)
			if err != nil {
				return fmt.Errorf("read %s: %w", filename, err)
			}

			g := builder.New()
			var opts []declparser.Option
			if ignoreAnnotations {
				opts = append(opts, declparser.WithIgnoreAnnotations())
			}
			p := declparser.New(lexer.New(content, filename), g, opts...)
			if err := p.Parse(); err != nil {
				return fmt.Errorf("parse %s: %w", filename, err)
			}
			g.ResolveReferences()

			return format.NewJSONEncoder(os.Stdout).Encode(filterPackages(g.AllPackages(), filename))
		},
	}

	cmd.Flags().BoolVar(&ignoreAnnotations, "ignore-annotations", false, "skip doc-comment annotation extraction")
	return cmd
}

// filterPackages narrows a graph-wide package listing down to the
// declarations that came from a single file, so `parse` reports only
// what it was asked to parse even though the graph it built into is
// shared with every other file the builder has ever seen.
func filterPackages(packages []*model.Package, file string) []*model.Package {
	var out []*model.Package
	for _, pkg := range packages {
		filtered := &model.Package{QualifiedName: pkg.QualifiedName}
		for _, t := range pkg.Types {
			if t.SourceFile == file {
				filtered.Types = append(filtered.Types, t)
			}
		}
		for _, fn := range pkg.Functions {
			if fn.SourceFile == file {
				filtered.Functions = append(filtered.Functions, fn)
			}
		}
		if len(filtered.Types) > 0 || len(filtered.Functions) > 0 {
			out = append(out, filtered)
		}
	}
	return out
}
