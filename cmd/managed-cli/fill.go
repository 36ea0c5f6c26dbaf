package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-managed/pkg/instance"
	"github.com/goliatone/go-managed/pkg/node"
	"github.com/goliatone/go-managed/pkg/prompt"
	"github.com/goliatone/go-managed/pkg/provider"
)

// newDriver is replaced in tests.
var newDriver = func(cmd *cobra.Command) prompt.Driver {
	return prompt.NewSurveyDriver(cmd.ErrOrStderr())
}

func newFillCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fill TYPE",
		Short: "Interactively populate an instance of a type and print its values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.open(ctx)
			if err != nil {
				return err
			}
			n, err := s.Instantiate(ctx, node.NewRoot(), args[0], args[0])
			if err != nil {
				return err
			}

			options := []prompt.Option{
				prompt.WithDriver(newDriver(cmd)),
				prompt.WithLogger(a.logger),
			}
			if a.v.GetBool(keySanitize) {
				options = append(options, prompt.WithSanitizer(provider.HTMLSanitizer()))
			}
			filled, err := prompt.NewFiller(options...).Fill(ctx, n.Instance())
			if err != nil {
				return err
			}
			a.logger.Info("instance filled", "type", args[0], "properties", len(filled))
			return writeJSON(cmd.OutOrStdout(), values(n.Instance()))
		},
	}
	cmd.Flags().Bool(keySanitize, false, "strip HTML from string answers")
	return cmd
}

// values collects present property values, descending into nested
// instances.
func values(p *instance.Proxy) map[string]any {
	out := make(map[string]any)
	for _, name := range p.Schema().PropertyNames() {
		supplier, err := p.Get(name)
		if err != nil {
			continue
		}
		value, ok := supplier.Value()
		if !ok {
			continue
		}
		if nested, ok := value.(*instance.Proxy); ok {
			out[name] = values(nested)
			continue
		}
		out[name] = value
	}
	return out
}
