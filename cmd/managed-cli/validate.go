package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// errValidationFailed is returned after the failing types were reported.
var errValidationFailed = errors.New("managed-cli: validation failed")

type violation struct {
	typeName string
	message  string
}

func newValidateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [TYPE...]",
		Short: "Extract types and report invalid declarations",
		Long:  "Extract every named type, or every declared type when none are named, and report the ones whose schema cannot be extracted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.open(ctx)
			if err != nil {
				return err
			}
			names := args
			if len(names) == 0 {
				names = a.source.Names()
			}

			if _, err := s.ExtractAll(ctx, names...); err == nil {
				writeLine(cmd.OutOrStdout(), "%d types valid", len(names))
				return nil
			}

			var violations []violation
			for _, name := range names {
				if _, err := s.Schema(ctx, name); err != nil {
					violations = append(violations, violation{typeName: name, message: err.Error()})
				}
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			sort.Slice(violations, func(i, j int) bool {
				return violations[i].typeName < violations[j].typeName
			})
			errOut := cmd.ErrOrStderr()
			for _, v := range violations {
				writeLine(errOut, "%s: %s", v.typeName, v.message)
			}
			writeLine(cmd.OutOrStdout(), "%d of %d types valid", len(names)-len(violations), len(names))
			return fmt.Errorf("%w: %d invalid types", errValidationFailed, len(violations))
		},
	}
}
