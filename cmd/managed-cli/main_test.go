package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-managed/pkg/prompt"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestDescribe_JSON(t *testing.T) {
	stdout, _, err := run(t, "describe", "Address")
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	var summary struct {
		Type       string `json:"type"`
		Properties []struct {
			Name string `json:"name"`
		} `json:"properties"`
		Aspects []string `json:"aspects"`
	}
	if err := json.Unmarshal([]byte(stdout), &summary); err != nil {
		t.Fatalf("decode output: %v\n%s", err, stdout)
	}
	var names []string
	for _, p := range summary.Properties {
		names = append(names, p.Name)
	}
	if diff := cmp.Diff([]string{"street", "city", "kind"}, names); diff != "" {
		t.Fatalf("properties mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"variant"}, summary.Aspects); diff != "" {
		t.Fatalf("aspects mismatch (-want +got):\n%s", diff)
	}
}

func TestDescribe_MarkdownFromEnvironment(t *testing.T) {
	t.Setenv("MANAGED_FORMAT", "markdown")
	stdout, _, err := run(t, "describe", "Person")
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if !strings.HasPrefix(stdout, "# Person (managed)") {
		t.Fatalf("unexpected markdown:\n%s", stdout)
	}
}

func TestDescribe_UnknownFormat(t *testing.T) {
	if _, _, err := run(t, "describe", "Person", "--format", "xml"); err == nil {
		t.Fatalf("expected unknown format error")
	}
}

func TestValidate_ReportsInvalidTypes(t *testing.T) {
	dir := t.TempDir()
	doc := `types:
  - name: Good
    managed: true
    properties:
      - name: title
        type: string
  - name: Orphan
    accessors:
      - property: title
        role: setter
        valueType: string
        abstract: true
  - name: Job
    managed: true
    members:
      - name: run
        abstract: true
`
	if err := os.WriteFile(filepath.Join(dir, "types.yaml"), []byte(doc), 0o644); err != nil {
		t.Fatalf("write declarations: %v", err)
	}

	stdout, stderr, err := run(t, "validate", "--types", dir)
	if !errors.Is(err, errValidationFailed) {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if !strings.Contains(stdout, "1 of 3 types valid") {
		t.Fatalf("unexpected summary %q", stdout)
	}
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	var reported []string
	for _, line := range lines {
		if name, _, ok := strings.Cut(line, ": "); ok && !strings.Contains(name, "=") {
			reported = append(reported, name)
		}
	}
	if diff := cmp.Diff([]string{"Job", "Orphan"}, reported); diff != "" {
		t.Fatalf("reported types mismatch (-want +got):\n%s\nstderr:\n%s", diff, stderr)
	}
}

func TestValidate_BundledDeclarations(t *testing.T) {
	stdout, _, err := run(t, "validate")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(stdout, "3 types valid") {
		t.Fatalf("unexpected output %q", stdout)
	}
}

type scriptedDriver struct {
	inputs   []string
	confirms []bool
}

func (d *scriptedDriver) Input(context.Context, prompt.InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		return "", prompt.ErrAborted
	}
	next := d.inputs[0]
	d.inputs = d.inputs[1:]
	return next, nil
}

func (d *scriptedDriver) Confirm(context.Context, prompt.ConfirmConfig) (bool, error) {
	if len(d.confirms) == 0 {
		return false, prompt.ErrAborted
	}
	next := d.confirms[0]
	d.confirms = d.confirms[1:]
	return next, nil
}

func (d *scriptedDriver) Select(context.Context, prompt.SelectConfig) (int, error) {
	return 0, prompt.ErrAborted
}

func (d *scriptedDriver) Info(context.Context, string) error { return nil }

func TestFill_PrintsValues(t *testing.T) {
	driver := &scriptedDriver{
		inputs:   []string{"<i>Ada</i>", "36", "ada@example.com"},
		confirms: []bool{true},
	}
	previous := newDriver
	newDriver = func(*cobra.Command) prompt.Driver { return driver }
	t.Cleanup(func() { newDriver = previous })

	stdout, _, err := run(t, "fill", "Person", "--sanitize-html")
	if err != nil {
		t.Fatalf("fill: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, stdout)
	}
	want := map[string]any{
		"name":       "Ada",
		"age":        float64(36),
		"email":      "ada@example.com",
		"subscribed": true,
		"address":    map[string]any{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}
