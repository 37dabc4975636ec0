package cli

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestCompletionScripts(t *testing.T) {
	c, _ := newTestCLI(t)
	for shell := range completionShells {
		t.Run(shell, func(t *testing.T) {
			root := c.RootCommand()
			var buf bytes.Buffer
			root.SetOut(&buf)
			root.SetArgs([]string{"completion", shell})
			if err := root.Execute(); err != nil {
				t.Fatalf("completion %s: %v", shell, err)
			}
			if !strings.Contains(buf.String(), appName) {
				t.Errorf("%s script never mentions %s", shell, appName)
			}
		})
	}
}

func TestCompletionRejectsUnknownShell(t *testing.T) {
	c, _ := newTestCLI(t)
	root := c.RootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"completion", "tcsh"})
	if err := root.Execute(); err == nil {
		t.Error("completion accepted an unsupported shell")
	}
}

func TestCompleteList(t *testing.T) {
	complete := completeList([]string{"svg", "png", "json", "dot"})
	tests := []struct {
		typed string
		want  []string
	}{
		{"", []string{"svg", "png", "json", "dot"}},
		{"svg,", []string{"svg,png", "svg,json", "svg,dot"}},
		{"svg,png,", []string{"svg,png,json", "svg,png,dot"}},
	}
	for _, tt := range tests {
		got, dir := complete(nil, nil, tt.typed)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("complete(%q) = %v, want %v", tt.typed, got, tt.want)
		}
		if dir&cobra.ShellCompDirectiveNoSpace == 0 {
			t.Errorf("complete(%q) allows a trailing space", tt.typed)
		}
	}
}

func TestCompleteDocuments(t *testing.T) {
	exts, dir := completeDocuments(nil, nil, "")
	if dir != cobra.ShellCompDirectiveFilterFileExt || !reflect.DeepEqual(exts, []string{"json", "toml"}) {
		t.Errorf("completeDocuments = %v, %v", exts, dir)
	}
	if _, dir := completeDocuments(nil, []string{"a.json"}, ""); dir != cobra.ShellCompDirectiveNoFileComp {
		t.Error("second argument should not complete files")
	}
}
