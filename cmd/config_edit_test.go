package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"twcli/config"
)

func TestResolveConfigPath(t *testing.T) {
	previous := cfgFile
	t.Cleanup(func() { cfgFile = previous })

	t.Run("uses explicit flag first", func(t *testing.T) {
		cfgFile = "./custom.json"
		got, err := resolveConfigPath()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "./custom.json" {
			t.Fatalf("expected explicit config path, got %q", got)
		}
	})

	t.Run("falls back to home config path", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		cfgFile = ""

		got, err := resolveConfigPath()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := filepath.Join(home, ".teamwork.json")
		if got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	})
}

func TestEnsureConfigFileWithTemplate(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", ".teamwork.json")

	created, err := ensureConfigFileWithTemplate(configPath)
	if err != nil {
		t.Fatalf("unexpected error creating template config: %v", err)
	}
	if !created {
		t.Fatalf("expected file to be created")
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("unexpected error reading config file: %v", err)
	}
	if !strings.Contains(string(content), `"company_id": "mycompany"`) {
		t.Fatalf("expected example config content, got:\n%s", string(content))
	}
	if _, err := config.ValidateJSONContent(content); err != nil {
		t.Fatalf("template should validate: %v", err)
	}
	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("unexpected error stat config file: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected config file mode 0600, got %o", info.Mode().Perm())
	}

	created, err = ensureConfigFileWithTemplate(configPath)
	if err != nil {
		t.Fatalf("unexpected error on existing config file: %v", err)
	}
	if created {
		t.Fatalf("did not expect existing file to be recreated")
	}
}

func TestValidateConfigFile(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.json")
	if err := os.WriteFile(valid, []byte(config.ExampleJSON()), 0o600); err != nil {
		t.Fatalf("write valid config: %v", err)
	}
	if err := validateConfigFile(valid); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	invalid := filepath.Join(dir, "invalid.json")
	if err := os.WriteFile(invalid, []byte(`{"company_id": "acme"}`), 0o600); err != nil {
		t.Fatalf("write invalid config: %v", err)
	}
	if err := validateConfigFile(invalid); err == nil || !strings.Contains(err.Error(), invalid) {
		t.Fatalf("expected validation error naming the file, got %v", err)
	}

	if err := validateConfigFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestRunEditor_ReportsFailure(t *testing.T) {
	if err := runEditor("false", filepath.Join(t.TempDir(), "cfg.json")); err == nil {
		t.Fatalf("expected error from failing editor")
	}
	if err := runEditor("", "cfg.json"); err == nil {
		t.Fatalf("expected error for empty editor")
	}
}

func TestResolveEditorValue(t *testing.T) {
	tests := []struct {
		name   string
		visual string
		editor string
		want   string
	}{
		{name: "visual wins", visual: "code --wait", editor: "nano", want: "code --wait"},
		{name: "editor fallback", visual: "", editor: "nano", want: "nano"},
		{name: "default vi", visual: " ", editor: "", want: "vi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveEditorValue(tt.visual, tt.editor)
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestBuildEditorCommand(t *testing.T) {
	t.Run("splits editor args and appends config path", func(t *testing.T) {
		cmd, err := buildEditorCommand("nano -w", "/tmp/.teamwork.json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cmd.Args) != 3 {
			t.Fatalf("expected 3 args, got %d", len(cmd.Args))
		}
		if cmd.Args[0] != "nano" || cmd.Args[1] != "-w" || cmd.Args[2] != "/tmp/.teamwork.json" {
			t.Fatalf("unexpected command args: %#v", cmd.Args)
		}
	})

	t.Run("fails on empty editor", func(t *testing.T) {
		if _, err := buildEditorCommand("   ", "/tmp/.teamwork.json"); err == nil {
			t.Fatalf("expected error for empty editor")
		}
	})
}
