package cmd

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"twcli/config"
)

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the config file in an editor and validate it afterwards.",
	Long: `Open $HOME/.teamwork.json (or --config) in $VISUAL, $EDITOR or vi.

A missing file is created from a template first. When the edited JSON does
not validate, the error is shown and you can reopen the editor or give up.`,
	Example: `
  twcli config edit
  EDITOR="code --wait" twcli config edit
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}

		created, err := ensureConfigFileWithTemplate(path)
		if err != nil {
			return err
		}
		if created {
			fmt.Printf("Created config template at %s\n", path)
		}

		editor := resolveEditorValue(os.Getenv("VISUAL"), os.Getenv("EDITOR"))
		reader := bufio.NewReader(promptInput)
		for {
			if err := runEditor(editor, path); err != nil {
				return err
			}

			validationErr := validateConfigFile(path)
			if validationErr == nil {
				fmt.Printf("Config %s is valid\n", path)
				return nil
			}

			fmt.Fprintf(promptOutput, "Invalid config: %v\n", validationErr)
			again, err := promptYesNo(reader, promptOutput, "Edit again?")
			if err != nil {
				return err
			}
			if !again {
				return validationErr
			}
		}
	},
}

// ensureConfigFileWithTemplate writes the example config when path does not
// exist yet and reports whether it did.
func ensureConfigFileWithTemplate(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(config.ExampleJSON()), 0o600); err != nil {
		return false, fmt.Errorf("write config template: %w", err)
	}
	return true, nil
}

func validateConfigFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if _, err := config.ValidateJSONContent(content); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	return nil
}

func resolveEditorValue(visual, editor string) string {
	for _, candidate := range []string{visual, editor} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return "vi"
}

func buildEditorCommand(editorValue, path string) (*exec.Cmd, error) {
	fields := strings.Fields(editorValue)
	if len(fields) == 0 {
		return nil, fmt.Errorf("editor command is empty")
	}
	return exec.Command(fields[0], append(fields[1:], path)...), nil
}

func runEditor(editorValue, path string) error {
	editor, err := buildEditorCommand(editorValue, path)
	if err != nil {
		return err
	}
	editor.Stdin = os.Stdin
	editor.Stdout = os.Stdout
	editor.Stderr = os.Stderr
	if err := editor.Run(); err != nil {
		return fmt.Errorf("run editor %q: %w", editorValue, err)
	}
	return nil
}

func init() {
	configCmd.AddCommand(configEditCmd)
}
