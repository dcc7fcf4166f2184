package cmd

import (
	"strings"
	"testing"

	"github.com/runger/palette/internal/config"
)

func TestConfigCmd_List(t *testing.T) {
	withNoColors(t)
	path := withTestConfig(t)

	out, err := runCommand(t, "config")
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}

	for _, key := range []string{"search.match_mode", "modules.calc.weight", "log.level"} {
		if !strings.Contains(out, key) {
			t.Errorf("Expected key %q in output", key)
		}
	}
	if !strings.Contains(out, "Config file: "+path) {
		t.Errorf("Expected config file path in output: %s", out)
	}
}

func TestConfigCmd_GetSet(t *testing.T) {
	withNoColors(t)
	path := withTestConfig(t)

	out, err := runCommand(t, "config", "modules.calc.weight", "250")
	if err != nil {
		t.Fatalf("config set failed: %v", err)
	}
	if !strings.Contains(out, "modules.calc.weight = 250") {
		t.Errorf("Unexpected set output: %s", out)
	}

	out, err = runCommand(t, "config", "modules.calc.weight")
	if err != nil {
		t.Fatalf("config get failed: %v", err)
	}
	if strings.TrimSpace(out) != "250" {
		t.Errorf("Expected 250, got %q", out)
	}

	cfg, err := config.LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.Modules["calc"].Weight != 250 {
		t.Errorf("Expected saved weight 250, got %d", cfg.Modules["calc"].Weight)
	}
}

func TestConfigCmd_GetUnset(t *testing.T) {
	withNoColors(t)
	withTestConfig(t)

	out, err := runCommand(t, "config", "plugins.dir")
	if err != nil {
		t.Fatalf("config get failed: %v", err)
	}
	if strings.TrimSpace(out) != "(not set)" {
		t.Errorf("Expected (not set), got %q", out)
	}
}

func TestConfigCmd_SetInvalid(t *testing.T) {
	withTestConfig(t)

	if _, err := runCommand(t, "config", "search.fuzzy_sigil", "'"); err == nil {
		t.Error("Expected error for a sigil already in use")
	}
	if _, err := runCommand(t, "config", "log.level", "loud"); err == nil {
		t.Error("Expected error for invalid log level")
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := runCommand(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out, "palette "+Version) {
		t.Errorf("Unexpected version output: %q", out)
	}
}
