package commands

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"aigen/core"
	"aigen/logging"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()
	return &App{
		Config: &core.Config{
			OutputDir:     dir,
			TempDir:       filepath.Join(dir, "temp"),
			ModelCacheDir: filepath.Join(dir, "cache"),
			ForceCPU:      true,
			ImageProvider: core.ProviderLocal,
			WebHost:       core.DefaultWebHost,
			WebPort:       core.DefaultWebPort,
		},
		Logger:  logging.NewTestLogger(),
		Version: "test",
	}
}

func execute(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_ListsSubcommands(t *testing.T) {
	out, err := execute(t, newTestApp(t), "--help")
	if err != nil {
		t.Fatalf("Execute() = %v", err)
	}

	for _, want := range []string{"text-to-image", "image-to-image", "text-to-video", "serve", "outputs", "info", "version"} {
		if !strings.Contains(out, want) {
			t.Errorf("help output missing %q", want)
		}
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, newTestApp(t), "version")
	if err != nil {
		t.Fatalf("Execute() = %v", err)
	}
	if !strings.Contains(out, "aigen test") {
		t.Errorf("output = %q, want version line", out)
	}
	if !strings.Contains(out, "backend:") {
		t.Errorf("output = %q, want backend line", out)
	}
}

func TestTextToImage_RequiresPrompt(t *testing.T) {
	if _, err := execute(t, newTestApp(t), "text-to-image"); err == nil {
		t.Error("no error without a prompt argument")
	}
}

func TestImageToImage_RequiresInitImage(t *testing.T) {
	_, err := execute(t, newTestApp(t), "image-to-image", "a cat")
	if err == nil {
		t.Fatal("no error without --init-image")
	}
	if !strings.Contains(err.Error(), "init-image") {
		t.Errorf("error = %v, want mention of init-image", err)
	}
}

func TestInfoCmd_ReportsCPUWhenForced(t *testing.T) {
	out, err := execute(t, newTestApp(t), "info")
	if err != nil {
		t.Fatalf("Execute() = %v", err)
	}
	if !strings.Contains(out, "accelerator:") || !strings.Contains(out, "cpu") {
		t.Errorf("output = %q, want cpu accelerator", out)
	}
	if !strings.Contains(out, "Image defaults") || !strings.Contains(out, "Video defaults") {
		t.Errorf("output = %q, want derived defaults", out)
	}
}

func TestInfoCmd_EnvFlag(t *testing.T) {
	out, err := execute(t, newTestApp(t), "info", "--env")
	if err != nil {
		t.Fatalf("Execute() = %v", err)
	}
	if !strings.Contains(out, "TOKENIZERS_PARALLELISM=false") {
		t.Errorf("output = %q, want tuned environment", out)
	}
}

func TestUnknownCommand(t *testing.T) {
	if _, err := execute(t, newTestApp(t), "frobnicate"); err == nil {
		t.Error("no error for unknown command")
	}
}
