package media

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/pders01/shelf/internal/config"
	"github.com/pders01/shelf/internal/validation"
)

// Launcher opens book pages and covers in the platform's browser or viewer.
type Launcher struct {
	opener    string
	validator *validation.URLValidator
	start     func(name string, args ...string) error
}

func NewLauncher(cfg *config.Config) *Launcher {
	var candidates []string
	switch runtime.GOOS {
	case "darwin":
		candidates = cfg.Media.Darwin
	case "linux":
		candidates = cfg.Media.Linux
	case "windows":
		candidates = cfg.Media.Windows
	default:
		candidates = cfg.Media.Darwin
	}

	opener := findCommand(candidates...)
	if opener == "" {
		opener = cfg.Media.DefaultOpener
	}

	return &Launcher{
		opener:    opener,
		validator: validation.NewURLValidator(),
		start:     startDetached,
	}
}

// Opener returns the command used to open URLs.
func (l *Launcher) Opener() string {
	return l.opener
}

// Open validates url and hands it to the opener without waiting for it.
func (l *Launcher) Open(url string) error {
	if l.opener == "" {
		return fmt.Errorf("no application found to open URL")
	}

	normalized, err := l.validator.ValidateAndNormalize(url)
	if err != nil {
		return fmt.Errorf("refusing to open URL: %w", err)
	}

	name, args := l.command(normalized)
	if err := l.start(name, args...); err != nil {
		return fmt.Errorf("failed to start %s: %w", l.opener, err)
	}
	return nil
}

func (l *Launcher) command(url string) (string, []string) {
	// start is a cmd builtin; the empty argument is the window title.
	if l.opener == "start" {
		return "cmd", []string{"/c", "start", "", url}
	}
	return l.opener, []string{url}
}

// BookURL returns the catalog page for a work id such as /works/OL45804W.
func BookURL(worksBase, id string) string {
	base := strings.TrimRight(worksBase, "/")
	if !strings.HasPrefix(id, "/") {
		id = "/" + id
	}
	return base + id
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

func findCommand(commands ...string) string {
	for _, cmd := range commands {
		if _, err := exec.LookPath(cmd); err == nil {
			return cmd
		}
	}
	return ""
}
