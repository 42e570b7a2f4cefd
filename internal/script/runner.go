package script

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"sync"

	"github.com/joho/godotenv"

	"github.com/tox-wtf/lfstage/internal/profile"
	"github.com/tox-wtf/lfstage/internal/version"
)

// Runner executes build scripts under bash with a profile-defined
// environment.
type Runner struct {
	// Logger receives the scripts' output lines.
	Logger *slog.Logger

	// Jobs is exported to scripts as JOBS for make -j and friends.
	Jobs int
}

// Exec runs one build script for a profile. The script inherits nothing
// from the lfstage process environment; it sees only the profile's
// base.env plus the injected build variables. Script stdout is logged at
// debug, stderr at warn. A non-zero exit is returned as an error naming
// the script.
func (r *Runner) Exec(ctx context.Context, p *profile.Profile, scriptPath string) error {
	if _, err := os.Stat(scriptPath); err != nil {
		return fmt.Errorf("script %s: %w", scriptPath, err)
	}

	env, err := r.buildEnv(p)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, "bash", "--noprofile", "--norc", scriptPath)
	cmd.Env = env

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("pipe stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("pipe stderr: %w", err)
	}

	log := r.Logger.With("script", scriptPath)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start script %s: %w", scriptPath, err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		scanLines(stdout, log.Debug, log)
	}()
	go func() {
		defer wg.Done()
		scanLines(stderr, log.Warn, log)
	}()

	// Drain the pipes before Wait closes them.
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("script %s: %w", scriptPath, err)
	}

	return nil
}

// scanLines logs each line of a script output pipe. Build tools can emit
// very long lines (single-line progress bars, verbose compile commands), so
// the scanner's token limit is raised past the default 64KB.
func scanLines(r io.Reader, logLine func(string, ...any), log *slog.Logger) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		logLine(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		log.Warn("script output truncated", "error", err)
	}
}

// RunAll executes the profile's build scripts in order, stopping at the
// first failure.
func (r *Runner) RunAll(ctx context.Context, p *profile.Profile) error {
	scripts, err := p.CollectBuildScripts()
	if err != nil {
		return err
	}

	for _, script := range scripts {
		r.Logger.Info("running build script", "script", script)
		if err := r.Exec(ctx, p, script); err != nil {
			return err
		}
	}

	return nil
}

// buildEnv assembles the script environment from the profile's base.env
// plus the injected build variables. base.env must exist; running build
// scripts without a defined environment is refused.
func (r *Runner) buildEnv(p *profile.Profile) ([]string, error) {
	baseEnv := p.EnvsDir() + "/base.env"
	vars, err := godotenv.Read(baseEnv)
	if err != nil {
		return nil, fmt.Errorf("read base env %s: %w", baseEnv, err)
	}

	vars["ENVS"] = p.EnvsDir()
	vars["SCRIPTS"] = p.ScriptsDir()
	vars["SOURCES"] = p.SourcesDir()
	vars["JOBS"] = strconv.Itoa(r.Jobs)
	vars["LFSTAGE_PROFILE"] = p.Name
	vars["LFSTAGE_VERSION"] = version.Version
	vars["LFSTAGE_TMP"] = p.TmpDir()

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(vars))
	for _, k := range keys {
		env = append(env, k+"="+vars[k])
	}
	return env, nil
}
