package publisher

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/pvoil/internal/config"
	"github.com/mamadbah2/pvoil/internal/domain/models"
)

const commitDateLayout = "2006-01-02 15:04"

// CommandRunner executes an external command in dir and returns its combined output.
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands through os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.Bytes(), err
}

// GitPublisher stages, commits and pushes the ledger file with the git CLI.
type GitPublisher struct {
	cfg    config.GitConfig
	runner CommandRunner
	logger *zap.Logger
	now    func() time.Time
}

// NewGitPublisher builds a git publisher. A nil runner uses os/exec.
func NewGitPublisher(cfg config.GitConfig, runner CommandRunner, logger *zap.Logger) *GitPublisher {
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GitPublisher{cfg: cfg, runner: runner, logger: logger, now: time.Now}
}

func (p *GitPublisher) Name() string { return "git" }

// CommitMessage renders the configured template, replacing {date} with the local time.
func (p *GitPublisher) CommitMessage(at time.Time) string {
	return strings.ReplaceAll(p.cfg.CommitTemplate, "{date}", at.Format(commitDateLayout))
}

func (p *GitPublisher) Publish(ctx context.Context, update models.LedgerUpdate) error {
	// Identity is best effort: the repository may already be configured.
	if p.cfg.AuthorName != "" {
		if out, err := p.git(ctx, "config", "user.name", p.cfg.AuthorName); err != nil {
			p.logger.Debug("git config user.name failed", zap.ByteString("output", out), zap.Error(err))
		}
	}
	if p.cfg.AuthorEmail != "" {
		if out, err := p.git(ctx, "config", "user.email", p.cfg.AuthorEmail); err != nil {
			p.logger.Debug("git config user.email failed", zap.ByteString("output", out), zap.Error(err))
		}
	}

	path, err := p.stagePath(update.Path)
	if err != nil {
		return err
	}
	if out, err := p.git(ctx, "add", path); err != nil {
		return commandError("git add", out, err)
	}

	message := p.CommitMessage(p.now())
	p.logger.Info("committing ledger", zap.String("message", message))
	if out, err := p.git(ctx, "commit", "-m", message); err != nil {
		return commandError("git commit", out, err)
	}

	if !p.cfg.Push {
		p.logger.Info("git push disabled, commit kept local")
		return nil
	}

	p.logger.Info("pushing to remote repository")
	if out, err := p.git(ctx, "push"); err != nil {
		return commandError("git push", out, err)
	}
	return nil
}

// stagePath expresses the ledger path, which is relative to the process
// working directory, relative to the repository the commands run in.
func (p *GitPublisher) stagePath(ledgerPath string) (string, error) {
	abs, err := filepath.Abs(ledgerPath)
	if err != nil {
		return "", fmt.Errorf("resolve ledger path %s: %w", ledgerPath, err)
	}
	repo, err := filepath.Abs(p.cfg.RepoDir)
	if err != nil {
		return "", fmt.Errorf("resolve repo dir %s: %w", p.cfg.RepoDir, err)
	}

	rel, err := filepath.Rel(repo, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return abs, nil
	}
	return rel, nil
}

func (p *GitPublisher) git(ctx context.Context, args ...string) ([]byte, error) {
	return p.runner.Run(ctx, p.cfg.RepoDir, "git", args...)
}

func commandError(step string, out []byte, err error) error {
	output := strings.TrimSpace(string(out))
	if output == "" {
		return fmt.Errorf("%s: %w", step, err)
	}
	return fmt.Errorf("%s: %w: %s", step, err, output)
}
