package pass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path"
	"strings"

	"github.com/bnema/exchange-dash/internal/ports"
)

var ErrUnavailable = errors.New("pass command unavailable")

const DefaultPrefix = "xd"

type runner func(ctx context.Context, stdin string, args ...string) (stdout string, stderr string, err error)

// Store keeps credentials in the user's password-store under a fixed
// prefix, e.g. "xd/api/token".
type Store struct {
	prefix string
	run    runner
}

var _ ports.CredentialStore = (*Store)(nil)

func NewStore(prefix string) *Store {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{prefix: prefix, run: execPass}
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	entry, err := s.entry(ctx, key)
	if err != nil {
		return "", err
	}

	stdout, stderr, err := s.run(ctx, "", "show", entry)
	if err != nil {
		return "", passError("show", entry, err, stderr)
	}

	// Multiline entries keep the secret on the first line.
	first, _, _ := strings.Cut(stdout, "\n")
	return strings.TrimRight(first, "\r"), nil
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	entry, err := s.entry(ctx, key)
	if err != nil {
		return err
	}

	if _, stderr, err := s.run(ctx, value+"\n", "insert", "--multiline", "--force", entry); err != nil {
		return passError("insert", entry, err, stderr)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	entry, err := s.entry(ctx, key)
	if err != nil {
		return err
	}

	if _, stderr, err := s.run(ctx, "", "rm", "--force", entry); err != nil {
		if notInStore(stderr) {
			return nil
		}
		return passError("rm", entry, err, stderr)
	}
	return nil
}

func (s *Store) entry(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key = strings.Trim(strings.TrimSpace(key), "/")
	if key == "" {
		return "", errors.New("credential key is empty")
	}
	return path.Join(s.prefix, key), nil
}

func execPass(ctx context.Context, stdin string, args ...string) (string, string, error) {
	bin, err := exec.LookPath("pass")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", "", ErrUnavailable
		}
		return "", "", fmt.Errorf("locate pass command: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	err = cmd.Run()
	return stdout.String(), strings.TrimSpace(stderr.String()), err
}

func notInStore(stderr string) bool {
	return strings.Contains(stderr, "is not in the password store")
}

func passError(op string, entry string, err error, stderr string) error {
	switch {
	case notInStore(stderr):
		return fmt.Errorf("pass %s %q: %w", op, entry, ports.ErrCredentialNotFound)
	case stderr == "":
		return fmt.Errorf("pass %s %q: %w", op, entry, err)
	default:
		return fmt.Errorf("pass %s %q: %w: %s", op, entry, err, stderr)
	}
}
