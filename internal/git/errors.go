package git

import (
	"strings"

	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
)

// ClassifyGitError translates go-git errors into ClassifiedErrors.
func ClassifyGitError(err error, op string, url string) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.AsClassified(err); ok {
		return err
	}

	l := strings.ToLower(err.Error())
	category := errors.CategoryGit
	message := "git operation failed"
	switch {
	case strings.Contains(l, "authentication") || strings.Contains(l, "not authorized") || strings.Contains(l, "invalid credentials"):
		message = "git authentication failed"
	case strings.Contains(l, "ref ") && strings.Contains(l, "not found"):
		category = errors.CategoryNotFound
		message = "git ref not found"
	case strings.Contains(l, "repository not found") || strings.Contains(l, "does not exist"):
		category = errors.CategoryNotFound
		message = "git repository not found"
	case strings.Contains(l, "connection reset") || strings.Contains(l, "timeout") || strings.Contains(l, "no route to host") || strings.Contains(l, "remote hung up"):
		category = errors.CategoryNetwork
		message = "git remote unreachable"
	case strings.Contains(l, "unsupported protocol") || strings.Contains(l, "protocol not supported"):
		category = errors.CategoryConfig
		message = "unsupported repository URL"
	}

	return errors.NewError(category, message).
		WithCause(err).
		WithContext("op", op).
		WithContext("url", url).
		Build()
}
