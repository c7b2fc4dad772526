// Package clone fetches full-history working copies with go-git.
package clone

import (
	"context"
	"fmt"
	"io"

	"github.com/Codegass/repodigger/internal/contract"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// GoGitCloner implements contract.Cloner without shelling out to git.
type GoGitCloner struct {
	// Token authenticates HTTPS clones when set. Public repositories need none.
	Token string
	// Progress receives the remote's sideband output, if non-nil.
	Progress io.Writer
}

var _ contract.Cloner = &GoGitCloner{} // Compile-time check

// NewGoGitCloner creates a cloner that authenticates with token.
func NewGoGitCloner(token string) *GoGitCloner {
	return &GoGitCloner{Token: token}
}

// Clone makes a non-bare clone of url at dest with the complete history.
// A cancelled or failing clone may leave a partial directory at dest.
func (c *GoGitCloner) Clone(ctx context.Context, url, dest string) error {
	opts := &git.CloneOptions{
		URL:      url,
		Progress: c.Progress,
		Tags:     git.NoTags,
	}
	if c.Token != "" {
		opts.Auth = &http.BasicAuth{Username: "x-access-token", Password: c.Token}
	}
	if _, err := git.PlainCloneContext(ctx, dest, false, opts); err != nil {
		return fmt.Errorf("failed to clone %s: %w", url, err)
	}
	return nil
}
