package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dmitrijs2005/captionly/internal/client/client"
	"github.com/dmitrijs2005/captionly/internal/client/config"
	"github.com/dmitrijs2005/captionly/internal/client/session"
	"github.com/dmitrijs2005/captionly/internal/flagx"
)

var errUsage = errors.New("usage: client [-c file] [-a url] [-t seconds] <register|login|logout|caption FILE|post FILE>")

// APIClient is the server surface used by the commands.
type APIClient interface {
	Register(ctx context.Context, userName string, password []byte) (*client.Result, error)
	Login(ctx context.Context, userName string, password []byte) (*client.Result, error)
	Logout(ctx context.Context) (*client.Result, error)
	GenerateCaption(ctx context.Context, fileName, contentType string, data []byte) (*client.Result, error)
	CreatePost(ctx context.Context, token, fileName, contentType string, data []byte) (*client.Result, error)
}

// SessionStore persists the session token.
type SessionStore interface {
	Save(token string) error
	Load() (string, error)
	Clear() error
}

type App struct {
	config  *config.Config
	api     APIClient
	session SessionStore
	reader  *bufio.Reader
	out     io.Writer
}

func NewApp(c *config.Config) *App {
	hc := &http.Client{Timeout: c.RequestTimeout}
	return &App{
		config:  c,
		api:     client.NewHTTPClient(c.ServerURL, hc),
		session: session.NewStore(c.SessionDir),
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}
}

// Run executes the command named in args, which may still contain the
// configuration flags.
func (a *App) Run(ctx context.Context, args []string) error {
	cmd := commandArgs(args)
	if len(cmd) == 0 {
		return errUsage
	}

	switch cmd[0] {
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "logout":
		return a.Logout(ctx)
	case "caption":
		if len(cmd) != 2 {
			return errUsage
		}
		return a.Caption(ctx, cmd[1])
	case "post":
		if len(cmd) != 2 {
			return errUsage
		}
		return a.Post(ctx, cmd[1])
	default:
		return fmt.Errorf("unknown command %q: %w", cmd[0], errUsage)
	}
}

// commandArgs drops the configuration flags and their values from args.
func commandArgs(args []string) []string {
	flags := flagx.FilterArgs(args, []string{"-c", "-config", "-a", "-t"})
	rest := make([]string, 0, len(args))
	i := 0
	for _, arg := range args {
		if i < len(flags) && arg == flags[i] {
			i++
			continue
		}
		rest = append(rest, arg)
	}
	return rest
}

func (a *App) printResult(res *client.Result) {
	fmt.Fprintln(a.out, string(res.Raw))
}
