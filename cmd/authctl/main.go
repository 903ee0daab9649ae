// Command authctl is a terminal client for the financevault session flow. It
// keeps a durable session profile and a cookie jar between runs, the way a
// browser would.
//
// Usage:
//
//	authctl register|login|logout|status
//	authctl visit <path>
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/99minutos/financevault/internal/client"
	"github.com/99minutos/financevault/internal/core/domain"
	"github.com/99minutos/financevault/internal/infrastructure/backend"
	"github.com/99minutos/financevault/internal/infrastructure/config"
	"github.com/99minutos/financevault/pkg/logger"
)

const usage = `usage: authctl <command>

commands:
  register      create an account and sign in
  login         sign in
  logout        sign out
  status        show the stored session
  visit <path>  request a page through the gateway`

// Swapped out in tests.
var (
	isTerminal   = term.IsTerminal
	readPassword = term.ReadPassword
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, usage)
		return errors.New("missing command")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadClient(ctx)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "authctl"})
	log := logger.Get()

	rt, err := client.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(context.Background()); err != nil {
			log.Warn().Err(err).Msg("closing session profile")
		}
	}()

	unsubscribe := rt.Store.Subscribe(progress(os.Stderr))
	defer unsubscribe()

	p := &prompter{in: bufio.NewReader(os.Stdin), out: os.Stderr, fd: int(os.Stdin.Fd())}
	if err := dispatch(ctx, rt, p, os.Stdout, args); err != nil {
		if status := backend.StatusCode(err); status != 0 {
			return fmt.Errorf("%w (backend status %d)", err, status)
		}
		return err
	}
	return nil
}

// progress prints a line each time a request starts.
func progress(w io.Writer) func(domain.AuthState) {
	loading := false
	return func(st domain.AuthState) {
		if st.IsLoading && !loading {
			fmt.Fprintln(w, "contacting server...")
		}
		loading = st.IsLoading
	}
}

func dispatch(ctx context.Context, rt *client.Runtime, p *prompter, out io.Writer, args []string) error {
	switch args[0] {
	case "register":
		username, err := p.line("Username: ")
		if err != nil {
			return err
		}
		password, err := p.secret("Password: ")
		if err != nil {
			return err
		}
		confirm, err := p.secret("Confirm password: ")
		if err != nil {
			return err
		}
		user, err := rt.Auth.SignUp(ctx, username, password, confirm)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "registered and signed in as %s (id %s)\n", user.Username, user.ID)
		return nil

	case "login":
		username, err := p.line("Username: ")
		if err != nil {
			return err
		}
		password, err := p.secret("Password: ")
		if err != nil {
			return err
		}
		user, err := rt.Auth.SignIn(ctx, username, password)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "signed in as %s\n", user.Username)
		return nil

	case "logout":
		if err := rt.Auth.SignOut(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "signed out")
		return nil

	case "status":
		printStatus(out, rt)
		return nil

	case "visit":
		if len(args) < 2 {
			return errors.New("visit needs a path")
		}
		path := args[1]
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		nav, err := rt.Gateway.Navigate(ctx, path)
		if err != nil {
			return err
		}
		if nav.RedirectTo != "" {
			fmt.Fprintf(out, "%d redirect to %s\n", nav.StatusCode, nav.RedirectTo)
			return nil
		}
		fmt.Fprintf(out, "%d authenticated=%t\n", nav.StatusCode, nav.Authenticated)
		return nil
	}

	return fmt.Errorf("unknown command %q\n%s", args[0], usage)
}

func printStatus(out io.Writer, rt *client.Runtime) {
	st := rt.Store.State()
	if !st.IsAuthenticated || st.User == nil {
		fmt.Fprintln(out, "not signed in")
		return
	}
	fmt.Fprintf(out, "signed in as %s (id %s)\n", st.User.Username, st.User.ID)
	fmt.Fprintf(out, "gateway cookie: %t\n", rt.Gateway.HasSessionCookie())
}

// prompter reads answers from the terminal. Secrets are read without echo
// when fd is a terminal and as a plain line otherwise.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
}

func (p *prompter) line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	s, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(s), nil
}

func (p *prompter) secret(prompt string) (string, error) {
	if !isTerminal(p.fd) {
		return p.line(prompt)
	}
	fmt.Fprint(p.out, prompt)
	b, err := readPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(b), nil
}
