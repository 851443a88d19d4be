package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/captionly/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a username and password, creates the account and
// keeps the returned session.
func (a *App) Register(ctx context.Context) error {
	userName, password, err := a.promptCredentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.api.Register(ctx, userName, password)
	if err != nil {
		return err
	}
	if err := a.session.Save(res.Token); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	a.printResult(res)
	return nil
}

// Login prompts for credentials and keeps the returned session.
func (a *App) Login(ctx context.Context) error {
	userName, password, err := a.promptCredentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.api.Login(ctx, userName, password)
	if err != nil {
		return err
	}
	if err := a.session.Save(res.Token); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	a.printResult(res)
	return nil
}

// Logout forgets the local session. The server call only clears the
// cookie, so it is best effort.
func (a *App) Logout(ctx context.Context) error {
	if _, err := a.api.Logout(ctx); err != nil {
		fmt.Fprintf(a.out, "server logout failed: %v\n", err)
	}
	if err := a.session.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) promptCredentials() (string, []byte, error) {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return "", nil, err
	}
	if userName == "" {
		return "", nil, errors.New("username is required")
	}
	password, err := getPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return userName, password, nil
}
