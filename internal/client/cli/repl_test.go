package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }

func (f *fakeExec) Login(context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}

func (f *fakeExec) WhoAmI(context.Context) error {
	f.calls = append(f.calls, "whoami")
	return nil
}

func (f *fakeExec) Logout(context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}

func TestRunREPL_Commands(t *testing.T) {
	f := &fakeExec{}
	var out bytes.Buffer

	input := "help\nwhoami\n\nlogin\nhelp\nwhoami\nlogout\nbogus\nexit\nlogin\n"
	runREPL(context.Background(), f, func() string { return "" }, rdr(input), &out)

	assert.Equal(t, []string{"login", "whoami", "logout"}, f.calls)
	assert.Contains(t, out.String(), "Available commands: login, exit")
	assert.Contains(t, out.String(), "Available commands: whoami, logout, exit")
	assert.Contains(t, out.String(), "Please log in first")
	assert.Contains(t, out.String(), "Unknown command: bogus")
	assert.Contains(t, out.String(), "Bye!")
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	f := &fakeExec{}
	var out bytes.Buffer

	runREPL(context.Background(), f, func() string { return "(x)" }, rdr("login"), &out)

	assert.Equal(t, []string{"login"}, f.calls)
	assert.Contains(t, out.String(), "gauth (x)> ")
}
