package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/client/route"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

// printFn is a test seam for prompts and REPL messages. In tests, replace it with a stub.
var printFn = fmt.Print

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	currentScreen() route.Screen
	Navigate(path string)
	Login(ctx context.Context) error
	Signup(ctx context.Context) error
	EnterOTP(ctx context.Context, digits string) error
	Backspace() error
	Verify(ctx context.Context) error
	Resend(ctx context.Context) error
	Profile()
	Logout(ctx context.Context) error
}

var helpText = map[route.Screen]string{
	route.Login:  "Available commands: login, signup, go <path>, exit",
	route.Signup: "Available commands: signup, login, go <path>, exit",
	route.OTP:    "Available commands: <digits>, back, verify, resend, login, go <path>, exit",
	route.Home:   "Available commands: profile, logout, go <path>, exit",
}

// runREPL starts a simple read-eval-print loop for the gophauth CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Which commands are accepted depends on the
// current screen. The loop exits on EOF or when the user types "exit" or
// "quit".
//
// Prompt & Commands
//
// The prompt shows the screen and the status (from statusFn):
//
//	Any screen:
//	  - help           show available commands
//	  - go <path>      open /login, /signup, /otp-screen, /home or / (route guard)
//	  - login          sign in
//	  - signup         create an account
//	  - exit | quit    leave the program
//
//	OTP screen:
//	  - <digits>       type or paste at the focused slot; a full code is submitted
//	  - back           backspace at the focused slot
//	  - verify         submit the code
//	  - resend         request a new code
//
//	Home screen:
//	  - profile        show the account
//	  - logout         sign out
//
// Any errors returned by command handlers are ignored here; handlers
// report their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		screen := a.currentScreen()
		printFn(fmt.Sprintf("gophauth [%s] %s> ", screen, statusFn()))

		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		if screen == route.OTP && common.IsDigits(cmd) {
			_ = a.EnterOTP(ctx, cmd)
			continue
		}

		switch {
		case cmd == "help":
			printFn(helpText[screen] + "\n")

		case cmd == "go":
			if len(args) == 0 {
				printFn("Usage: go <path>\n")
				continue
			}
			a.Navigate(args[0])

		case cmd == "login":
			_ = a.Login(ctx)

		case cmd == "signup" || cmd == "register":
			_ = a.Signup(ctx)

		case cmd == "back" && screen == route.OTP:
			_ = a.Backspace()

		case cmd == "verify" && screen == route.OTP:
			_ = a.Verify(ctx)

		case cmd == "resend" && screen == route.OTP:
			_ = a.Resend(ctx)

		case cmd == "profile" && screen == route.Home:
			a.Profile()

		case cmd == "logout" && screen == route.Home:
			_ = a.Logout(ctx)

		case cmd == "exit" || cmd == "quit":
			printFn("Bye!\n")
			return

		default:
			printFn("Unknown command: " + cmd + "\n")
		}
	}
}
