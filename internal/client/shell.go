package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

const helpText = `Available commands:
  register              create an account
  verify [username]     confirm an account with the emailed code
  check <username>      check whether a username is free
  login                 sign in
  logout                forget the saved session
  whoami                show the signed-in user
  messages              list received messages, newest first
  delete <id>           delete a received message
  accept on|off         start or stop accepting messages
  status                show whether messages are accepted
  send <username>       send an anonymous message
  suggest               get message ideas
  help                  show this help
  exit                  leave the shell`

// Shell is the interactive command loop.
type Shell struct {
	API      *API
	Sessions *SessionStore
	Prompt   *Prompter
	Out      io.Writer
}

// Run reads commands until "exit", end of input or ctx cancellation.
func (s *Shell) Run(ctx context.Context) error {
	if tok := s.Sessions.Current().Token; tok != "" {
		s.API.Token = tok
	}

	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := s.Prompt.Line("feedliner> ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" {
			fmt.Fprintln(s.Out, "Bye")
			return nil
		}
		if err := s.exec(ctx, args); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			fmt.Fprintln(s.Out, "error:", err)
		}
	}
}

func (s *Shell) exec(ctx context.Context, args []string) error {
	switch args[0] {
	case "help":
		fmt.Fprintln(s.Out, helpText)
	case "register":
		return s.register(ctx)
	case "verify":
		return s.verify(ctx, args[1:])
	case "check":
		if len(args) < 2 {
			fmt.Fprintln(s.Out, "Usage: check <username>")
			return nil
		}
		_, msg, err := s.API.CheckUsername(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(s.Out, msg)
	case "login":
		return s.login(ctx)
	case "logout":
		s.API.Token = ""
		if err := s.Sessions.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(s.Out, "Signed out")
	case "whoami":
		user, err := s.API.Me(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.Out, "%s (id %s, verified %t, accepting messages %t)\n",
			user.Username, user.ID, user.IsVerified, user.IsAcceptingMessages)
	case "messages":
		return s.messages(ctx)
	case "delete":
		if len(args) < 2 {
			fmt.Fprintln(s.Out, "Usage: delete <id>")
			return nil
		}
		if err := s.API.DeleteMessage(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintln(s.Out, "Message deleted")
	case "accept":
		if len(args) < 2 || (args[1] != "on" && args[1] != "off") {
			fmt.Fprintln(s.Out, "Usage: accept on|off")
			return nil
		}
		accepting, err := s.API.SetAcceptingMessages(ctx, args[1] == "on")
		if err != nil {
			return err
		}
		fmt.Fprintf(s.Out, "Accepting messages: %t\n", accepting)
	case "status":
		accepting, err := s.API.AcceptingMessages(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.Out, "Accepting messages: %t\n", accepting)
	case "send":
		if len(args) < 2 {
			fmt.Fprintln(s.Out, "Usage: send <username>")
			return nil
		}
		content, err := s.Prompt.Line("Message: ")
		if err != nil {
			return err
		}
		msg, err := s.API.SendMessage(ctx, args[1], content)
		if err != nil {
			return err
		}
		fmt.Fprintln(s.Out, msg)
	case "suggest":
		questions, err := s.API.Suggest(ctx)
		if err != nil {
			return err
		}
		for i, q := range questions {
			fmt.Fprintf(s.Out, "%d. %s\n", i+1, q)
		}
	default:
		fmt.Fprintln(s.Out, "Unknown command. Type 'help' for a list of commands.")
	}
	return nil
}

func (s *Shell) register(ctx context.Context) error {
	username, err := s.Prompt.Line("Username: ")
	if err != nil {
		return err
	}
	email, err := s.Prompt.Line("Email: ")
	if err != nil {
		return err
	}
	password, err := s.Prompt.Password("Password: ")
	if err != nil {
		return err
	}
	msg, err := s.API.SignUp(ctx, username, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.Out, msg)
	return nil
}

func (s *Shell) verify(ctx context.Context, args []string) error {
	var username string
	if len(args) > 0 {
		username = args[0]
	} else {
		var err error
		if username, err = s.Prompt.Line("Username: "); err != nil {
			return err
		}
	}
	code, err := s.Prompt.Line("Verification code: ")
	if err != nil {
		return err
	}
	msg, err := s.API.VerifyCode(ctx, username, code)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.Out, msg)
	return nil
}

func (s *Shell) login(ctx context.Context) error {
	identifier, err := s.Prompt.Line("Username or email: ")
	if err != nil {
		return err
	}
	password, err := s.Prompt.Password("Password: ")
	if err != nil {
		return err
	}
	sess, err := s.API.SignIn(ctx, identifier, password)
	if err != nil {
		return err
	}
	if err := s.Sessions.Save(sess); err != nil {
		return err
	}
	s.API.Token = sess.Token
	fmt.Fprintf(s.Out, "Signed in as %s\n", sess.User.Username)
	return nil
}

func (s *Shell) messages(ctx context.Context) error {
	messages, err := s.API.Messages(ctx)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		fmt.Fprintln(s.Out, "No messages yet")
		return nil
	}
	for _, m := range messages {
		fmt.Fprintf(s.Out, "%s  %s\n  %s\n", m.ID, m.CreatedAt.Local().Format(time.DateTime), m.Content)
	}
	return nil
}
