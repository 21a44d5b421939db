package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"chat-demo/internal/config"
	"chat-demo/internal/conversation"
	"chat-demo/internal/domain"
	"chat-demo/internal/service"
	"chat-demo/internal/storeclient"
	"chat-demo/internal/terminal"
)

type loopResult int

const (
	backToLogin loopResult = iota
	exitApp
)

const helpText = `commands:
  /contacts            list contacts
  /open <n|id>         open a chat
  /new                 create a contact
  /rec                 start or stop a voice note
  /retry               resend the last failed message
  /logout              close the session
  /quit                exit
any other line is sent to the open chat`

type chatApp struct {
	cfg      *config.Config
	logger   *zap.Logger
	client   *storeclient.Client
	in       *bufio.Reader
	out      io.Writer
	notifier *terminal.Notifier
	auth     *service.Authenticator
	guard    *service.SessionGuard
	engine   *conversation.Engine
	contacts []domain.Contact
}

func (a *chatApp) chatLoop(ctx context.Context, session domain.Session) loopResult {
	fmt.Fprintln(a.out, helpText)
	a.listContacts(ctx)

	for {
		line, err := a.prompt("> ")
		if err != nil {
			if !errors.Is(err, errQuit) {
				a.logger.Warn("read input failed", zap.Error(err))
			}
			return exitApp
		}
		if line == "" {
			continue
		}
		if !a.checkSession(ctx, session) {
			return backToLogin
		}

		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)
		switch cmd {
		case "/help":
			fmt.Fprintln(a.out, helpText)
		case "/contacts":
			a.listContacts(ctx)
		case "/open":
			a.openChat(ctx, arg)
		case "/new":
			a.newContact(ctx)
		case "/rec":
			if err := a.engine.ToggleRecording(ctx); err == nil {
				if a.engine.State().IsRecording {
					fmt.Fprintln(a.out, "recording... /rec again to send")
				}
			}
		case "/retry":
			if draft := a.engine.Draft(); draft != "" {
				_ = a.engine.SendTextMessage(ctx, draft)
			}
		case "/logout":
			if err := a.auth.Logout(ctx, session.ID); err != nil {
				a.notifier.Notify("logout failed: " + err.Error())
				continue
			}
			a.client.SetSession("")
			return backToLogin
		case "/quit":
			return exitApp
		default:
			if a.engine.State().SelectedChatID == "" {
				a.notifier.Notify("open a chat first with /open")
				continue
			}
			_ = a.engine.SendTextMessage(ctx, line)
		}
	}
}

func (a *chatApp) listContacts(ctx context.Context) {
	contacts, err := a.engine.Contacts(ctx)
	if err != nil {
		return
	}
	a.contacts = contacts
	terminal.RenderContacts(a.out, contacts)
}

// openChat acepta el indice mostrado por /contacts o un id de contacto.
func (a *chatApp) openChat(ctx context.Context, arg string) {
	if arg == "" {
		a.notifier.Notify("usage: /open <n|id>")
		return
	}
	id := arg
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(a.contacts) {
		id = a.contacts[n-1].ID
	}
	_ = a.engine.SelectContact(ctx, id)
}

func (a *chatApp) newContact(ctx context.Context) {
	var input service.ContactInput
	var err error
	if input.FirstName, err = a.prompt("first name: "); err != nil {
		return
	}
	if input.LastName, err = a.prompt("last name: "); err != nil {
		return
	}
	if input.Phone, err = a.prompt("phone: "); err != nil {
		return
	}
	if input.Country, err = a.prompt("country (ISO): "); err != nil {
		return
	}
	input.Country = strings.ToUpper(input.Country)

	contact, err := a.engine.CreateContact(ctx, input)
	if err != nil {
		return
	}
	fmt.Fprintf(a.out, "contact %s created\n", contact.FullName)
	a.listContacts(ctx)
}
