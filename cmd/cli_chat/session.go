package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"chat-demo/internal/domain"
	"chat-demo/internal/service"
)

var errQuit = errors.New("quit")

// authenticate valida una sesion existente o pide phone y country hasta
// obtener una nueva. Los fallos del guard redirigen al login tras el retardo.
func (a *chatApp) authenticate(ctx context.Context, sessionID string) (domain.Session, error) {
	if sessionID != "" {
		session, err := a.guard.Validate(ctx, sessionID)
		if err == nil {
			a.client.SetSession(session.ID)
			return session, nil
		}
		a.redirectToLogin(ctx, err)
	}

	for {
		if ctx.Err() != nil {
			return domain.Session{}, ctx.Err()
		}
		phone, err := a.prompt("phone: ")
		if err != nil {
			return domain.Session{}, err
		}
		country, err := a.prompt("country (ISO, e.g. US): ")
		if err != nil {
			return domain.Session{}, err
		}

		session, err := a.auth.Login(ctx, phone, strings.ToUpper(country))
		switch {
		case err == nil:
			a.client.SetSession(session.ID)
			fmt.Fprintf(a.out, "logged in, session %s\n", session.ID)
			return session, nil
		case errors.Is(err, service.ErrUserNotFound):
			a.notifier.Notify("no user with that phone and country")
		case errors.Is(err, service.ErrReadOnlyMode):
			a.notifier.Notify("the demo is in read-only mode, logging in is disabled")
		default:
			a.notifier.Notify("login failed: " + err.Error())
		}
	}
}

// checkSession corre el guard antes de cada accion del usuario.
func (a *chatApp) checkSession(ctx context.Context, session domain.Session) bool {
	if _, err := a.guard.Validate(ctx, session.ID); err != nil {
		a.redirectToLogin(ctx, err)
		return false
	}
	return true
}

func (a *chatApp) redirectToLogin(ctx context.Context, err error) {
	a.client.SetSession("")
	if !service.IsGuardError(err) {
		a.notifier.Notify("could not validate session: " + err.Error())
	} else {
		a.notifier.Notify(err.Error())
	}
	service.RedirectAfter(ctx, a.cfg.RedirectDelay, func() {
		fmt.Fprintln(a.out, "redirecting to login...")
	})
}

func (a *chatApp) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", errQuit
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
