package cli

import (
	"context"
	"fmt"

	"github.com/team-dbx/dbx/internal/common"
)

// Login runs the federated sign-in. A first-time user is taken to the
// bootstrap upload form, everybody else lands on the default category.
func (a *App) Login(ctx context.Context) error {
	res, err := a.auth.Login(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s\n", res.Email)

	if res.InitialUser {
		return a.initialForm(ctx)
	}
	return a.Open(ctx, common.DefaultCategoryName)
}

// Logout signs out and drops whatever the gallery was still loading.
func (a *App) Logout(ctx context.Context) error {
	err := a.auth.Logout(ctx)
	a.gallery.Close()
	fmt.Fprintln(a.out, "Logged out")
	return err
}
