package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/team-dbx/dbx/internal/client/forms"
	"github.com/team-dbx/dbx/internal/common"
)

// initialForm is shown after a first login: upload the first logo into the
// default category.
func (a *App) initialForm(ctx context.Context) error {
	cat, ok := a.registry.Lookup(common.DefaultCategoryName)
	if !ok {
		a.notifier.Error(fmt.Sprintf("Category %q not found.", common.DefaultCategoryName))
		return errors.New("default category missing")
	}
	fmt.Fprintln(a.out, "Welcome! Upload your first logo.")
	return a.runForm(ctx, forms.Config{Mode: forms.Initial, CategoryID: cat.ID})
}

// NewResource uploads a new resource into the open category.
func (a *App) NewResource(ctx context.Context) error {
	v := a.gallery.View()
	if v.CategoryID == "" {
		fmt.Fprintln(a.out, "Open a category first")
		return nil
	}
	return a.runForm(ctx, forms.Config{Mode: forms.New, CategoryID: v.CategoryID, Destination: v.Route})
}

// NewVersion uploads a new version of resource id of the open category.
func (a *App) NewVersion(ctx context.Context, id string) error {
	v := a.gallery.View()
	if v.CategoryID == "" {
		fmt.Fprintln(a.out, "Open a category first")
		return nil
	}
	return a.runForm(ctx, forms.Config{Mode: forms.Version, CategoryID: v.CategoryID, ResourceID: id, Destination: v.Route})
}

func (a *App) runForm(ctx context.Context, cfg forms.Config) error {
	f, err := forms.NewForm(cfg, a.api, a.session.Read().Email, a.notifier)
	if err != nil {
		return err
	}
	if err := a.fillForm(f); err != nil {
		return err
	}

	for {
		dest, err := f.Submit(ctx)
		if err == nil {
			return a.Open(ctx, dest)
		}
		if !Confirm(a.reader, "Try again?", a.out) {
			return err
		}
	}
}

func (a *App) fillForm(f *forms.Form) error {
	var err error

	if f.Mode() != forms.Version {
		if f.Name, err = GetSimpleText(a.reader, "Resource name", a.out); err != nil {
			return err
		}
		version, err := GetSimpleText(a.reader, fmt.Sprintf("Version (empty for %s)", forms.DefaultVersion), a.out)
		if err != nil {
			return err
		}
		if version != "" {
			f.Version = version
		}
	} else {
		if f.Version, err = GetSimpleText(a.reader, "New version", a.out); err != nil {
			return err
		}
	}

	if f.Description, err = GetMultiline(a.reader, "Description", a.out); err != nil {
		return err
	}

	for _, slot := range forms.SlotNames {
		if err := a.fillSlot(f.Slots, slot); err != nil {
			return err
		}
	}
	return nil
}

// fillSlot asks for a file until one is accepted or the answer is empty.
func (a *App) fillSlot(s *forms.Slots, slot string) error {
	for {
		path, err := GetSimpleText(a.reader, fmt.Sprintf("Path to the %q SVG file (empty to skip)", slot), a.out)
		if err != nil {
			return err
		}
		if path == "" {
			return nil
		}
		err = s.Select(slot, path)
		if err == nil {
			return nil
		}
		if !errors.Is(err, forms.ErrNotSVG) {
			fmt.Fprintln(a.out, err)
		}
	}
}
