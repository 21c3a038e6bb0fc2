package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"

	"github.com/team-dbx/dbx/internal/client/controller"
	"github.com/team-dbx/dbx/internal/dto"
)

// writeClipboard is a test seam for clipboard.WriteAll.
var writeClipboard = clipboard.WriteAll

var errNoSelection = errors.New("no resource selected")

// Categories prints the category bar, marking the open one.
func (a *App) Categories(ctx context.Context) error {
	route := a.gallery.View().Route
	names := a.registry.Names()
	if len(names) == 0 {
		fmt.Fprintln(a.out, "No categories loaded yet. Try: open BrandLogo")
		return nil
	}
	for _, name := range names {
		marker := " "
		if name == route {
			marker = "*"
		}
		fmt.Fprintf(a.out, "%s %s\n", marker, name)
	}
	return nil
}

// Open routes the gallery to a category and prints its resources.
func (a *App) Open(ctx context.Context, name string) error {
	if err := a.gallery.Open(ctx, name); err != nil {
		a.log.Debug(ctx, "open category failed", "category", name, "error", err)
		return err
	}
	return a.List(ctx)
}

func (a *App) List(ctx context.Context) error {
	v := a.gallery.View()
	switch v.State {
	case controller.ResourcesReady:
	case controller.CategoryNotFound:
		fmt.Fprintf(a.out, "Category %q does not exist\n", v.Route)
		return nil
	default:
		fmt.Fprintf(a.out, "Nothing to show (%s)\n", v.State)
		return nil
	}

	fmt.Fprintf(a.out, "%s: %d resource(s)\n", v.Route, len(v.Resources))
	for i, r := range v.Resources {
		marker := " "
		if r.ID == v.Selection.ResourceID {
			marker = "*"
		}
		label := r.ID
		if r.Name != "" {
			label = fmt.Sprintf("%s  %s %s", r.ID, r.Name, r.Version)
		}
		fmt.Fprintf(a.out, "%s %2d. %s\n      %s\n", marker, i+1, label, v.URLs[i])
	}
	return nil
}

func (a *App) Select(ctx context.Context, id string) error {
	if err := a.gallery.Select(ctx, id); err != nil {
		return err
	}
	return a.Show(ctx)
}

func (a *App) Deselect(ctx context.Context) error {
	a.gallery.Deselect()
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	if err := a.gallery.Refresh(ctx); err != nil {
		if errors.Is(err, controller.ErrNoCategory) {
			fmt.Fprintln(a.out, "Open a category first")
		}
		return err
	}
	return a.List(ctx)
}

func (a *App) Delete(ctx context.Context, id string) error {
	if err := a.gallery.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %s\n", id)
	return a.List(ctx)
}

func (a *App) selection() (controller.Selection, error) {
	sel := a.gallery.View().Selection
	if sel.ResourceID == "" || sel.Detail == nil {
		fmt.Fprintln(a.out, "Select a resource first")
		return sel, errNoSelection
	}
	return sel, nil
}

func formatDate(s string) string {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Local().Format("2006-01-02")
	}
	return s
}

// Show prints the detail panel of the selected resource.
func (a *App) Show(ctx context.Context) error {
	sel, err := a.selection()
	if err != nil {
		return err
	}
	d := sel.Detail

	fmt.Fprintf(a.out, "%s\n", d.ResourceName)
	fmt.Fprintf(a.out, "  Category:    %s\n", d.CategoryName)
	fmt.Fprintf(a.out, "  Author:      %s\n", d.AuthorName)
	fmt.Fprintf(a.out, "  Upload date: %s\n", formatDate(d.UploadDate))
	fmt.Fprintf(a.out, "  Version:     %s\n", d.Version)
	printFiles(a, d.Files)
	return nil
}

func printFiles(a *App, files []dto.FileRecord) {
	for _, f := range files {
		fmt.Fprintf(a.out, "  - %-8s svg: %s\n", f.FileName, f.SvgURL)
		if f.PngURL != "" {
			fmt.Fprintf(a.out, "    %-8s png: %s\n", "", f.PngURL)
		}
	}
}

// Versions prints the version history of the selected resource.
func (a *App) Versions(ctx context.Context) error {
	sel, err := a.selection()
	if err != nil {
		return err
	}
	versions, err := a.api.ResourceVersions(ctx, sel.CategoryID, sel.ResourceID)
	if err != nil {
		a.notifier.Error(controller.LoadErrorMessage)
		return err
	}

	if len(versions) == 0 {
		fmt.Fprintln(a.out, "No previous versions")
		return nil
	}
	for _, v := range versions {
		fmt.Fprintf(a.out, "%s  %s  %s\n", v.Version, formatDate(v.UploadDate), v.AuthorName)
		if v.Description != "" {
			fmt.Fprintf(a.out, "  %s\n", v.Description)
		}
		printFiles(a, v.Files)
	}
	return nil
}

// Download saves one file of the selected resource in the given format.
func (a *App) Download(ctx context.Context, fileName, format string) error {
	sel, err := a.selection()
	if err != nil {
		return err
	}

	for _, f := range sel.Detail.Files {
		if f.FileName != fileName {
			continue
		}
		fileURL := f.SvgURL
		if format == "png" {
			fileURL = f.PngURL
		}
		if fileURL == "" {
			fmt.Fprintf(a.out, "No %s file for %q\n", format, fileName)
			return nil
		}
		path, err := a.downloads.Download(ctx, fileURL)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Saved %s\n", path)
		return nil
	}

	fmt.Fprintf(a.out, "No file %q in this resource\n", fileName)
	return nil
}

// CopyLink puts the shareable address of the selected resource on the
// clipboard.
func (a *App) CopyLink(ctx context.Context) error {
	sel, err := a.selection()
	if err != nil {
		return err
	}

	link := a.api.ShareLink(sel.CategoryID, sel.ResourceID)
	fmt.Fprintln(a.out, link)
	if err := writeClipboard(link); err != nil {
		a.log.Warn(ctx, "clipboard unavailable", "error", err)
		a.notifier.Error("Copy failed...")
		return err
	}
	a.notifier.Success("Copy success!")
	return nil
}
