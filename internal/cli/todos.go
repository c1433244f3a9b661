package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/devhell/todo/internal/exitcode"
	"github.com/devhell/todo/internal/model"
	"github.com/devhell/todo/internal/ui"
)

const dateLayout = "2006-01-02 15:04"

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(dateLayout)
}

func cmdList(ctx context.Context, e *env, args []string) error {
	if len(args) > 0 {
		return exitcode.Usage("usage: todo ls")
	}
	if err := e.home.List(ctx); err != nil {
		return fmt.Errorf("list: %w", err)
	}
	rows := e.home.Rows()
	t := ui.Current()

	header := fmt.Sprintf("%s  %s %d",
		ui.Cw(e.Stdout, t.Title, "Todos"),
		ui.Cw(e.Stdout, t.Accent, "Total"), len(rows),
	)
	lines := []string{header, ""}
	if len(rows) == 0 {
		lines = append(lines, ui.Cw(e.Stdout, t.Muted, "no todos"))
	} else {
		cells := make([][]string, len(rows))
		for i, r := range rows {
			cells[i] = []string{
				strconv.Itoa(r.No), r.Title, r.Description,
				formatDate(r.CreatedAt), formatDate(r.UpdatedAt),
			}
		}
		// leave room for the panel frame
		width := ui.Width(e.Stdout) - 4
		lines = append(lines, ui.Table(e.Stdout,
			[]string{"No.", "Title", "Description", "Created", "Updated"}, cells, width)...)
	}
	lines = append(lines, "", ui.Cw(e.Stdout, t.Muted, "Tip: add with `todo add \"Buy milk\"`"))
	ui.Panel(e.Stdout, lines)
	return nil
}

func cmdShow(ctx context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return exitcode.Usage("usage: todo show <ref>")
	}
	row, err := e.resolve(ctx, args[0])
	if err != nil {
		return err
	}
	item, err := e.home.FetchItem(ctx, row.ID)
	if err != nil {
		return fmt.Errorf("show: %w", err)
	}

	t := ui.Current()
	lines := []string{
		ui.Cw(e.Stdout, t.Title, fmt.Sprintf("#%d %s", row.No, item.Title)),
		"",
		"ID       " + item.ID,
		"Created  " + formatDate(item.CreatedAt),
		"Updated  " + formatDate(item.UpdatedAt),
	}
	if item.Description != "" {
		lines = append(lines, "")
		for _, ln := range strings.Split(item.Description, "\n") {
			// keep blank lines of the text out of the separator rule
			if ln == "" {
				ln = " "
			}
			lines = append(lines, ln)
		}
	}
	ui.Panel(e.Stdout, lines)
	return nil
}

func cmdAdd(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("add")
	title := fs.String("t", "", "")
	desc := fs.String("d", "", "")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if *title == "" {
		*title = strings.Join(pos, " ")
	} else if len(pos) > 0 {
		return exitcode.Usage("add: give the title either with -t or as arguments")
	}
	if strings.TrimSpace(*title) == "" {
		return exitcode.Usage("usage: todo add -t <title> [-d description]")
	}

	e.home.OpenCreate()
	e.home.SetDraft(strings.TrimSpace(*title), *desc)
	item, err := e.home.Submit(ctx)
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	ui.OK(e.Stdout, "added "+quote(item.Title))
	return nil
}

func cmdEdit(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("edit")
	title := fs.String("t", "", "")
	desc := fs.String("d", "", "")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return exitcode.Usage("usage: todo edit <ref> [-t title] [-d description]")
	}
	set := setFlags(fs)
	if !set["t"] && !set["d"] {
		return exitcode.Usage("edit: nothing to change; give -t and/or -d")
	}
	if set["t"] && strings.TrimSpace(*title) == "" {
		return exitcode.Usage("edit: title cannot be empty")
	}

	row, err := e.resolve(ctx, pos[0])
	if err != nil {
		return err
	}
	if err := e.home.OpenEdit(ctx, row.ID); err != nil {
		return fmt.Errorf("edit: %w", err)
	}
	d := e.home.Draft()
	if set["t"] {
		d.Title = strings.TrimSpace(*title)
	}
	if set["d"] {
		d.Description = *desc
	}
	e.home.SetDraft(d.Title, d.Description)

	item, err := e.home.Submit(ctx)
	if err != nil {
		return fmt.Errorf("edit: %w", err)
	}
	ui.OK(e.Stdout, "updated "+quote(item.Title))
	return nil
}

func cmdRemove(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("rm")
	yes := fs.Bool("y", false, "")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return exitcode.Usage("usage: todo rm [-y] <ref>")
	}

	row, err := e.resolve(ctx, pos[0])
	if err != nil {
		return err
	}
	confirm := e.confirm
	if *yes {
		confirm = func(string) bool { return true }
	}
	issued, err := e.home.Remove(ctx, row.ID, row.Title, confirm)
	if err != nil {
		return fmt.Errorf("rm: %w", err)
	}
	if !issued {
		return exitcode.Usage("rm: cancelled")
	}
	ui.OK(e.Stdout, "removed "+quote(row.Title))
	return nil
}

func quote(s string) string {
	return strconv.Quote(ui.Truncate(s, 60))
}

// resolve fetches the list and finds ref in it.
func (e *env) resolve(ctx context.Context, ref string) (model.Row, error) {
	if err := e.home.List(ctx); err != nil {
		return model.Row{}, fmt.Errorf("list: %w", err)
	}
	return resolveRef(e.home.Rows(), ref)
}

type titleSource []model.Row

func (s titleSource) String(i int) string { return s[i].Title }
func (s titleSource) Len() int            { return len(s) }

// resolveRef finds one row by sequence number, id, exact title, or
// fuzzy title match, in that order. A number outside the list is tried
// as a title too.
func resolveRef(rows []model.Row, ref string) (model.Row, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Row{}, exitcode.Usage("empty reference")
	}

	n, numErr := strconv.Atoi(ref)
	if numErr == nil && n >= 1 && n <= len(rows) {
		return rows[n-1], nil
	}

	var exact []model.Row
	for _, r := range rows {
		if r.ID == ref {
			return r, nil
		}
		if strings.EqualFold(strings.TrimSpace(r.Title), ref) {
			exact = append(exact, r)
		}
	}
	switch len(exact) {
	case 1:
		return exact[0], nil
	case 0:
	default:
		return model.Row{}, ambiguous(ref, exact)
	}

	matches := fuzzy.FindFrom(ref, titleSource(rows))
	switch {
	case len(matches) == 0 && numErr == nil:
		return model.Row{}, exitcode.Usage(fmt.Sprintf("no todo #%d (have %d)", n, len(rows)))
	case len(matches) == 0:
		return model.Row{}, exitcode.Usage(fmt.Sprintf("no todo matches %q", ref))
	case len(matches) == 1 || matches[0].Score > matches[1].Score:
		return rows[matches[0].Index], nil
	}
	var tied []model.Row
	for _, m := range matches {
		if m.Score == matches[0].Score {
			tied = append(tied, rows[m.Index])
		}
	}
	return model.Row{}, ambiguous(ref, tied)
}

func ambiguous(ref string, rows []model.Row) error {
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, fmt.Sprintf("#%d %s", r.No, ui.Truncate(r.Title, 30)))
	}
	return exitcode.Usage(fmt.Sprintf("%q is ambiguous: %s", ref, strings.Join(names, ", ")))
}
