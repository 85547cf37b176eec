package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/lychee-technology/formwave"
	"github.com/lychee-technology/formwave/factory"
)

var errUnknownCommand = errors.New("unknown command")

type app struct {
	svc *factory.Services
	cfg *formwave.Config
	out io.Writer
}

func newApp(svc *factory.Services, cfg *formwave.Config, out io.Writer) *app {
	return &app{svc: svc, cfg: cfg, out: out}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	handlers := map[string]func(context.Context, []string) error{
		"register":       a.runRegister,
		"login":          a.runLogin,
		"logout":         a.runLogout,
		"whoami":         a.runWhoami,
		"reset-password": a.runResetPassword,
		"profile":        a.runProfile,
		"list":           a.runList,
		"show":           a.runShow,
		"new":            a.runNew,
		"add-field":      a.runAddField,
		"remove-field":   a.runRemoveField,
		"move-field":     a.runMoveField,
		"duplicate":      a.runDuplicate,
		"delete":         a.runDelete,
		"theme":          a.runTheme,
		"view":           a.runView,
		"submit":         a.runSubmit,
		"responses":      a.runResponses,
		"stats":          a.runStats,
		"export":         a.runExport,
	}
	h, ok := handlers[cmd]
	if !ok {
		return fmt.Errorf("%w %q", errUnknownCommand, cmd)
	}
	zap.S().Debugw("running command", "command", cmd)
	return h(ctx, args)
}

func newFlagSet(name, usage string) *flag.FlagSet {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(os.Stdout)
	flags.Usage = func() {
		fmt.Println("Usage: formwave " + name + " " + usage)
		fmt.Println("")
		fmt.Println("Options:")
		flags.PrintDefaults()
	}
	return flags
}

// parseArgs parses flags that may follow or precede the positional
// arguments and returns the positionals. It fails when fewer than want are given.
func parseArgs(flags *flag.FlagSet, args []string, want int) ([]string, error) {
	var positional []string
	for len(args) > 0 {
		for len(args) > 0 && !strings.HasPrefix(args[0], "-") {
			positional = append(positional, args[0])
			args = args[1:]
		}
		if err := flags.Parse(args); err != nil {
			return nil, err
		}
		args = flags.Args()
		if len(args) > 0 && strings.HasPrefix(args[0], "-") {
			// "--" terminator: the rest is positional.
			positional = append(positional, args...)
			break
		}
	}
	if len(positional) < want {
		flags.Usage()
		return nil, fmt.Errorf("expected %d argument(s), got %d", want, len(positional))
	}
	return positional, nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// loadForm makes formID the current form of the store. The cache is filled
// from the backend first so a later SaveForm updates the form in place.
func (a *app) loadForm(ctx context.Context, formID string) (*formwave.Form, error) {
	if err := a.svc.Store.LoadUserForms(ctx); err != nil {
		return nil, err
	}
	form := a.svc.Store.LoadForm(ctx, formID)
	if form == nil {
		return nil, formwave.NewFormNotFoundError(formID)
	}
	return form, nil
}

func (a *app) runRegister(ctx context.Context, args []string) error {
	return a.authenticate(ctx, "register", args, a.svc.Client.Register)
}

func (a *app) runLogin(ctx context.Context, args []string) error {
	return a.authenticate(ctx, "login", args, a.svc.Client.Login)
}

func (a *app) authenticate(ctx context.Context, name string, args []string,
	fn func(ctx context.Context, email, password string) (*formwave.AuthResult, error)) error {
	flags := newFlagSet(name, "--email E --password P")
	email := flags.String("email", "", "account email")
	password := flags.String("password", os.Getenv("FORMWAVE_PASSWORD"), "account password (or FORMWAVE_PASSWORD)")
	if _, err := parseArgs(flags, args, 0); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return formwave.NewValidationError("email", "email and password are required")
	}
	res, err := fn(ctx, *email, *password)
	if err != nil {
		return err
	}
	signedIn := *email
	if res.User != nil && res.User.Email != "" {
		signedIn = res.User.Email
	}
	fmt.Fprintf(a.out, "Signed in as %s\n", signedIn)
	return nil
}

func (a *app) runLogout(ctx context.Context, args []string) error {
	if err := a.svc.Client.Logout(ctx); err != nil {
		zap.S().Warnw("remote logout failed", "error", err)
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *app) runWhoami(ctx context.Context, args []string) error {
	user, err := a.svc.Client.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}
	return a.printJSON(user)
}

func (a *app) runResetPassword(ctx context.Context, args []string) error {
	flags := newFlagSet("reset-password", "--email E")
	email := flags.String("email", "", "account email")
	if _, err := parseArgs(flags, args, 0); err != nil {
		return err
	}
	if err := a.svc.Client.RequestPasswordReset(ctx, *email); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password reset requested")
	return nil
}

func (a *app) runProfile(ctx context.Context, args []string) error {
	flags := newFlagSet("profile", "[--name N] [--avatar URL]")
	name := flags.String("name", "", "display name")
	avatar := flags.String("avatar", "", "avatar URL")
	if _, err := parseArgs(flags, args, 0); err != nil {
		return err
	}
	var update formwave.ProfileUpdate
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			update.Name = name
		case "avatar":
			update.Avatar = avatar
		}
	})
	user, err := a.svc.Client.UpdateProfile(ctx, update)
	if err != nil {
		return err
	}
	return a.printJSON(user)
}

func (a *app) runList(ctx context.Context, args []string) error {
	if err := a.svc.Store.LoadUserForms(ctx); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tFIELDS\tRESPONSES\tUPDATED")
	for _, f := range a.svc.Store.Forms() {
		responses := 0
		if f.ResponseCount != nil {
			responses = *f.ResponseCount
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", f.ID, f.Title, len(f.Fields), responses, f.UpdatedAt.Format(time.DateTime))
	}
	return tw.Flush()
}

func (a *app) runShow(ctx context.Context, args []string) error {
	pos, err := parseArgs(newFlagSet("show", "<id>"), args, 1)
	if err != nil {
		return err
	}
	form, err := a.loadForm(ctx, pos[0])
	if err != nil {
		return err
	}
	return a.printJSON(form)
}

func (a *app) runNew(ctx context.Context, args []string) error {
	flags := newFlagSet("new", "--title T [--description D] [--public]")
	title := flags.String("title", formwave.DefaultFormTitle, "form title")
	description := flags.String("description", "", "form description")
	public := flags.Bool("public", false, "allow anyone with the link to respond")
	if _, err := parseArgs(flags, args, 0); err != nil {
		return err
	}

	a.svc.Store.CreateNewForm()
	a.svc.Store.UpdateForm(formwave.FormPatch{Title: title, Description: description, IsPublic: public})
	saved, err := a.svc.Store.SaveForm(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, saved.ID)
	return nil
}

func (a *app) runAddField(ctx context.Context, args []string) error {
	flags := newFlagSet("add-field", "<id> --type T [--label L] [--required] [--top]")
	fieldType := flags.String("type", string(formwave.FieldTypeShortAnswer), "field type")
	label := flags.String("label", "", "field label (defaults per type)")
	required := flags.Bool("required", false, "answer is mandatory")
	top := flags.Bool("top", false, "insert at the top instead of the bottom")
	pos, err := parseArgs(flags, args, 1)
	if err != nil {
		return err
	}
	t := formwave.FieldType(*fieldType)
	if !t.Valid() {
		return formwave.NewValidationError("type", fmt.Sprintf("unknown field type %q", *fieldType))
	}

	if _, err := a.loadForm(ctx, pos[0]); err != nil {
		return err
	}
	fieldID := a.svc.Store.AddField(formwave.NewField(t), *top)
	updates := []formwave.FieldUpdate{formwave.SetRequired(*required)}
	if *label != "" {
		updates = append(updates, formwave.SetLabel(*label))
	}
	a.svc.Store.UpdateField(fieldID, updates...)
	if _, err := a.svc.Store.SaveForm(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, fieldID)
	return nil
}

func (a *app) runRemoveField(ctx context.Context, args []string) error {
	pos, err := parseArgs(newFlagSet("remove-field", "<id> <field-id>"), args, 2)
	if err != nil {
		return err
	}
	if _, err := a.loadForm(ctx, pos[0]); err != nil {
		return err
	}
	a.svc.Store.RemoveField(pos[1])
	_, err = a.svc.Store.SaveForm(ctx)
	return err
}

func (a *app) runMoveField(ctx context.Context, args []string) error {
	pos, err := parseArgs(newFlagSet("move-field", "<id> <field-id> up|down"), args, 3)
	if err != nil {
		return err
	}
	var dir formwave.MoveDirection
	switch pos[2] {
	case "up":
		dir = formwave.MoveUp
	case "down":
		dir = formwave.MoveDown
	default:
		return formwave.NewValidationError("direction", "must be up or down")
	}
	if _, err := a.loadForm(ctx, pos[0]); err != nil {
		return err
	}
	a.svc.Store.MoveField(pos[1], dir)
	_, err = a.svc.Store.SaveForm(ctx)
	return err
}

func (a *app) runDuplicate(ctx context.Context, args []string) error {
	pos, err := parseArgs(newFlagSet("duplicate", "<id>"), args, 1)
	if err != nil {
		return err
	}
	if err := a.svc.Store.LoadUserForms(ctx); err != nil {
		return err
	}
	dup := a.svc.Store.DuplicateForm(pos[0])
	if dup == nil {
		return formwave.NewFormNotFoundError(pos[0])
	}
	// The copy is cached locally under a fresh id the backend has never seen,
	// so it is created directly rather than through SaveForm's update path.
	saved, err := a.svc.Client.CreateForm(ctx, dup)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, saved.ID)
	return nil
}

func (a *app) runDelete(ctx context.Context, args []string) error {
	pos, err := parseArgs(newFlagSet("delete", "<id>"), args, 1)
	if err != nil {
		return err
	}
	return a.svc.Store.DeleteForm(ctx, pos[0])
}

func (a *app) runTheme(ctx context.Context, args []string) error {
	flags := newFlagSet("theme", "<id> --mode light|dark|colorful")
	mode := flags.String("mode", string(formwave.ThemeModeLight), "theme preset")
	pos, err := parseArgs(flags, args, 1)
	if err != nil {
		return err
	}
	if _, ok := formwave.ThemePreset(formwave.ThemeMode(*mode)); !ok {
		return formwave.NewValidationError("mode", fmt.Sprintf("unknown theme %q", *mode))
	}
	if _, err := a.loadForm(ctx, pos[0]); err != nil {
		return err
	}
	a.svc.Store.ApplyThemePreset(formwave.ThemeMode(*mode))
	_, err = a.svc.Store.SaveForm(ctx)
	return err
}

func (a *app) runView(ctx context.Context, args []string) error {
	pos, err := parseArgs(newFlagSet("view", "<id>"), args, 1)
	if err != nil {
		return err
	}
	form, err := a.loadForm(ctx, pos[0])
	if err != nil {
		return err
	}
	if err := a.svc.Analytics.TrackView(ctx, form.ID); err != nil {
		zap.S().Warnw("track view failed", "formId", form.ID, "error", err)
	}

	fmt.Fprintln(a.out, form.Title)
	if form.Description != "" {
		fmt.Fprintln(a.out, form.Description)
	}
	for _, f := range form.VisibleFields(map[string]any{}) {
		marker := ""
		if f.Required {
			marker = " *"
		}
		fmt.Fprintf(a.out, "  %s [%s] %s%s\n", f.ID, f.Type, f.Label, marker)
		for _, o := range f.Options {
			fmt.Fprintf(a.out, "      - %s\n", o.Value)
		}
	}
	return nil
}

func (a *app) runSubmit(ctx context.Context, args []string) error {
	pos, err := parseArgs(newFlagSet("submit", "<id> field=value..."), args, 1)
	if err != nil {
		return err
	}
	raw := make(map[string]string, len(pos)-1)
	for _, kv := range pos[1:] {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return formwave.NewValidationError(kv, "answers are given as field=value")
		}
		raw[key] = value
	}

	form, err := a.loadForm(ctx, pos[0])
	if err != nil {
		return err
	}
	answers := formwave.ParseAnswers(form, raw)
	if err := a.svc.Validator.Validate(form, answers); err != nil {
		return err
	}
	resp, err := a.svc.Client.SubmitResponse(ctx, form.ID, answers)
	if err != nil {
		return err
	}
	if err := a.svc.Analytics.TrackCompletion(ctx, form.ID); err != nil {
		zap.S().Warnw("track completion failed", "formId", form.ID, "error", err)
	}
	fmt.Fprintln(a.out, resp.ID)
	return nil
}

func (a *app) runResponses(ctx context.Context, args []string) error {
	flags := newFlagSet("responses", "<id> [--json]")
	asJSON := flags.Bool("json", false, "print raw JSON")
	pos, err := parseArgs(flags, args, 1)
	if err != nil {
		return err
	}
	form, err := a.loadForm(ctx, pos[0])
	if err != nil {
		return err
	}
	responses, err := a.svc.Client.ListResponses(ctx, form.ID)
	if err != nil {
		return err
	}
	if *asJSON {
		return a.printJSON(responses)
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	header := []string{"ID", "SUBMITTED"}
	for _, f := range form.Fields {
		header = append(header, strings.ToUpper(f.Label))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, r := range responses {
		row := []string{r.ID, r.CreatedAt.Format(time.DateTime)}
		for _, f := range form.Fields {
			row = append(row, formwave.AnswerString(r.Data[f.ID]))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func (a *app) runStats(ctx context.Context, args []string) error {
	pos, err := parseArgs(newFlagSet("stats", "<id>"), args, 1)
	if err != nil {
		return err
	}
	formID := pos[0]
	rec, err := a.svc.Analytics.Get(ctx, formID)
	if err != nil {
		return err
	}
	rate, err := a.svc.Analytics.CompletionRate(ctx, formID)
	if err != nil {
		return err
	}
	busiest, err := a.svc.Analytics.MostActiveTime(ctx, formID)
	if err != nil {
		return err
	}
	series, err := a.svc.Analytics.DailySeries(ctx, formID)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Views:            %d\n", rec.Views)
	fmt.Fprintf(a.out, "Completions:      %d\n", rec.Completions)
	fmt.Fprintf(a.out, "Completion rate:  %.1f%%\n", rate)
	fmt.Fprintf(a.out, "Most active time: %s\n", busiest)
	for _, d := range series {
		fmt.Fprintf(a.out, "  %s  views=%d completions=%d\n", d.Date, d.Views, d.Completions)
	}
	return nil
}

func (a *app) runExport(ctx context.Context, args []string) error {
	flags := newFlagSet("export", "<id> [--bucket B] [--prefix P]")
	bucket := flags.String("bucket", a.cfg.Export.Bucket, "target bucket")
	prefix := flags.String("prefix", a.cfg.Export.Prefix, "key prefix")
	pos, err := parseArgs(flags, args, 1)
	if err != nil {
		return err
	}
	form, err := a.loadForm(ctx, pos[0])
	if err != nil {
		return err
	}
	responses, err := a.svc.Client.ListResponses(ctx, form.ID)
	if err != nil {
		return err
	}

	exportCfg := a.cfg.Export
	exportCfg.Bucket = *bucket
	exportCfg.Prefix = *prefix
	exporter, err := factory.NewExporter(ctx, exportCfg)
	if err != nil {
		return err
	}
	res, err := exporter.ExportForm(ctx, form, responses)
	if err != nil {
		return err
	}
	return a.printJSON(res)
}
