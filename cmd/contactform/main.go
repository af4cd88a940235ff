package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/smileynet/contactform"
	"github.com/smileynet/contactform/internal/config"
	"github.com/smileynet/contactform/internal/form"
	"github.com/smileynet/contactform/internal/logging"
	"github.com/smileynet/contactform/internal/outbox"
	"github.com/smileynet/contactform/internal/tui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// errInvalidForm is returned by check when at least one field fails.
var errInvalidForm = errors.New("form has invalid fields")

// CLI is the top-level command structure for contactform.
type CLI struct {
	Version kong.VersionFlag `help:"Show version." short:"V"`
	Fill    FillCmd          `cmd:"" help:"Fill in the contact form interactively."`
	Check   CheckCmd         `cmd:"" help:"Validate contact details without sending them."`
	Sent    SentCmd          `cmd:"" help:"List, show, or delete submissions saved in the outbox."`
	Config  ConfigCmd        `cmd:"" help:"Show or create configuration."`
}

// FillCmd runs the interactive contact form.
type FillCmd struct {
	NoTUI bool `help:"Force line prompts even if stdout is a TTY." default:"false"`
}

// Run executes the fill command.
func (f *FillCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("fill: %w", err)
	}

	banner, err := tui.RenderBanner(
		contactform.OverlayFS(".contactform/templates", contactform.Templates),
		tui.BannerData{BusinessName: cfg.Business.Name},
	)
	if err != nil {
		return fmt.Errorf("fill: %w", err)
	}

	opts := tui.HostOptions{
		ForcePlain:   f.NoTUI,
		Title:        "Contact " + cfg.Business.Name,
		Banner:       banner,
		Services:     cfg.Form.Services,
		SuccessDelay: cfg.Form.SuccessDelay,
	}

	// Logs would corrupt the alternate screen; only a file survives the TUI.
	logger, err := logging.New(cfg.Logging, tui.UseTUI(opts))
	if err != nil {
		return fmt.Errorf("fill: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	opts.SubmitHook = submitHook(cfg.Outbox, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := tui.NewHost(opts).Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("fill: %w", err)
	}
	return nil
}

// submitHook logs each submission and, when an outbox is configured,
// saves it there too.
func submitHook(cfg config.Outbox, logger *zap.Logger) form.SubmitHook {
	logHook := logging.SubmitHook(logger)
	if cfg.Dir == "" {
		return logHook
	}
	saveHook := outbox.NewFileStore(cfg.Dir).Hook(func(sub form.Submission, err error) {
		logger.Error("saving submission", zap.String("id", sub.ID), zap.Error(err))
	})
	return func(sub form.Submission) {
		logHook(sub)
		saveHook(sub)
	}
}

// CheckCmd validates one set of values and reports every field.
type CheckCmd struct {
	FirstName string `help:"First name." name:"first-name"`
	LastName  string `help:"Last name." name:"last-name"`
	Email     string `help:"Email address."`
	Phone     string `help:"Phone number."`
	Service   string `help:"Requested service."`
	Location  string `help:"Service location."`
	Format    string `help:"Output format." enum:"text,yaml" default:"text"`
}

// Run executes the check command.
func (c *CheckCmd) Run() error {
	return c.run(os.Stdout)
}

type checkReport struct {
	Valid  bool          `yaml:"valid"`
	Fields []checkResult `yaml:"fields"`
}

type checkResult struct {
	Name  form.FieldName `yaml:"name"`
	Valid bool           `yaml:"valid"`
	Error string         `yaml:"error,omitempty"`
}

func (c *CheckCmd) values() form.Values {
	return form.Values{
		form.FirstName: c.FirstName,
		form.LastName:  c.LastName,
		form.Email:     c.Email,
		form.Phone:     c.Phone,
		form.Service:   c.Service,
		form.Location:  c.Location,
	}
}

// run validates the flag values and writes the report to w.
// Returns errInvalidForm when any field fails.
func (c *CheckCmd) run(w io.Writer) error {
	v := form.New()
	defer v.Close()
	v.SetValues(c.values())
	valid := v.ValidateAll()

	report := checkReport{Valid: valid}
	for _, f := range v.Snapshot().Fields {
		report.Fields = append(report.Fields, checkResult{
			Name:  f.Name,
			Valid: !f.Invalid,
			Error: f.Error,
		})
	}

	if err := writeReport(w, c.Format, report); err != nil {
		return fmt.Errorf("check: %w", err)
	}
	if !valid {
		return errInvalidForm
	}
	return nil
}

func writeReport(w io.Writer, format string, report checkReport) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	}

	for _, f := range report.Fields {
		label := string(f.Name)
		if spec, ok := form.Lookup(f.Name); ok {
			label = spec.Label
		}
		if f.Valid {
			_, _ = fmt.Fprintf(w, "✓ %s\n", label)
			continue
		}
		_, _ = fmt.Fprintf(w, "✗ %s: %s\n", label, f.Error)
	}
	return nil
}

// SentCmd groups outbox subcommands.
type SentCmd struct {
	List SentListCmd `cmd:"" default:"1" help:"List saved submissions, oldest first."`
	Show SentShowCmd `cmd:"" help:"Print one saved submission."`
	Rm   SentRmCmd   `cmd:"" help:"Delete one saved submission."`
}

// openOutbox returns the configured outbox store.
func openOutbox() (*outbox.FileStore, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Outbox.Dir == "" {
		return nil, errors.New("outbox.dir is not configured")
	}
	return outbox.NewFileStore(cfg.Outbox.Dir), nil
}

type sentEntry struct {
	ID          string            `yaml:"id"`
	SubmittedAt string            `yaml:"submitted_at"`
	Values      map[string]string `yaml:"values"`
}

func newSentEntry(sub form.Submission) sentEntry {
	values := make(map[string]string, len(sub.Values))
	for k, v := range sub.Values {
		values[string(k)] = v
	}
	return sentEntry{
		ID:          sub.ID,
		SubmittedAt: sub.SubmittedAt.Format(time.RFC3339),
		Values:      values,
	}
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// SentListCmd lists submissions saved in the outbox.
type SentListCmd struct {
	Format string `help:"Output format." enum:"text,yaml" default:"text"`
}

// Run executes the sent list command.
func (c *SentListCmd) Run() error {
	store, err := openOutbox()
	if err != nil {
		return fmt.Errorf("sent: %w", err)
	}
	if err := c.run(os.Stdout, store); err != nil {
		return fmt.Errorf("sent: %w", err)
	}
	return nil
}

func (c *SentListCmd) run(w io.Writer, store *outbox.FileStore) error {
	subs, err := store.List()
	if err != nil {
		return err
	}

	if c.Format == "yaml" {
		entries := make([]sentEntry, 0, len(subs))
		for _, sub := range subs {
			entries = append(entries, newSentEntry(sub))
		}
		return writeYAML(w, entries)
	}

	if len(subs) == 0 {
		_, _ = fmt.Fprintf(w, "No submissions in %s\n", store.Dir())
		return nil
	}
	for _, sub := range subs {
		_, _ = fmt.Fprintf(w, "%s  %s  %s %s <%s>  %s\n",
			sub.SubmittedAt.Local().Format("2006-01-02 15:04"), sub.ID,
			sub.Values[form.FirstName], sub.Values[form.LastName],
			sub.Values[form.Email], sub.Values[form.Service])
	}
	return nil
}

// SentShowCmd prints every field of one saved submission.
type SentShowCmd struct {
	ID     string `arg:"" help:"Submission ID."`
	Format string `help:"Output format." enum:"text,yaml" default:"text"`
}

// Run executes the sent show command.
func (c *SentShowCmd) Run() error {
	store, err := openOutbox()
	if err != nil {
		return fmt.Errorf("sent show: %w", err)
	}
	if err := c.run(os.Stdout, store); err != nil {
		return fmt.Errorf("sent show: %w", err)
	}
	return nil
}

func (c *SentShowCmd) run(w io.Writer, store *outbox.FileStore) error {
	sub, found, err := store.Load(c.ID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no submission %s in %s", c.ID, store.Dir())
	}

	if c.Format == "yaml" {
		return writeYAML(w, newSentEntry(sub))
	}

	_, _ = fmt.Fprintf(w, "%-17s %s\n", "ID:", sub.ID)
	_, _ = fmt.Fprintf(w, "%-17s %s\n", "Submitted:", sub.SubmittedAt.Local().Format("2006-01-02 15:04:05"))
	for _, spec := range form.Fields() {
		_, _ = fmt.Fprintf(w, "%-17s %s\n", spec.Label+":", sub.Values[spec.Name])
	}
	return nil
}

// SentRmCmd deletes one saved submission.
type SentRmCmd struct {
	ID string `arg:"" help:"Submission ID."`
}

// Run executes the sent rm command.
func (c *SentRmCmd) Run() error {
	store, err := openOutbox()
	if err != nil {
		return fmt.Errorf("sent rm: %w", err)
	}
	if err := c.run(os.Stdout, store); err != nil {
		return fmt.Errorf("sent rm: %w", err)
	}
	return nil
}

func (c *SentRmCmd) run(w io.Writer, store *outbox.FileStore) error {
	if _, found, err := store.Load(c.ID); err != nil {
		return err
	} else if !found {
		return fmt.Errorf("no submission %s in %s", c.ID, store.Dir())
	}
	if err := store.Remove(c.ID); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "removed %s\n", c.ID)
	return nil
}

// ConfigCmd groups configuration subcommands.
type ConfigCmd struct {
	Show  ConfigShowCmd  `cmd:"" default:"1" help:"Print the effective configuration."`
	Init  ConfigInitCmd  `cmd:"" help:"Write the sample configuration file."`
	Check ConfigCheckCmd `cmd:"" help:"Validate one configuration file on its own."`
}

// ConfigShowCmd prints the merged configuration as YAML.
type ConfigShowCmd struct{}

// Run executes the config show command.
func (c *ConfigShowCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return c.run(os.Stdout, cfg)
}

func (c *ConfigShowCmd) run(w io.Writer, cfg *config.Config) error {
	data, err := cfg.Marshal()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// ConfigInitCmd writes the embedded sample configuration to disk.
type ConfigInitCmd struct {
	Path  string `help:"Destination file." default:".contactform/config.yaml" type:"path"`
	Force bool   `help:"Overwrite an existing file."`
}

// Run executes the config init command.
func (c *ConfigInitCmd) Run() error {
	if err := c.run(os.Stdout); err != nil {
		return fmt.Errorf("config init: %w", err)
	}
	return nil
}

func (c *ConfigInitCmd) run(w io.Writer) error {
	if !c.Force {
		if _, err := os.Stat(c.Path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", c.Path)
		}
	}
	data, err := fs.ReadFile(contactform.Templates, contactform.SampleConfig)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(c.Path, data, 0o644); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "wrote %s\n", c.Path)
	return nil
}

// ConfigCheckCmd loads a single config file over the defaults and validates it.
type ConfigCheckCmd struct {
	Path string `arg:"" help:"Config file to check." type:"path"`
}

// Run executes the config check command.
func (c *ConfigCheckCmd) Run() error {
	if err := c.run(os.Stdout); err != nil {
		return fmt.Errorf("config check: %w", err)
	}
	return nil
}

func (c *ConfigCheckCmd) run(w io.Writer) error {
	if _, err := os.Stat(c.Path); err != nil {
		return err
	}
	cfg, err := config.Load(c.Path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%s: %w", c.Path, err)
	}
	_, _ = fmt.Fprintf(w, "%s: ok\n", c.Path)
	return nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadLayered(
		os.ExpandEnv("$HOME/.config/contactform/config.yaml"),
		".contactform/config.yaml",
	)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

const (
	exitSuccess = 0
	exitInvalid = 1
	exitSetup   = 2
)

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	if errors.Is(err, errInvalidForm) || errors.Is(err, tui.ErrInputClosed) {
		return exitInvalid
	}
	return exitSetup
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Description("Contact form for "+config.DefaultConfig().Business.Name+"."),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	err := ctx.Run()
	if err != nil {
		if !errors.Is(err, errInvalidForm) {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
		}
		os.Exit(exitCode(err))
	}
}
