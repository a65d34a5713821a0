// Package settings is the settings screen: appearance, the AI provider,
// mail-in, backups and data export.
package settings

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/smartnote/internal/keys"
	"github.com/nhle/smartnote/internal/model"
	"github.com/nhle/smartnote/internal/theme"
)

// Mode represents the current state of the settings screen.
type Mode int

const (
	ModeList           Mode = iota // Menu of settings
	ModeForm                       // Editing one section
	ModeValidating                 // Testing a connection
	ModeValidateResult             // Showing the test outcome
	ModeConfirmLogout              // Confirm sign out
)

// CloseMsg returns to the dashboard.
type CloseMsg struct{}

// ThemeMsg persists a theme choice.
type ThemeMsg struct {
	Theme model.Theme
}

// SaveAIMsg persists the AI provider settings. An empty APIKey keeps the
// stored key. The app answers with ValidateResultMsg.
type SaveAIMsg struct {
	Config model.AIConfig
	APIKey string
}

// SaveMailinMsg persists the mail-in settings. An empty Password keeps the
// stored one.
type SaveMailinMsg struct {
	Config   model.MailinConfig
	Password string
}

// SaveBackupMsg persists the backup bucket settings.
type SaveBackupMsg struct {
	Config model.BackupConfig
}

// ImportMailMsg asks the app to import unseen mail now.
type ImportMailMsg struct{}

// BackupNowMsg asks the app to upload a snapshot now.
type BackupNowMsg struct{}

// ExportMsg asks the app to write every note as Markdown under Dir.
type ExportMsg struct {
	Dir string
}

// ImportMsg asks the app to import Markdown files under Root matching Glob.
type ImportMsg struct {
	Root string
	Glob string
}

// TutorialMsg replays the dashboard tutorial.
type TutorialMsg struct{}

// UpgradeMsg opens the subscription modal.
type UpgradeMsg struct{}

// LogoutMsg signs the user out.
type LogoutMsg struct{}

// ValidateResultMsg carries the result of a connection test.
type ValidateResultMsg struct {
	Name string
	Err  error
}

type item struct {
	id    string
	label string
}

var items = []item{
	{"theme", "Appearance"},
	{"ai", "AI provider"},
	{"mailin", "Mail-in"},
	{"mailin-run", "Import mail now"},
	{"backup", "Cloud backup"},
	{"backup-run", "Back up now"},
	{"export", "Export notes as Markdown"},
	{"import", "Import Markdown files"},
	{"plan", "Subscription"},
	{"tutorial", "Replay tutorial"},
	{"logout", "Sign out"},
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	theme string

	provider string
	model    string
	baseURL  string
	apiKey   string

	host     string
	port     string
	username string
	password string
	mailbox  string
	tls      bool
	limit    string
	poll     string

	bucket string
	region string
	prefix string

	dir  string
	glob string

	confirm bool
}

// Model is the Bubble Tea model for the settings screen.
type Model struct {
	mode        Mode
	section     string
	keys        *keys.KeyMap
	cfg         model.AppConfig
	user        model.User
	hasKey      bool
	selectedIdx int
	form        *huh.Form
	fb          *formBindings
	spinner     spinner.Model
	validName   string
	validError  error
	statusMsg   string
	width       int
	height      int
}

// New creates the settings screen.
func New(k *keys.KeyMap, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		mode:    ModeList,
		keys:    k,
		fb:      &formBindings{},
		spinner: sp,
		width:   width,
		height:  height,
	}
}

// SetConfig shows the current settings. hasKey reports whether an API key
// is stored for the configured provider.
func (m *Model) SetConfig(cfg model.AppConfig, user model.User, hasKey bool) {
	m.cfg = cfg
	m.user = user
	m.hasKey = hasKey
}

// SetStatus shows a one-line result for an action run by the app.
func (m *Model) SetStatus(s string) {
	m.statusMsg = s
}

// Mode returns the current mode.
func (m Model) Mode() Mode {
	return m.mode
}

// Update handles messages and dispatches based on current mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ValidateResultMsg:
		m.validName = msg.Name
		m.validError = msg.Err
		m.mode = ModeValidateResult
		return m, nil

	case spinner.TickMsg:
		if m.mode == ModeValidating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeList:
			return m.handleListKeys(msg)
		case ModeValidating:
			if msg.String() == "esc" {
				m.mode = ModeList
			}
			return m, nil
		case ModeValidateResult:
			if msg.String() == "enter" || msg.String() == "esc" {
				m.mode = ModeList
				m.validError = nil
			}
			return m, nil
		}
	}

	if m.mode == ModeForm || m.mode == ModeConfirmLogout {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) handleListKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		m.selectedIdx = (m.selectedIdx + 1) % len(items)
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.selectedIdx = (m.selectedIdx - 1 + len(items)) % len(items)
		return m, nil

	case key.Matches(msg, m.keys.Select):
		return m.open(items[m.selectedIdx].id)
	}
	return m, nil
}

// open starts the form or action behind a menu item.
func (m Model) open(id string) (Model, tea.Cmd) {
	m.statusMsg = ""
	m.section = id

	var form *huh.Form
	switch id {
	case "theme":
		m.fb.theme = m.cfg.Display.Theme
		form = m.buildThemeForm()
	case "ai":
		m.fb.provider = m.cfg.AI.Provider
		m.fb.model = m.cfg.AI.Model
		m.fb.baseURL = m.cfg.AI.BaseURL
		m.fb.apiKey = ""
		form = m.buildAIForm()
	case "mailin":
		c := m.cfg.Mailin
		m.fb.host, m.fb.username, m.fb.mailbox, m.fb.tls = c.Host, c.Username, c.Mailbox, c.TLS
		m.fb.port = strconv.Itoa(c.Port)
		m.fb.limit = strconv.Itoa(c.Limit)
		m.fb.poll = strconv.Itoa(c.PollMinutes)
		m.fb.password = ""
		form = m.buildMailinForm()
	case "backup":
		c := m.cfg.Backup
		m.fb.bucket, m.fb.region, m.fb.prefix = c.Bucket, c.Region, c.Prefix
		form = m.buildBackupForm()
	case "export":
		m.fb.dir = ""
		form = m.buildDirForm("Export to directory", false)
	case "import":
		m.fb.dir = ""
		m.fb.glob = "**/*.md"
		form = m.buildDirForm("Import from directory", true)
	case "logout":
		m.fb.confirm = false
		m.form = m.buildLogoutForm()
		m.mode = ModeConfirmLogout
		return m, m.form.Init()
	case "mailin-run":
		if m.cfg.Mailin.Host == "" {
			m.statusMsg = "Configure mail-in first."
			return m, nil
		}
		m.statusMsg = "Checking mail..."
		return m, func() tea.Msg { return ImportMailMsg{} }
	case "backup-run":
		if m.cfg.Backup.Bucket == "" {
			m.statusMsg = "Configure cloud backup first."
			return m, nil
		}
		m.statusMsg = "Uploading backup..."
		return m, func() tea.Msg { return BackupNowMsg{} }
	case "plan":
		return m, func() tea.Msg { return UpgradeMsg{} }
	case "tutorial":
		return m, func() tea.Msg { return TutorialMsg{} }
	default:
		return m, nil
	}

	m.form = form
	m.mode = ModeForm
	return m, m.form.Init()
}

func (m Model) buildThemeForm() *huh.Form {
	opts := make([]huh.Option[string], 0, len(model.Themes))
	for _, t := range model.Themes {
		opts = append(opts, huh.NewOption(strings.ToUpper(string(t[:1]))+string(t[1:]), string(t)))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Theme").
				Description("System follows your terminal's background.").
				Options(opts...).
				Value(&m.fb.theme),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) buildAIForm() *huh.Form {
	keyHint := "No key stored. Leave empty to keep using environment variables."
	if m.hasKey {
		keyHint = "A key is stored. Leave empty to keep it."
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Provider").
				Options(
					huh.NewOption("Google Gemini", "gemini"),
					huh.NewOption("OpenAI (or compatible)", "openai"),
					huh.NewOption("Anthropic Claude", "anthropic"),
				).
				Value(&m.fb.provider),
			huh.NewInput().
				Title("Model").
				Description("Leave empty for the provider default.").
				Placeholder("gemini-2.5-flash").
				Value(&m.fb.model),
			huh.NewInput().
				Title("Base URL").
				Description("Optional, for OpenAI-compatible or proxy endpoints.").
				Value(&m.fb.baseURL).
				Validate(validateOptionalURL),
			huh.NewInput().
				Title("API key").
				Description(keyHint).
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.apiKey),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) buildMailinForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("IMAP Host").
				Placeholder("imap.gmail.com").
				Value(&m.fb.host).
				Validate(validateRequired("Host")),
			huh.NewInput().
				Title("IMAP Port").
				Placeholder("993").
				Value(&m.fb.port).
				Validate(validatePort),
			huh.NewInput().
				Title("Username").
				Placeholder("user@example.com").
				Value(&m.fb.username).
				Validate(validateRequired("Username")),
			huh.NewInput().
				Title("Password").
				Description("Stored in the system keyring. Leave empty to keep it.").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password),
			huh.NewInput().
				Title("Mailbox").
				Placeholder("INBOX").
				Value(&m.fb.mailbox),
			huh.NewConfirm().
				Title("Use TLS?").
				Value(&m.fb.tls),
			huh.NewInput().
				Title("Messages per import").
				Value(&m.fb.limit).
				Validate(validatePositive),
			huh.NewInput().
				Title("Check every (minutes)").
				Description("0 checks only when you ask.").
				Value(&m.fb.poll).
				Validate(validateNonNegative),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) buildBackupForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("S3 bucket").
				Value(&m.fb.bucket).
				Validate(validateRequired("Bucket")),
			huh.NewInput().
				Title("Region").
				Placeholder("us-east-1").
				Value(&m.fb.region),
			huh.NewInput().
				Title("Key prefix").
				Placeholder("smartnote/").
				Value(&m.fb.prefix),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) buildDirForm(title string, withGlob bool) *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title(title).
			Placeholder("~/notes").
			Value(&m.fb.dir).
			Validate(validateRequired("Directory")),
	}
	if withGlob {
		fields = append(fields, huh.NewInput().
			Title("Files").
			Description("A glob such as **/*.md or journal/*.md").
			Value(&m.fb.glob))
	}
	return huh.NewForm(huh.NewGroup(fields...)).
		WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) buildLogoutForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Sign out?").
				Description("Your notes stay on this device.").
				Affirmative("Sign out").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateAborted {
		m.mode = ModeList
		return m, nil
	}
	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.mode = ModeList
	if m.section == "logout" {
		if m.fb.confirm {
			return m, func() tea.Msg { return LogoutMsg{} }
		}
		return m, nil
	}
	return m.submit()
}

// submit turns the completed form into a message for the app.
func (m Model) submit() (Model, tea.Cmd) {
	fb := m.fb
	switch m.section {
	case "theme":
		t := model.ParseTheme(fb.theme)
		m.cfg.Display.Theme = string(t)
		return m, func() tea.Msg { return ThemeMsg{Theme: t} }

	case "ai":
		cfg := m.cfg.AI
		cfg.Provider = fb.provider
		cfg.Model = strings.TrimSpace(fb.model)
		cfg.BaseURL = strings.TrimSpace(fb.baseURL)
		req := SaveAIMsg{Config: cfg, APIKey: strings.TrimSpace(fb.apiKey)}
		m.mode = ModeValidating
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg { return req })

	case "mailin":
		cfg := m.cfg.Mailin
		cfg.Host = strings.TrimSpace(fb.host)
		cfg.Port, _ = strconv.Atoi(strings.TrimSpace(fb.port))
		cfg.Username = strings.TrimSpace(fb.username)
		cfg.Mailbox = strings.TrimSpace(fb.mailbox)
		if cfg.Mailbox == "" {
			cfg.Mailbox = "INBOX"
		}
		cfg.TLS = fb.tls
		cfg.Limit, _ = strconv.Atoi(strings.TrimSpace(fb.limit))
		cfg.PollMinutes, _ = strconv.Atoi(strings.TrimSpace(fb.poll))
		req := SaveMailinMsg{Config: cfg, Password: fb.password}
		return m, func() tea.Msg { return req }

	case "backup":
		cfg := model.BackupConfig{
			Bucket: strings.TrimSpace(fb.bucket),
			Region: strings.TrimSpace(fb.region),
			Prefix: strings.TrimSpace(fb.prefix),
		}
		return m, func() tea.Msg { return SaveBackupMsg{Config: cfg} }

	case "export":
		dir := strings.TrimSpace(fb.dir)
		m.statusMsg = "Exporting..."
		return m, func() tea.Msg { return ExportMsg{Dir: dir} }

	case "import":
		req := ImportMsg{Root: strings.TrimSpace(fb.dir), Glob: strings.TrimSpace(fb.glob)}
		m.statusMsg = "Importing..."
		return m, func() tea.Msg { return req }
	}
	return m, nil
}

// View renders the settings screen.
func (m Model) View() string {
	switch m.mode {
	case ModeForm, ModeConfirmLogout:
		return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
	case ModeValidating:
		return lipgloss.NewStyle().Padding(1, 2).Render(
			m.spinner.View() + " Testing connection to your AI provider...\n\n" +
				theme.HelpStyle.Render("esc cancel"))
	case ModeValidateResult:
		return m.viewResult()
	}
	return m.viewList()
}

func (m Model) viewList() string {
	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("⚙  Settings"))
	b.WriteString("\n")
	if m.user.Email != "" {
		plan := "Free"
		if m.user.IsPremium() {
			plan = "Pro ✨"
		}
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGray).Render(
			fmt.Sprintf("Signed in as %s (%s) · %s plan", m.user.Username, m.user.Email, plan)))
		b.WriteString("\n\n")
	}

	for i, it := range items {
		line := fmt.Sprintf("%-26s %s", it.label,
			lipgloss.NewStyle().Foreground(theme.ColorGray).Render(m.summary(it.id)))
		if i == m.selectedIdx {
			b.WriteString(theme.SelectedItemStyle.Render(line))
		} else {
			b.WriteString(theme.ListItemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.NoticeStyle.Render(m.statusMsg))
	}
	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render("enter open | esc back"))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// summary is the current value shown beside a menu item.
func (m Model) summary(id string) string {
	switch id {
	case "theme":
		return string(model.ParseTheme(m.cfg.Display.Theme))
	case "ai":
		s := m.cfg.AI.Provider
		if m.cfg.AI.Model != "" {
			s += " · " + m.cfg.AI.Model
		}
		if !m.hasKey {
			s += " · no key"
		}
		return s
	case "mailin":
		if m.cfg.Mailin.Host == "" {
			return "not configured"
		}
		return m.cfg.Mailin.Username + "@" + m.cfg.Mailin.Host
	case "backup":
		if m.cfg.Backup.Bucket == "" {
			return "not configured"
		}
		return "s3://" + m.cfg.Backup.Bucket + "/" + m.cfg.Backup.Prefix
	}
	return ""
}

func (m Model) viewResult() string {
	var content string
	if m.validError != nil {
		content = theme.ErrorStyle.Render(fmt.Sprintf("✗ %s: connection failed", m.validName)) +
			"\n\n" + lipgloss.NewStyle().Width(m.formWidth()).Render(m.validError.Error())
	} else {
		content = lipgloss.NewStyle().Foreground(theme.ColorGreen).Bold(true).Render(
			fmt.Sprintf("✓ %s: connected", m.validName))
	}
	content += "\n\n" + theme.HelpStyle.Render("enter continue")
	return lipgloss.NewStyle().Padding(1, 2).Render(content)
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

// --- Validators ---

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateOptionalURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parsed, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return errors.New("URL must include scheme and host (e.g., https://api.example.com)")
	}
	return nil
}

func validatePort(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 65535 {
		return errors.New("port must be a number between 1 and 65535")
	}
	return nil
}

func validatePositive(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return errors.New("must be a positive number")
	}
	return nil
}

func validateNonNegative(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return errors.New("must be zero or a positive number")
	}
	return nil
}
