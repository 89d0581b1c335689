package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tuanano/wms-web/internal/config"
	"github.com/tuanano/wms-web/internal/models"
	"github.com/tuanano/wms-web/internal/services/relocation"
	relviews "github.com/tuanano/wms-web/internal/tui/views/relocation"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// MaxContentWidth is the maximum width for content display
const MaxContentWidth = 140

// chromeLines is the height used by the header, alert bar and footer.
const chromeLines = 6

// Module represents a view module in the application.
type Module string

const (
	ModuleByLocator Module = "by_locator"
	ModuleByItem    Module = "by_item"
	ModuleHelp      Module = "help"
)

// App is the main Bubble Tea application model.
type App struct {
	// Dependencies
	ctx    context.Context
	svc    *relocation.Service
	config *config.Config
	logger *slog.Logger
	now    func() time.Time

	// Views
	byLocator *relviews.ByLocatorView
	byItem    *relviews.ByItemView

	// UI state
	theme       *Theme
	keys        KeyMap
	width       int
	height      int
	ready       bool
	quitting    bool
	showConfirm bool

	// Current view
	currentModule  Module
	previousModule Module

	// Relocation state. pending holds a batch waiting for the second
	// confirmation; lastResult is the undo history.
	pending       *relocation.Batch
	pendingModule Module
	applying      bool
	lastResult    *relocation.ApplyResult
	lastAppliedAt time.Time

	// Alerts
	alerts []Alert
}

// Alert represents a console message.
type Alert struct {
	Level   AlertLevel
	Message string
	Time    time.Time
}

// AlertLevel indicates the severity of an alert.
type AlertLevel int

const (
	AlertInfo AlertLevel = iota
	AlertWarning
	AlertCritical
)

// tickMsg is sent periodically to update the UI.
type tickMsg time.Time

type locationLoadedMsg struct {
	locationID string
	units      []*models.InventoryUnit
	err        error
}

type resolvedMsg struct {
	res relocation.Resolution
	err error
}

type batchAppliedMsg struct {
	module Module
	batch  *relocation.Batch
	result *relocation.ApplyResult
	err    error
}

type undoneMsg struct {
	result *relocation.ApplyResult
	err    error
}

// New creates a new App instance over a loaded relocation service.
func New(svc *relocation.Service, cfg *config.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}

	limit := cfg.Relocation.SuggestionLimit
	theme := NewTheme(cfg.Display.ColorScheme)

	byLocator := relviews.NewByLocatorView(svc, limit)
	byItem := relviews.NewByItemView(svc, limit)
	theme.StyleLines(byLocator.Editor())
	theme.StyleLines(byItem.Editor())

	return &App{
		ctx:           context.Background(),
		svc:           svc,
		config:        cfg,
		logger:        logger,
		now:           time.Now,
		byLocator:     byLocator,
		byItem:        byItem,
		theme:         theme,
		keys:          DefaultKeyMap(),
		currentModule: ModuleByLocator,
		alerts:        []Alert{},
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tickCmd()
}

// tickCmd returns a command that sends tick messages.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.updateViewDimensions()
		return a, nil

	case tickMsg:
		if a.lastResult != nil && !a.UndoAvailable() {
			a.lastResult = nil
		}
		return a, tickCmd()

	case locationLoadedMsg:
		if msg.err != nil {
			a.logger.Debug("location load failed", "location", msg.locationID, "error", msg.err)
		}
		a.byLocator.SetUnits(msg.locationID, msg.units, msg.err)
		return a, nil

	case resolvedMsg:
		a.byItem.SetResolution(msg.res, msg.err)
		return a, nil

	case batchAppliedMsg:
		return a, a.handleApplied(msg)

	case undoneMsg:
		return a, a.handleUndone(msg)
	}

	return a, nil
}

// handleKeyPress processes key press events.
func (a *App) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle quit confirmation first (modal takes priority)
	if a.showConfirm {
		switch msg.String() {
		case "y", "Y", "enter":
			a.quitting = true
			return a, tea.Quit
		case "n", "N", "esc":
			a.showConfirm = false
		}
		return a, nil
	}

	if a.pending != nil {
		return a, a.handleWarningKeys(msg)
	}

	if a.keys.IsQuit(msg) {
		a.showConfirm = true
		return a, nil
	}

	// The quantity prompt needs every key, ctrl+s included
	if a.currentModule == ModuleByItem && a.byItem.Prompting() {
		a.byItem.HandleKey(msg.String())
		return a, nil
	}

	if a.keys.IsFunctionKey(msg) {
		return a, a.switchModule(a.keys.GetFunctionKeyModule(msg))
	}

	if a.currentModule == ModuleHelp {
		switch {
		case msg.String() == "q":
			a.showConfirm = true
		case a.keys.Back.Matches(msg):
			a.currentModule = a.previousModule
			a.previousModule = ""
			if a.currentModule == "" {
				a.currentModule = ModuleByLocator
			}
		}
		return a, nil
	}

	if a.keys.Confirm.Matches(msg) {
		return a, a.submit()
	}
	if a.keys.Undo.Matches(msg) {
		return a, a.undo()
	}

	return a, a.handleViewKeys(msg)
}

// switchModule moves to another screen. Stock may have moved while the
// screen was hidden, so its lines are checked again.
func (a *App) switchModule(module Module) tea.Cmd {
	switch module {
	case ModuleHelp:
		if a.currentModule != ModuleHelp {
			a.previousModule = a.currentModule
		}
		a.currentModule = ModuleHelp
	case ModuleByLocator:
		a.currentModule = ModuleByLocator
		if loc := a.byLocator.Location(); loc != nil {
			return a.loadLocation(loc.ID)
		}
	case ModuleByItem:
		a.currentModule = ModuleByItem
		a.byItem.Editor().Revalidate()
	}
	return nil
}

// handleViewKeys forwards a key to the active relocation view and runs the
// lookup it asks for.
func (a *App) handleViewKeys(msg tea.KeyMsg) tea.Cmd {
	var action relviews.Action
	switch a.currentModule {
	case ModuleByLocator:
		action = a.byLocator.HandleKey(msg.String())
	case ModuleByItem:
		action = a.byItem.HandleKey(msg.String())
	}

	if e := a.activeEditor(); e != nil {
		if n := e.Notice(); n != "" {
			a.AddAlert(AlertInfo, n)
		}
	}

	switch action {
	case relviews.ActionLoad:
		return a.loadLocation(a.byLocator.Query())
	case relviews.ActionResolve:
		return a.resolve(a.byItem.Query())
	}
	return nil
}

// handleWarningKeys answers the second confirmation for a batch with warnings.
func (a *App) handleWarningKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		batch, module := a.pending, a.pendingModule
		a.pending = nil
		batch.Confirm()
		return a.apply(batch, module)
	case "n", "N", "esc":
		a.pending = nil
		a.AddAlert(AlertInfo, "Move cancelled")
	}
	return nil
}

func (a *App) activeEditor() *relviews.LineEditor {
	switch a.currentModule {
	case ModuleByLocator:
		return a.byLocator.Editor()
	case ModuleByItem:
		return a.byItem.Editor()
	}
	return nil
}

// ============================================================================
// COMMANDS
// ============================================================================

func (a *App) loadLocation(locationID string) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		units, err := a.svc.FetchUnitsAtLocation(ctx, locationID)
		return locationLoadedMsg{locationID: locationID, units: units, err: err}
	}
}

func (a *App) resolve(identifier string) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		res, err := a.svc.ResolveIdentifier(ctx, identifier)
		return resolvedMsg{res: res, err: err}
	}
}

// submit builds a batch from the active screen's drafts. Lines with errors
// are left out; a batch with warnings waits for a second confirmation.
func (a *App) submit() tea.Cmd {
	if a.applying {
		return nil
	}
	e := a.activeEditor()
	if e == nil {
		return nil
	}

	batch, err := a.svc.BuildBatch(e.Lines(), e.Drafts())
	if err != nil {
		a.AddAlert(AlertCritical, "Cannot build move: "+err.Error())
		return nil
	}
	if batch.IsEmpty() {
		a.AddAlert(AlertCritical, "No valid lines to move")
		return nil
	}
	if n := len(batch.Rejected); n > 0 {
		a.AddAlert(AlertWarning, fmt.Sprintf("%d lines with errors left out", n))
	}

	if batch.NeedsConfirmation() {
		a.pending = batch
		a.pendingModule = a.currentModule
		return nil
	}
	return a.apply(batch, a.currentModule)
}

func (a *App) apply(batch *relocation.Batch, module Module) tea.Cmd {
	a.applying = true
	ctx := a.ctx
	return func() tea.Msg {
		result, err := a.svc.ApplyBatch(ctx, batch)
		return batchAppliedMsg{module: module, batch: batch, result: result, err: err}
	}
}

func (a *App) handleApplied(msg batchAppliedMsg) tea.Cmd {
	a.applying = false
	if msg.err != nil {
		a.logger.Error("relocation failed", "error", msg.err)
		a.AddAlert(AlertCritical, "Move failed: "+msg.err.Error())
		return nil
	}

	a.lastResult = msg.result
	a.lastAppliedAt = a.now()

	a.AddAlert(AlertInfo, fmt.Sprintf("Moved %d lines (%d units)", len(msg.batch.Lines), msg.result.UnitsMoved()))
	a.reportSkipped(msg.result)

	if msg.module == ModuleByItem {
		a.byItem.Applied(msg.batch)
	}
	return a.refresh()
}

// undo replays the inverse of the last batch while the window is open.
func (a *App) undo() tea.Cmd {
	if a.applying {
		return nil
	}
	if !a.UndoAvailable() {
		a.lastResult = nil
		a.AddAlert(AlertWarning, "Nothing to undo")
		return nil
	}

	result := a.lastResult
	a.lastResult = nil
	a.applying = true
	ctx := a.ctx
	return func() tea.Msg {
		undone, err := a.svc.Undo(ctx, result)
		return undoneMsg{result: undone, err: err}
	}
}

func (a *App) handleUndone(msg undoneMsg) tea.Cmd {
	a.applying = false
	if msg.err != nil {
		a.logger.Error("undo failed", "error", msg.err)
		a.AddAlert(AlertCritical, "Undo failed: "+msg.err.Error())
		return nil
	}

	a.AddAlert(AlertInfo, fmt.Sprintf("Undid %d moves (%d units)", len(msg.result.Applied), msg.result.UnitsMoved()))
	a.reportSkipped(msg.result)
	return a.refresh()
}

func (a *App) reportSkipped(result *relocation.ApplyResult) {
	if len(result.Skipped) == 0 {
		return
	}
	first := result.Skipped[0]
	a.AddAlert(AlertWarning, fmt.Sprintf("%d moves skipped (%s: %v)",
		len(result.Skipped), first.Request.UnitID, first.Err))
}

// refresh brings both screens back in line with the inventory.
func (a *App) refresh() tea.Cmd {
	a.byItem.Editor().Revalidate()
	if loc := a.byLocator.Location(); loc != nil {
		return a.loadLocation(loc.ID)
	}
	return nil
}

// UndoAvailable reports whether the last batch can still be undone.
func (a *App) UndoAvailable() bool {
	return a.UndoRemaining() > 0
}

// UndoRemaining returns how long the undo offer stays open.
func (a *App) UndoRemaining() time.Duration {
	if a.lastResult == nil || len(a.lastResult.Applied) == 0 {
		return 0
	}
	left := a.config.Relocation.UndoWindow() - a.now().Sub(a.lastAppliedAt)
	if left < 0 {
		return 0
	}
	return left
}

// updateViewDimensions fits the line tables to the terminal.
func (a *App) updateViewDimensions() {
	width := a.contentWidth()
	if a.suggestionsPanelShown() {
		width -= sidePanelWidth + panelGap
	}
	widths := LineColumnWidths(width)
	rows := max(a.contentHeight()-14, 3)

	for _, e := range []*relviews.LineEditor{a.byLocator.Editor(), a.byItem.Editor()} {
		e.SetColumnWidths(widths)
		e.SetVisibleRows(rows)
	}
}

// ============================================================================
// RENDERING
// ============================================================================

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initializing..."
	}

	if a.quitting {
		return a.theme.Title.Render("Relocation console shutting down...")
	}

	var b strings.Builder

	// Header
	b.WriteString(a.renderHeader())
	b.WriteString("\n")

	// Alert bar
	b.WriteString(a.renderAlertBar())
	b.WriteString("\n")

	contentHeight := a.contentHeight()
	switch {
	case a.showConfirm:
		b.WriteString(a.renderConfirmDialog(contentHeight))
	case a.pending != nil:
		b.WriteString(a.renderWarningDialog(contentHeight))
	default:
		b.WriteString(a.renderContent(contentHeight))
	}

	// Footer/status bar
	b.WriteString("\n")
	b.WriteString(a.renderFooter())

	return b.String()
}

// renderHeader renders the top header bar.
func (a *App) renderHeader() string {
	title := fmt.Sprintf("WAREHOUSE RELOCATION CONSOLE v%s", Version)

	var screen string
	switch a.currentModule {
	case ModuleByLocator:
		screen = "BY LOCATION"
	case ModuleByItem:
		screen = "BY ITEM"
	default:
		screen = "HELP"
	}
	info := fmt.Sprintf("%s | %s", a.config.Warehouse.Name, screen)

	spacing := a.width - lipgloss.Width(title) - lipgloss.Width(info) - 4
	if spacing < 1 {
		spacing = 1
	}

	header := a.theme.Header.Render(title) +
		strings.Repeat(" ", spacing) +
		a.theme.Header.Render(info)

	return header + "\n" + a.theme.HeaderRule(a.width)
}

// renderAlertBar renders the clock, the latest alert and the undo offer.
func (a *App) renderAlertBar() string {
	divider := a.theme.Divider.Render()
	timeDisplay := a.theme.Clock.Render(a.now().Format("15:04:05"))

	var alertText string
	switch {
	case a.applying:
		alertText = a.theme.Busy.Render("Moving stock...")
	case len(a.alerts) > 0:
		alertText = a.theme.AlertText(a.alerts[0], max(a.width-40, 10))
	default:
		alertText = a.theme.Idle.Render("Ready")
	}

	bar := timeDisplay + divider + alertText
	if left := a.UndoRemaining(); left > 0 {
		secs := int((left + time.Second - 1) / time.Second)
		bar += divider + a.theme.UndoOffer.Render(fmt.Sprintf("^Z undo %ds", secs))
	}
	return bar
}

// renderContent renders the main content area based on current module.
func (a *App) renderContent(height int) string {
	content := a.getModuleContent(height)

	contentWidth := min(a.width, MaxContentWidth)

	style := lipgloss.NewStyle().
		Width(a.width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Top)

	contentStyle := lipgloss.NewStyle().
		Width(contentWidth)

	return style.Render(contentStyle.Render(content))
}

// getModuleContent returns the content for the current module.
func (a *App) getModuleContent(height int) string {
	switch a.currentModule {
	case ModuleByLocator:
		return a.withSidePanel(a.byLocator.Render(a.width, height), a.byLocator.Editor(), a.byLocator.Location())
	case ModuleByItem:
		return a.withSidePanel(a.byItem.Render(a.width, height), a.byItem.Editor(), nil)
	default:
		return a.renderHelp()
	}
}

func (a *App) suggestionsPanelShown() bool {
	return a.config.Display.ShowSuggestions && !handheld(a.width)
}

// contentWidth is the terminal width bounded for the line tables.
func (a *App) contentWidth() int {
	return min(max(a.width, minContentWidth), MaxContentWidth)
}

// contentHeight is what the header, alert bar and footer leave.
func (a *App) contentHeight() int {
	return max(a.height-chromeLines, 5)
}

// withSidePanel adds the slot gauge and destination suggestions next to a
// screen, or under it when there is no room.
func (a *App) withSidePanel(main string, e *relviews.LineEditor, loc *models.Location) string {
	if !a.suggestionsPanelShown() {
		return main
	}

	var panels []string
	if loc != nil {
		panels = append(panels, a.theme.SlotPanel(loc))
	}
	if s := e.RenderSuggestions(); s != "" {
		panels = append(panels, a.theme.DestinationsPanel(s))
	}
	return besidePanels(main, panels, a.contentWidth())
}

// renderHelp renders the help screen.
func (a *App) renderHelp() string {
	var b strings.Builder

	b.WriteString(a.theme.Title.Render("=== HELP ==="))
	b.WriteString("\n\n")

	sections := []struct {
		title string
		items [][2]string
	}{
		{"SCREENS", [][2]string{
			{"F1", "Help"},
			{"F2", "Relocate by location"},
			{"F3", "Relocate by item (serial, lot, pallet, product)"},
			{"F10", "Quit"},
		}},
		{"LINES", [][2]string{
			{"Enter", "Load location / scan item"},
			{"Tab", "Switch between input and lines"},
			{"Up/Down", "Move between lines"},
			{"Space", "Select line"},
			{"Ctrl+B", "Copy destination to selected lines"},
			{"Ctrl+G", "Suggest destinations"},
			{"Ctrl+X", "Remove last unit (by item)"},
			{"Ctrl+K", "Remove line (by item)"},
		}},
		{"MOVES", [][2]string{
			{"Ctrl+S", "Move drafted lines"},
			{"Ctrl+Z", fmt.Sprintf("Undo last move (within %s)", a.config.Relocation.UndoWindow())},
		}},
	}

	for _, sec := range sections {
		b.WriteString(a.theme.Section.Render(sec.title))
		b.WriteString("\n\n")
		for _, item := range sec.items {
			b.WriteString("    " + a.theme.Key.Width(10).Render(item[0]) + a.theme.Text.Render(item[1]))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(a.theme.Hint.Render("Press Esc to return, Q to quit"))

	return b.String()
}

// renderConfirmDialog renders the quit confirmation dialog.
func (a *App) renderConfirmDialog(height int) string {
	dialog := a.theme.Dialog.Render(
		a.theme.Title.Render("CONFIRM EXIT") + "\n\n" +
			a.theme.Text.Render("Are you sure you want to exit?") + "\n\n" +
			a.theme.Label.Render("[Y]es  [N]o"),
	)

	return a.centered(dialog, height)
}

// renderWarningDialog asks for the second confirmation of a batch that
// moves stock onto occupied or mixed destinations.
func (a *App) renderWarningDialog(height int) string {
	var b strings.Builder
	b.WriteString(a.theme.Title.Render("CONFIRM WARNINGS"))
	b.WriteString("\n\n")
	b.WriteString(a.theme.Text.Render("These destinations need a second confirmation:"))
	b.WriteString("\n")
	for _, dest := range a.pending.WarningDestinations() {
		b.WriteString(a.theme.Severity(models.SeverityWarning).Render("  - " + dest))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(a.theme.Text.Render(fmt.Sprintf("Move %d lines (%d units)?",
		len(a.pending.Lines), a.pending.UnitCount())))
	b.WriteString("\n\n")
	b.WriteString(a.theme.Label.Render("[Y]es  [N]o"))

	return a.centered(a.theme.Dialog.Render(b.String()), height)
}

func (a *App) centered(s string, height int) string {
	style := lipgloss.NewStyle().
		Width(a.width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center)

	return style.Render(s)
}

// renderFooter renders the bottom status bar.
func (a *App) renderFooter() string {
	separator := a.theme.Separator(a.width)
	return separator + "\n" + a.theme.Footer.Render(a.keys.StatusBarHelp())
}

// AddAlert adds a new alert to the display.
func (a *App) AddAlert(level AlertLevel, message string) {
	a.alerts = append([]Alert{{
		Level:   level,
		Message: message,
		Time:    a.now(),
	}}, a.alerts...)

	// Keep only last 10 alerts
	if len(a.alerts) > 10 {
		a.alerts = a.alerts[:10]
	}
}

// ClearAlerts removes all alerts.
func (a *App) ClearAlerts() {
	a.alerts = []Alert{}
}

// Run starts the console and blocks until it exits or ctx is cancelled.
func Run(ctx context.Context, svc *relocation.Service, cfg *config.Config, logger *slog.Logger) error {
	app := New(svc, cfg, logger)
	app.ctx = ctx

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
