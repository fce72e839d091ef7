package tui

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"sidekick/internal/engine"
)

// debounceMsg fires when a scheduled file query's debounce delay elapses.
type debounceMsg struct{ query engine.FileQuery }

// suggestionsMsg carries a suggestion result back to the engine, tagged with
// the sequence token it was requested under.
type suggestionsMsg struct {
	seq  uint64
	refs []engine.FileRef
	err  error
}

type assistantEvMsg struct{ ev engine.AssistantEvent }
type assistantClosedMsg struct{}
type spinMsg struct{}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// queryTimeout bounds a single file-suggestion walk.
const queryTimeout = 3 * time.Second

// MainModel is the bubbletea shell around the session engine. All session
// semantics live in engine.Controller; this model translates terminal events
// into controller calls and renders the controller's read-only views.
type MainModel struct {
	ctrl    *engine.Controller
	channel engine.AssistantChannel
	files   engine.SuggestionSource
	log     *slog.Logger

	theme Theme

	width  int
	height int
	ready  bool

	input  textarea.Model
	chatVP viewport.Model

	overlay *sessionOverlay
	history *promptHistory

	cancel     context.CancelFunc
	events     <-chan engine.AssistantEvent
	spinnerPos int

	// lastDraft/lastCaret mirror what the controller last saw, so input
	// updates that did not change the draft don't re-run trigger detection.
	lastDraft string
	lastCaret int

	notice string
}

func NewMainModel(ctrl *engine.Controller, channel engine.AssistantChannel, files engine.SuggestionSource, historyPath string, logger *slog.Logger) *MainModel {
	if logger == nil {
		logger = slog.Default()
	}

	ta := textarea.New()
	ta.Placeholder = "Message sidekick. @ mentions a file, / picks a command."
	ta.Focus()
	ta.CharLimit = 8000
	ta.SetHeight(1)
	ta.Prompt = " "
	ta.ShowLineNumbers = false
	// Enter sends; ctrl+j inserts a newline.
	ta.KeyMap.InsertNewline.SetKeys("ctrl+j")

	// Keep textarea styling minimal; we style the input container instead.
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle()
	ta.BlurredStyle.Base = lipgloss.NewStyle()

	m := &MainModel{
		ctrl:    ctrl,
		channel: channel,
		files:   files,
		log:     logger,
		theme:   NewTheme(),
		width:   100,
		height:  30,
		input:   ta,
		history: loadPromptHistory(historyPath),
	}

	// A restarted process cannot resume a reply stream, so a rehydrated
	// in-flight turn is stopped before the UI comes up.
	if ctrl.Generating() {
		ctrl.Stop()
	}
	m.seedInput()
	return m
}

// seedInput mirrors a rehydrated draft into the textarea.
func (m *MainModel) seedInput() {
	m.input.SetValue(m.ctrl.Draft())
	m.input.CursorEnd()
	m.lastDraft = m.ctrl.Draft()
	m.lastCaret = m.caretOffset()
}

func (m *MainModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		chatH := m.height - 8
		if chatH < 3 {
			chatH = 3
		}
		if !m.ready {
			m.chatVP = viewport.New(m.width-4, chatH)
			m.ready = true
		} else {
			m.chatVP.Width = m.width - 4
			m.chatVP.Height = chatH
		}
		m.input.SetWidth(max(10, m.width-6))
		m.refreshChat()
		m.chatVP.GotoBottom()
		return m, nil

	case debounceMsg:
		// The timer fired; skip the walk if the query has been superseded.
		if m.ctrl.QueryStale(msg.query.Seq) {
			return m, nil
		}
		return m, m.runFileQuery(msg.query)

	case suggestionsMsg:
		m.ctrl.DeliverFiles(msg.seq, msg.refs, msg.err)
		return m, nil

	case assistantEvMsg:
		if m.events == nil {
			return m, nil
		}
		m.ctrl.HandleAssistant(msg.ev)
		m.drainNotices()
		m.refreshChat()
		m.chatVP.GotoBottom()
		return m, m.waitAssistant()

	case assistantClosedMsg:
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		m.events = nil
		return m, nil

	case spinMsg:
		if m.ctrl.Generating() {
			m.spinnerPos = (m.spinnerPos + 1) % len(spinnerFrames)
			return m, m.spinTick()
		}
		return m, nil

	case tea.KeyMsg:
		return m.onKey(msg)
	}

	return m.routeToInput(msg)
}

func (m *MainModel) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""

	if m.overlay != nil {
		return m.onOverlayKey(msg)
	}

	picker := m.ctrl.PickerState()

	switch msg.String() {
	case "ctrl+c":
		if m.ctrl.Generating() {
			m.onStop()
			return m, nil
		}
		m.ctrl.Persist()
		return m, tea.Quit

	case "ctrl+q":
		m.ctrl.Persist()
		return m, tea.Quit

	case "esc":
		if picker.IsOpen() {
			m.ctrl.ClosePicker()
			return m, nil
		}

	case "up":
		if picker.IsOpen() {
			m.ctrl.MoveSelection(-1)
			return m, nil
		}
		if strings.TrimSpace(m.ctrl.Draft()) == "" || m.history.Browsing() {
			return m, m.recall(m.history.Prev())
		}

	case "down":
		if picker.IsOpen() {
			m.ctrl.MoveSelection(1)
			return m, nil
		}
		if m.history.Browsing() {
			text, ok := m.history.Next()
			if !ok {
				text = ""
			}
			return m, m.recall(text, true)
		}

	case "tab":
		if picker.IsOpen() {
			if m.ctrl.Commit() {
				m.syncDraft()
			}
			return m, nil
		}

	case "enter":
		if picker.IsOpen() && m.ctrl.Commit() {
			m.syncDraft()
			return m, nil
		}
		return m, m.onSend()

	case "pgup":
		m.chatVP.ViewUp()
		return m, nil

	case "pgdown":
		m.chatVP.ViewDown()
		return m, nil

	case "ctrl+o":
		m.overlay = newSessionOverlay()
		m.overlay.refresh(m.ctrl.Sessions(""))
		return m, nil

	case "ctrl+n":
		if err := m.ctrl.NewSession(); err == nil {
			m.syncDraft()
			m.refreshChat()
		}
		m.drainNotices()
		return m, nil

	case "ctrl+r":
		return m, m.onRegenerate()

	case "ctrl+e":
		return m, m.onEdit()

	case "ctrl+x":
		// Drop the most recent attachment, files before commands.
		if n := len(m.ctrl.Files()); n > 0 {
			m.ctrl.RemoveFile(n - 1)
		} else if n := len(m.ctrl.Commands()); n > 0 {
			m.ctrl.RemoveCommand(n - 1)
		}
		return m, nil

	case "ctrl+f":
		if files := m.ctrl.Files(); len(files) > 0 {
			m.ctrl.OpenFile(files[len(files)-1])
		}
		return m, nil
	}

	return m.routeToInput(msg)
}

func (m *MainModel) onOverlayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	o := m.overlay

	if o.renaming {
		switch msg.String() {
		case "enter":
			if meta, ok := o.selected(); ok {
				m.ctrl.Rename(meta.ID, strings.TrimSpace(o.rename.Value()))
			}
			o.stopRename()
			o.refresh(m.ctrl.Sessions(o.search.Value()))
			m.drainNotices()
			return m, nil
		case "esc":
			o.stopRename()
			return m, nil
		}
		var cmd tea.Cmd
		o.rename, cmd = o.rename.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "esc", "ctrl+o":
		m.overlay = nil
		return m, nil

	case "up":
		o.move(-1)
		return m, nil

	case "down":
		o.move(1)
		return m, nil

	case "enter":
		meta, ok := o.selected()
		if !ok {
			return m, nil
		}
		m.onStop()
		if err := m.ctrl.SwitchTo(meta.ID); err == nil {
			m.overlay = nil
			m.syncDraft()
			m.refreshChat()
			m.chatVP.GotoBottom()
		}
		m.drainNotices()
		return m, nil

	case "ctrl+n":
		m.onStop()
		if err := m.ctrl.NewSession(); err == nil {
			m.overlay = nil
			m.syncDraft()
			m.refreshChat()
		}
		m.drainNotices()
		return m, nil

	case "ctrl+r":
		o.startRename()
		return m, nil

	case "ctrl+x":
		if meta, ok := o.selected(); ok {
			m.ctrl.Delete(meta.ID)
			o.refresh(m.ctrl.Sessions(o.search.Value()))
			m.syncDraft()
			m.refreshChat()
			m.drainNotices()
		}
		return m, nil
	}

	var cmd tea.Cmd
	o.search, cmd = o.search.Update(msg)
	o.refresh(m.ctrl.Sessions(o.search.Value()))
	return m, cmd
}

// routeToInput forwards an event to the textarea and reports any draft change
// to the controller, scheduling a debounced file query when one is requested.
func (m *MainModel) routeToInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds := []tea.Cmd{cmd}

	text := m.input.Value()
	caret := m.caretOffset()
	if text != m.lastDraft || caret != m.lastCaret {
		if text != m.lastDraft {
			m.history.StopBrowsing()
		}
		m.lastDraft, m.lastCaret = text, caret
		if q := m.ctrl.SetDraft(text, caret); q != nil {
			cmds = append(cmds, m.scheduleQuery(*q))
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *MainModel) scheduleQuery(q engine.FileQuery) tea.Cmd {
	return tea.Tick(q.Delay, func(time.Time) tea.Msg { return debounceMsg{query: q} })
}

func (m *MainModel) runFileQuery(q engine.FileQuery) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		refs, err := m.files.QueryFiles(ctx, q.Query)
		return suggestionsMsg{seq: q.Seq, refs: refs, err: err}
	}
}

// recall replaces the draft with a history entry. A false ok means the edge
// of history was hit and the draft is left alone.
func (m *MainModel) recall(text string, ok bool) tea.Cmd {
	if !ok {
		return nil
	}
	var cmd tea.Cmd
	if q := m.ctrl.SetDraft(text, len([]rune(text))); q != nil {
		cmd = m.scheduleQuery(*q)
	}
	m.syncDraft()
	return cmd
}

func (m *MainModel) onSend() tea.Cmd {
	if strings.TrimSpace(m.ctrl.Draft()) == "/new" {
		m.ctrl.ClosePicker()
		if err := m.ctrl.NewSession(); err == nil {
			m.history.StopBrowsing()
			m.syncDraft()
			m.refreshChat()
		}
		m.drainNotices()
		return nil
	}

	req, ok := m.ctrl.Send()
	if !ok {
		return nil
	}
	m.history.Add(req.Text)
	m.syncDraft()
	m.drainNotices()
	m.refreshChat()
	m.chatVP.GotoBottom()
	return m.startTurn(req)
}

func (m *MainModel) startTurn(req engine.SendRequest) tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := m.channel.Send(ctx, req)
	if err != nil {
		cancel()
		m.ctrl.HandleAssistant(engine.AssistantEvent{Kind: engine.AssistantError, Err: err.Error()})
		m.drainNotices()
		m.refreshChat()
		return nil
	}
	m.cancel = cancel
	m.events = ch
	m.spinnerPos = 0
	return tea.Batch(m.waitAssistant(), m.spinTick())
}

func (m *MainModel) waitAssistant() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return assistantClosedMsg{}
		}
		return assistantEvMsg{ev: ev}
	}
}

// onStop cancels the live stream and seals the turn. Safe to call when
// nothing is running.
func (m *MainModel) onStop() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.events = nil
	if m.ctrl.Generating() {
		m.log.Debug("turn stopped by user")
		m.ctrl.Stop()
		m.refreshChat()
	}
}

func (m *MainModel) onRegenerate() tea.Cmd {
	hist := m.ctrl.History()
	for i := len(hist) - 1; i >= 0; i-- {
		if hist[i].Role != engine.RoleAssistant {
			continue
		}
		req, ok := m.ctrl.Regenerate(hist[i].Index)
		if !ok {
			return nil
		}
		m.refreshChat()
		m.chatVP.GotoBottom()
		return m.startTurn(req)
	}
	return nil
}

// onEdit prefills the composer from the most recent user message, including
// its attachments.
func (m *MainModel) onEdit() tea.Cmd {
	hist := m.ctrl.History()
	for i := len(hist) - 1; i >= 0; i-- {
		if hist[i].Role != engine.RoleUser {
			continue
		}
		msg, ok := m.ctrl.Edit(hist[i].Index)
		if !ok {
			return nil
		}
		for _, f := range msg.Files {
			m.ctrl.AttachFile(f)
		}
		for _, c := range msg.Commands {
			m.ctrl.AttachCommand(c)
		}
		var cmd tea.Cmd
		if q := m.ctrl.SetDraft(msg.Text, len([]rune(msg.Text))); q != nil {
			cmd = m.scheduleQuery(*q)
		}
		m.syncDraft()
		return cmd
	}
	return nil
}

func (m *MainModel) spinTick() tea.Cmd {
	return tea.Tick(90*time.Millisecond, func(time.Time) tea.Msg { return spinMsg{} })
}

func (m *MainModel) drainNotices() {
	notices := m.ctrl.Notices()
	if len(notices) > 0 {
		m.notice = notices[len(notices)-1]
	}
}

// caretOffset converts the textarea's row/column cursor to a rune offset into
// the whole draft.
func (m *MainModel) caretOffset() int {
	lines := strings.Split(m.input.Value(), "\n")
	row := m.input.Line()
	if row > len(lines)-1 {
		row = len(lines) - 1
	}
	off := 0
	for i := 0; i < row; i++ {
		off += len([]rune(lines[i])) + 1
	}
	info := m.input.LineInfo()
	return off + info.StartColumn + info.ColumnOffset
}

// syncDraft pushes the controller's draft and caret back into the textarea
// after a commit, send or session switch rewrote them.
func (m *MainModel) syncDraft() {
	text := m.ctrl.Draft()
	caret := m.ctrl.Caret()
	m.input.SetValue(text)
	m.input.CursorEnd()

	runes := []rune(text)
	if caret > len(runes) {
		caret = len(runes)
	}
	if caret < len(runes) {
		rest := string(runes[caret:])
		for i := 0; i < strings.Count(rest, "\n"); i++ {
			m.input.CursorUp()
		}
		prefix := string(runes[:caret])
		if j := strings.LastIndex(prefix, "\n"); j >= 0 {
			prefix = prefix[j+1:]
		}
		m.input.SetCursor(len([]rune(prefix)))
	}
	m.lastDraft = text
	m.lastCaret = m.caretOffset()
}

func (m *MainModel) View() string {
	if !m.ready {
		return "…"
	}

	top := m.renderTopBar()
	if m.overlay != nil {
		return lipgloss.JoinVertical(lipgloss.Left, top, m.overlay.view(m.theme, m.width, m.height-1))
	}

	sections := []string{top, m.theme.Pane.Width(m.width - 2).Render(m.chatVP.View())}
	if chips := m.renderAttachments(); chips != "" {
		sections = append(sections, chips)
	}
	if pop := renderPicker(m.theme, m.ctrl.PickerState(), m.width-4); pop != "" {
		sections = append(sections, pop)
	}
	sections = append(sections, m.renderInput(), m.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *MainModel) renderTopBar() string {
	title := engine.DisplayTitle(m.ctrl.ActiveSession())
	left := m.theme.TopBarTitle.Render("sidekick") + " " + m.theme.TopBarBadge.Render(title)

	status := ""
	if m.ctrl.Generating() {
		status = m.theme.Spinner.Render(spinnerFrames[m.spinnerPos] + " thinking")
	}
	right := m.theme.TopBarMeta.Render(time.Now().Format("15:04"))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(status) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}
	a := gap / 2
	b := gap - a
	return m.theme.TopBar.Render(left + strings.Repeat(" ", a) + status + strings.Repeat(" ", b) + right)
}

func (m *MainModel) renderAttachments() string {
	files := m.ctrl.Files()
	commands := m.ctrl.Commands()
	if len(files) == 0 && len(commands) == 0 {
		return ""
	}
	parts := make([]string, 0, len(files)+len(commands))
	for _, c := range commands {
		parts = append(parts, m.theme.Chip.Render("/"+c))
	}
	for _, f := range files {
		label := f.Name
		if f.IsFolder {
			label += "/"
		}
		parts = append(parts, m.theme.Chip.Render("@"+label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *MainModel) renderInput() string {
	return m.theme.InputBox.Width(max(10, m.width-2)).Render(m.input.View())
}

func (m *MainModel) renderFooter() string {
	if m.notice != "" {
		return m.theme.Notice.Width(m.width).Render(m.notice)
	}
	hints := "enter send  ctrl+j newline  ctrl+o sessions  ctrl+n new  ctrl+r retry  ctrl+e edit  ctrl+c stop/quit"
	if m.width < 90 {
		hints = "enter send  ctrl+o sessions  ctrl+c stop/quit"
	}
	return m.theme.Footer.Width(m.width).Render(hints)
}

func (m *MainModel) refreshChat() {
	if !m.ready {
		return
	}
	width := m.chatVP.Width - 2
	if width < 20 {
		width = 20
	}
	var b strings.Builder
	for i, msg := range m.ctrl.History() {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.renderMessage(msg, width))
	}
	m.chatVP.SetContent(b.String())
}

func (m *MainModel) renderMessage(msg engine.Message, width int) string {
	role := m.theme.RoleAI.Render("sidekick")
	if msg.Role == engine.RoleUser {
		role = m.theme.RoleYou.Render("you")
	}
	header := role + " " + m.theme.TopBarMeta.Render(msg.SentAt.Format("15:04"))
	for _, c := range msg.Commands {
		header += " " + m.theme.PopupDesc.Render("/"+c)
	}

	var b strings.Builder
	b.WriteString(header)
	for _, f := range msg.Files {
		b.WriteString("\n")
		b.WriteString(m.theme.PopupDesc.Render("@" + f.Path))
	}
	b.WriteString("\n")
	b.WriteString(wordwrap.String(msg.Text, width))
	return b.String()
}
