// Command console is an interactive terminal client for an auskunft
// gateway. Questions typed at the prompt are sent to the ask endpoint;
// answers and their cited sources accumulate in a scrollable transcript.
//
// Usage:
//
//	console -url http://localhost:8080
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rhuss/auskunft/pkg/api"
)

func main() {
	url := flag.String("url", "http://localhost:8080", "base URL of the auskunft gateway")
	topK := flag.Int("top-k", 0, "chunks to retrieve per question (0 uses the server default)")
	flag.Parse()

	client := &gatewayClient{
		baseURL: strings.TrimRight(*url, "/"),
		topK:    *topK,
		http:    &http.Client{Timeout: 2 * time.Minute},
	}

	if _, err := tea.NewProgram(newModel(client), tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "console failed:", err)
		os.Exit(1)
	}
}

// gatewayClient asks questions over the gateway's HTTP API.
type gatewayClient struct {
	baseURL string
	topK    int
	http    *http.Client
}

func (c *gatewayClient) Ask(question string) (*api.AskResponse, error) {
	body, err := json.Marshal(api.AskRequest{Question: question, TopK: c.topK})
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Post(c.baseURL+"/v1/ask", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error != nil {
			return nil, errResp.Error
		}
		return nil, fmt.Errorf("gateway returned %s", resp.Status)
	}

	var answer api.AskResponse
	if err := json.Unmarshal(data, &answer); err != nil {
		return nil, fmt.Errorf("decode answer: %w", err)
	}
	return &answer, nil
}

type askDoneMsg struct{ resp *api.AskResponse }

type askFailedMsg struct{ err error }

// model is the Bubble Tea model: a prompt below a transcript viewport,
// with a spinner while a question is in flight.
type model struct {
	client     *gatewayClient
	input      textinput.Model
	viewport   viewport.Model
	spin       spinner.Model
	transcript []string
	waiting    bool
	status     string
	ready      bool
}

func newModel(client *gatewayClient) model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return model{
		client:   client,
		input:    ti,
		viewport: viewport.New(0, 0),
		spin:     sp,
		status:   "Connected to " + client.baseURL + ". Type a question.",
	}
}

func (m model) Init() tea.Cmd { return textinput.Blink }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptStyle.GetFrameSize()
		_, ph := promptStyle.GetFrameSize()
		reserved := 2 + th + ph // header, status, frames
		vh := msg.Height - reserved - 1
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = vh
		m.viewport.SetContent(m.transcriptView())
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.waiting {
				return m, nil
			}
			m.transcript = append(m.transcript, questionStyle.Render("You: ")+q)
			m.input.Reset()
			m.waiting = true
			m.status = ""
			m.viewport.SetContent(m.transcriptView())
			m.viewport.GotoBottom()
			return m, tea.Batch(m.spin.Tick, ask(m.client, q))
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case askDoneMsg:
		m.waiting = false
		m.transcript = append(m.transcript, renderAnswer(msg.resp))
		m.status = statusLine(msg.resp)
		m.viewport.SetContent(m.transcriptView())
		m.viewport.GotoBottom()
		return m, nil

	case askFailedMsg:
		m.waiting = false
		m.status = errorStyle.Render("Error: " + msg.err.Error())
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if !m.ready {
		return "Loading..."
	}
	status := m.status
	if m.waiting {
		status = m.spin.View() + "waiting for the gateway..."
	}
	return headerStyle.Render("auskunft console") + "\n" +
		transcriptStyle.Render(m.viewport.View()) + "\n" +
		promptStyle.Render(m.input.View()) + "\n" +
		status
}

// ask runs the HTTP request off the update loop and reports back as a
// message.
func ask(client *gatewayClient, question string) tea.Cmd {
	return func() tea.Msg {
		resp, err := client.Ask(question)
		if err != nil {
			return askFailedMsg{err: err}
		}
		return askDoneMsg{resp: resp}
	}
}

func (m model) transcriptView() string {
	if len(m.transcript) == 0 {
		return "Questions and answers appear here."
	}
	return strings.Join(m.transcript, "\n\n")
}

func renderAnswer(resp *api.AskResponse) string {
	var sb strings.Builder
	sb.WriteString(answerLabelStyle.Render("Auskunft: "))
	sb.WriteString(resp.Answer)
	for _, s := range resp.Sources {
		sb.WriteString("\n")
		sb.WriteString(sourceStyle.Render(fmt.Sprintf("  [%d] %s: %s", s.ID, s.Source, s.Preview)))
	}
	return sb.String()
}

func statusLine(resp *api.AskResponse) string {
	switch {
	case resp.Status == api.StatusNoQuestion:
		return "The gateway received an empty question."
	case len(resp.Sources) == 0:
		return "Answered without sources."
	default:
		return fmt.Sprintf("Answered with %d sources.", len(resp.Sources))
	}
}

var (
	headerStyle      = lipgloss.NewStyle().Bold(true)
	transcriptStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	promptStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	questionStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	answerLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	sourceStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	spinnerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)
